package partstream

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

const (
	defaultEncoding    = "7bit"
	defaultContentType = "text/plain"
)

// Part is the byte stream of one file part.
//
// Reading it to io.EOF marks the part as drained. Close discards the unread
// bytes and also marks it as drained. CloseWithError with a non-nil error
// destroys the part and fails the whole parsing with that error.
type Part struct {
	header Header
	pr     *io.PipeReader
	pw     *io.PipeWriter

	size          atomic.Int64
	limitExceeded atomic.Bool
	drained       atomic.Bool

	abortMu  sync.Mutex
	abortErr error

	onDrain func(err error)
	onFail  func(err error)
	goFunc  func(func())
}

func newPart(header Header) *Part {
	pr, pw := io.Pipe()

	return &Part{
		header:  header,
		pr:      pr,
		pw:      pw,
		onDrain: func(error) {},
		onFail:  func(error) {},
		goFunc:  func(fn func()) { go fn() },
	}
}

// Name returns the form field name of the part.
func (p *Part) Name() string {
	return p.header.Name()
}

// FileName returns the file name sent by the client.
func (p *Part) FileName() string {
	return p.header.FileName()
}

// Encoding returns the Content-Transfer-Encoding of the part, "7bit" if absent.
func (p *Part) Encoding() string {
	if enc := p.header.Encoding(); enc != "" {
		return enc
	}

	return defaultEncoding
}

// ContentType returns the Content-Type of the part, "text/plain" if absent.
func (p *Part) ContentType() string {
	if ct := p.header.ContentType(); ct != "" {
		return ct
	}

	return defaultContentType
}

func (p *Part) Header() Header {
	return p.header
}

// Size returns the number of bytes read from the part so far.
func (p *Part) Size() int64 {
	return p.size.Load()
}

// LimitExceeded reports whether the part was cut at the configured file size limit.
// It is final once the part has been read to io.EOF.
func (p *Part) LimitExceeded() bool {
	return p.limitExceeded.Load()
}

func (p *Part) Read(b []byte) (int, error) {
	if err := p.aborted(); err != nil {
		p.drain(err)
		return 0, err
	}

	n, err := p.pr.Read(b)
	p.size.Add(int64(n))
	if err != nil {
		if errors.Is(err, io.EOF) {
			p.drain(nil)
		} else {
			p.drain(err)
		}
	}

	return n, err
}

func (p *Part) Close() error {
	return p.CloseWithError(nil)
}

func (p *Part) CloseWithError(err error) error {
	// an error after the part drained still fails the parsing,
	// unless the framer has already destroyed the part
	if !p.drain(err) && err != nil && p.aborted() == nil {
		p.onFail(err)
	}

	return p.pr.CloseWithError(err)
}

// abort ends the part from the framing side. Reads fail with err from now on,
// even if the framer had already written every byte.
func (p *Part) abort(err error) {
	p.abortMu.Lock()
	if p.abortErr == nil {
		p.abortErr = err
	}
	p.abortMu.Unlock()

	_ = p.pw.CloseWithError(err)
	p.drain(err)
}

func (p *Part) aborted() error {
	p.abortMu.Lock()
	defer p.abortMu.Unlock()

	return p.abortErr
}

// drain reports the terminal state of the part once.
// It returns false if the state was already reported.
func (p *Part) drain(err error) bool {
	if !p.drained.CompareAndSwap(false, true) {
		return false
	}
	p.onDrain(err)

	return true
}
