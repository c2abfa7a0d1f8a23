package partstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mazrean/partstream/internal/completion"
)

var errStopFraming = errors.New("stop framing")

// Framer splits a multipart body into parts on its own goroutine.
type Framer struct {
	ctx      context.Context
	src      io.Reader
	boundary string
	config   parserConfig
	handler  PartHandler
	tracker  completion.ITracker
	logger   *zap.Logger
	group    *errgroup.Group

	parts        atomic.Int64
	fields       atomic.Int64
	limitReached atomic.Bool

	mu   sync.Mutex
	live map[*Part]struct{}

	exited chan struct{}
}

func (f *Framer) Boundary() string {
	return f.boundary
}

// Parts returns the number of file parts discovered so far.
func (f *Framer) Parts() int {
	return int(f.parts.Load())
}

// Fields returns the number of non-file fields read so far.
func (f *Framer) Fields() int {
	return int(f.fields.Load())
}

// LimitReached reports whether parts or fields were dropped
// because WithMaxParts or WithMaxFields was exceeded.
func (f *Framer) LimitReached() bool {
	return f.limitReached.Load()
}

func (f *Framer) reachLimit(kind string) {
	if f.limitReached.CompareAndSwap(false, true) {
		f.logger.Debug("count limit reached, dropping parts", zap.String("limit", kind))
	}
}

// Exited is closed once the framer has stopped reading the body.
func (f *Framer) Exited() <-chan struct{} {
	return f.exited
}

func (f *Framer) run() {
	defer close(f.exited)

	f.tracker.Begin()

	err := f.frame()
	if errors.Is(err, errStopFraming) {
		return
	}
	if err != nil {
		f.tracker.Fail(err)
		return
	}

	f.logger.Debug("no more parts", zap.Int("parts", f.Parts()), zap.Int("fields", f.Fields()))
	f.tracker.Terminal()
}

func (f *Framer) frame() error {
	maxParts := f.config.maxParts
	maxHeaders := f.config.maxHeaders
	maxFields := f.config.maxFields

	mr := multipart.NewReader(f.src, f.boundary)
	for {
		if f.ctx.Err() != nil {
			return errStopFraming
		}

		part, err := mr.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read next part: %w", err)
		}

		if maxParts == 0 {
			if f.config.limitAsError {
				return ErrTooManyParts
			}
			// the rest of the body is read and dropped
			f.reachLimit("parts")
			continue
		}
		maxParts--

		for _, header := range part.Header {
			if maxHeaders < uint(len(header)) {
				return ErrTooManyHeaders
			}
			maxHeaders -= uint(len(header))
		}

		header := newHeader(part.Header)
		if !header.IsFile() {
			if maxFields == 0 {
				if f.config.limitAsError {
					return ErrTooManyFields
				}
				f.reachLimit("fields")
				continue
			}
			maxFields--

			err = f.field(part, header)
		} else {
			err = f.file(part, header)
		}
		if err != nil {
			return err
		}
	}
}

var bufPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

func (f *Framer) field(src *multipart.Part, header Header) error {
	buf, ok := bufPool.Get().(*bytes.Buffer)
	if !ok {
		buf = new(bytes.Buffer)
	}
	buf.Reset()
	defer bufPool.Put(buf)

	_, err := io.CopyN(buf, src, int64(f.config.maxFieldSize))
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read field: %w", err)
	}

	truncated := false
	if err == nil {
		n, err := io.CopyN(io.Discard, src, 1)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read field: %w", err)
		}
		truncated = n > 0
	}

	if truncated && f.config.limitAsError {
		return fmt.Errorf("field %q: %w", header.Name(), ErrFieldTooLarge)
	}

	f.fields.Add(1)
	if f.config.fieldHandler != nil {
		f.config.fieldHandler(Field{
			Name:      header.Name(),
			Value:     buf.String(),
			Header:    header,
			Truncated: truncated,
		})
	}

	return nil
}

func (f *Framer) file(src *multipart.Part, header Header) error {
	part := newPart(header)
	part.onDrain = func(err error) {
		f.forget(part)
		f.config.observer.PartDrained(part.Name(), part.Size(), err)
		f.tracker.Drain(err)
	}
	part.onFail = f.tracker.Fail
	part.goFunc = func(fn func()) {
		f.group.Go(func() error {
			fn()
			return nil
		})
	}

	// the drain observer is in place before the handler can touch the part
	if !f.tracker.Discover() {
		_ = part.pw.CloseWithError(ErrCanceled)
		return errStopFraming
	}
	f.track(part)
	f.parts.Add(1)
	f.config.observer.PartDiscovered(part.Name())

	// a failure between Discover and track has already run destroy
	if f.ctx.Err() != nil {
		part.abort(context.Cause(f.ctx))
		return errStopFraming
	}

	f.logger.Debug("parsing part",
		zap.String("field", part.Name()),
		zap.String("filename", part.FileName()),
		zap.String("encoding", part.Encoding()),
		zap.String("mimetype", part.ContentType()),
	)

	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		f.pump(part, src)
	}()

	if err := f.handler(part); err != nil {
		_ = part.CloseWithError(&HandlerError{Name: part.Name(), Err: err})
	}

	select {
	case <-pumped:
	case <-f.ctx.Done():
		return errStopFraming
	}

	return nil
}

// pump copies the part body into the pipe read by the handler.
// It returns once the reader has taken every byte or has gone away.
func (f *Framer) pump(part *Part, src io.Reader) {
	rec := &errRecorder{r: src}

	_, err := io.Copy(part.pw, io.LimitReader(rec, int64(f.config.maxFileSize)))
	if rec.err != nil {
		f.fail(part, fmt.Errorf("failed to read part %q: %w", part.Name(), rec.err))
		return
	}
	if err != nil {
		// closed by the reader, NextPart skips the rest
		return
	}

	n, _ := io.CopyN(io.Discard, rec, 1)
	if rec.err != nil {
		f.fail(part, fmt.Errorf("failed to read part %q: %w", part.Name(), rec.err))
		return
	}
	if n > 0 {
		part.limitExceeded.Store(true)
		if f.config.limitAsError {
			part.abort(fmt.Errorf("part %q: %w", part.Name(), ErrFileTooLarge))
			return
		}
	}

	_ = part.pw.Close()
}

func (f *Framer) fail(part *Part, err error) {
	part.abort(err)
	f.tracker.Fail(err)
}

func (f *Framer) track(part *Part) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.live[part] = struct{}{}
}

func (f *Framer) forget(part *Part) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.live, part)
}

// destroy ends every part that has not been drained yet with err.
func (f *Framer) destroy(err error) {
	f.mu.Lock()
	parts := make([]*Part, 0, len(f.live))
	for part := range f.live {
		parts = append(parts, part)
	}
	f.mu.Unlock()

	for _, part := range parts {
		part.abort(err)
	}
}

type errRecorder struct {
	r   io.Reader
	err error
}

func (er *errRecorder) Read(p []byte) (int, error) {
	n, err := er.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		er.err = err
	}

	return n, err
}
