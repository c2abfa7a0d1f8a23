package partstream

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mazrean/partstream/internal/myio"
)

// Body is a whole multipart body collected by Attach.
// Parts sharing a field name are kept in the order they appeared.
type Body struct {
	fields       map[string][]Field
	files        map[string][]*File
	limitReached bool
}

func newBody() *Body {
	return &Body{
		fields: make(map[string][]Field),
		files:  make(map[string][]*File),
	}
}

// File is a file part collected by Attach.
type File struct {
	Data        []byte
	Path        string
	FileName    string
	Encoding    string
	ContentType string
	Header      Header
	Size        int64
	// Limit reports whether the file was cut at a size limit.
	Limit bool
}

// Open returns the contents of the file, from memory or from Path.
func (f *File) Open() (io.ReadSeekCloser, error) {
	if f.Path == "" {
		return myio.BytesFile(f.Data), nil
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// LimitReached reports whether parts or fields over the count limits were dropped.
func (b *Body) LimitReached() bool {
	return b.limitReached
}

// RemoveAll removes the temporary files of the body.
func (b *Body) RemoveAll() error {
	var errs []error
	for _, files := range b.files {
		for _, f := range files {
			if f.Path == "" {
				continue
			}

			err := os.Remove(f.Path)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// Attach parses r and collects every field and file into a Body.
// onComplete receives the body only when every part was consumed successfully;
// a partially collected body is never handed out.
//
// File parts are consumed by the FileConsumer set with WithFileConsumer,
// synchronously on the framing goroutine.
func (p *Parser) Attach(r io.Reader, onComplete func(body *Body, err error), options ...ParserOption) (*Control, error) {
	if onComplete == nil {
		return nil, ErrNilCompleteFunc
	}

	config := p.parserConfig.with(options)
	body := newBody()

	fieldHandler := config.fieldHandler
	recordField := func(field Field) {
		body.fields[field.Name] = append(body.fields[field.Name], field)
		if fieldHandler != nil {
			fieldHandler(field)
		}
	}

	consumer := config.fileConsumer
	handler := func(part *Part) error {
		file := &File{
			FileName:    part.FileName(),
			Encoding:    part.Encoding(),
			ContentType: part.ContentType(),
			Header:      part.Header(),
		}
		body.files[part.Name()] = append(body.files[part.Name()], file)

		err := consumer(part, file)
		if err != nil {
			return err
		}
		file.Limit = file.Limit || part.LimitExceeded()

		return part.Close()
	}

	var ctrl *Control
	started := make(chan struct{})
	attachOptions := make([]ParserOption, 0, len(options)+1)
	attachOptions = append(attachOptions, options...)
	attachOptions = append(attachOptions, WithFieldHandler(recordField))

	ctrl, err := p.Stream(r, handler, func(err error) {
		if err != nil {
			go func() {
				<-started
				if ctrl != nil {
					<-ctrl.Framer().Exited()
				}
				_ = body.RemoveAll()
			}()

			onComplete(nil, err)
			return
		}

		<-started
		body.limitReached = ctrl.Framer().LimitReached()
		onComplete(body, nil)
	}, attachOptions...)
	close(started)
	if err != nil {
		return nil, err
	}

	return ctrl, nil
}

// ParseBody parses r and returns the collected body.
func (p *Parser) ParseBody(r io.Reader, options ...ParserOption) (*Body, error) {
	type result struct {
		body *Body
		err  error
	}

	resCh := make(chan result, 1)
	_, err := p.Attach(r, func(body *Body, err error) {
		resCh <- result{body: body, err: err}
	}, options...)
	if err != nil {
		return nil, err
	}

	res := <-resCh

	return res.body, res.err
}
