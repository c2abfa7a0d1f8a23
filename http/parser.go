package http

import (
	"context"
	"net/http"

	"github.com/mazrean/partstream"
)

// Request is an HTTP request whose body may be parsed as multipart.
type Request struct {
	req    *http.Request
	parser *partstream.Parser
}

// NewRequest detects whether req carries a multipart body.
// Parsing a request that is not multipart reports partstream.ErrNotMultipart.
func NewRequest(req *http.Request, options ...partstream.ParserOption) *Request {
	boundary, err := partstream.BoundaryFromContentType(req.Header.Get("Content-Type"))
	if err != nil {
		boundary = ""
	}

	return &Request{
		req:    req,
		parser: partstream.NewParser(boundary, options...),
	}
}

func (r *Request) IsMultipart() bool {
	return r.parser.IsMultipart()
}

// Multipart streams the request body. The parsing is canceled with the cause
// of the request context when the context ends first.
func (r *Request) Multipart(handler partstream.PartHandler, onComplete partstream.CompleteFunc, options ...partstream.ParserOption) (*partstream.Control, error) {
	ctrl, err := r.parser.Stream(r.req.Body, handler, onComplete, options...)
	if err != nil {
		return nil, err
	}
	r.watch(ctrl)

	return ctrl, nil
}

// Parse streams the request body and blocks until it has been consumed.
func (r *Request) Parse(handler partstream.PartHandler, options ...partstream.ParserOption) error {
	ctrl, err := r.Multipart(handler, func(error) {}, options...)
	if err != nil {
		return err
	}

	return ctrl.Wait(context.Background())
}

// Body collects the whole request body.
func (r *Request) Body(options ...partstream.ParserOption) (*partstream.Body, error) {
	type result struct {
		body *partstream.Body
		err  error
	}

	resCh := make(chan result, 1)
	ctrl, err := r.parser.Attach(r.req.Body, func(body *partstream.Body, err error) {
		resCh <- result{body: body, err: err}
	}, options...)
	if err != nil {
		return nil, err
	}
	r.watch(ctrl)

	res := <-resCh

	return res.body, res.err
}

func (r *Request) watch(ctrl *partstream.Control) {
	ctx := r.req.Context()
	if ctx.Done() == nil {
		return
	}

	go func() {
		select {
		case <-ctx.Done():
			ctrl.Cancel(context.Cause(ctx))
		case <-ctrl.Done():
		}
	}()
}

type bodyKey struct{}

// AttachToBody parses multipart requests into a partstream.Body before next
// runs. Requests that are not multipart are passed through untouched.
// Temporary files of the body are removed after next returns.
func AttachToBody(next http.Handler, options ...partstream.ParserOption) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r := NewRequest(req, options...)
		if !r.IsMultipart() {
			next.ServeHTTP(w, req)
			return
		}

		body, err := r.Body()
		if err != nil {
			http.Error(w, err.Error(), partstream.HTTPStatus(err))
			return
		}
		defer body.RemoveAll()

		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), bodyKey{}, body)))
	})
}

// BodyFromContext returns the body stored by AttachToBody.
func BodyFromContext(ctx context.Context) (*partstream.Body, bool) {
	body, ok := ctx.Value(bodyKey{}).(*partstream.Body)
	return body, ok
}
