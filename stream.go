package partstream

import (
	"context"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mazrean/partstream/internal/completion"
)

// Stream starts parsing r in the background and hands every file part to handler.
// onComplete is called exactly once: with nil after the last part has been
// drained and the body has ended, or with the first error.
//
// If the parser was not created for a multipart body, onComplete is called with
// ErrNotMultipart before Stream returns and r is not read.
// options override the parser options for this call only.
func (p *Parser) Stream(r io.Reader, handler PartHandler, onComplete CompleteFunc, options ...ParserOption) (*Control, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if onComplete == nil {
		return nil, ErrNilCompleteFunc
	}

	config := p.parserConfig.with(options)
	logger := config.logger.With(zap.String("session", uuid.NewString()))

	ctx, cancel := context.WithCancelCause(context.Background())

	group := &errgroup.Group{}
	group.SetLimit(config.maxConcurrentHandlers)

	framer := &Framer{
		ctx:      ctx,
		src:      r,
		boundary: p.boundary,
		config:   config,
		handler:  handler,
		logger:   logger,
		group:    group,
		live:     make(map[*Part]struct{}),
		exited:   make(chan struct{}),
	}

	ctrl := &Control{
		framer: framer,
		group:  group,
		done:   make(chan struct{}),
	}

	tracker := p.newTracker(func(err error) {
		if err != nil {
			cancel(err)
			framer.destroy(err)
			logger.Debug("multipart parsing failed", zap.Error(err))
		} else {
			logger.Debug("finished multipart parsing")
		}
		config.observer.SessionCompleted(framer.Parts(), err)

		ctrl.err = err
		close(ctrl.done)

		onComplete(err)
	})
	framer.tracker = tracker
	ctrl.tracker = tracker

	if !p.IsMultipart() {
		close(framer.exited)
		tracker.Fail(ErrNotMultipart)
		return ctrl, nil
	}

	logger.Debug("starting multipart parsing", zap.String("boundary", p.boundary))
	go framer.run()

	return ctrl, nil
}

// Parse parses r and blocks until every part has been consumed.
func (p *Parser) Parse(r io.Reader, handler PartHandler, options ...ParserOption) error {
	ctrl, err := p.Stream(r, handler, func(error) {}, options...)
	if err != nil {
		return err
	}

	return ctrl.Wait(context.Background())
}

// State is the progress of one parse.
type State = completion.State

const (
	StateIdle          = completion.Idle
	StateDiscovering   = completion.Discovering
	StateAwaitingDrain = completion.AwaitingDrain
	StateCompleted     = completion.Completed
	StateErrored       = completion.Errored
)

// Control is the handle of one running parse.
type Control struct {
	framer  *Framer
	tracker completion.ITracker
	group   *errgroup.Group
	done    chan struct{}
	err     error
}

// Framer returns the framer splitting the body into parts.
func (c *Control) Framer() *Framer {
	return c.framer
}

// Cancel aborts the parsing. Parts already handed out are destroyed with err
// and the completion callback receives err unless it has already been called.
// A nil err is replaced with ErrCanceled.
func (c *Control) Cancel(err error) {
	if err == nil {
		err = ErrCanceled
	}

	c.tracker.Fail(err)

	if closer, ok := c.framer.src.(io.Closer); ok {
		_ = closer.Close()
	}
}

// Done is closed when the completion callback is about to be called.
func (c *Control) Done() <-chan struct{} {
	return c.done
}

// Err returns the error the parsing finished with. It is valid after Done is closed.
func (c *Control) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

func (c *Control) State() State {
	return c.tracker.Snapshot().State
}

// Wait blocks until the parsing finishes and returns its error.
// After a successful parse it also waits for handlers started by Async.
func (c *Control) Wait(ctx context.Context) error {
	select {
	case <-c.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if c.err != nil {
		return c.err
	}

	_ = c.group.Wait()

	return nil
}
