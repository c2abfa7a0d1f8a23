package partstream

// PartHandler is called for every file part, in the order the parts appear,
// before any byte of the part is delivered. The part is complete once it has
// been read to io.EOF or closed; returning does not complete it.
// A returned error destroys the part.
type PartHandler func(part *Part) error

// CompleteFunc is called exactly once, with nil after every part has been
// drained and no more parts follow, or with the first error.
type CompleteFunc func(err error)

// FieldHandler is called for every non-file field.
type FieldHandler func(field Field)

type Field struct {
	Name      string
	Value     string
	Header    Header
	Truncated bool
}

// Async runs fn on its own goroutine so that framing continues while the part
// is consumed. An error returned by fn destroys the part.
func Async(fn PartHandler) PartHandler {
	return func(part *Part) error {
		part.goFunc(func() {
			if err := fn(part); err != nil {
				_ = part.CloseWithError(&HandlerError{Name: part.Name(), Err: err})
			}
		})

		return nil
	}
}
