package partstream

// Observer receives part and session events, e.g. to record metrics.
// Methods may be called from several goroutines.
type Observer interface {
	PartDiscovered(name string)
	PartDrained(name string, size int64, err error)
	SessionCompleted(parts int, err error)
}

type nopObserver struct{}

func (nopObserver) PartDiscovered(string)            {}
func (nopObserver) PartDrained(string, int64, error) {}
func (nopObserver) SessionCompleted(int, error)      {}
