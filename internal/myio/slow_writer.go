package myio

import (
	"io"
	"time"
)

type slowWriter struct {
	w     io.Writer
	delay time.Duration
}

// SlowWriter writes to w, sleeping delay per byte before every write.
func SlowWriter(w io.Writer, delay time.Duration) io.Writer {
	return &slowWriter{w: w, delay: delay}
}

func (w *slowWriter) Write(p []byte) (n int, err error) {
	time.Sleep(time.Duration(len(p)) * w.delay)
	return w.w.Write(p)
}
