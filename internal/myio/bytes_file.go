package myio

import (
	"bytes"
	"io"
)

type bytesFile struct {
	*bytes.Reader
}

// BytesFile returns data as a file that needs no cleanup.
func BytesFile(data []byte) io.ReadSeekCloser {
	return bytesFile{bytes.NewReader(data)}
}

func (bytesFile) Close() error { return nil }
