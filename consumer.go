package partstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// FileConsumer is the strategy Attach consumes a file part with.
// It reads part and records the outcome in dst. Unread bytes are discarded
// after it returns.
type FileConsumer func(part *Part, dst *File) error

// BufferConsumer keeps up to limit bytes of every file in memory.
// Bytes over the limit are dropped and File.Limit is set.
func BufferConsumer(limit DataSize) FileConsumer {
	return func(part *Part, dst *File) error {
		buf := new(bytes.Buffer)

		n, err := io.CopyN(buf, part, int64(limit))
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to copy: %w", err)
		}

		if err == nil {
			rest, err := io.Copy(io.Discard, part)
			if err != nil {
				return fmt.Errorf("failed to discard: %w", err)
			}
			dst.Limit = rest > 0
		}

		dst.Data = buf.Bytes()
		dst.Size = n

		return nil
	}
}

// TempFileConsumer writes every file to a temporary file in dir
// and records its path in File.Path. Body.RemoveAll removes the files.
// An empty dir means os.TempDir.
func TempFileConsumer(dir string) FileConsumer {
	return func(part *Part, dst *File) error {
		f, err := os.CreateTemp(dir, "partstream-")
		if err != nil {
			return fmt.Errorf("failed to create temp file: %w", err)
		}
		defer f.Close()
		dst.Path = f.Name()

		n, err := io.Copy(f, part)
		if err != nil {
			return fmt.Errorf("failed to write: %w", err)
		}
		dst.Size = n

		return nil
	}
}

// DiscardConsumer drops the contents of every file and keeps its metadata.
func DiscardConsumer() FileConsumer {
	return func(part *Part, dst *File) error {
		n, err := io.Copy(io.Discard, part)
		if err != nil {
			return fmt.Errorf("failed to discard: %w", err)
		}
		dst.Size = n

		return nil
	}
}
