package myio

import "io"

type failReader struct {
	r   io.Reader
	n   int64
	err error
}

// FailAfter reads up to n bytes from r and then returns err.
func FailAfter(r io.Reader, n int64, err error) io.Reader {
	return &failReader{r: r, n: n, err: err}
}

func (fr *failReader) Read(p []byte) (int, error) {
	if fr.n <= 0 {
		return 0, fr.err
	}
	if int64(len(p)) > fr.n {
		p = p[:fr.n]
	}

	n, err := fr.r.Read(p)
	fr.n -= int64(n)
	if err == io.EOF {
		return n, fr.err
	}

	return n, err
}
