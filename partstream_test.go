package partstream_test

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/mazrean/partstream"
)

func ExampleParser_Stream() {
	buf := strings.NewReader(`
--boundary
Content-Disposition: form-data; name="field"

value
--boundary
Content-Disposition: form-data; name="stream"; filename="file.txt"
Content-Type: text/plain

large file contents
--boundary--`)

	parser := partstream.NewParser("boundary", partstream.WithFieldHandler(func(field partstream.Field) {
		fmt.Println("---field---")
		fmt.Println(field.Value)
		fmt.Println()
	}))

	done := make(chan error, 1)
	_, err := parser.Stream(buf, func(part *partstream.Part) error {
		fmt.Println("---stream---")
		fmt.Printf("file name: %s\n", part.FileName())
		fmt.Printf("Content-Type: %s\n", part.ContentType())
		fmt.Println()

		_, err := io.Copy(os.Stdout, part)
		if err != nil {
			return fmt.Errorf("failed to copy: %w", err)
		}

		return nil
	}, func(err error) {
		done <- err
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := <-done; err != nil {
		log.Fatal(err)
	}

	// Output:
	// ---field---
	// value
	//
	// ---stream---
	// file name: file.txt
	// Content-Type: text/plain
	//
	// large file contents
}

func ExampleParser_ParseBody() {
	buf := strings.NewReader(`
--boundary
Content-Disposition: form-data; name="name"

mazrean
--boundary
Content-Disposition: form-data; name="icon"; filename="icon.png"
Content-Type: image/png

icon contents
--boundary--`)

	body, err := partstream.NewParser("boundary").ParseBody(buf)
	if err != nil {
		log.Fatal(err)
	}

	name, _, _ := body.Value("name")
	icon, _ := body.File("icon")
	fmt.Println(name)
	fmt.Println(icon.FileName, icon.ContentType, string(icon.Data))

	// Output:
	// mazrean
	// icon.png image/png icon contents
}

const boundary = "boundary"

func sampleForm(fileSize partstream.DataSize, boundary string, reverse bool) (io.Reader, error) {
	b := bytes.NewBuffer(nil)

	mw := multipart.NewWriter(b)
	defer mw.Close()

	mw.SetBoundary(boundary)

	if !reverse {
		mw.WriteField("field", "value")
	}

	mh := make(textproto.MIMEHeader)
	mh.Set("Content-Disposition", `form-data; name="stream"; filename="file.txt"`)
	mh.Set("Content-Type", "text/plain")
	w, err := mw.CreatePart(mh)
	if err != nil {
		return nil, fmt.Errorf("failed to create part: %w", err)
	}
	_, err = io.CopyN(w, strings.NewReader(strings.Repeat("a", int(fileSize))), int64(fileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to copy: %w", err)
	}

	if reverse {
		mw.WriteField("field", "value")
	}

	return b, nil
}

func BenchmarkStream(b *testing.B) {
	b.Run("1MB", func(b *testing.B) {
		benchmarkStream(b, 1*partstream.MB, false)
	})
	b.Run("10MB", func(b *testing.B) {
		benchmarkStream(b, 10*partstream.MB, false)
	})
	b.Run("100MB", func(b *testing.B) {
		benchmarkStream(b, 100*partstream.MB, false)
	})

	b.Run("1MB Reverse", func(b *testing.B) {
		benchmarkStream(b, 1*partstream.MB, true)
	})
	b.Run("10MB Reverse", func(b *testing.B) {
		benchmarkStream(b, 10*partstream.MB, true)
	})
	b.Run("100MB Reverse", func(b *testing.B) {
		benchmarkStream(b, 100*partstream.MB, true)
	})
}

func benchmarkStream(b *testing.B, fileSize partstream.DataSize, reverse bool) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		r, err := sampleForm(fileSize, boundary, reverse)
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()

		parser := partstream.NewParser(boundary)

		err = parser.Parse(r, func(part *partstream.Part) error {
			_, err := io.Copy(io.Discard, part)
			if err != nil {
				return fmt.Errorf("failed to copy: %w", err)
			}

			return nil
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStdMultipart_ReadForm(b *testing.B) {
	// default value in http package
	const maxMemory = 32 * partstream.MB

	b.Run("1MB", func(b *testing.B) {
		benchmarkStdMultipart_ReadForm(b, 1*partstream.MB, maxMemory)
	})
	b.Run("10MB", func(b *testing.B) {
		benchmarkStdMultipart_ReadForm(b, 10*partstream.MB, maxMemory)
	})
	b.Run("100MB", func(b *testing.B) {
		benchmarkStdMultipart_ReadForm(b, 100*partstream.MB, maxMemory)
	})
}

func benchmarkStdMultipart_ReadForm(b *testing.B, fileSize partstream.DataSize, maxMemory partstream.DataSize) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		r, err := sampleForm(fileSize, boundary, false)
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()

		func() {
			mr := multipart.NewReader(r, boundary)
			form, err := mr.ReadForm(int64(maxMemory))
			if err != nil {
				b.Fatal(err)
			}
			defer form.RemoveAll()

			f, err := form.File["stream"][0].Open()
			if err != nil {
				b.Fatal(err)
			}
			defer f.Close()

			_, err = io.Copy(io.Discard, f)
			if err != nil {
				b.Fatal(err)
			}
		}()
	}
}
