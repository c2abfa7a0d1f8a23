package partstream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mazrean/partstream"
)

func TestBoundaryFromContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		description string
		contentType string
		boundary    string
		err         error
	}{
		{
			description: "form-data",
			contentType: "multipart/form-data; boundary=xyz",
			boundary:    "xyz",
		},
		{
			description: "quoted boundary",
			contentType: `multipart/form-data; boundary="a b"`,
			boundary:    "a b",
		},
		{
			description: "mixed",
			contentType: "multipart/mixed; boundary=xyz",
			boundary:    "xyz",
		},
		{
			description: "no boundary",
			contentType: "multipart/form-data",
			err:         partstream.ErrMissingBoundary,
		},
		{
			description: "empty boundary",
			contentType: `multipart/form-data; boundary=""`,
			err:         partstream.ErrMissingBoundary,
		},
		{
			description: "json",
			contentType: "application/json",
			err:         partstream.ErrNotMultipart,
		},
		{
			description: "empty",
			contentType: "",
			err:         partstream.ErrNotMultipart,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.description, func(t *testing.T) {
			t.Parallel()

			boundary, err := partstream.BoundaryFromContentType(test.contentType)
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, test.boundary, boundary)
		})
	}
}
