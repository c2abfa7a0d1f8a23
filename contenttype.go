package partstream

import (
	"errors"
	"mime"
	"strings"
)

// ErrMissingBoundary is returned when a multipart Content-Type has no boundary.
var ErrMissingBoundary = errors.New("no multipart boundary param in Content-Type")

// BoundaryFromContentType returns the boundary of a multipart/* Content-Type.
func BoundaryFromContentType(contentType string) (string, error) {
	d, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(d, "multipart/") {
		return "", ErrNotMultipart
	}

	boundary, ok := params["boundary"]
	if !ok || boundary == "" {
		return "", ErrMissingBoundary
	}

	return boundary, nil
}
