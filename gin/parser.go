package ginform

import (
	"github.com/gin-gonic/gin"

	"github.com/mazrean/partstream"
	httpform "github.com/mazrean/partstream/http"
)

const bodyKey = "partstream.body"

type Request struct {
	*httpform.Request
}

func NewRequest(c *gin.Context, options ...partstream.ParserOption) *Request {
	return &Request{
		Request: httpform.NewRequest(c.Request, options...),
	}
}

// AttachToBody parses multipart requests into a partstream.Body before the
// next handlers run. Requests that are not multipart are passed through.
func AttachToBody(options ...partstream.ParserOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := NewRequest(c, options...)
		if !r.IsMultipart() {
			c.Next()
			return
		}

		body, err := r.Body()
		if err != nil {
			_ = c.AbortWithError(partstream.HTTPStatus(err), err)
			return
		}
		defer body.RemoveAll()

		c.Set(bodyKey, body)
		c.Next()
	}
}

// GetBody returns the body stored by AttachToBody.
func GetBody(c *gin.Context) (*partstream.Body, bool) {
	v, ok := c.Get(bodyKey)
	if !ok {
		return nil, false
	}

	body, ok := v.(*partstream.Body)
	return body, ok
}
