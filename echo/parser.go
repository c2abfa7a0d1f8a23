package echoform

import (
	"github.com/labstack/echo/v4"

	"github.com/mazrean/partstream"
	httpform "github.com/mazrean/partstream/http"
)

const bodyKey = "partstream.body"

type Request struct {
	*httpform.Request
}

func NewRequest(c echo.Context, options ...partstream.ParserOption) *Request {
	return &Request{
		Request: httpform.NewRequest(c.Request(), options...),
	}
}

// AttachToBody parses multipart requests into a partstream.Body before the
// next handler runs. Requests that are not multipart are passed through.
func AttachToBody(options ...partstream.ParserOption) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := NewRequest(c, options...)
			if !r.IsMultipart() {
				return next(c)
			}

			body, err := r.Body()
			if err != nil {
				return echo.NewHTTPError(partstream.HTTPStatus(err), err.Error()).SetInternal(err)
			}
			defer body.RemoveAll()

			c.Set(bodyKey, body)

			return next(c)
		}
	}
}

// GetBody returns the body stored by AttachToBody.
func GetBody(c echo.Context) (*partstream.Body, bool) {
	body, ok := c.Get(bodyKey).(*partstream.Body)
	return body, ok
}
