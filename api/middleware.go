package api

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireJSON rejects request bodies whose Content-Type is not JSON. Requests
// without a body pass through untouched.
func RequireJSON() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.ContentLength == 0 {
				return next(c)
			}
			ct := req.Header.Get(echo.HeaderContentType)
			if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), echo.MIMEApplicationJSON) {
				return c.JSON(http.StatusBadRequest, errorResponse{Message: "Content-Type must be application/json"})
			}
			return next(c)
		}
	}
}

// GzipRequest transparently decompresses gzip-encoded request bodies so
// handlers always see plain JSON. Invalid gzip payloads get a 400.
func GzipRequest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !strings.Contains(strings.ToLower(req.Header.Get(echo.HeaderContentEncoding)), "gzip") {
				return next(c)
			}

			body := req.Body
			gr, err := gzip.NewReader(body)
			if err != nil {
				_ = body.Close()
				return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid gzip body"})
			}

			req.Body = &gzipBody{gr: gr, raw: body}
			req.ContentLength = -1
			req.Header.Del(echo.HeaderContentEncoding)
			req.Header.Del(echo.HeaderContentLength)

			return next(c)
		}
	}
}

type gzipBody struct {
	gr  *gzip.Reader
	raw io.Closer
}

func (g *gzipBody) Read(p []byte) (int, error) {
	return g.gr.Read(p)
}

func (g *gzipBody) Close() error {
	err := g.gr.Close()
	if cerr := g.raw.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
