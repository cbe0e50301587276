package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/danielgtaylor/huma/v2"
	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/unsplash-picker/internal/metrics"
)

const problemContentType = "application/problem+json"

// Recovery returns Echo middleware that turns a handler panic into a 500
// problem response shaped like the ones huma operations return, so API
// clients decode it the same way. The panic is logged with its stack and
// counted per route.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				req := c.Request()
				route := c.Path()
				if route == "" {
					route = req.URL.Path
				}
				metrics.HTTPPanicsTotal.WithLabelValues(req.Method, route).Inc()

				reqID, _ := c.Get("request_id").(string)
				log.Error("panic recovered",
					"error", fmt.Sprint(r),
					"method", req.Method,
					"path", req.URL.Path,
					"request_id", reqID,
					"stack", string(debug.Stack()),
				)

				if c.Response().Committed {
					return
				}
				err = writeProblem(c, http.StatusInternalServerError, "unexpected error handling "+req.Method+" "+route)
			}()
			return next(c)
		}
	}
}

func writeProblem(c echo.Context, status int, detail string) error {
	body, err := json.Marshal(&huma.ErrorModel{
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
	if err != nil {
		return fmt.Errorf("encoding problem response: %w", err)
	}
	return c.Blob(status, problemContentType, body)
}
