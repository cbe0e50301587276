// Package openapi serves the OpenAPI 3.1 document generated from the
// registered huma operations, plus a Swagger UI for browsing it.
package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Unsplash Picker API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/swagger/swagger.json",
      dom_id: "#swagger-ui",
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: "BaseLayout",
    });
  </script>
</body>
</html>`

// document holds the OpenAPI document, rendered on first request after every
// operation has been registered.
type document struct {
	api  huma.API
	once sync.Once
	json []byte
	yaml []byte
	err  error
}

func (d *document) render() {
	d.json, d.err = json.Marshal(d.api.OpenAPI())
	if d.err != nil {
		d.err = fmt.Errorf("marshaling OpenAPI document: %w", d.err)
		return
	}

	var doc any
	if err := json.Unmarshal(d.json, &doc); err != nil {
		d.err = fmt.Errorf("decoding OpenAPI document: %w", err)
		return
	}
	d.yaml, d.err = yaml.Marshal(doc)
	if d.err != nil {
		d.err = fmt.Errorf("converting OpenAPI document to YAML: %w", d.err)
	}
}

// RegisterRoutes adds Swagger UI and OpenAPI document endpoints to the Echo instance.
func RegisterRoutes(e *echo.Echo, api huma.API) {
	d := &document{api: api}

	e.GET("/swagger/swagger.json", d.serve(func() []byte { return d.json }, "application/json"))
	e.GET("/swagger/swagger.yaml", d.serve(func() []byte { return d.yaml }, "application/yaml"))
	e.GET("/swagger/index.html", serveUI)
	e.GET("/swagger", redirectToUI)
	e.GET("/swagger/", redirectToUI)
}

func (d *document) serve(body func() []byte, contentType string) echo.HandlerFunc {
	return func(c echo.Context) error {
		d.once.Do(d.render)
		if d.err != nil {
			return c.String(http.StatusInternalServerError, "OpenAPI document not available")
		}
		return c.Blob(http.StatusOK, contentType, body())
	}
}

func serveUI(c echo.Context) error {
	return c.HTML(http.StatusOK, swaggerUIHTML)
}

func redirectToUI(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
}
