package apidocs

import (
	"bytes"
	"html/template"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
)

type Opts func(*config)

// configures the Doc middlewares
type config struct {
	// SpecURL the url to find the spec for
	SpecURL string
	// Title of the documentation page
	Title string
}

// WithTitle sets the documentation page title.
func WithTitle(title string) Opts {
	return func(cfg *config) {
		cfg.Title = title
	}
}

func prepare(basePath string, cfg *config) (string, string) {
	docPath := path.Join(basePath, "apidocs")

	// html
	tmpl := template.Must(template.New("apidoc").Parse(pageTemplate))
	buf := bytes.NewBuffer(nil)
	_ = tmpl.Execute(buf, cfg)

	return docPath, buf.String()
}

// Doc creates a middleware to serve a documentation site for an OpenAPI document.
// basePath itself is left to the application, only basePath/apidocs and
// basePath/apispec.json are served.
func Doc(basePath string, apiJSON []byte, opts ...Opts) echo.MiddlewareFunc {
	cfg := &config{
		SpecURL: path.Join(basePath, "apispec.json"),
		Title:   "API documentation",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	docPath, uiHTML := prepare(basePath, cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqPath := c.Request().URL.Path
			if reqPath != docPath && reqPath != cfg.SpecURL {
				return next(c)
			}

			if reqPath == docPath {
				return c.HTML(http.StatusOK, uiHTML)
			}
			return c.JSONBlob(http.StatusOK, apiJSON)
		}
	}
}

const pageTemplate = `
<!DOCTYPE html>
<html lang="en">
  <head>
    <title>{{ .Title }}</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1" />
  </head>

  <body>
    <script id="api-reference" data-url="{{ .SpecURL }}"></script>

    <script src="https://cdnjs.cloudflare.com/ajax/libs/scalar-api-reference/1.25.99/standalone.min.js" integrity="sha512-ai3lOYZ5efNXMYwnqhz0mnCaImbqfwLE1VCx9Y9nhB3OJX4/uegjIAoQtJHy3SILHp/gS1OlPCIeNFPZT5i2WQ==" crossorigin="anonymous" referrerpolicy="no-referrer"></script>
  </body>
</html>`
