package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// /docs と /docs/openapi.json を返す
type DocsHandler struct {
	doc map[string]interface{}
}

// LoadDocs は OpenAPI(yaml) を読み込み、servers[0] の server 変数を
// http://localhost:<port>/api に書き換える。
func LoadDocs(path string, port string) (*DocsHandler, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read openapi spec")
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "parse openapi spec")
	}
	if doc == nil {
		return nil, errors.New("openapi spec is empty")
	}

	setServerDefault(doc, fmt.Sprintf("http://localhost:%s/api", port))
	return &DocsHandler{doc: doc}, nil
}

func setServerDefault(doc map[string]interface{}, url string) {
	servers, ok := doc["servers"].([]interface{})
	if !ok || len(servers) == 0 {
		return
	}
	first, ok := servers[0].(map[string]interface{})
	if !ok {
		return
	}
	vars, ok := first["variables"].(map[string]interface{})
	if !ok {
		return
	}
	server, ok := vars["server"].(map[string]interface{})
	if !ok {
		return
	}
	server["default"] = url
}

func (h *DocsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/docs", h.ui)
	e.GET("/docs/openapi.json", h.spec)
}

func (h *DocsHandler) spec(c echo.Context) error {
	return c.JSON(http.StatusOK, h.doc)
}

func (h *DocsHandler) ui(c echo.Context) error {
	return c.HTML(http.StatusOK, swaggerUIHTML)
}

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>API docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = () => {
      window.ui = SwaggerUIBundle({ url: "/docs/openapi.json", dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>`
