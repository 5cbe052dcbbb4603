package endpoint

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
)

// DocsConfig configures the API documentation routes.
type DocsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
	Title   string `yaml:"title" mapstructure:"title"`
}

// ApplyDefaults sets the documentation path to /docs when unset.
func (c *DocsConfig) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "/docs"
	}
	c.Path = "/" + strings.Trim(c.Path, "/")
}

// Validate checks the configuration for invalid values.
func (c *DocsConfig) Validate() error {
	if c.Enabled && (c.Path == "" || c.Path == "/") {
		return fmt.Errorf("docs.path must name a sub-path (got: %q)", c.Path)
	}
	return nil
}

var documentedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// OpenAPIDocument builds an OpenAPI 3 document from a Gin route table. Gin
// parameters (":id", "*path") become templated path parameters.
func OpenAPIDocument(title, version string, routes gin.RoutesInfo, skip func(path string) bool) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: title, Version: version},
		Paths:   openapi3.NewPaths(),
	}
	for _, r := range routes {
		if !documentedMethods[r.Method] || (skip != nil && skip(r.Path)) {
			continue
		}
		path, params := templatePath(r.Path)

		op := openapi3.NewOperation()
		op.OperationID = operationID(r.Method, path)
		op.Summary = handlerSummary(r.Handler)
		for _, p := range params {
			op.AddParameter(openapi3.NewPathParameter(p).WithSchema(openapi3.NewStringSchema()))
		}
		op.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Successful response"))
		op.AddResponse(0, openapi3.NewResponse().WithDescription("Error envelope"))
		doc.AddOperation(path, r.Method, op)
	}
	return doc
}

// RegisterDocs serves the document at GET {path}/openapi.json and redirects
// GET {path} to it. The document is built on first request, after all routes
// are registered.
func RegisterDocs(engine *gin.Engine, cfg DocsConfig, version string) {
	title := cfg.Title
	if title == "" {
		title = "API"
	}
	specPath := cfg.Path + "/openapi.json"
	skip := func(p string) bool { return p == cfg.Path || p == specPath }

	build := sync.OnceValue(func() *openapi3.T {
		return OpenAPIDocument(title, version, engine.Routes(), skip)
	})

	engine.GET(specPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, build())
	})
	engine.GET(cfg.Path, func(c *gin.Context) {
		c.Redirect(http.StatusFound, specPath)
	})
}

// templatePath converts "/users/:id/*rest" into "/users/{id}/{rest}".
func templatePath(ginPath string) (string, []string) {
	segments := strings.Split(ginPath, "/")
	var params []string
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if seg[0] == ':' || seg[0] == '*' {
			name := seg[1:]
			params = append(params, name)
			segments[i] = "{" + name + "}"
		}
	}
	return strings.Join(segments, "/"), params
}

func operationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}")
		if seg == "" {
			continue
		}
		b.WriteByte('_')
		b.WriteString(seg)
	}
	return b.String()
}

func handlerSummary(handler string) string {
	name := strings.TrimSuffix(handler, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}
