package routes

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yamenzk/personal-trainer/internal/config"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

const docsIndexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <style>
    body { margin: 0; font-family: system-ui, sans-serif; background: #111827; color: #e5e7eb; }
    main { max-width: 960px; margin: 0 auto; padding: 40px 20px 64px; }
    h1 { margin: 0 0 8px; }
    p { color: #9ca3af; line-height: 1.6; }
    table { width: 100%; border-collapse: collapse; margin: 24px 0; }
    th, td { text-align: left; padding: 10px 12px; border-bottom: 1px solid #374151; }
    code { color: #a7f3d0; }
    .method { font-weight: 700; text-transform: uppercase; color: #fbbf24; }
    pre { padding: 20px; overflow: auto; border-radius: 12px; background: #030712; font-size: 0.9rem; }
  </style>
</head>
<body>
  <main>
    <h1>{{ .Title }} <small>{{ .Version }}</small></h1>
    <p>{{ .Description }}</p>
    <p>Raw spec: <a href="/docs/openapi.yaml"><code>/docs/openapi.yaml</code></a>. Loaded {{ .LoadedAt }}.</p>
    <table>
      <thead><tr><th>Method</th><th>Path</th><th>Summary</th></tr></thead>
      <tbody>
      {{ range .Operations }}<tr><td class="method">{{ .Method }}</td><td><code>{{ .Path }}</code></td><td>{{ .Summary }}</td></tr>
      {{ end }}</tbody>
    </table>
    <pre>{{ .Spec }}</pre>
  </main>
</body>
</html>
`

type openAPIDocument struct {
	Info struct {
		Title       string `yaml:"title"`
		Version     string `yaml:"version"`
		Description string `yaml:"description"`
	} `yaml:"info"`
	Paths map[string]map[string]struct {
		Summary string `yaml:"summary"`
	} `yaml:"paths"`
}

type docsOperation struct {
	Method  string
	Path    string
	Summary string
}

type docsPageData struct {
	Title       string
	Version     string
	Description string
	LoadedAt    string
	Operations  []docsOperation
	Spec        string
}

func registerDocsRoutes(app fiber.Router, cfg *config.Config) error {
	if !cfg.DocsEnabled() {
		return nil
	}

	doc, operations, err := parseOpenAPISpec(openAPISpec)
	if err != nil {
		return fmt.Errorf("load openapi spec: %w", err)
	}

	indexTemplate, err := template.New("docs-index").Parse(docsIndexHTML)
	if err != nil {
		return fmt.Errorf("parse docs template: %w", err)
	}

	pageData := docsPageData{
		Title:       doc.Info.Title,
		Version:     doc.Info.Version,
		Description: doc.Info.Description,
		LoadedAt:    time.Now().UTC().Format(time.RFC3339),
		Operations:  operations,
		Spec:        string(openAPISpec),
	}

	indexHandler := func(c *fiber.Ctx) error {
		applyDocsBaseHeaders(c, fiber.MIMETextHTMLCharsetUTF8)
		c.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; base-uri 'none'; form-action 'none'; frame-ancestors 'none'")

		var body bytes.Buffer
		if err := indexTemplate.Execute(&body, pageData); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render api docs")
		}

		return c.Status(fiber.StatusOK).Send(body.Bytes())
	}

	app.Get("/docs", indexHandler)
	app.Get("/docs/", indexHandler)
	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		applyDocsBaseHeaders(c, "application/yaml; charset=utf-8")
		c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'")
		c.Set(fiber.HeaderContentDisposition, `inline; filename="openapi.yaml"`)
		return c.Status(fiber.StatusOK).Send(openAPISpec)
	})

	return nil
}

// parseOpenAPISpec flattens the spec's paths into a sorted operation list.
func parseOpenAPISpec(spec []byte) (*openAPIDocument, []docsOperation, error) {
	var doc openAPIDocument
	if err := yaml.Unmarshal(spec, &doc); err != nil {
		return nil, nil, err
	}
	if len(doc.Paths) == 0 {
		return nil, nil, fmt.Errorf("spec has no paths")
	}

	var operations []docsOperation
	for path, methods := range doc.Paths {
		for method, op := range methods {
			operations = append(operations, docsOperation{
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: op.Summary,
			})
		}
	}
	sort.Slice(operations, func(i, j int) bool {
		if operations[i].Path != operations[j].Path {
			return operations[i].Path < operations[j].Path
		}
		return operations[i].Method < operations[j].Method
	})
	return &doc, operations, nil
}

func applyDocsBaseHeaders(c *fiber.Ctx, contentType string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")
	c.Set(fiber.HeaderPragma, "no-cache")
	c.Set(fiber.HeaderExpires, "0")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set("Referrer-Policy", "no-referrer")
	c.Set("Cross-Origin-Resource-Policy", "same-origin")
	c.Set("X-Robots-Tag", "noindex, nofollow")
}
