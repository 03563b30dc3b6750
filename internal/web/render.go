package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/vocalis/internal/features"
)

// Renderer executes page templates, each parsed together with the shared base layout.
type Renderer struct {
	pages    map[string]*template.Template
	appName  string
	cookies  Cookies
	defaults func(c *fiber.Ctx) fiber.Map
}

func NewRenderer(files fs.FS, dir string, pages []string, appName string, cookies Cookies) (*Renderer, error) {
	parsed, err := parsePageTemplates(files, dir, newTemplateFuncMap(), pages)
	if err != nil {
		return nil, err
	}
	return &Renderer{pages: parsed, appName: appName, cookies: cookies}, nil
}

// WithDefaults registers per-request values merged under every page's data.
func (renderer *Renderer) WithDefaults(defaults func(c *fiber.Ctx) fiber.Map) *Renderer {
	renderer.defaults = defaults
	return renderer
}

func parsePageTemplates(files fs.FS, dir string, funcMap template.FuncMap, pages []string) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		parsed, err := template.New("base").Funcs(funcMap).ParseFS(files,
			path.Join(dir, "base.html"),
			path.Join(dir, page+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("parse page template %s: %w", page, err)
		}
		templates[page] = parsed
	}
	return templates, nil
}

func newTemplateFuncMap() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(value time.Time) string {
			if value.IsZero() {
				return ""
			}
			return value.Format("2006-01-02 15:04")
		},
		"formatFloat": features.FormatValue,
	}
}

func (renderer *Renderer) Render(c *fiber.Ctx, name string, data fiber.Map) error {
	tmpl, ok := renderer.pages[name]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).SendString("template not found")
	}

	payload := fiber.Map{
		"AppName":   renderer.appName,
		"Title":     renderer.appName,
		"CSRFToken": CSRFToken(c),
		"Flash":     renderer.cookies.PopFlash(c),
	}
	if renderer.defaults != nil {
		for key, value := range renderer.defaults(c) {
			payload[key] = value
		}
	}
	for key, value := range data {
		payload[key] = value
	}

	var output bytes.Buffer
	if err := tmpl.ExecuteTemplate(&output, "base", payload); err != nil {
		Logger(c).Error().Err(err).Str("template", name).Msg("render failed")
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render template")
	}
	c.Type("html", "utf-8")
	return c.Send(output.Bytes())
}
