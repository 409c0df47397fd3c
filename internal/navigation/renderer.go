// Package navigation renders the navigation skeleton of the API reference
// and assembles one navigation volume per component.
package navigation

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
)

//go:embed templates/*.rst.tmpl
var embedded embed.FS

// Template names. Overrides are looked up as <name>.rst.tmpl.
const (
	TemplateIndex   = "main_index"
	TemplateCore    = "main_core"
	TemplateLibs    = "main_libs"
	TemplateClients = "main_clients"
	TemplateExtLink = "main_module_ext_link"
	TemplateModule  = "module"
)

var templateNames = []string{
	TemplateIndex, TemplateCore, TemplateLibs, TemplateClients, TemplateExtLink, TemplateModule,
}

// SourceEmbedded marks a template that was not overridden on disk.
const SourceEmbedded = "embedded"

// PageData is the data passed to every template.
type PageData struct {
	Group      string
	Component  string
	Components []string
	Items      []string
}

// Renderer holds the parsed navigation templates.
type Renderer struct {
	templates map[string]*template.Template
	sources   map[string]string
}

func funcMap() template.FuncMap {
	titler := cases.Title(language.English)
	return template.FuncMap{
		"title": titler.String,
		"underline": func(s, char string) string {
			return strings.Repeat(char, len(s))
		},
	}
}

// NewRenderer parses the embedded templates, replacing each one found as
// <overrideDir>/<name>.rst.tmpl. An empty or missing overrideDir uses the
// embedded set only.
func NewRenderer(overrideDir string) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template, len(templateNames)),
		sources:   make(map[string]string, len(templateNames)),
	}
	for _, name := range templateNames {
		file := name + ".rst.tmpl"
		src, origin := []byte(nil), SourceEmbedded

		if overrideDir != "" {
			path := filepath.Join(overrideDir, file)
			data, err := os.ReadFile(path)
			switch {
			case err == nil:
				src, origin = data, path
			case !os.IsNotExist(err):
				return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read navigation template").
					Fatal().WithContext("path", path).Build()
			}
		}
		if src == nil {
			data, err := embedded.ReadFile("templates/" + file)
			if err != nil {
				return nil, errors.WrapError(err, errors.CategoryInternal, "embedded template missing").
					Fatal().WithContext("template", name).Build()
			}
			src = data
		}

		tmpl, err := template.New(name).Funcs(funcMap()).Parse(string(src))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse navigation template").
				Fatal().WithContext("template", name).WithContext("source", origin).Build()
		}
		r.templates[name] = tmpl
		r.sources[name] = origin
	}
	return r, nil
}

// Render executes the named template.
func (r *Renderer) Render(name string, data PageData) ([]byte, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return nil, errors.InternalError("unknown navigation template").WithContext("template", name).Build()
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to render navigation template").
			Fatal().WithContext("template", name).Build()
	}
	return buf.Bytes(), nil
}

// RenderModule renders a component's module index listing items.
func (r *Renderer) RenderModule(component string, items []string) ([]byte, error) {
	return r.Render(TemplateModule, PageData{Component: component, Items: items})
}

// Sources reports where each template came from: SourceEmbedded or a file path.
func (r *Renderer) Sources() map[string]string {
	out := make(map[string]string, len(r.sources))
	for k, v := range r.sources {
		out[k] = v
	}
	return out
}
