package server

import (
	"embed"
	"html/template"
	"io/fs"
	"path"

	"github.com/jrsteele09/go-storefront/commerce"
	"github.com/jrsteele09/go-storefront/orders"
	"github.com/shopspring/decimal"
)

//go:embed templates/*
var templateFiles embed.FS

const layoutTemplate = "layout.html"

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page together with the shared layout from the embedded filesystem
func ParseTemplate(name string, funcs template.FuncMap) (*template.Template, error) {
	return template.New(name).Funcs(funcs).ParseFS(TemplateFilesFS(), layoutTemplate, name)
}

// parsePages parses every page template once, keyed by file name.
func parsePages(funcs template.FuncMap) (map[string]*template.Template, error) {
	names, err := fs.Glob(TemplateFilesFS(), "*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutTemplate {
			continue
		}
		tmpl, err := ParseTemplate(path.Base(name), funcs)
		if err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}
	return pages, nil
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(amount decimal.Decimal) string {
			return commerce.FormatAmount(amount)
		},
		"image": func(ref string) string {
			return commerce.ImageURL(s.apiBaseURL, ref)
		},
		"tone": func(status string) string {
			return string(orders.StatusTone(status))
		},
		"canPay": orders.CanPay,
		"add": func(a, b int) int {
			return a + b
		},
	}
}
