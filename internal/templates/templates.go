// Package templates holds the site's HTML templates.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed html
var files embed.FS

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	"datep": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
}

// Load parses every embedded template. Each file defines its templates by
// their site-relative name, e.g. "blog/post/list.html".
func Load() (*template.Template, error) {
	return template.New("site").Funcs(Funcs).ParseFS(files,
		"html/*.html",
		"html/accounts/*.html",
		"html/users/*.html",
		"html/blog/*.html",
		"html/shop/*.html",
		"html/errors/*.html",
	)
}

// MustLoad is Load for program start-up.
func MustLoad() *template.Template {
	t, err := Load()
	if err != nil {
		panic(fmt.Sprintf("parse templates: %v", err))
	}
	return t
}
