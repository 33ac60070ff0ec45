// Package render writes server-rendered pages. Templates are embedded and
// parsed once; each page is layout.html plus its own file.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
	"field": func(errs map[string]string, name string) string { return errs[name] },
}

var pages = mustParse("login", "signup", "products", "error")

func mustParse(names ...string) map[string]*template.Template {
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(files,
			"templates/layout.html",
			"templates/"+name+".html",
		))
	}
	return out
}

// Page renders name with data. Rendering goes to a buffer first so a
// template error never leaves half a page on the wire.
func Page(c *gin.Context, status int, name string, data any) {
	t, ok := pages[name]
	if !ok {
		c.String(http.StatusInternalServerError, "unknown page %q", name)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
