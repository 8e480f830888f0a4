// Package web carries the server-rendered pages.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	html "github.com/gofiber/template/html/v2"

	"stockbook/internal/money"
)

//go:embed templates/*.html
var templates embed.FS

// Engine parses the embedded templates; reload re-reads them on every render (dev only).
func Engine(reload bool) *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.Reload(reload)
	engine.AddFunc("ariary", money.FormatAriary)
	return engine
}
