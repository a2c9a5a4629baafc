package http

import (
	"embed"
	"fmt"
	"io/fs"
	nethttp "net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
)

//go:embed views
var viewsFS embed.FS

//go:embed public
var publicFS embed.FS

// publicAssets serves the embedded browser scripts.
func publicAssets() fiber.Handler {
	return filesystem.New(filesystem.Config{
		Root:       nethttp.FS(publicFS),
		PathPrefix: "public/js",
		MaxAge:     3600,
	})
}

// NewViews loads the embedded page templates.
func NewViews() *html.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(nethttp.FS(sub), ".html")
	engine.AddFunc("firstName", func(name string) string {
		first, _, _ := strings.Cut(name, " ")
		return first
	})
	engine.AddFunc("price", func(v float64) string {
		return fmt.Sprintf("$%.0f", v)
	})
	return engine
}
