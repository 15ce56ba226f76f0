// Package web serves the single-page chat UI embedded in the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var assets embed.FS

// ContentSecurityPolicy allows the embedded assets plus remote images linked
// from answers.
const ContentSecurityPolicy = "default-src 'self'; img-src 'self' https: data:; connect-src 'self'"

// Register mounts the UI at / and its assets under /static.
func Register(r gin.IRoutes) {
	static, err := fs.Sub(assets, "static")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	index, err := fs.ReadFile(static, "index.html")
	if err != nil {
		panic(err)
	}

	serveIndex := func(c *gin.Context) {
		c.Header("Content-Security-Policy", ContentSecurityPolicy)
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	}
	r.GET("/", serveIndex)
	r.HEAD("/", serveIndex)
	r.StaticFS("/static", http.FS(static))
}
