package web

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FrontendFS holds the embedded browser frontend.
//
//go:embed static/index.html
var FrontendFS embed.FS

// ShowIndexPage serves the frontend HTML page
func ShowIndexPage(c *gin.Context) {
	data, err := FrontendFS.ReadFile("static/index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load frontend page")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}
