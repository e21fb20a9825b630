package soopify

import (
	"io/fs"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
)

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded site script, served ahead of the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/app.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	if a.Config.Storage.CloudinaryURL == "" {
		e.Static("/public/uploads", a.Config.Storage.LocalDir)
	}
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: a.Registry,
	}))

	// Pages
	e.GET("/", a.handleHome)
	e.GET("/board/", a.handleBoard)
	e.GET("/board/new/", a.handleBoardNew, requireAdminPage)
	e.GET("/board/:id/", a.handleBoardPost)
	e.GET("/board/:id/edit/", a.handleBoardEdit, requireAdminPage)
	e.GET("/admin/login/", a.handleAdminLoginPage)
	e.GET("/admin/", a.handleAdmin, requireAdminPage)
	e.GET("/admin/inquiries/", a.handleAdminInquiries, requireAdminPage)
	e.GET("/admin/insights/", a.handleAdminInsightsPage, requireAdminPage)

	// JSON API
	api := e.Group("/api")
	api.POST("/auth/login", a.handleLogin)
	api.POST("/auth/logout", handleLogout)
	api.GET("/auth/check", handleAuthCheck)

	api.POST("/contact", a.handleContact)
	api.GET("/inquiries", a.handleListInquiries, requireAdmin)

	api.GET("/posts", a.handleListPosts)
	api.GET("/posts/:id", a.handleGetPost)
	api.POST("/posts", a.handleCreatePost, requireAdmin)
	api.PUT("/posts/:id", a.handleUpdatePost, requireAdmin)
	api.DELETE("/posts/:id", a.handleDeletePost, requireAdmin)
	api.POST("/upload", a.handleUpload, requireAdmin)

	api.GET("/insights", a.handleInsights)
	api.GET("/admin/insights", a.handleAdminInsights, requireAdmin)
	api.PATCH("/admin/insights", a.handleSetFeatured, requireAdmin)
}
