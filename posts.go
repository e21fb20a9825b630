package soopify

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPostLimit    = 10
	defaultInquiryLimit = 20
	maxPageLimit        = 100
)

// pageParams reads page and limit query parameters. Missing, malformed or
// non-positive values fall back to the defaults; limit is capped.
func pageParams(c echo.Context, defaultLimit int) (page, limit int) {
	page = positiveInt(c.QueryParam("page"), 1)
	limit = positiveInt(c.QueryParam("limit"), defaultLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func positiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

type postRequest struct {
	Title       string       `json:"title" validate:"required,max=200"`
	Content     string       `json:"content" validate:"required"`
	Author      string       `json:"author" validate:"max=100"`
	Attachments []Attachment `json:"attachments" validate:"max=20,dive"`
}

func (r *postRequest) normalize() {
	trimAll(&r.Title, &r.Author)
	for i := range r.Attachments {
		trimAll(&r.Attachments[i].Name, &r.Attachments[i].URL)
	}
}

func (a *App) handleListInquiries(c echo.Context) error {
	page, limit := pageParams(c, defaultInquiryLimit)
	result, err := a.Store.ListInquiries(c.Request().Context(), page, limit)
	if err != nil {
		return internalError(msgInquiryFailed, err)
	}
	items := result.Items
	if items == nil {
		items = []Inquiry{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ok":        true,
		"inquiries": items,
		"total":     result.Total,
		"page":      result.Page,
		"limit":     result.Limit,
	})
}

func (a *App) handleListPosts(c echo.Context) error {
	page, limit := pageParams(c, defaultPostLimit)
	result, err := a.Store.ListPosts(c.Request().Context(), page, limit)
	if err != nil {
		return internalError(msgPostListFailed, err)
	}
	items := result.Items
	if items == nil {
		items = []Post{}
	}
	c.Response().Header().Set("Cache-Control", "public, s-maxage=30, stale-while-revalidate=60")
	return c.JSON(http.StatusOK, echo.Map{
		"ok":    true,
		"posts": items,
		"total": result.Total,
		"page":  result.Page,
		"limit": result.Limit,
	})
}

func (a *App) handleGetPost(c echo.Context) error {
	post, err := a.Store.GetPost(c.Request().Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return notFound(msgPostNotFound)
	}
	if err != nil {
		return internalError(msgPostListFailed, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "post": post})
}

func (a *App) handleCreatePost(c echo.Context) error {
	var req postRequest
	if err := bindJSON(c, &req, msgMissingFields); err != nil {
		return err
	}
	if req.Author == "" {
		return badRequest(msgMissingFields)
	}
	post := Post{
		Title:       req.Title,
		Content:     req.Content,
		Author:      req.Author,
		Attachments: req.Attachments,
	}
	if err := a.Store.CreatePost(c.Request().Context(), &post); err != nil {
		return internalError(msgPostCreateFailed, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "post": post})
}

func (a *App) handleUpdatePost(c echo.Context) error {
	var req postRequest
	if err := bindJSON(c, &req, msgMissingFields); err != nil {
		return err
	}
	post, err := a.Store.UpdatePost(c.Request().Context(), c.Param("id"), PostUpdate{
		Title:       req.Title,
		Content:     req.Content,
		Author:      req.Author,
		Attachments: req.Attachments,
	})
	if errors.Is(err, ErrNotFound) {
		return notFound(msgPostNotFound)
	}
	if err != nil {
		return internalError(msgPostUpdateFailed, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "post": post})
}

func (a *App) handleDeletePost(c echo.Context) error {
	err := a.Store.DeletePost(c.Request().Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return notFound(msgPostNotFound)
	}
	if err != nil {
		return internalError(msgPostDeleteFailed, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
