package soopify

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soopify/site/richtext"
)

const (
	boardPageLimit     = 10
	descriptionExcerpt = 160
)

func (a *App) meta(title, description string, segments ...string) PageMeta {
	if description == "" {
		description = a.Config.Description
	}
	return PageMeta{
		Title:       title,
		Description: description,
		URL:         BuildURL(a.Config.URL, segments...),
	}
}

func (a *App) handleHome(c echo.Context) error {
	insights, err := a.Cache.Featured(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(a.meta(a.Config.Name, ""), insights))
}

func (a *App) handleBoard(c echo.Context) error {
	page := positiveInt(c.QueryParam("page"), 1)
	posts, err := a.Store.ListPosts(c.Request().Context(), page, boardPageLimit)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Board(a.meta("공지사항 | "+a.Config.Name, "", "board"), posts, IsAdmin(c)))
}

func (a *App) handleBoardPost(c echo.Context) error {
	post, err := a.Store.GetPost(c.Request().Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	if err != nil {
		return err
	}
	meta := a.meta(post.Title+" | "+a.Config.Name, richtext.Excerpt(post.Content, descriptionExcerpt), "board", post.ID)
	return Render(c, a.Views.BoardPost(meta, post, IsAdmin(c)))
}

func (a *App) handleBoardNew(c echo.Context) error {
	return Render(c, a.Views.Editor(a.meta("새 공지 작성 | "+a.Config.Name, "", "board", "new"), Post{}))
}

func (a *App) handleBoardEdit(c echo.Context) error {
	post, err := a.Store.GetPost(c.Request().Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.Editor(a.meta("공지 수정 | "+a.Config.Name, "", "board", post.ID, "edit"), post))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Store.ListPosts(c.Request().Context(), 1, feedLimit)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts.Items)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Store.ListPosts(c.Request().Context(), 1, feedLimit)
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts.Items)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\n" +
		"Disallow: /admin/\n" +
		"Disallow: /api/\n" +
		"Disallow: /board/new/\n" +
		"Sitemap: " + a.Config.URL + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}
