package soopify

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// publicInsightLimit is the size of the featured strip on the landing page.
const publicInsightLimit = 3

func (a *App) handleInsights(c echo.Context) error {
	posts, err := a.Cache.Featured(c.Request().Context())
	if err != nil {
		return internalError(msgInsightListFailed, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "data": posts})
}

func (a *App) handleAdminInsights(c echo.Context) error {
	posts, err := a.Store.ListPublished(c.Request().Context())
	if err != nil {
		return internalError(msgInsightListFailed, err)
	}
	if posts == nil {
		posts = []BlogPost{}
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "data": posts})
}

type featureRequest struct {
	PostID     string `json:"postId" validate:"required,max=64"`
	IsFeatured *bool  `json:"isFeatured" validate:"required"`
}

func (r *featureRequest) normalize() {
	trimAll(&r.PostID)
}

func (a *App) handleSetFeatured(c echo.Context) error {
	var req featureRequest
	if err := bindJSON(c, &req, msgMissingFields); err != nil {
		return err
	}
	post, err := a.Store.SetFeatured(c.Request().Context(), req.PostID, *req.IsFeatured)
	switch {
	case errors.Is(err, ErrFeaturedLimit):
		a.metrics.featuredToggles.WithLabelValues("limit").Inc()
		return badRequest(msgFeaturedLimit)
	case errors.Is(err, ErrNotFound):
		a.metrics.featuredToggles.WithLabelValues("not_found").Inc()
		return notFound(msgInsightNotFound)
	case err != nil:
		a.metrics.featuredToggles.WithLabelValues("error").Inc()
		return internalError(msgFeaturedFailed, err)
	}
	a.Cache.Invalidate()
	a.metrics.featuredToggles.WithLabelValues("changed").Inc()
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "data": post})
}
