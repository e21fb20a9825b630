package soopify

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	dashboardRecentInquiries = 5
	adminInquiryPageLimit    = 20
)

func (a *App) handleAdminLoginPage(c echo.Context) error {
	if IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.AdminLogin(a.meta("관리자 로그인 | "+a.Config.Name, "", "admin", "login")))
}

func (a *App) handleAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	inquiries, err := a.Store.ListInquiries(ctx, 1, dashboardRecentInquiries)
	if err != nil {
		return err
	}
	posts, err := a.Store.ListPosts(ctx, 1, 1)
	if err != nil {
		return err
	}
	featured, err := a.Store.CountFeatured(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(a.meta("관리자 | "+a.Config.Name, "", "admin"), DashboardStats{
		Inquiries:       inquiries.Total,
		Posts:           posts.Total,
		Featured:        featured,
		RecentInquiries: inquiries.Items,
	}))
}

func (a *App) handleAdminInquiries(c echo.Context) error {
	page := positiveInt(c.QueryParam("page"), 1)
	inquiries, err := a.Store.ListInquiries(c.Request().Context(), page, adminInquiryPageLimit)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminInquiries(a.meta("문의 내역 | "+a.Config.Name, "", "admin", "inquiries"), inquiries))
}

func (a *App) handleAdminInsightsPage(c echo.Context) error {
	posts, err := a.Store.ListPublished(c.Request().Context())
	if err != nil {
		return err
	}
	featured := 0
	for _, p := range posts {
		if p.IsFeatured {
			featured++
		}
	}
	return Render(c, a.Views.AdminInsights(a.meta("인사이트 관리 | "+a.Config.Name, "", "admin", "insights"), posts, featured))
}
