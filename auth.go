package soopify

import (
	"crypto/subtle"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	sessionName   = "soopify_admin_auth"
	sessionKey    = "auth"
	sessionMarker = "authenticated"
	sessionMaxAge = 7 * 24 * 60 * 60
)

// AdminCredentials is the single configured admin pair.
type AdminCredentials struct {
	Email    string
	Password string
}

// Verify reports whether email and password both equal the configured pair.
// An unconfigured pair never matches.
func (ac AdminCredentials) Verify(email, password string) bool {
	if ac.Email == "" || ac.Password == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(ac.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(ac.Password)) == 1
	return emailOK && passOK
}

func (a *App) credentials() AdminCredentials {
	return AdminCredentials{Email: a.Config.AdminEmail, Password: a.Config.AdminPassword}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	// Also bounds the signed timestamp, so stale cookies fail server-side.
	store.MaxAge(sessionMaxAge)
	return store
}

// IsAdmin reports whether the request carries a valid admin session cookie.
func IsAdmin(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil || sess == nil {
		return false
	}
	marker, ok := sess.Values[sessionKey].(string)
	return ok && marker == sessionMarker
}

// IssueSession writes a fresh admin session cookie.
func IssueSession(c echo.Context) error {
	// A cookie that fails to decode still yields a new, empty session.
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return err
	}
	sess.Values[sessionKey] = sessionMarker
	return sess.Save(c.Request(), c.Response())
}

// RevokeSession deletes the admin session cookie.
func RevokeSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return err
	}
	delete(sess.Values, sessionKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// requireAdmin guards JSON endpoints.
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			return unauthorized(msgUnauthorized)
		}
		return next(c)
	}
}

// requireAdminPage guards rendered admin pages.
func requireAdminPage(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			return c.Redirect(http.StatusSeeOther, "/admin/login/")
		}
		return next(c)
	}
}

// loginRequest is compared byte for byte; no trimming.
type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (a *App) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := bindJSON(c, &req, msgMissingLogin); err != nil {
		a.metrics.loginAttempts.WithLabelValues("invalid").Inc()
		return err
	}
	if !a.credentials().Verify(req.Email, req.Password) {
		a.metrics.loginAttempts.WithLabelValues("rejected").Inc()
		return unauthorized(msgInvalidCredentials)
	}
	if err := IssueSession(c); err != nil {
		return internalError(msgLoginFailed, err)
	}
	a.metrics.loginAttempts.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func handleLogout(c echo.Context) error {
	if err := RevokeSession(c); err != nil {
		return internalError(msgLogoutFailed, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func handleAuthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "authenticated": IsAdmin(c)})
}
