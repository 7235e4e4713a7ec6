// Package handler defines the HTTP handlers of the API. This file covers the
// login flow: the redirect to the identity provider, the provider callback
// that establishes a session, the current-user lookup and logout. A failed
// callback of any kind (denied consent, provider error, forged state, broken
// upsert) redirects back to the client root without a session; the detail is
// only logged server-side.
package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/job-application-tracker/internal/auth"
	"github.com/iliyamo/job-application-tracker/internal/config"
	"github.com/iliyamo/job-application-tracker/internal/session"
)

// IdentityProvider is the slice of the federation adapter the handlers use.
// *auth.Provider satisfies it; tests substitute a stub.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (auth.Profile, error)
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Provider IdentityProvider
	Login    *auth.LoginService
	Users    auth.UserStore
	Sessions session.Store
}

func NewAuthHandler(cfg config.Config, p IdentityProvider, l *auth.LoginService, u auth.UserStore, s session.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Provider: p, Login: l, Users: u, Sessions: s}
}

func (h *AuthHandler) sessionTTL() time.Duration {
	return time.Duration(h.Cfg.SessionTTLHours) * time.Hour
}

// sessionCookie builds the browser cookie carrying the opaque session token.
// In prod the client runs on a different origin, so the cookie is Secure and
// SameSite=None to survive credentialed cross-origin requests; in dev Lax is
// enough and works without TLS.
func (h *AuthHandler) sessionCookie(token string, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(ttl / time.Second),
		SameSite: http.SameSiteLaxMode,
	}
	if h.Cfg.Env == "prod" {
		ck.Secure = true
		ck.SameSite = http.SameSiteNoneMode
	}
	return ck
}

// StartLogin handles GET /auth/external-login. It mints a signed state token
// and redirects the browser to the provider's consent screen.
func (h *AuthHandler) StartLogin(c echo.Context) error {
	state, err := auth.NewState(h.Cfg.StateSecret)
	if err != nil {
		log.Printf("auth: state mint failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login unavailable"})
	}
	return c.Redirect(http.StatusFound, h.Provider.AuthCodeURL(state))
}

// Callback handles GET /auth/external-login/callback. On success it upserts
// the local user, opens a session and sends the browser back to the client
// root with the session cookie set. On any failure it sends the browser back
// without a cookie; no local state is created or mutated first.
func (h *AuthHandler) Callback(c echo.Context) error {
	fail := func(reason string, err error) error {
		log.Printf("auth: callback rejected (%s): %v", reason, err)
		return c.Redirect(http.StatusFound, h.Cfg.ClientOrigin)
	}

	if errParam := c.QueryParam("error"); errParam != "" {
		return fail("provider error "+errParam, nil)
	}
	code := c.QueryParam("code")
	if code == "" {
		return fail("missing code", nil)
	}
	if err := auth.VerifyState(h.Cfg.StateSecret, c.QueryParam("state")); err != nil {
		return fail("state check", err)
	}

	profile, err := h.Provider.FetchProfile(c.Request().Context(), code)
	if err != nil {
		return fail("profile fetch", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	user, err := h.Login.Upsert(ctx, profile)
	if err != nil {
		return fail("user upsert", err)
	}

	token, err := h.Sessions.Create(ctx, user.ID, h.sessionTTL())
	if err != nil {
		return fail("session create", err)
	}
	c.SetCookie(h.sessionCookie(token, h.sessionTTL()))
	return c.Redirect(http.StatusFound, h.Cfg.ClientOrigin)
}

// GetUser handles GET /api/get-user behind the session gate and returns the
// current user's record.
func (h *AuthHandler) GetUser(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("auth: load user %d failed: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load user"})
	}
	return c.JSON(http.StatusOK, user)
}

// Logout handles GET /api/logout. It destroys the session if one exists,
// expires the cookie and redirects to the client root. Logging out an
// already-anonymous browser succeeds silently.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()
		if err := h.Sessions.Delete(ctx, cookie.Value); err != nil {
			// The cookie is cleared either way; the orphaned record expires on its own.
			log.Printf("auth: session delete failed: %v", err)
		}
	}
	expired := h.sessionCookie("", 0)
	expired.MaxAge = -1
	c.SetCookie(expired)
	return c.Redirect(http.StatusFound, h.Cfg.ClientOrigin)
}
