package folio

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/folio/views"
)

const sessionName = "folio_session"

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())
	e.Pre(middleware.RemoveTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
	}))

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s) ip=%s rid=%s", v.Method, v.URI, v.Status, v.Latency, v.RemoteIP, v.RequestID)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.BodyLimit("10M"))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/public/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'; connect-src 'self'",
		HSTSMaxAge:            31536000,
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      func(c echo.Context) bool { return !isAPI(c) },
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID},
	}))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:     middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return isAPI(c) || strings.HasPrefix(path, "/public/")
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(cacheControlMiddleware)
}

func isAPI(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/public/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case path == "/sitemap.xml" || path == "/robots.txt" || path == "/favicon.svg":
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case strings.HasPrefix(path, "/api/") || path == "/contact":
			c.Response().Header().Set("Cache-Control", "no-store")
		default:
			c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if code, msg, ok := classify(err); ok {
		if code >= 500 {
			logServerError(c, err)
		}
		_ = c.JSON(code, errorResponse(msg))
		return
	}

	var he *echo.HTTPError
	isHTTP := errors.As(err, &he)
	if isHTTP && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c, "404 - Page Not Found")
		return
	}

	code := http.StatusInternalServerError
	if isHTTP {
		code = he.Code
	}
	if code >= 500 {
		logServerError(c, err)
	}

	if isAPI(c) {
		msg := http.StatusText(code)
		if isHTTP {
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		}
		if code >= 500 {
			msg = a.publicMessage(err)
		}
		_ = c.JSON(code, errorResponse(msg))
		return
	}

	if code >= 500 {
		p := a.page(c, "500 - Server Error", "")
		if !a.Config.IsProduction() {
			p.Message = err.Error()
		}
		_ = RenderStatus(c, code, a.Views.ServerError(p))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func logServerError(c echo.Context, err error) {
	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	c.Logger().Errorf("%s %s: %v rid=%s", c.Request().Method, c.Request().URL.Path, err, rid)
}

// publicMessage is what clients see for an unexpected error.
func (a *App) publicMessage(err error) string {
	if a.Config.IsProduction() {
		return msgGeneric
	}
	return err.Error()
}

func (a *App) renderNotFound(c echo.Context, title string) error {
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c, title, "")))
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

// The contact flash is one message plus an error flag, read once.
const (
	flashKey      = "contact_flash"
	flashErrorKey = "contact_flash_error"
)

func setFlash(c echo.Context, message string, isError bool) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[flashKey] = message
	sess.Values[flashErrorKey] = isError
	return sess.Save(c.Request(), c.Response())
}

// popFlash returns and clears the pending contact flash, if any.
func popFlash(c echo.Context) (message string, isError bool) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return "", false
	}
	message, _ = sess.Values[flashKey].(string)
	if message == "" {
		return "", false
	}
	isError, _ = sess.Values[flashErrorKey].(bool)
	delete(sess.Values, flashKey)
	delete(sess.Values, flashErrorKey)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		c.Logger().Warnf("save session: %v", err)
	}
	return message, isError
}

// flashPage fills the contact form state of p from the request.
func flashPage(c echo.Context, p views.Page) views.Page {
	p.CSRFToken = CsrfToken(c)
	p.Flash, p.FlashError = popFlash(c)
	return p
}
