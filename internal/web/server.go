package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/hray3182/todolist/internal/auth"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionCookie = "todolist_session"
	csrfCookie    = "_csrf"
	csrfField     = "csrf"
)

// Options configures the HTTP server.
type Options struct {
	Users         UserStore
	Todos         TodoStore
	Tokens        *auth.Tokens
	SecureCookies bool
}

// Server serves the todo web application.
type Server struct {
	echo          *echo.Echo
	app           *App
	tokens        *auth.Tokens
	secureCookies bool
}

func NewServer(opts Options) *Server {
	s := &Server{
		echo:          echo.New(),
		app:           NewApp(opts.Users, opts.Todos),
		tokens:        opts.Tokens,
		secureCookies: opts.SecureCookies,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = newRenderer()
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + csrfField,
		CookieName:     csrfCookie,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   opts.SecureCookies,
		CookieSameSite: http.SameSiteLaxMode,
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.GET("/", s.handle(s.app.Home))
	e.Match([]string{http.MethodGet, http.MethodPost}, "/signup", s.handle(s.app.Signup))
	e.Match([]string{http.MethodGet, http.MethodPost}, "/login", s.handle(s.app.Login))
	e.POST("/logout", s.handle(s.app.Logout))

	e.GET("/current", s.handle(s.app.CurrentTodos))
	e.GET("/completed", s.handle(s.app.CompletedTodos))
	e.Match([]string{http.MethodGet, http.MethodPost}, "/create", s.handle(s.app.CreateTodo))
	e.Match([]string{http.MethodGet, http.MethodPost}, "/todo/:id", s.handle(s.app.TodoDetail))
	e.POST("/todo/:id/complete", s.handle(s.app.CompleteTodo))
	e.POST("/todo/:id/delete", s.handle(s.app.DeleteTodo))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// handle adapts an action to echo: it builds the Request, runs the action,
// writes any session change as a cookie and then the result.
func (s *Server) handle(action Action) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := s.newRequest(c)
		if err != nil {
			return err
		}
		result := action(c.Request().Context(), req)
		if err := s.writeSession(c, req.Session); err != nil {
			return err
		}
		return s.writeResult(c, req, result)
	}
}

func (s *Server) newRequest(c echo.Context) (*Request, error) {
	r := c.Request()
	if err := r.ParseForm(); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form input").SetInternal(err)
	}
	return &Request{
		Method:  r.Method,
		Path:    r.URL.RequestURI(),
		Query:   c.QueryParams(),
		Form:    r.PostForm,
		TodoID:  c.Param("id"),
		Session: auth.NewSession(s.identity(c)),
	}, nil
}

// identity reads the session cookie. A bad or expired token is treated as an
// anonymous request and the cookie is dropped.
func (s *Server) identity(c echo.Context) *auth.Identity {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	identity, err := s.tokens.Parse(cookie.Value)
	if err != nil {
		s.clearSessionCookie(c)
		return nil
	}
	return identity
}

func (s *Server) writeSession(c echo.Context, session *auth.Session) error {
	switch {
	case session.Established():
		token, expires, err := s.tokens.Issue(*session.Identity())
		if err != nil {
			return err
		}
		c.SetCookie(&http.Cookie{
			Name:     sessionCookie,
			Value:    token,
			Path:     "/",
			Expires:  expires,
			MaxAge:   int(s.tokens.TTL() / time.Second),
			HttpOnly: true,
			Secure:   s.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	case session.Ended():
		s.clearSessionCookie(c)
	}
	return nil
}

func (s *Server) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) writeResult(c echo.Context, req *Request, result Result) error {
	switch res := result.(type) {
	case Rendered:
		page := res.Page
		page.User = req.Session.Identity()
		page.CSRF = csrfToken(c)
		return c.Render(http.StatusOK, res.View, page)
	case Redirected:
		return c.Redirect(http.StatusSeeOther, res.Target)
	case NotFound:
		return echo.ErrNotFound
	case Failed:
		if errors.Is(res.Err, ErrMethodNotAllowed) {
			return echo.ErrMethodNotAllowed
		}
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(res.Err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
}

// handleError renders every error response, including echo's own 404/405 and
// CSRF rejections, with the error template.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
	}
	if code >= http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	page := Page{
		User:       s.identity(c),
		CSRF:       csrfToken(c),
		Status:     code,
		StatusText: http.StatusText(code),
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.Render(code, "error", page)
	}
	if err != nil {
		log.Printf("Failed to render error page: %v", err)
	}
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
