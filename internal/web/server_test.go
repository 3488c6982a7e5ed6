package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hray3182/todolist/internal/auth"
)

const testCSRF = "test-csrf-token"

func newTestServer() (*Server, *memStore) {
	store := newMemStore()
	srv := NewServer(Options{
		Users:  memUsers{store},
		Todos:  memTodos{store},
		Tokens: auth.NewTokens("test-secret", time.Hour),
	})
	return srv, store
}

func doGet(srv *Server, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// doPost submits form the way a browser would after loading a page: the CSRF
// cookie and the hidden csrf field carry the same token.
func doPost(srv *Server, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set(csrfField, testCSRF)
	return doPostRaw(srv, path, form, append(cookies, &http.Cookie{Name: csrfCookie, Value: testCSRF})...)
}

func doPostRaw(srv *Server, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func signUpHTTP(t *testing.T, srv *Server, username string) *http.Cookie {
	t.Helper()
	rec := doPost(srv, "/signup", url.Values{
		"username":  {username},
		"password1": {"pw-" + username},
		"password2": {"pw-" + username},
	})
	expectRedirect(t, rec, "/current")
	cookie := findCookie(rec, sessionCookie)
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("expected session cookie after signup")
	}
	if !cookie.HttpOnly {
		t.Fatalf("expected session cookie to be HttpOnly")
	}
	return cookie
}

func TestSignupPageIncludesCSRFToken(t *testing.T) {
	srv, _ := newTestServer()
	rec := doGet(srv, "/signup")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	cookie := findCookie(rec, csrfCookie)
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("expected csrf cookie")
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="csrf" value="`+cookie.Value+`"`) {
		t.Fatalf("expected csrf token in form, got %s", body)
	}
	if !strings.Contains(body, `name="password2"`) {
		t.Fatalf("expected signup form, got %s", body)
	}
}

func TestPostWithoutCSRFIsForbidden(t *testing.T) {
	srv, store := newTestServer()
	rec := doPostRaw(srv, "/signup", url.Values{
		"username":  {"alice"},
		"password1": {"pw"},
		"password2": {"pw"},
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if len(store.users) != 0 {
		t.Fatalf("expected no user to be created")
	}
}

func TestTodoFlowOverHTTP(t *testing.T) {
	srv, _ := newTestServer()
	alice := signUpHTTP(t, srv, "alice")

	expectRedirect(t, doPost(srv, "/create", url.Values{"title": {"Buy milk"}, "memo": {""}}, alice), "/current")

	rec := doGet(srv, "/current", alice)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Buy milk") {
		t.Fatalf("expected Buy milk in active list, got %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Logout (alice)") {
		t.Fatalf("expected logged-in header")
	}

	expectRedirect(t, doPost(srv, "/todo/1/complete", nil, alice), "/current")

	rec = doGet(srv, "/current", alice)
	if strings.Contains(rec.Body.String(), "Buy milk") {
		t.Fatalf("expected Buy milk to leave the active list")
	}
	rec = doGet(srv, "/completed", alice)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Buy milk") {
		t.Fatalf("expected Buy milk in completed list, got %d %s", rec.Code, rec.Body.String())
	}

	bob := signUpHTTP(t, srv, "bob")
	if rec := doGet(srv, "/todo/1", bob); rec.Code != http.StatusNotFound {
		t.Fatalf("expected bob GET /todo/1 to be 404, got %d", rec.Code)
	}
	for _, path := range []string{"/todo/1", "/todo/1/complete", "/todo/1/delete"} {
		if rec := doPost(srv, path, url.Values{"title": {"stolen"}}, bob); rec.Code != http.StatusNotFound {
			t.Fatalf("expected bob POST %s to be 404, got %d", path, rec.Code)
		}
	}
	if rec := doGet(srv, "/completed", bob); strings.Contains(rec.Body.String(), "Buy milk") {
		t.Fatalf("expected bob's completed list to be empty")
	}

	expectRedirect(t, doPost(srv, "/todo/1/delete", nil, alice), "/current")
	if rec := doGet(srv, "/todo/1", alice); rec.Code != http.StatusNotFound {
		t.Fatalf("expected deleted todo to be 404, got %d", rec.Code)
	}
}

func TestCreateBadDataRendersInline(t *testing.T) {
	srv, _ := newTestServer()
	alice := signUpHTTP(t, srv, "alice")

	rec := doPost(srv, "/create", url.Values{"title": {""}, "memo": {"keep me"}}, alice)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, msgBadTodoData) || !strings.Contains(body, "keep me") {
		t.Fatalf("expected inline error with submitted memo, got %s", body)
	}
}

func TestAnonymousRequestsRedirectToLogin(t *testing.T) {
	srv, _ := newTestServer()
	expectRedirect(t, doGet(srv, "/completed"), "/login?next=%2Fcompleted")
	expectRedirect(t, doGet(srv, "/current"), "/login?next=%2Fcurrent")
	expectRedirect(t, doPost(srv, "/logout", nil), "/login")
}

func TestPostOnlyRoutesRejectGet(t *testing.T) {
	srv, _ := newTestServer()
	alice := signUpHTTP(t, srv, "alice")
	for _, path := range []string{"/todo/1/complete", "/todo/1/delete", "/logout"} {
		if rec := doGet(srv, path, alice); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s: expected 405, got %d", path, rec.Code)
		}
	}
}

func TestLoginAndLogoutCookies(t *testing.T) {
	srv, _ := newTestServer()
	signUpHTTP(t, srv, "alice")

	rec := doPost(srv, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), msgLoginFailed) {
		t.Fatalf("expected inline login error, got %d", rec.Code)
	}
	if findCookie(rec, sessionCookie) != nil {
		t.Fatalf("expected no session cookie on failed login")
	}

	rec = doPost(srv, "/login", url.Values{"username": {"ali\x00ce"}, "password": {"pw-alice"}})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), msgLoginFailed) {
		t.Fatalf("expected inline login error for NUL username, got %d", rec.Code)
	}

	rec = doPost(srv, "/login", url.Values{"username": {"alice"}, "password": {"pw-alice"}, "next": {"/completed"}})
	expectRedirect(t, rec, "/completed")
	session := findCookie(rec, sessionCookie)
	if session == nil {
		t.Fatalf("expected session cookie on login")
	}

	rec = doPost(srv, "/logout", nil, session)
	expectRedirect(t, rec, "/")
	cleared := findCookie(rec, sessionCookie)
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Fatalf("expected session cookie to be cleared, got %+v", cleared)
	}
}

func TestInvalidSessionCookieIsAnonymous(t *testing.T) {
	srv, _ := newTestServer()
	rec := doGet(srv, "/current", &http.Cookie{Name: sessionCookie, Value: "not-a-token"})
	expectRedirect(t, rec, "/login?next=%2Fcurrent")
	cleared := findCookie(rec, sessionCookie)
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Fatalf("expected bad session cookie to be cleared, got %+v", cleared)
	}

	forged, _, err := auth.NewTokens("wrong-secret", time.Hour).Issue(auth.Identity{UserID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	expectRedirect(t, doGet(srv, "/current", &http.Cookie{Name: sessionCookie, Value: forged}), "/login?next=%2Fcurrent")
}

func TestHomeAndUnknownRoutes(t *testing.T) {
	srv, _ := newTestServer()
	rec := doGet(srv, "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Sign up") {
		t.Fatalf("expected landing page, got %d", rec.Code)
	}
	rec = doGet(srv, "/does-not-exist")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "404 Not Found") {
		t.Fatalf("expected rendered 404, got %d %s", rec.Code, rec.Body.String())
	}
}
