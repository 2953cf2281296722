package server

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gerosd/book-exchange/internal/config"
	"github.com/gerosd/book-exchange/internal/domain"
	apperrors "github.com/gerosd/book-exchange/internal/errors"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
)

// mockAppService implements domain.AppService with pluggable function fields.
type mockAppService struct {
	registerFn             func(ctx context.Context, input domain.RegisterInput) (*domain.User, error)
	authenticateFn         func(ctx context.Context, identifier, password string) (*domain.User, error)
	getUserByIDFn          func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	createApplicationFn    func(ctx context.Context, ownerID uuid.UUID, input domain.ApplicationInput) (*domain.Application, error)
	listUserApplicationsFn func(ctx context.Context, ownerID uuid.UUID) ([]domain.Application, error)
	listAllApplicationsFn  func(ctx context.Context, callerID uuid.UUID) ([]domain.ApplicationWithOwner, error)
	setApplicationStatusFn func(ctx context.Context, callerID, applicationID uuid.UUID, status, adminComment string) error
	deleteApplicationFn    func(ctx context.Context, callerID, applicationID uuid.UUID) error
}

func (m *mockAppService) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, error) {
	return m.registerFn(ctx, input)
}

func (m *mockAppService) Authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	return m.authenticateFn(ctx, identifier, password)
}

func (m *mockAppService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return m.getUserByIDFn(ctx, userID)
}

func (m *mockAppService) CreateApplication(ctx context.Context, ownerID uuid.UUID, input domain.ApplicationInput) (*domain.Application, error) {
	return m.createApplicationFn(ctx, ownerID, input)
}

func (m *mockAppService) ListUserApplications(ctx context.Context, ownerID uuid.UUID) ([]domain.Application, error) {
	return m.listUserApplicationsFn(ctx, ownerID)
}

func (m *mockAppService) ListAllApplications(ctx context.Context, callerID uuid.UUID) ([]domain.ApplicationWithOwner, error) {
	return m.listAllApplicationsFn(ctx, callerID)
}

func (m *mockAppService) SetApplicationStatus(ctx context.Context, callerID, applicationID uuid.UUID, status, adminComment string) error {
	return m.setApplicationStatusFn(ctx, callerID, applicationID, status, adminComment)
}

func (m *mockAppService) DeleteApplication(ctx context.Context, callerID, applicationID uuid.UUID) error {
	return m.deleteApplicationFn(ctx, callerID, applicationID)
}

// stubHealthChecker fakes the database readiness check.
type stubHealthChecker struct {
	err error
}

func (s *stubHealthChecker) HealthCheck(_ context.Context) error {
	return s.err
}

// newTestServer builds a Server with inline templates and a pass-through CSRF
// middleware so handler and gate behavior can be tested without form tokens.
func newTestServer(t *testing.T, appSvc domain.AppService) *Server {
	t.Helper()

	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	store := sessions.NewCookieStore([]byte("test-session-secret-at-least-32-chars!"))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	clock := clockwork.NewFakeClock()

	srv := &Server{
		echo:         e,
		config:       &config.Config{AppEnv: "test", Port: "8080"},
		app:          appSvc,
		sessionStore: store,
		csrfMiddleware: func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		},
		db:                &stubHealthChecker{},
		clock:             clock,
		startTime:         clock.Now(),
		loginTemplate:     template.Must(template.New("login").Parse(`login{{if .Registered}} registered{{end}}{{if .Error}} error={{.Error}}{{end}}`)),
		registerTemplate:  template.Must(template.New("register").Parse(`register{{if .Error}} error={{.Error}}{{end}}`)),
		dashboardTemplate: template.Must(template.New("dashboard").Parse(`dashboard {{.FullName}} apps={{len .Applications}}{{if .Created}} created{{end}}`)),
		createTemplate:    template.Must(template.New("create").Parse(`create{{if .Error}} error={{.Error}}{{end}}`)),
		adminTemplate:     template.Must(template.New("admin").Parse(`admin pending={{len .Pending}} reviewed={{len .Reviewed}}`)),
	}

	srv.registerRoutes()
	return srv
}

func testUser(isAdmin bool) *domain.User {
	return &domain.User{
		ID:       uuid.New(),
		Login:    "readerone",
		FullName: "Иван Иванов",
		Phone:    "+7(916)-123-45-67",
		Email:    "ivan@example.com",
		IsAdmin:  isAdmin,
	}
}

// sessionCookie issues a signed session cookie for the given user, the same
// way a successful login would.
func sessionCookie(t *testing.T, srv *Server, user *domain.User) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	session, err := srv.sessionStore.Get(req, sessionName)
	require.NoError(t, err)

	session.Values[sessionKeyID] = user.ID.String()
	session.Values[sessionKeyLogin] = user.Login
	session.Values[sessionKeyFullName] = user.FullName
	session.Values[sessionKeyIsAdmin] = user.IsAdmin
	require.NoError(t, session.Save(req, rec))

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionName {
			return ck
		}
	}
	t.Fatal("session cookie was not issued")
	return nil
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

// deletedSessionCookie reports whether the response instructs the browser to
// drop the session cookie.
func deletedSessionCookie(rec *httptest.ResponseRecorder) bool {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionName && ck.MaxAge < 0 {
			return true
		}
	}
	return false
}
