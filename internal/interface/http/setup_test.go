package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-contactbook/config"
	"github.com/oksasatya/go-contactbook/internal/application"
	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	handlers "github.com/oksasatya/go-contactbook/internal/interface/http"
	"github.com/oksasatya/go-contactbook/internal/interface/middleware"
	"github.com/oksasatya/go-contactbook/internal/mocks"
	"github.com/oksasatya/go-contactbook/internal/router"
	"github.com/oksasatya/go-contactbook/internal/router/modules"
	"github.com/oksasatya/go-contactbook/pkg/helpers"
	"github.com/oksasatya/go-contactbook/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

type testEnv struct {
	engine   *gin.Engine
	jwt      *helpers.JWTManager
	users    *mocks.MockUserRepository
	contacts *mocks.MockContactRepository
	notifier *mocks.MockNotifier
	avatars  *mocks.MockAvatarStore
	index    *mocks.MockContactIndex
}

// newTestEnv mounts the real modules over in-memory stores. Rate limits are
// disabled because no redis client is given.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	jwt, err := helpers.NewJWTManager("test-secret", "HS256", helpers.TokenTTLs{
		Access:  30 * time.Minute,
		Refresh: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	e := &testEnv{
		jwt:      jwt,
		users:    mocks.NewMockUserRepository(),
		contacts: mocks.NewMockContactRepository(),
		notifier: mocks.NewMockNotifier(),
		avatars:  &mocks.MockAvatarStore{},
		index:    &mocks.MockContactIndex{},
	}
	cfg := &config.Config{PublicBaseURL: "http://app.test", CookieDomain: "localhost"}

	authSvc := application.NewAuthService(e.users, jwt, e.notifier, cfg, nil)
	userSvc := application.NewUserService(e.users, e.avatars, nil)
	contactSvc := application.NewContactService(e.contacts, e.index, nil)
	authn := application.NewTokenAuthenticator(jwt, e.users)

	e.engine = gin.New()
	e.engine.Use(middleware.RequestIDMiddleware())
	reg := router.NewRegistry(e.engine)
	reg.AddRoot(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, nil, cfg.CookieDomain, false), nil, 10))
	reg.Add(modules.New(handlers.NewUserHandler(userSvc, nil), authn, nil, nil, 5, 100))
	reg.Add(modules.NewContactModule(handlers.NewContactHandler(contactSvc, nil), authn, nil, nil, 100))
	reg.RegisterAll()
	return e
}

// login stores a user and returns an access token for it.
func (e *testEnv) login(t *testing.T, email string, role entity.Role) (*entity.User, string) {
	t.Helper()
	u := e.users.Put(entity.User{Email: email, PasswordHash: "x", Role: role})
	tok, _, err := e.jwt.IssueAccess(u.ID, u.Email)
	require.NoError(t, err)
	return u, tok
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doCookie(t *testing.T, method, path, name, value string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: name, Value: value})
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return e.do(t, method, path, body, "application/json", token)
}

type envelope struct {
	Status    int             `json:"status"`
	RequestID string          `json:"request_id"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     json.RawMessage `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &out), w.Body.String())
	return out
}

func cookieValue(w *httptest.ResponseRecorder, name string) (string, bool) {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}
