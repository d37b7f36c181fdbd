package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/obutuz/Miley/internal/mail"
	"github.com/obutuz/Miley/internal/middleware"
	"github.com/obutuz/Miley/internal/session"
	"github.com/obutuz/Miley/internal/templates"
	"github.com/obutuz/Miley/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret   = "test-secret-key-at-least-32-chars-long"
	testLoginURL = "/account/login/"
)

// fakeMailer records messages and fails when err is set.
type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// testApp is a gin engine wired with every handler of this package.
type testApp struct {
	t      *testing.T
	db     *gorm.DB
	rdb    *redis.Client
	mr     *miniredis.Miniredis
	mailer *fakeMailer
	router *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	sessions := session.NewManager(session.NewStore(rdb, time.Hour), testSecret, false)
	mailer := &fakeMailer{}

	tmpl, err := templates.Load()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(sessions.Middleware(), middleware.CurrentUser(gdb))
	loginRequired := middleware.LoginRequired(testLoginURL)

	r.Any("/account/signup/", UserSignupHandler(gdb, rdb, testLoginURL))
	r.Any("/account/login/", UserLoginHandler(gdb, sessions))
	r.Any("/account/logout/", UserLogoutHandler(sessions, testLoginURL))
	r.GET("/account/", loginRequired, HomeFeedHandler(gdb))
	r.GET("/account/settings/", loginRequired, AccountSettingsHandler())
	r.GET("/users/json/", UserListJSONHandler(gdb, rdb, "/media/"))
	r.POST("/users/follow/", loginRequired, UserFollowHandler(gdb, rdb))
	r.GET("/users/", loginRequired, UserListHandler(gdb))
	r.GET("/users/:username/", loginRequired, UserDetailHandler(gdb))

	r.GET("/blog/", PostListHandler(gdb))
	r.Any("/blog/share/:id/", PostShareHandler(gdb, mailer, "admin@example.com", "http://example.com/"))
	r.GET("/blog/:year/:month/:day/:slug/", PostDetailHandler(gdb))

	r.GET("/shop/", ProductListHandler(gdb))
	r.GET("/shop/category/:slug/", ProductListHandler(gdb))
	r.GET("/shop/product/:id/:slug/", ProductDetailHandler(gdb))
	r.GET("/shop/cart/", CartDetailHandler(gdb))
	r.POST("/shop/cart/add/:id/", CartAddHandler(gdb))
	r.POST("/shop/cart/remove/:id/", CartRemoveHandler(gdb))

	admin := r.Group("/admin", middleware.SuperuserOnly())
	admin.GET("/users", ListUsersHandler(gdb, rdb))
	admin.GET("/activities", ListActivitiesHandler(gdb, rdb))
	admin.POST("/posts", CreatePostHandler(gdb))
	admin.POST("/categories", CreateCategoryHandler(gdb))
	admin.POST("/products", CreateProductHandler(gdb))
	admin.POST("/videos", CreateVideoHandler(gdb))

	return &testApp{t: t, db: gdb, rdb: rdb, mr: mr, mailer: mailer, router: r}
}

// client keeps the session cookie between requests like a browser.
type client struct {
	app    *testApp
	cookie *http.Cookie
}

func (a *testApp) client() *client {
	return &client{app: a}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	w := httptest.NewRecorder()
	cl.app.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == session.CookieName {
			cl.cookie = ck
		}
	}
	return w
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cl *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func (cl *client) postJSON(path string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	switch v := body.(type) {
	case string:
		r = strings.NewReader(v)
	default:
		b, err := json.Marshal(v)
		require.NoError(cl.app.t, err)
		r = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(http.MethodPost, path, r)
	req.Header.Set("Content-Type", "application/json")
	return cl.do(req)
}

// login authenticates through the login form and fails the test otherwise.
func (cl *client) login(username, password string) {
	cl.app.t.Helper()
	w := cl.postForm("/account/login/", url.Values{"username": {username}, "password": {password}})
	require.Equal(cl.app.t, http.StatusOK, w.Code, w.Body.String())
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
