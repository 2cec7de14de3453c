package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"leisuretimez/config"
	"leisuretimez/internal/auth"
	"leisuretimez/internal/database"
	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/ws"
	"leisuretimez/pkg/cache"
	"leisuretimez/pkg/mailer"
	"leisuretimez/pkg/payment"
	"leisuretimez/pkg/pdfshift"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	cfg    *config.Config
	db     *gorm.DB
	engine *gin.Engine
	hub    *ws.Hub
	mail   *mailer.Recorder
}

func newServer(t *testing.T, tweak func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{}
	cfg.Server.SiteURL = "http://api.test"
	cfg.Server.FrontendURL = "http://app.test"
	cfg.Server.MediaRoot = t.TempDir()
	cfg.JWT = config.JWTConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessExpiry:  time.Hour,
		RefreshExpiry: time.Hour,
		Issuer:        "leisuretimez",
	}
	cfg.Stripe.Currency = "usd"
	cfg.Lockout.MaxAttempts = 5
	cfg.Lockout.Window = time.Minute
	cfg.Throttle.AnonPerMinute = 1000
	cfg.Throttle.UserPerMinute = 1000
	if tweak != nil {
		tweak(cfg)
	}

	s := &testServer{cfg: cfg, db: db, hub: ws.NewHub(), mail: &mailer.Recorder{}}
	s.engine = Setup(cfg, db, Deps{
		Counter: cache.NewMemoryCounter(),
		Gateway: payment.NewStubGateway(),
		Mailer:  s.mail,
		PDF:     &pdfshift.Static{PDF: []byte("%PDF-1.4")},
		Hub:     s.hub,
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) token(t *testing.T, u *models.User) string {
	t.Helper()
	role := auth.RoleCustomer
	if u.IsStaff {
		role = auth.RoleStaff
	}
	tok, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) user(t *testing.T, email string, staff bool) *models.User {
	t.Helper()
	u := &models.User{Email: email, Firstname: "Ada", Lastname: "Obi", IsActive: true, IsStaff: staff, Status: domain.StatusActive}
	require.NoError(t, s.db.Create(u).Error)
	return u
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newServer(t, nil)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestRegisterActivateLogin(t *testing.T) {
	s := newServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstname": "Ada", "lastname": "Obi", "email": "ada@example.com", "password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstname": "Ada", "lastname": "Obi", "email": "ada@example.com", "password": "supersecret",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ada@example.com", "password": "supersecret"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var u models.User
	require.NoError(t, s.db.Where("email = ?", "ada@example.com").First(&u).Error)
	tok, err := auth.GenerateActionToken(&s.cfg.JWT, auth.PurposeActivate, u.ID, "", auth.ActivationExpiry)
	require.NoError(t, err)
	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/activate/%d/%s", u.ID, tok), "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://app.test/login?activated=true", w.Header().Get("Location"))

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ada@example.com", "password": "supersecret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "0.00", body["wallet"])

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidatesBody(t *testing.T) {
	s := newServer(t, nil)
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminLoginRequiresStaff(t *testing.T) {
	s := newServer(t, nil)
	require.NoError(t, database.SeedAdmin(s.db, "root@example.com", "rootpassword"))

	w := s.do(t, http.MethodPost, "/api/v1/admin/login", "", map[string]string{"email": "root@example.com", "password": "rootpassword"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	staffToken := decode(t, w)["token"].(string)

	w = s.do(t, http.MethodGet, "/api/v1/admin/dashboard", staffToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	customer := s.user(t, "ada@example.com", false)
	w = s.do(t, http.MethodGet, "/api/v1/admin/dashboard", s.token(t, customer), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newServer(t, nil)
	for _, path := range []string{"/api/v1/wallets", "/api/v1/profile", "/api/v1/bookings", "/api/v1/notifications"} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := s.do(t, http.MethodGet, "/api/v1/wallets", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSavePackageReportsAlreadySaved(t *testing.T) {
	s := newServer(t, nil)
	u := s.user(t, "ada@example.com", false)
	require.NoError(t, s.db.Create(&models.Package{
		PackageID: "PKG-1", Name: "Zanzibar Escape", PriceOption: domain.PriceOptionFixed,
		FixedPriceCents: 1000, Status: domain.StatusActive,
	}).Error)
	tok := s.token(t, u)

	w := s.do(t, http.MethodPost, "/api/v1/packages/save/PKG-1", tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/packages/save/PKG-1", tok, nil)
	assert.Equal(t, http.StatusAlreadyReported, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/packages/save/NOPE", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/saved-packages", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var saved []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Len(t, saved, 1)
}

func TestBlogWritesAreStaffOnly(t *testing.T) {
	s := newServer(t, nil)
	customer := s.user(t, "ada@example.com", false)
	staff := s.user(t, "staff@example.com", true)
	post := map[string]string{"title": "Ten Beaches", "status": domain.PostPublished}

	w := s.do(t, http.MethodPost, "/api/v1/blog", s.token(t, customer), post)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/blog", s.token(t, staff), post)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "ten-beaches", decode(t, w)["slug"])

	w = s.do(t, http.MethodGet, "/api/v1/blog/ten-beaches", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookRejectsBadPayload(t *testing.T) {
	s := newServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/paynotifier", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestThrottle(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) { cfg.Throttle.AnonPerMinute = 2 })
	limited := 0
	for i := 0; i < 5; i++ {
		if s.do(t, http.MethodGet, "/health", "", nil).Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Positive(t, limited)
}

func TestNotificationSocket(t *testing.T) {
	s := newServer(t, nil)
	u := s.user(t, "ada@example.com", false)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications"
	_, resp, err := websocket.DefaultDialer.Dial(base+"?token=bad", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+"?token="+s.token(t, u), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	s.hub.BroadcastToUser(u.ID, map[string]string{"title": "Booking Confirmed"})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]string
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "Booking Confirmed", msg["title"])
}
