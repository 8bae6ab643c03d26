package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/menu"
	"github.com/trezcool/masomo-market/core/notification"
	"github.com/trezcool/masomo-market/core/user"
	menucache "github.com/trezcool/masomo-market/storage/cache"
	inmemdb "github.com/trezcool/masomo-market/storage/database/inmem"
	testutil "github.com/trezcool/masomo-market/tests"
)

type testApp struct {
	conf     *core.Config
	db       *inmemdb.DB
	notifs   notification.Repository
	menuSvc  *menu.Service
	notifSvc *notification.Service
	server   *Server
}

func setup(t *testing.T, configure ...func(*ServerDeps)) *testApp {
	t.Helper()
	conf := testutil.NewConfig()
	db := inmemdb.NewDB()
	notifs := inmemdb.NewNotificationRepository(db)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	menuSvc := menu.NewService(inmemdb.NewMenuRepository(db), menucache.NewMemoryStore("", time.Minute), core.NopLogger{})
	notifSvc := notification.NewService(notifs, inmemdb.NewUserRepository(db), menuSvc, validate, core.NopLogger{})

	deps := ServerDeps{
		Conf:            conf,
		Logger:          core.NopLogger{},
		MenuSvc:         menuSvc,
		NotificationSvc: notifSvc,
		Validate:        validate,
		Translator:      translator,
		DisableReqLogs:  true,
	}
	for _, fn := range configure {
		fn(&deps)
	}
	return &testApp{
		conf:     deps.Conf,
		db:       db,
		notifs:   notifs,
		menuSvc:  menuSvc,
		notifSvc: notifSvc,
		server:   NewServer(deps),
	}
}

func (app *testApp) createUser(t *testing.T, role user.Role, approved bool) user.Identity {
	t.Helper()
	u := app.db.AddUser(inmemdb.User{Name: "User", Role: role, IsApproved: approved})
	return user.Identity{ID: u.ID, Role: u.Role}
}

func (app *testApp) notify(t *testing.T, userID int64, typ notification.Type) notification.Notification {
	t.Helper()
	n, err := app.notifs.CreateNotification(context.Background(), notification.Notification{
		UserID: userID, Type: typ, Title: "Title", CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return n
}

func (app *testApp) token(t *testing.T, identity user.Identity) string {
	t.Helper()
	token, err := GenerateToken(NewClaims(identity, app.conf.AppName, time.Hour), app.conf.SecretKey)
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode(%s) failed: %v", rec.Body.String(), err)
	}
}

func TestHealthCheck(t *testing.T) {
	app := setup(t)

	rec := app.do(http.MethodGet, "/health-check/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "ok", body.Status)
	assert.WithinDuration(t, time.Now(), body.Timestamp, time.Minute)
}

func TestAuthentication(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, user.RoleAdmin, true)

	expired := NewClaims(admin, app.conf.AppName, time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	expiredToken, err := GenerateToken(expired, app.conf.SecretKey)
	require.NoError(t, err)

	foreignToken, err := GenerateToken(NewClaims(admin, app.conf.AppName, time.Hour), "another-secret")
	require.NoError(t, err)

	noSubject, err := GenerateToken(NewClaims(user.Identity{Role: user.RoleAdmin}, app.conf.AppName, time.Hour), app.conf.SecretKey)
	require.NoError(t, err)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode int
	}{
		{name: "menu without token", method: http.MethodGet, path: "/api/sidebar-menu", wantCode: http.StatusUnauthorized},
		{name: "expired token", method: http.MethodGet, path: "/api/sidebar-menu", token: expiredToken, wantCode: http.StatusUnauthorized},
		{name: "foreign signature", method: http.MethodGet, path: "/api/sidebar-menu", token: foreignToken, wantCode: http.StatusUnauthorized},
		{name: "token without user", method: http.MethodGet, path: "/api/sidebar-menu", token: noSubject, wantCode: http.StatusUnauthorized},
		{name: "read-all without token", method: http.MethodPost, path: "/api/notifications/read-all", wantCode: http.StatusUnauthorized},
		{name: "valid token", method: http.MethodGet, path: "/api/sidebar-menu", token: app.token(t, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.token)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestClaims_Identity(t *testing.T) {
	identity := user.Identity{ID: 12, Role: user.RoleInstructor}

	got, err := NewClaims(identity, "test", 0).Identity()
	require.NoError(t, err)
	assert.Equal(t, identity, got)

	got, err = NewClaims(user.Identity{ID: 3, Role: "moderator"}, "test", 0).Identity()
	require.NoError(t, err)
	assert.Equal(t, user.Role("moderator"), got.Role)

	_, err = Claims{}.Identity()
	assert.Error(t, err)
}

func TestServer_signalShutdown(t *testing.T) {
	app := setup(t)

	app.server.signalShutdown()
	app.server.signalShutdown() // never blocks

	select {
	case <-app.server.ShutdownSignal():
	default:
		t.Fatal("no shutdown signal")
	}
}
