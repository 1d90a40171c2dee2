package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"jobportal/internal/app"
	"jobportal/internal/common"
	"jobportal/internal/domain/notification"
	"jobportal/internal/domain/user"
	"jobportal/internal/http/middleware"
	"jobportal/internal/http/response"
	"jobportal/internal/security"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = response.ErrorHandler(quietLogger())
	return e
}

// as injects an authenticated caller the way AuthMiddleware does.
func as(id common.UUID, role user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.ContextUserIDKey, id)
			c.Set(middleware.ContextRoleKey, role)
			return next(c)
		}
	}
}

func serve(t *testing.T, e *echo.Echo, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
	}
	return rec.Code, env
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[common.UUID]user.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[common.UUID]user.User)}
}

func (r *memoryUsers) Create(_ context.Context, u user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = common.NewUUID()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = u
	return &u, nil
}

func (r *memoryUsers) GetByID(_ context.Context, id common.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	return &u, nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "user not found", nil)
}

type memoryNotifications struct {
	mu    sync.Mutex
	items []notification.Notification
}

func (r *memoryNotifications) Create(_ context.Context, n notification.Notification) (*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = common.NewUUID()
	r.items = append(r.items, n)
	return &n, nil
}

func (r *memoryNotifications) ListByUser(_ context.Context, userID common.UUID, unreadOnly bool, limit, offset int) ([]notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notification.Notification
	for _, n := range r.items {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memoryNotifications) MarkRead(_ context.Context, userID, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].Read = true
			return nil
		}
	}
	return common.NewError(common.CodeNotFound, "notification not found", nil)
}

func (r *memoryNotifications) MarkAllRead(_ context.Context, userID common.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].Read {
			r.items[i].Read = true
			updated++
		}
	}
	return updated, nil
}

func (r *memoryNotifications) CountUnread(_ context.Context, userID common.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func TestAuthRegisterLoginAndMe(t *testing.T) {
	users := newMemoryUsers()
	auth := app.NewAuthService(users, security.NewJWTProvider("secret"), time.Hour, quietLogger())
	h := NewAuthHandler(auth)
	e := newEcho()
	e.POST("/register", h.Register)
	e.POST("/login", h.Login)

	code, env := serve(t, e, http.MethodPost, "/register", `{"email":"ana@example.com","password":"s3cret-pass","name":"Ana","role":"jobseeker"}`)
	if code != http.StatusCreated || !env.Success {
		t.Fatalf("register: %d %+v", code, env)
	}
	var registered app.AuthResult
	if err := json.Unmarshal(env.Data, &registered); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	if registered.AccessToken == "" || registered.User == nil || registered.User.Role != user.RoleJobSeeker {
		t.Fatalf("unexpected registration result: %+v", registered)
	}
	if strings.Contains(string(env.Data), "password") {
		t.Fatalf("password hash leaked: %s", env.Data)
	}

	code, _ = serve(t, e, http.MethodPost, "/login", `{"email":"ana@example.com","password":"wrong-pass"}`)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a wrong password, got %d", code)
	}
	code, env = serve(t, e, http.MethodPost, "/login", `{"email":"ana@example.com","password":"s3cret-pass"}`)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("login: %d %+v", code, env)
	}

	e.GET("/me", h.Me, as(registered.User.ID, user.RoleJobSeeker))
	code, env = serve(t, e, http.MethodGet, "/me", "")
	if code != http.StatusOK || !strings.Contains(string(env.Data), "ana@example.com") {
		t.Fatalf("me: %d %s", code, env.Data)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := NewAuthHandler(nil)
	e := newEcho()
	e.POST("/register", h.Register)

	code, env := serve(t, e, http.MethodPost, "/register", `{"email":"nope","password":"short","role":"admin"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	for _, field := range []string{"email", "password", "name", "role"} {
		if env.Errors[field] == "" {
			t.Errorf("expected an error for %s, got %+v", field, env.Errors)
		}
	}
}

func TestMalformedBody(t *testing.T) {
	h := NewAuthHandler(nil)
	e := newEcho()
	e.POST("/login", h.Login)

	code, env := serve(t, e, http.MethodPost, "/login", `{"email":`)
	if code != http.StatusBadRequest || env.Message != "invalid request body" {
		t.Fatalf("unexpected response %d %+v", code, env)
	}
}

func TestApplyValidatesJobID(t *testing.T) {
	h := NewApplicationHandler(nil, nil)
	e := newEcho()
	e.POST("/applications", h.Apply, as(common.NewUUID(), user.RoleJobSeeker))

	code, env := serve(t, e, http.MethodPost, "/applications", `{"job_id":"not-a-uuid","resume_url":"nope"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if env.Errors["job_id"] == "" || env.Errors["resume_url"] == "" {
		t.Fatalf("unexpected field errors %+v", env.Errors)
	}
}

func TestApplyRateLimited(t *testing.T) {
	h := NewApplicationHandler(nil, denyAll{})
	e := newEcho()
	e.POST("/applications", h.Apply, as(common.NewUUID(), user.RoleJobSeeker))

	code, env := serve(t, e, http.MethodPost, "/applications", `{"job_id":"`+common.NewUUID().String()+`"}`)
	if code != http.StatusTooManyRequests || env.Success {
		t.Fatalf("expected 429, got %d %+v", code, env)
	}
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string, int, time.Duration) bool { return false }

func TestBannerScheduleValidation(t *testing.T) {
	h := NewCMSHandler(nil)
	e := newEcho()
	e.POST("/banners", h.CreateBanner)

	body := `{"title":"Spring hiring","placement":"home","schedule":{"days_of_week":[1,7],"start_time":"25:00","end_time":"18:00"}}`
	code, env := serve(t, e, http.MethodPost, "/banners", body)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if env.Errors["schedule.days_of_week[1]"] == "" || env.Errors["schedule.start_time"] == "" {
		t.Fatalf("unexpected field errors %+v", env.Errors)
	}
	if _, ok := env.Errors["schedule.end_time"]; ok {
		t.Fatalf("18:00 is a valid time: %+v", env.Errors)
	}
}

func TestSubscriptionCheckRejectsUnknownAction(t *testing.T) {
	h := NewSubscriptionHandler(nil)
	e := newEcho()
	e.GET("/check", h.Check, as(common.NewUUID(), user.RoleRecruiter))

	code, env := serve(t, e, http.MethodGet, "/check?action=delete_everything", "")
	if code != http.StatusBadRequest || env.Errors["action"] == "" {
		t.Fatalf("unexpected response %d %+v", code, env)
	}
}

func TestNotifications(t *testing.T) {
	repo := &memoryNotifications{}
	service := app.NewNotificationService(repo, quietLogger())
	me := common.NewUUID()
	other := common.NewUUID()
	ctx := context.Background()
	service.Notify(ctx, notification.Notification{UserID: me, Type: notification.TypeApplicationStatus, Title: "Shortlisted"})
	service.Notify(ctx, notification.Notification{UserID: me, Type: notification.TypeJobClosed, Title: "Closed"})
	service.Notify(ctx, notification.Notification{UserID: other, Type: notification.TypeSubscription, Title: "Renewed"})

	h := NewNotificationHandler(service)
	e := newEcho()
	g := e.Group("", as(me, user.RoleJobSeeker))
	g.GET("/notifications", h.List)
	g.GET("/notifications/unread-count", h.UnreadCount)
	g.PATCH("/notifications/read-all", h.MarkAllRead)
	g.PATCH("/notifications/:id/read", h.MarkRead)

	code, env := serve(t, e, http.MethodGet, "/notifications/unread-count", "")
	if code != http.StatusOK || string(env.Data) != `{"count":2}` {
		t.Fatalf("unread count: %d %s", code, env.Data)
	}

	code, _ = serve(t, e, http.MethodPatch, "/notifications/"+repo.items[2].ID.String()+"/read", "")
	if code != http.StatusNotFound {
		t.Fatalf("marking another user's notification should 404, got %d", code)
	}
	code, _ = serve(t, e, http.MethodPatch, "/notifications/"+repo.items[0].ID.String()+"/read", "")
	if code != http.StatusOK {
		t.Fatalf("mark read: %d", code)
	}

	code, env = serve(t, e, http.MethodGet, "/notifications?unread=true", "")
	var unread []notification.Notification
	if err := json.Unmarshal(env.Data, &unread); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if code != http.StatusOK || len(unread) != 1 || unread[0].Title != "Closed" {
		t.Fatalf("unexpected unread list %d %+v", code, unread)
	}

	code, env = serve(t, e, http.MethodPatch, "/notifications/read-all", "")
	if code != http.StatusOK || string(env.Data) != `{"updated":1}` {
		t.Fatalf("read all: %d %s", code, env.Data)
	}

	code, _ = serve(t, e, http.MethodGet, "/notifications?limit=-1", "")
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a negative limit, got %d", code)
	}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := newEcho()
	e.GET("/ok", NewHealthHandler(map[string]Pinger{"postgres": fakePinger{}}).Health)
	e.GET("/down", NewHealthHandler(map[string]Pinger{"postgres": fakePinger{err: context.DeadlineExceeded}}).Health)

	if code, env := serve(t, e, http.MethodGet, "/ok", ""); code != http.StatusOK || !env.Success {
		t.Fatalf("expected healthy, got %d %+v", code, env)
	}
	code, env := serve(t, e, http.MethodGet, "/down", "")
	if code != http.StatusServiceUnavailable || !strings.Contains(string(env.Data), `"postgres":"down"`) {
		t.Fatalf("expected degraded, got %d %s", code, env.Data)
	}
}
