package http

import (
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"shopfront/internal/domain"
	"shopfront/internal/llm"
	"shopfront/internal/repository"
	"shopfront/internal/service"
	"shopfront/internal/session"
)

// Templates mínimos para los tests: exponen los datos que los asserts leen.
const testTemplateSrc = `
{{define "index.html"}}home {{with .User}}user={{.Email}} {{end}}{{with .Flash}}[{{.Category}}] {{.Message}}{{end}}{{end}}
{{define "signup.html"}}signup {{range .Errors}}{{.Field}}:{{.Message}};{{end}}{{with .Flash}}[{{.Category}}] {{.Message}}{{end}}{{end}}
{{define "login.html"}}login {{with .Flash}}[{{.Category}}] {{.Message}}{{end}}{{end}}
{{define "forgot_password.html"}}forgot {{with .Flash}}[{{.Category}}] {{.Message}}{{end}}{{end}}
{{define "reset_password.html"}}reset {{with .Flash}}[{{.Category}}] {{.Message}}{{end}}{{end}}
{{define "profile.html"}}profile {{with .User}}{{.Email}}{{end}}{{end}}
{{define "cart.html"}}cart {{range .CartItems}}{{.Name}}x{{.Quantity}};{{end}}{{with .Flash}}[{{.Category}}] {{.Message}}{{end}}{{end}}
{{define "checkout.html"}}checkout total={{.Totals.Total}} delivery={{.Totals.DeliveryCharges}} grand={{.Totals.GrandTotal}}{{end}}
{{define "order_confirmation.html"}}confirmed {{with .Totals}}delivery={{.DeliveryCharges}} grand={{.GrandTotal}}{{end}}{{end}}
{{define "chatbot.html"}}chatbot{{end}}
{{define "clothes.html"}}clothes{{end}}
{{define "health.html"}}health{{end}}
{{define "beauty.html"}}beauty{{end}}
{{define "order.html"}}orders{{end}}
{{define "fashion_trends.html"}}fashion{{end}}
{{define "mobiles.html"}}mobiles{{end}}
{{define "new_arrival_toys.html"}}toys{{end}}
{{define "pet_care.html"}}pets{{end}}
{{define "furniture.html"}}furniture{{end}}
`

type mockUserRepo struct {
	nextID       int64
	usersByID    map[int64]domain.User
	usersByEmail map[string]int64
	usersByPhone map[string]int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[int64]domain.User),
		usersByEmail: make(map[string]int64),
		usersByPhone: make(map[string]int64),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	if _, ok := m.usersByEmail[user.Email]; ok {
		return domain.User{}, repository.ErrDuplicateIdentity
	}
	if _, ok := m.usersByPhone[user.Phone]; ok {
		return domain.User{}, repository.ErrDuplicateIdentity
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	m.usersByPhone[user.Phone] = user.ID
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.usersByID[id], nil
}

func (m *mockUserRepo) GetByIdentifier(_ context.Context, identifier string) (domain.User, error) {
	if id, ok := m.usersByEmail[identifier]; ok {
		return m.usersByID[id], nil
	}
	if id, ok := m.usersByPhone[identifier]; ok {
		return m.usersByID[id], nil
	}
	return domain.User{}, pgx.ErrNoRows
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) delete(email string) {
	if id, ok := m.usersByEmail[email]; ok {
		user := m.usersByID[id]
		delete(m.usersByID, id)
		delete(m.usersByEmail, user.Email)
		delete(m.usersByPhone, user.Phone)
	}
}

var errSMTPDown = errors.New("smtp down")

type mockEmailSender struct {
	lastTo   string
	lastCode string
	calls    int
	err      error
}

func (m *mockEmailSender) SendOTP(_ context.Context, toEmail string, code string, _ time.Time) error {
	m.calls++
	m.lastTo = toEmail
	m.lastCode = code
	return m.err
}

type testApp struct {
	handler http.Handler
	repo    *mockUserRepo
	sender  *mockEmailSender
}

func newTestApp(t *testing.T, chat llm.ChatClient) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	sessions := session.NewManager(nil)
	userSvc := service.NewUserService(logger, repo, sender, service.NewMemoryOTPStore(), nil, 10*time.Minute)

	authH := NewAuthHandler(logger, userSvc, sessions)
	cartH := NewCartHandler(logger, sessions)
	chatH := NewChatHandler(logger, sessions, chat)
	pagesH := NewPagesHandler(logger, userSvc, sessions, "")

	r := NewRouter(logger, authH, cartH, chatH, pagesH)
	r.SetHTMLTemplate(template.Must(template.New("").Parse(testTemplateSrc)))

	return &testApp{
		handler: sessions.LoadAndSave(r),
		repo:    repo,
		sender:  sender,
	}
}

// testClient arrastra cookies entre requests, como lo haría un navegador.
type testClient struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T, handler http.Handler) *testClient {
	return &testClient{
		t:       t,
		handler: handler,
		cookies: make(map[string]*http.Cookie),
	}
}

func (c *testClient) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func (c *testClient) get(path string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, path, nil, "")
}

func (c *testClient) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (c *testClient) postJSON(path, payload string) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, path, strings.NewReader(payload), "application/json")
}

func requireRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

func signupForm() url.Values {
	return url.Values{
		"name":             {"Test User"},
		"email":            {"user@example.com"},
		"phone":            {"9876543210"},
		"dob":              {"1990-05-01"},
		"gender":           {"female"},
		"password":         {"supersecret"},
		"confirm_password": {"supersecret"},
	}
}
