package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ccarlsson/todo-app/internal/domain"
	"github.com/ccarlsson/todo-app/internal/usecase"
	"github.com/ccarlsson/todo-app/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthUsecase struct {
	registerFn func(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, input usecase.LoginInput) (*usecase.AuthToken, error)
}

func (f *fakeAuthUsecase) Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error) {
	return f.registerFn(ctx, input)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, input usecase.LoginInput) (*usecase.AuthToken, error) {
	return f.loginFn(ctx, input)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authEngine(uc authUsecaser) *gin.Engine {
	h := NewAuthHandler(uc, discardLogger())
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	return r
}

func postJSON(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_Created(t *testing.T) {
	email, _ := domain.NewEmail("new@example.com")
	uc := &fakeAuthUsecase{
		registerFn: func(_ context.Context, input usecase.RegisterInput) (*domain.User, error) {
			if input.Email != "new@example.com" || input.Password != "s3cret-pass" {
				t.Errorf("unexpected input: %+v", input)
			}
			return &domain.User{ID: "user-1", Email: email, PasswordHash: "x"}, nil
		},
	}

	w := postJSON(t, authEngine(uc), "/auth/register", `{"email":"new@example.com","password":"s3cret-pass"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	var resp registerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "user-1" || resp.Email != "new@example.com" {
		t.Errorf("response = %+v", resp)
	}
}

func TestRegister_ValidationFailure_Returns400WithViolations(t *testing.T) {
	uc := &fakeAuthUsecase{
		registerFn: func(_ context.Context, _ usecase.RegisterInput) (*domain.User, error) {
			return nil, &validation.Error{Violations: []validation.Violation{
				{Field: "email", Message: "is required"},
				{Field: "password", Message: "is required"},
			}}
		},
	}

	w := postJSON(t, authEngine(uc), "/auth/register", `{}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp struct {
		Errors []validation.Violation `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Errors) != 2 {
		t.Errorf("violations = %+v, want 2", resp.Errors)
	}
}

func TestRegister_EmailTaken_Returns409(t *testing.T) {
	uc := &fakeAuthUsecase{
		registerFn: func(_ context.Context, _ usecase.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}

	w := postJSON(t, authEngine(uc), "/auth/register", `{"email":"dup@example.com","password":"pw"}`)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestRegister_MalformedEmail_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		registerFn: func(_ context.Context, _ usecase.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrEmailInvalid
		},
	}

	w := postJSON(t, authEngine(uc), "/auth/register", `{"email":"nope","password":"pw"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_StorageFailure_Returns500(t *testing.T) {
	uc := &fakeAuthUsecase{
		registerFn: func(_ context.Context, _ usecase.RegisterInput) (*domain.User, error) {
			return nil, errors.New("connection refused")
		},
	}

	w := postJSON(t, authEngine(uc), "/auth/register", `{"email":"a@b.com","password":"pw"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Errorf("internal error leaked to client: %s", w.Body.String())
	}
}

func TestLogin_ReturnsToken(t *testing.T) {
	uc := &fakeAuthUsecase{
		loginFn: func(_ context.Context, _ usecase.LoginInput) (*usecase.AuthToken, error) {
			return &usecase.AuthToken{Token: "jwt-token", ExpiresIn: 3600}, nil
		},
	}

	w := postJSON(t, authEngine(uc), "/auth/login", `{"email":"a@b.com","password":"pw"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp loginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != "jwt-token" || resp.ExpiresIn != 3600 {
		t.Errorf("response = %+v", resp)
	}
}

// Whether the account exists or the password is wrong, the answer is the
// same 401 body.
func TestLogin_BadCredentials_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		loginFn: func(_ context.Context, _ usecase.LoginInput) (*usecase.AuthToken, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}

	w := postJSON(t, authEngine(uc), "/auth/login", `{"email":"a@b.com","password":"wrong"}`)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogin_MalformedBody_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		loginFn: func(_ context.Context, _ usecase.LoginInput) (*usecase.AuthToken, error) {
			t.Fatal("usecase should not be called")
			return nil, nil
		},
	}

	w := postJSON(t, authEngine(uc), "/auth/login", `{"email":`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
