package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"fintrack/internal/domain/user"
	"fintrack/internal/shared/auth"
)

type mockUserRepo struct {
	CreateFunc     func(ctx context.Context, email, passwordHash string, fullName *string) (*user.User, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*user.User, error)
	ListIDsFunc    func(ctx context.Context) ([]uuid.UUID, error)
}

func (m *mockUserRepo) Create(ctx context.Context, email, passwordHash string, fullName *string) (*user.User, error) {
	return m.CreateFunc(ctx, email, passwordHash, fullName)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return m.GetByEmailFunc(ctx, email)
}

func (m *mockUserRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.ListIDsFunc(ctx)
}

func TestHandleRegister(t *testing.T) {
	var storedHash string
	repo := &mockUserRepo{
		CreateFunc: func(ctx context.Context, email, passwordHash string, fullName *string) (*user.User, error) {
			storedHash = passwordHash
			return &user.User{ID: uuid.New(), Email: email, FullName: fullName}, nil
		},
	}
	handler := NewAuthHandler(repo, auth.NewJWT("test-secret"))

	body := `{"email":"alice@example.com","password":"hunter22!","fullName":"Alice"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleRegister(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if storedHash == "hunter22!" {
		t.Error("password must be hashed before storage")
	}

	var resp AuthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Token == "" {
		t.Error("response should carry a token")
	}
	if resp.User == nil || resp.User.Email != "alice@example.com" {
		t.Errorf("response user = %+v", resp.User)
	}

	cookie := findCookie(t, w.Result().Cookies(), "access_token")
	if cookie.Value != resp.Token {
		t.Error("cookie should carry the issued token")
	}
	if !cookie.HttpOnly {
		t.Error("access_token cookie must be HttpOnly")
	}
}

func TestHandleRegister_Validation(t *testing.T) {
	handler := NewAuthHandler(&mockUserRepo{}, auth.NewJWT("test-secret"))

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing email", `{"password":"hunter22!"}`},
		{"bad email", `{"email":"nope","password":"hunter22!"}`},
		{"short password", `{"email":"a@b.com","password":"short"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.HandleRegister(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleRegister_EmailTaken(t *testing.T) {
	handler := NewAuthHandler(&mockUserRepo{
		CreateFunc: func(ctx context.Context, email, passwordHash string, fullName *string) (*user.User, error) {
			return nil, user.ErrEmailTaken
		},
	}, auth.NewJWT("test-secret"))

	body := `{"email":"alice@example.com","password":"hunter22!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleRegister(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestHandleLogin(t *testing.T) {
	hash, err := auth.HashPassword("hunter22!")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	known := &user.User{ID: uuid.New(), Email: "alice@example.com", PasswordHash: hash}

	repo := &mockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			if email == known.Email {
				return known, nil
			}
			return nil, user.ErrNotFound
		},
	}
	handler := NewAuthHandler(repo, auth.NewJWT("test-secret"))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid credentials", `{"email":"alice@example.com","password":"hunter22!"}`, http.StatusOK},
		{"wrong password", `{"email":"alice@example.com","password":"wrong-pass"}`, http.StatusUnauthorized},
		{"unknown email", `{"email":"nobody@example.com","password":"hunter22!"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.HandleLogin(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

// A wrong password and an unknown email must be indistinguishable to the
// caller.
func TestHandleLogin_UniformFailure(t *testing.T) {
	hash, err := auth.HashPassword("hunter22!")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	repo := &mockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			if email == "alice@example.com" {
				return &user.User{ID: uuid.New(), Email: email, PasswordHash: hash}, nil
			}
			return nil, user.ErrNotFound
		},
	}
	handler := NewAuthHandler(repo, auth.NewJWT("test-secret"))

	responses := make([]*httptest.ResponseRecorder, 2)
	for i, body := range []string{
		`{"email":"alice@example.com","password":"wrong-pass"}`,
		`{"email":"nobody@example.com","password":"wrong-pass"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.HandleLogin(w, req)
		responses[i] = w
	}

	if responses[0].Code != responses[1].Code {
		t.Errorf("status codes differ: %d vs %d", responses[0].Code, responses[1].Code)
	}
	if responses[0].Body.String() != responses[1].Body.String() {
		t.Errorf("bodies differ: %q vs %q", responses[0].Body.String(), responses[1].Body.String())
	}
}

func TestHandleLogout(t *testing.T) {
	handler := NewAuthHandler(&mockUserRepo{}, auth.NewJWT("test-secret"))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	w := httptest.NewRecorder()

	handler.HandleLogout(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	cookie := findCookie(t, w.Result().Cookies(), "access_token")
	if cookie.MaxAge >= 0 {
		t.Errorf("cookie MaxAge = %d, want negative (expired)", cookie.MaxAge)
	}
}

func findCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}
