package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/storerate-backend/api/middleware"
	"github.com/angelmondragon/storerate-backend/internal/auth"
	"github.com/angelmondragon/storerate-backend/internal/users"
	pkgAuth "github.com/angelmondragon/storerate-backend/pkg/auth"
	"github.com/angelmondragon/storerate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storerate-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubAuthService struct {
	signupCalls int
	changedFor  uuid.UUID
	resp        *auth.SessionResponse
	err         error
}

func (s *stubAuthService) Signup(ctx context.Context, req auth.SignupRequest) (*auth.SessionResponse, error) {
	s.signupCalls++
	return s.resp, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.SessionResponse, error) {
	return s.resp, s.err
}

func (s *stubAuthService) ChangePassword(ctx context.Context, accountID uuid.UUID, req auth.ChangePasswordRequest) error {
	s.changedFor = accountID
	return s.err
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

func TestAuthSignupValidatesBeforeService(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthSignup(svc, nil)

	cases := []string{
		`{"name":"Short","email":"a@example.com","password":"Good@Pass1"}`,
		`{"name":"Long Enough Name For Signup","email":"not-an-email","password":"Good@Pass1"}`,
		`{"name":"Long Enough Name For Signup","email":"a@example.com","password":"nouppercase1!"}`,
		`{"name":"Long Enough Name For Signup","email":"a@example.com","password":"NoSpecial123"}`,
		`{"name":"Long Enough Name For Signup","email":"a@example.com","password":"Good@Pass1","role":"ADMIN"}`,
		`not json`,
	}
	for _, body := range cases {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, postJSON("/api/auth/signup", body))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 got %d", body, resp.Code)
		}
		if code := errorCode(t, resp); code != string(pkgerrors.CodeValidation) {
			t.Fatalf("body %s: expected validation code got %s", body, code)
		}
	}
	if svc.signupCalls != 0 {
		t.Fatalf("service must not be called for invalid input, got %d calls", svc.signupCalls)
	}
}

func TestAuthSignupReturnsSession(t *testing.T) {
	account := &users.AccountDTO{ID: uuid.New(), Email: "a@example.com", Role: enums.RoleUser}
	svc := &stubAuthService{resp: &auth.SessionResponse{Token: "token", Account: account}}
	resp := httptest.NewRecorder()
	AuthSignup(svc, nil).ServeHTTP(resp, postJSON("/api/auth/signup",
		`{"name":"Long Enough Name For Signup","email":"a@example.com","address":"1 Road","password":"Good@Pass1"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data auth.SessionResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Token != "token" || envelope.Data.Account.ID != account.ID {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestAuthLoginPassesServiceErrors(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	resp := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(resp, postJSON("/api/auth/login", `{"email":"a@example.com","password":"whatever"}`))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthHandlersWithoutService(t *testing.T) {
	resp := httptest.NewRecorder()
	AuthLogin(nil, nil).ServeHTTP(resp, postJSON("/api/auth/login", `{}`))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestAuthChangePasswordUsesCallerIdentity(t *testing.T) {
	svc := &stubAuthService{}
	accountID := uuid.New()
	req := postJSON("/api/auth/change-password", `{"old_password":"Old@Pass1","new_password":"New@Pass1"}`)
	req = req.WithContext(middleware.WithIdentity(req.Context(), pkgAuth.Identity{AccountID: accountID, Role: enums.RoleOwner}))

	resp := httptest.NewRecorder()
	AuthChangePassword(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.changedFor != accountID {
		t.Fatalf("expected change for %s got %s", accountID, svc.changedFor)
	}
}
