package auth

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/storerate-backend/internal/users"
	pkgAuth "github.com/angelmondragon/storerate-backend/pkg/auth"
	"github.com/angelmondragon/storerate-backend/pkg/config"
	"github.com/angelmondragon/storerate-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storerate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storerate-backend/pkg/errors"
	"github.com/angelmondragon/storerate-backend/pkg/security"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	testJWT      = config.JWTConfig{Secret: "secret", Issuer: "storerate"}
	testPassword = config.PasswordConfig{BcryptCost: bcrypt.MinCost}
)

func buildTestService(t *testing.T) (Service, *users.Repository) {
	t.Helper()
	repo := users.NewRepository(dbtest.Open(t))
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		JWTConfig:      testJWT,
		PasswordConfig: testPassword,
		Now:            func() time.Time { return time.Now().Add(-time.Minute) },
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo
}

func signupRequest(email string) SignupRequest {
	return SignupRequest{
		Name:     "Newly Registered Person",
		Email:    email,
		Address:  "42 Long Street",
		Password: "Str0ng!Pass",
	}
}

func TestSignupRequestNormalizeTrims(t *testing.T) {
	req := SignupRequest{Name: "  Padded Name Of A Person ", Email: " a@b.io ", Address: "\t1 Road\n"}
	req.Normalize()
	if req.Name != "Padded Name Of A Person" || req.Email != "a@b.io" || req.Address != "1 Road" {
		t.Fatalf("unexpected normalized request %+v", req)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{JWTConfig: testJWT}); err == nil {
		t.Fatal("expected error without repository")
	}
	if _, err := NewService(ServiceParams{UserRepo: users.NewRepository(dbtest.Open(t))}); err == nil {
		t.Fatal("expected error without jwt secret")
	}
}

func TestSignupCreatesUserAndToken(t *testing.T) {
	svc, repo := buildTestService(t)

	resp, err := svc.Signup(context.Background(), signupRequest("New.Person@Example.com"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.Account.Role != enums.RoleUser {
		t.Fatalf("expected USER role, got %s", resp.Account.Role)
	}
	if resp.Account.Email != "new.person@example.com" {
		t.Fatalf("expected normalized email, got %q", resp.Account.Email)
	}
	if resp.Account.Name != "Newly Registered Person" || resp.Account.Address != "42 Long Street" {
		t.Fatalf("expected name and address stored as validated, got %q / %q", resp.Account.Name, resp.Account.Address)
	}

	identity, err := pkgAuth.ParseAccessToken(testJWT, resp.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if identity.AccountID != resp.Account.ID || identity.Role != enums.RoleUser {
		t.Fatalf("unexpected identity %+v", identity)
	}

	stored, err := repo.FindByEmail(context.Background(), "new.person@example.com")
	if err != nil {
		t.Fatalf("find stored user: %v", err)
	}
	if stored.PasswordHash == "Str0ng!Pass" || !security.VerifyPassword("Str0ng!Pass", stored.PasswordHash) {
		t.Fatal("expected password to be stored hashed")
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	svc, _ := buildTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupRequest("dup@example.com")); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, err := svc.Signup(ctx, signupRequest("DUP@example.com"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := buildTestService(t)
	ctx := context.Background()
	created, err := svc.Signup(ctx, signupRequest("login@example.com"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	resp, err := svc.Login(ctx, LoginRequest{Email: " LOGIN@example.com", Password: "Str0ng!Pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Account.ID != created.Account.ID {
		t.Fatalf("expected same account, got %s", resp.Account.ID)
	}
	if _, err := pkgAuth.ParseAccessToken(testJWT, resp.Token); err != nil {
		t.Fatalf("parse token: %v", err)
	}

	for _, req := range []LoginRequest{
		{Email: "login@example.com", Password: "wrong!Pass1"},
		{Email: "missing@example.com", Password: "Str0ng!Pass"},
		{Email: "", Password: "Str0ng!Pass"},
	} {
		_, err := svc.Login(ctx, req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %q, got %v", req.Email, err)
		}
		if typed.Message() != invalidCredentialsMessage {
			t.Fatalf("expected generic message, got %q", typed.Message())
		}
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := buildTestService(t)
	ctx := context.Background()
	created, err := svc.Signup(ctx, signupRequest("change@example.com"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	id := created.Account.ID

	err = svc.ChangePassword(ctx, id, ChangePasswordRequest{OldPassword: "nope", NewPassword: "N3w!Secret"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for wrong old password, got %v", err)
	}

	if err := svc.ChangePassword(ctx, id, ChangePasswordRequest{OldPassword: "Str0ng!Pass", NewPassword: "N3w!Secret"}); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "change@example.com", Password: "Str0ng!Pass"}); err == nil {
		t.Fatal("old password must stop working")
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "change@example.com", Password: "N3w!Secret"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	err = svc.ChangePassword(ctx, uuid.New(), ChangePasswordRequest{OldPassword: "x", NewPassword: "N3w!Secret"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
