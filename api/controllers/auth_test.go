package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/internal/auth"
	"github.com/pepdine/pep-backend/internal/users"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
)

type stubAuthService struct {
	accessToken  string
	refreshToken string
	loggedOut    string
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.TokenResponse, error) {
	return &auth.TokenResponse{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.TokenResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.TokenResponse, error) {
	s.accessToken, s.refreshToken = accessToken, refreshToken
	return &auth.TokenResponse{AccessToken: "next"}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	s.loggedOut = accessToken
	return nil
}

func (s *stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

func TestAuthRegisterCreated(t *testing.T) {
	t.Parallel()

	body := `{"name":"Asha","email":"asha@example.com","password":"curry2024"}`
	resp := httptest.NewRecorder()
	AuthRegister(&stubAuthService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	t.Parallel()

	body := `{"email":"asha@example.com","password":"wrong"}`
	resp := httptest.NewRecorder()
	AuthLogin(&stubAuthService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body)))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRefreshRequiresAccessToken(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{}
	resp := httptest.NewRecorder()
	AuthRefresh(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"r"}`)))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"r"}`))
	req.Header.Set("Authorization", "Bearer expired-token")
	resp = httptest.NewRecorder()
	AuthRefresh(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.accessToken != "expired-token" || svc.refreshToken != "r" {
		t.Fatalf("unexpected tokens %q %q", svc.accessToken, svc.refreshToken)
	}
}

func TestAuthLogout(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer live-token")
	resp := httptest.NewRecorder()
	AuthLogout(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if svc.loggedOut != "live-token" {
		t.Fatalf("expected token revoked, got %q", svc.loggedOut)
	}
}
