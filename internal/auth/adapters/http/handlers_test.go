package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dejobratic/storefront/internal/auth"
	authhttp "github.com/dejobratic/storefront/internal/auth/adapters/http"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	authhttp.NewHandler(auth.NewService("test-secret")).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, payload any, out any) int {
	t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(raw))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

type authResponse struct {
	User  auth.User `json:"user"`
	Token string    `json:"token"`
}

func TestLoginEndpoint(t *testing.T) {
	srv := newAuthServer(t)

	t.Run("demo credentials succeed", func(t *testing.T) {
		var body authResponse
		status := postJSON(t, srv.URL+"/v1/auth/login", map[string]string{
			"email":    "demo@example.com",
			"password": "password",
		}, &body)

		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		if body.Token == "" || body.User.Email != "demo@example.com" {
			t.Errorf("unexpected response: %+v", body)
		}
	})

	t.Run("wrong credentials are unauthorized", func(t *testing.T) {
		status := postJSON(t, srv.URL+"/v1/auth/login", map[string]string{
			"email":    "demo@example.com",
			"password": "wrong",
		}, nil)

		if status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", status)
		}
	})

	t.Run("GET is rejected", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/auth/login")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", resp.StatusCode)
		}
	})
}

func TestRegisterEndpoint(t *testing.T) {
	srv := newAuthServer(t)

	t.Run("new user is created", func(t *testing.T) {
		var body authResponse
		status := postJSON(t, srv.URL+"/v1/auth/register", map[string]string{
			"email": "alice@example.com",
			"name":  "Alice",
		}, &body)

		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d", status)
		}
		if body.User.ID == "" || body.Token == "" {
			t.Errorf("expected an ID and token, got %+v", body)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		status := postJSON(t, srv.URL+"/v1/auth/register", map[string]string{
			"email": "alice@example.com",
			"name":  "Alice Again",
		}, nil)

		if status != http.StatusConflict {
			t.Errorf("expected 409, got %d", status)
		}
	})

	t.Run("invalid input is rejected", func(t *testing.T) {
		status := postJSON(t, srv.URL+"/v1/auth/register", map[string]string{
			"email": "not-an-email",
			"name":  "Nameless",
		}, nil)

		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})
}

func TestVerifyEndpoint(t *testing.T) {
	srv := newAuthServer(t)

	t.Run("issued token verifies", func(t *testing.T) {
		var login authResponse
		postJSON(t, srv.URL+"/v1/auth/login", map[string]string{
			"email":    "demo@example.com",
			"password": "password",
		}, &login)

		var body struct {
			Valid bool `json:"valid"`
			User  struct {
				ID    string `json:"id"`
				Email string `json:"email"`
			} `json:"user"`
		}
		status := postJSON(t, srv.URL+"/v1/auth/verify", map[string]string{"token": login.Token}, &body)

		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		if !body.Valid || body.User.Email != "demo@example.com" {
			t.Errorf("unexpected response: %+v", body)
		}
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		status := postJSON(t, srv.URL+"/v1/auth/verify", map[string]string{}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		status := postJSON(t, srv.URL+"/v1/auth/verify", map[string]string{"token": "nope"}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})
}
