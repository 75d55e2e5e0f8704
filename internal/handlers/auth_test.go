package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"treadmill_pacer/internal/service"
)

func postJSON(t *testing.T, s *service.Service, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newTestRouter(s).ServeHTTP(w, req)
	return w
}

func TestSignUp_ForwardsProfile(t *testing.T) {
	auth := &mockAuth{signUpID: 42}
	w := postJSON(t, &service.Service{Authorization: auth}, "/auth/sign-up", `{"username":"mila","password":"pw","age":34}`)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}

	var out struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.ID != 42 {
		t.Fatalf("response %s (err %v)", w.Body.String(), err)
	}
	if auth.lastSignUpUsername != "mila" || auth.lastSignUpPassword != "pw" || auth.lastSignUpAge != 34 {
		t.Fatalf("forwarded %q/%q/%d", auth.lastSignUpUsername, auth.lastSignUpPassword, auth.lastSignUpAge)
	}
}

func TestSignIn_ReturnsToken(t *testing.T) {
	auth := &mockAuth{genTokenToken: "tok123"}
	w := postJSON(t, &service.Service{Authorization: auth}, "/auth/sign-in", `{"username":"mila","password":"pw"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}

	var out map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out["token"] != "tok123" {
		t.Fatalf("response %s (err %v)", w.Body.String(), err)
	}
	if auth.lastGenUsername != "mila" || auth.lastGenPassword != "pw" {
		t.Fatalf("forwarded %q/%q", auth.lastGenUsername, auth.lastGenPassword)
	}
}

func TestAuthRoutes_Errors(t *testing.T) {
	cases := []struct {
		name string
		auth *mockAuth
		path string
		body string
		want int
	}{
		{"sign-up without age", &mockAuth{}, "/auth/sign-up", `{"username":"u","password":"p"}`, http.StatusBadRequest},
		{"sign-up malformed json", &mockAuth{}, "/auth/sign-up", `{"username":`, http.StatusBadRequest},
		{"sign-up rejected profile", &mockAuth{signUpErr: errors.New("invalid profile")}, "/auth/sign-up", `{"username":"u","password":"p","age":400}`, http.StatusBadRequest},
		{"sign-in wrong field type", &mockAuth{}, "/auth/sign-in", `{"username":1}`, http.StatusBadRequest},
		{"sign-in unknown athlete", &mockAuth{genTokenErr: errors.New("user not found")}, "/auth/sign-in", `{"username":"u","password":"p"}`, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, &service.Service{Authorization: tc.auth}, tc.path, tc.body)
			if w.Code != tc.want {
				t.Fatalf("code = %d, want %d (body %s)", w.Code, tc.want, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), `"error"`) {
				t.Fatalf("missing error field: %s", w.Body.String())
			}
		})
	}
}
