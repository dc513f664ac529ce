package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"prestamos/utils"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimit(t *testing.T) {
	handler := RateLimit(utils.NewRateLimiter(2, time.Minute))(okHandler)

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/api/clientes", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Errorf("request %d: got %v want %v", i, rr.Code, want)
		}
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("got %v want %v", rr.Code, http.StatusInternalServerError)
	}
}

func TestCORSPreflight(t *testing.T) {
	rr := httptest.NewRecorder()
	CORS(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/prestamos", nil))

	if rr.Code != http.StatusNoContent {
		t.Errorf("got %v want %v", rr.Code, http.StatusNoContent)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing allow origin header")
	}
}

func TestAuth(t *testing.T) {
	key := []byte("secreto")
	var gotSubject, gotEmail string
	handler := Auth(key)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, gotEmail, _ = GetUserFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	sign := func(k []byte, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(k)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	valid := sign(key, jwt.MapClaims{"sub": "admin-1", "email": "admin@example.com", "exp": time.Now().Add(time.Hour).Unix()})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong key", "Bearer " + sign([]byte("otro"), jwt.MapClaims{"sub": "x"}), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(key, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/clientes", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Errorf("got %v want %v", rr.Code, tc.want)
			}
		})
	}

	if gotSubject != "admin-1" || gotEmail != "admin@example.com" {
		t.Errorf("got subject %q email %q", gotSubject, gotEmail)
	}
}
