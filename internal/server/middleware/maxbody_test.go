package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMaxBody_LimitsBody(t *testing.T) {
	const limit = 100

	handler := MaxBody(limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			WriteError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name           string
		method         string
		bodySize       int
		expectedStatus int
	}{
		{"POST within limit", http.MethodPost, 50, http.StatusOK},
		{"POST at limit", http.MethodPost, 100, http.StatusOK},
		{"POST exceeds limit", http.MethodPost, 200, http.StatusRequestEntityTooLarge},
		{"PUT exceeds limit", http.MethodPut, 200, http.StatusRequestEntityTooLarge},
		{"GET not limited", http.MethodGet, 200, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := strings.Repeat("x", tt.bodySize)
			req := httptest.NewRequest(tt.method, "/classify/image", bytes.NewBufferString(body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestMaxBody_DefaultLimit(t *testing.T) {
	var read int
	handler := MaxBody(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			WriteError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		read = len(data)
		w.WriteHeader(http.StatusOK)
	}))

	// A 2 MiB photo fits under the default limit.
	body := bytes.Repeat([]byte{0xff}, 2<<20)
	req := httptest.NewRequest(http.MethodPost, "/classify/image", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if read != len(body) {
		t.Errorf("expected %d bytes read, got %d", len(body), read)
	}
}

func TestMaxBody_RejectsDeclaredLength(t *testing.T) {
	called := false
	handler := MaxBody(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/features", strings.NewReader(strings.Repeat("x", 11)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if called {
		t.Error("expected handler not to run")
	}
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected status 413, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "10 byte limit") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestMaxBody_UnknownLength(t *testing.T) {
	handler := MaxBody(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			WriteError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/features", strings.NewReader(strings.Repeat("x", 20)))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected status 413 from the capped reader, got %d", w.Code)
	}
}
