package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPPageFetcher_FetchPage(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>Hello</title></head><body><p>Hei maailma</p></body></html>`))
	}))
	defer server.Close()

	doc, err := NewHTTPPageFetcher(5 * time.Second).FetchPage(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Find("p").Text(); got != "Hei maailma" {
		t.Errorf("Expected paragraph text, got %q", got)
	}
	if !strings.HasPrefix(gotUA, "Mozilla/5.0") {
		t.Errorf("Expected browser user agent, got %q", gotUA)
	}
}

func TestHTTPPageFetcher_DecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Päivää" in Latin-1
		w.Write([]byte("<html><body><p>P\xe4iv\xe4\xe4</p></body></html>"))
	}))
	defer server.Close()

	doc, err := NewHTTPPageFetcher(5*time.Second).FetchPage(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Find("p").Text(); got != "Päivää" {
		t.Errorf("Expected decoded text, got %q", got)
	}
}

func TestHTTPPageFetcher_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		contentType   string
		errorContains string
	}{
		{"not found", http.StatusNotFound, "text/html", "status code 404"},
		{"server error is not retried", http.StatusInternalServerError, "text/html", "status code 500"},
		{"binary content", http.StatusOK, "application/octet-stream", "unsupported content type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := NewHTTPPageFetcher(5*time.Second).FetchPage(context.Background(), server.URL)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("Expected error containing %q, got %v", tt.errorContains, err)
			}
			if requests != 1 {
				t.Errorf("Expected exactly one request, got %d", requests)
			}
		})
	}
}

func TestHTTPPageFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	_, err := NewHTTPPageFetcher(50*time.Millisecond).FetchPage(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestHTTPPageFetcher_InvalidURL(t *testing.T) {
	_, err := NewHTTPPageFetcher(time.Second).FetchPage(context.Background(), "://bad")
	if err == nil || !strings.Contains(err.Error(), "invalid URL") {
		t.Errorf("Expected invalid URL error, got %v", err)
	}
}
