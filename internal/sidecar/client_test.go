package sidecar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetch_ReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		w.Write([]byte("sidecar_up 1\n"))
	}))
	defer server.Close()

	body, err := Fetch(context.Background(), server.URL+"/metrics", time.Second)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body != "sidecar_up 1\n" {
		t.Errorf("Fetch() = %q", body)
	}
}

func TestFetch_IgnoresStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("oops"))
	}))
	defer server.Close()

	body, err := Fetch(context.Background(), server.URL, 0)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body != "oops" {
		t.Errorf("Expected body to be returned as-is, got %q", body)
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	url := server.URL + "/metrics"
	_, err := Fetch(context.Background(), url, 20*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Expected ErrTimeout, got %v", err)
	}

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("Expected *TimeoutError, got %T", err)
	}
	if got := te.Error(); got != "Timeout on "+url {
		t.Errorf("Unexpected message %q", got)
	}
}

func TestFetch_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := Fetch(context.Background(), url, time.Second)
	if err == nil {
		t.Fatal("Expected error for closed server")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("Connection refusal must not be reported as a timeout")
	}

	var fe *FetchError
	if !errors.As(err, &fe) || fe.URL != url {
		t.Errorf("Expected *FetchError for %s, got %v", url, err)
	}
}

func TestFetch_CallerCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fetch(ctx, server.URL, time.Second)
	if errors.Is(err, ErrTimeout) {
		t.Error("Caller cancellation must not be reported as a timeout")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
	}
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	if got := NewClient(0).Timeout(); got != DefaultTimeout {
		t.Errorf("Expected default timeout %s, got %s", DefaultTimeout, got)
	}
	if got := NewClient(time.Second).Timeout(); got != time.Second {
		t.Errorf("Expected 1s, got %s", got)
	}
}
