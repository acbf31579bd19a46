package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestChatWithRetryRecoversFromServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"好的"}}]}`)
	}))
	defer srv.Close()

	client := NewDeepSeekClient(&DeepSeekConfig{APIKey: "test-key", BaseURL: srv.URL})
	got, err := client.ChatWithRetry(context.Background(), []Message{{Role: "user", Content: "hi"}}, 3)
	if err != nil {
		t.Fatalf("ChatWithRetry error: %v", err)
	}
	if got != "好的" {
		t.Fatalf("reply=%q, want 好的", got)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("calls=%d, want 2", n)
	}
}

func TestChatWithRetryStopsOnNonRetryableError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewDeepSeekClient(&DeepSeekConfig{APIKey: "test-key", BaseURL: srv.URL})
	if _, err := client.ChatWithRetry(context.Background(), []Message{{Role: "user", Content: "hi"}}, 3); err == nil {
		t.Fatalf("expected error on 400")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls=%d, 400 不应重试", n)
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  string
		want bool
	}{
		{"API 错误: 503 Service Unavailable", true},
		{"API 错误: 502 Bad Gateway", true},
		{"dial tcp: connection refused", true},
		{"read tcp 127.0.0.1:8787: i/o timeout", true},
		{"API 错误: 400 Bad Request", false},
		{"API 错误: 401 Unauthorized", false},
	}
	for _, c := range cases {
		if got := isRetryableError(fmt.Errorf("%s", c.err)); got != c.want {
			t.Fatalf("isRetryableError(%q)=%v, want %v", c.err, got, c.want)
		}
	}
}
