package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func chatReply(content string) string {
	return `{"choices":[{"message":{"content":` + jsonString(content) + `}}]}`
}

func jsonString(s string) string {
	out := `"`
	for _, r := range s {
		switch r {
		case '"':
			out += `\"`
		case '\\':
			out += `\\`
		case '\n':
			out += `\n`
		default:
			out += string(r)
		}
	}
	return out + `"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := New(srv.URL, "test-key", "test-model", 2*time.Second, zap.NewNop())
	return c, srv.Close
}

func TestCompleteJSONOk(t *testing.T) {
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("auth = %q", auth)
		}
		w.Write([]byte(chatReply(`{"summary":"tamam","skills":["go"]}`)))
	})
	defer done()

	var report ProfileReport
	if err := c.CompleteJSON(context.Background(), "sys", "user", &report); err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if report.Summary != "tamam" || len(report.Skills) != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestCompleteJSONStripsFences(t *testing.T) {
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("```json\n{\"summary\":\"x\"}\n```")))
	})
	defer done()

	var report ProfileReport
	if err := c.CompleteJSON(context.Background(), "sys", "user", &report); err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if report.Summary != "x" {
		t.Errorf("summary = %q", report.Summary)
	}
}

func TestCompleteJSONEmptyContent(t *testing.T) {
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("   ")))
	})
	defer done()

	var dest map[string]interface{}
	if err := c.CompleteJSON(context.Background(), "sys", "user", &dest); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestCompleteJSONBadStatus(t *testing.T) {
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	defer done()

	var dest map[string]interface{}
	if err := c.CompleteJSON(context.Background(), "sys", "user", &dest); !errors.Is(err, ErrHTTP) {
		t.Errorf("err = %v, want ErrHTTP", err)
	}
}

func TestCompleteJSONMalformedContent(t *testing.T) {
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("bu json değil")))
	})
	defer done()

	var dest map[string]interface{}
	if err := c.CompleteJSON(context.Background(), "sys", "user", &dest); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestCompleteJSONTimeout(t *testing.T) {
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(chatReply(`{}`)))
	})
	defer done()

	c.timeout = 50 * time.Millisecond

	var dest map[string]interface{}
	if err := c.CompleteJSON(context.Background(), "sys", "user", &dest); !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tc := range cases {
		if got := StripFences(tc.in); got != tc.want {
			t.Errorf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
