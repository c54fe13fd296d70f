package httpclient

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(Config{Timeout: 5 * time.Second, UserAgent: "ionstart-test", RetryInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestGetJSON(t *testing.T) {
	var gotUA, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"name":"blank"}`))
	}))
	defer srv.Close()

	c := newTestClient(t)
	var out struct {
		Name string `json:"name"`
	}
	if err := c.GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out.Name != "blank" {
		t.Errorf("Name = %q, want blank", out.Name)
	}
	if gotUA != "ionstart-test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotReqID != c.RequestID() || gotReqID == "" {
		t.Errorf("X-Request-ID = %q, want %q", gotReqID, c.RequestID())
	}
}

func TestGetJSON_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out map[string]interface{}
	if err := newTestClient(t).GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestGetJSON_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := newTestClient(t).GetJSON(context.Background(), srv.URL, &out)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls.Load())
	}
}

func TestSendJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"abc123"}`))
	}))
	defer srv.Close()

	var out struct {
		ID string `json:"id"`
	}
	err := newTestClient(t).SendJSON(context.Background(), http.MethodPost, srv.URL, map[string]string{"name": "x"}, &out, WithBearer("tok"))
	if err != nil {
		t.Fatalf("SendJSON() error = %v", err)
	}
	if out.ID != "abc123" {
		t.Errorf("ID = %q", out.ID)
	}
}

func TestDownload_Progress(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 64*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	var lastLoaded, lastTotal int64
	err := newTestClient(t).Download(context.Background(), srv.URL, &buf, func(loaded, total int64) {
		if loaded < lastLoaded {
			t.Errorf("progress went backwards: %d after %d", loaded, lastLoaded)
		}
		lastLoaded, lastTotal = loaded, total
	})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if buf.Len() != len(payload) {
		t.Errorf("downloaded %d bytes, want %d", buf.Len(), len(payload))
	}
	if lastLoaded != int64(len(payload)) {
		t.Errorf("final loaded = %d, want %d", lastLoaded, len(payload))
	}
	if lastTotal != int64(len(payload)) {
		t.Errorf("total = %d, want %d", lastTotal, len(payload))
	}
}

func TestDownload_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	err := newTestClient(t).Download(context.Background(), srv.URL, &buf, nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("Download() error = %v, want 403 StatusError", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written on non-200")
	}
}

func TestNew_InvalidProxy(t *testing.T) {
	if _, err := New(Config{Proxy: "://bad"}); err == nil {
		t.Error("New() should reject an invalid proxy URL")
	}
}
