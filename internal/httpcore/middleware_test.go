package httpcore

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// RequestLog
// ---------------------------------------------------------------------------

func TestRequestLogAdd(t *testing.T) {
	rl := NewRequestLog(10)
	rl.Add(RequestLogEntry{Method: "GET", Path: "/todo"})

	entries := rl.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Method != "GET" || entries[0].Path != "/todo" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestRequestLogRingBuffer(t *testing.T) {
	rl := NewRequestLog(3)

	for i := 0; i < 5; i++ {
		rl.Add(RequestLogEntry{Path: "/" + string(rune('a'+i))})
	}

	entries := rl.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries (ring buffer), got %d", len(entries))
	}
	for i, want := range []string{"/c", "/d", "/e"} {
		if entries[i].Path != want {
			t.Errorf("entries[%d] = %s, want %s", i, entries[i].Path, want)
		}
	}
}

func TestRequestLogWrapsAfterClear(t *testing.T) {
	rl := NewRequestLog(2)
	rl.Add(RequestLogEntry{Path: "/a"})
	rl.Add(RequestLogEntry{Path: "/b"})
	rl.Add(RequestLogEntry{Path: "/c"})
	rl.Clear()
	if rl.Len() != 0 {
		t.Fatalf("Len() after clear = %d", rl.Len())
	}

	rl.Add(RequestLogEntry{Path: "/d"})
	rl.Add(RequestLogEntry{Path: "/e"})
	rl.Add(RequestLogEntry{Path: "/f"})
	entries := rl.Entries()
	if len(entries) != 2 || entries[0].Path != "/e" || entries[1].Path != "/f" {
		t.Errorf("unexpected entries after wrap: %+v", entries)
	}
}

func TestRequestLogEntriesReturnsCopy(t *testing.T) {
	rl := NewRequestLog(10)
	rl.Add(RequestLogEntry{Path: "/orig"})

	entries := rl.Entries()
	entries[0].Path = "/mutated"

	if fresh := rl.Entries(); fresh[0].Path != "/orig" {
		t.Error("Entries did not return a copy; mutation leaked")
	}
}

func TestRequestLogClear(t *testing.T) {
	rl := NewRequestLog(10)
	rl.Add(RequestLogEntry{Path: "/todo"})
	rl.Clear()

	if len(rl.Entries()) != 0 {
		t.Errorf("expected 0 entries after clear, got %d", len(rl.Entries()))
	}
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func TestRequestLogMiddlewareRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	mw := NewMiddleware(logger, true)

	h := mw.RequestLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/todo?page=2", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := mw.ReqLog.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].StatusCode != http.StatusTeapot || entries[0].Query != "page=2" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
	if !strings.Contains(buf.String(), `"status":418`) {
		t.Errorf("expected verbose request log line, got %q", buf.String())
	}
}

func TestRequestLogMiddlewareQuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	mw := NewMiddleware(logger, false)

	h := mw.RequestLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if buf.Len() != 0 {
		t.Errorf("expected no info output, got %q", buf.String())
	}
}

func TestRecoverWritesErrorBody(t *testing.T) {
	mw := NewMiddleware(discardLogger(), false)
	h := mw.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/todo", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "error" || body.Message != "Internal server error" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var deadline time.Time
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, _ = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if deadline.IsZero() || time.Until(deadline) > time.Second {
		t.Errorf("unexpected deadline %v", deadline)
	}
}

func TestServerSetsRequestID(t *testing.T) {
	s := New(Options{RequestTimeout: time.Second}, discardLogger())
	s.Router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		Text(w, http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
	entries := s.Middleware().ReqLog.Entries()
	if len(entries) != 1 || entries[0].RequestID == "" {
		t.Errorf("expected a request id in the request log, got %+v", entries)
	}
}
