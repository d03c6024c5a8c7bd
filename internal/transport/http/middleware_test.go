package httptransport

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"klondike/internal/game"
	"klondike/internal/gateway"
)

type flusherRecorder struct {
	*httptest.ResponseRecorder
	flushed bool
}

func (f *flusherRecorder) Flush() {
	f.flushed = true
}

func TestBodyCaptureMiddlewarePreservesFlusher(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "no flusher", http.StatusInternalServerError)
			return
		}
		flusher.Flush()
		w.WriteHeader(http.StatusOK)
	})

	rec := &flusherRecorder{ResponseRecorder: httptest.NewRecorder()}
	req := httptest.NewRequest(http.MethodPost, "/api/games/g_1/draw", nil)
	BodyCaptureMiddleware(4096)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !rec.flushed {
		t.Fatal("expected flusher to be called")
	}
}

func TestBodyCaptureMiddlewareKeepsBodies(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := make([]byte, 64)
		n, _ := r.Body.Read(b)
		seen = string(b[:n])
		_, _ = w.Write([]byte(strings.Repeat("x", 32)))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/games/g_1/click", strings.NewReader(`{"card_id":"heart-A"}`))
	BodyCaptureMiddleware(8)(handler).ServeHTTP(rec, req)

	if seen != `{"card_id":"heart-A"}` {
		t.Fatalf("handler saw %q", seen)
	}
	if rec.Body.Len() != 32 {
		t.Fatalf("response was cut: %d bytes", rec.Body.Len())
	}
}

func TestCaptureWriterTruncates(t *testing.T) {
	cw := &captureWriter{ResponseWriter: httptest.NewRecorder(), limit: 4}
	_, _ = cw.Write([]byte("ab"))
	_, _ = cw.Write([]byte("cdef"))
	if cw.body.String() != "abcd" || !cw.truncated {
		t.Fatalf("unexpected capture %q truncated=%v", cw.body.String(), cw.truncated)
	}
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query         string
		limit, offset int
	}{
		{"", 50, 0},
		{"?limit=10&offset=5", 10, 5},
		{"?limit=0&offset=-3", 1, 0},
		{"?limit=5000", maxPageSize, 0},
		{"?limit=abc", 50, 0},
	}
	for _, tc := range cases {
		limit, offset := ParsePagination(httptest.NewRequest(http.MethodGet, "/api/results"+tc.query, nil))
		if limit != tc.limit || offset != tc.offset {
			t.Fatalf("%q: got %d/%d want %d/%d", tc.query, limit, offset, tc.limit, tc.offset)
		}
	}
}

func TestMapGameError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{gateway.ErrGameNotFound, http.StatusNotFound, "game_not_found"},
		{gateway.ErrUnknownAction, http.StatusNotFound, "unknown_action"},
		{game.ErrInvalidPile, http.StatusBadRequest, "invalid_move"},
		{errUnknownCard, http.StatusBadRequest, "invalid_move"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, code := MapGameError(tc.err)
		if status != tc.status || code != tc.code {
			t.Fatalf("%v: got %d %s", tc.err, status, code)
		}
	}
}
