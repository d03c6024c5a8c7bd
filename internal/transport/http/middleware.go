package httptransport

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"klondike/internal/drag"
	"klondike/internal/game"
	"klondike/internal/gateway"
	"klondike/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

func APILogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				attrs := []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
				}
				if id := chi.URLParam(req, "game_id"); id != "" {
					attrs = append(attrs, slog.String("game_id", id))
				}
				return attrs
			},
		},
	)
}

// BodyCaptureMiddleware attaches up to maxBytes of the request and response
// bodies to the request log line. Websocket upgrades pass through untouched.
func BodyCaptureMiddleware(maxBytes int) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = 4096
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isUpgradeRequest(r) {
				next.ServeHTTP(w, r)
				return
			}
			reqBody, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(reqBody))

			cw := &captureWriter{ResponseWriter: w, limit: maxBytes}
			next.ServeHTTP(cw, r)

			reqTruncated := len(reqBody) > maxBytes
			if reqTruncated {
				reqBody = reqBody[:maxBytes]
			}
			ctx := r.Context()
			httplog.SetAttrs(ctx, slog.Any("request_body", parseMaybeJSON(reqBody)))
			httplog.SetAttrs(ctx, slog.Any("response_body", parseMaybeJSON(cw.body.Bytes())))
			httplog.SetAttrs(ctx, slog.Bool("request_body_truncated", reqTruncated))
			httplog.SetAttrs(ctx, slog.Bool("response_body_truncated", cw.truncated))
		})
	}
}

// captureWriter keeps the first limit bytes written through it.
type captureWriter struct {
	http.ResponseWriter
	body      bytes.Buffer
	limit     int
	truncated bool
}

func (c *captureWriter) Write(p []byte) (int, error) {
	if room := c.limit - c.body.Len(); room < len(p) {
		c.truncated = true
		if room > 0 {
			c.body.Write(p[:room])
		}
	} else {
		c.body.Write(p)
	}
	return c.ResponseWriter.Write(p)
}

func (c *captureWriter) Flush() {
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func parseMaybeJSON(b []byte) any {
	if len(b) == 0 {
		return ""
	}
	var out any
	if err := json.Unmarshal(b, &out); err == nil {
		return out
	}
	return string(b)
}

func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// MapGameError maps an error from a game operation to a status and code.
// Malformed input is a client error; an unknown game or action is a 404.
func MapGameError(err error) (int, string) {
	switch {
	case errors.Is(err, gateway.ErrGameNotFound):
		return http.StatusNotFound, "game_not_found"
	case errors.Is(err, gateway.ErrUnknownAction):
		return http.StatusNotFound, "unknown_action"
	case errors.Is(err, game.ErrInvalidPile), errors.Is(err, game.ErrCardsMismatch), errors.Is(err, errUnknownCard):
		return http.StatusBadRequest, "invalid_move"
	case errors.Is(err, drag.ErrUnknownCard), errors.Is(err, drag.ErrNotDraggable), errors.Is(err, drag.ErrBusy):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

const maxPageSize = 200

// ParsePagination reads limit and offset, clamping limit to [1, 200] and
// offset to zero or more. Unparsable values fall back to the defaults.
func ParsePagination(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", 50)
	offset = queryInt(r, "offset", 0)
	limit = max(1, min(limit, maxPageSize))
	offset = max(0, offset)
	return limit, offset
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return n
}

func isUpgradeRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
