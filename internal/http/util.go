package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"agsavn-data/internal/domain"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// decodeBody reads the JSON body into out, reporting malformed input as a validation error.
func decodeBody(r *http.Request, out any) error {
	if err := readBodyJSON(r, maxBodyBytes, out); err != nil {
		return domain.Validationf("invalid body: %v", err)
	}
	return nil
}

// parseDate accepts YYYY-MM-DD.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domain.Validationf("date must be YYYY-MM-DD")
	}
	return t, nil
}

// pathID extracts the segment after prefix. rest is whatever follows it, without the slash.
func pathID(path, prefix string) (id, rest string) {
	tail := strings.TrimPrefix(path, prefix)
	tail = strings.Trim(tail, "/")
	id, rest, _ = strings.Cut(tail, "/")
	return id, rest
}

func validUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// validIDParams writes 400 and returns false when a non-empty query param is not a UUID.
func validIDParams(w http.ResponseWriter, r *http.Request, keys ...string) bool {
	for _, key := range keys {
		if v := queryString(r, key); v != "" && !validUUID(v) {
			writeJSON(w, http.StatusBadRequest, Fail("invalid "+key))
			return false
		}
	}
	return true
}

func queryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
