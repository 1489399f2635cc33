package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
)

// HeaderUserID identity header set by the upstream gateway.
const HeaderUserID = "X-User-Id"

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
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

func readBody(r *http.Request, maxBytes int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBytes))
}

// identityFromReq writes 401 and returns false when the identity header is missing.
func identityFromReq(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if id == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return "", false
	}
	return domain.Identity(id), true
}

func isFormRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
}
