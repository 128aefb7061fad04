package httpapi

import (
	"net/http"
	"strings"

	"agsavn-data/internal/domain"
)

// identity is set by the upstream gateway.
type identity struct {
	UserID string
	Role   string
}

func (id identity) isAdmin() bool {
	return domain.UserRole(id.Role) == domain.RoleAdmin
}

// requireIdentity writes 401 and returns false when X-User-Id is missing or not a UUID.
func requireIdentity(w http.ResponseWriter, r *http.Request) (identity, bool) {
	id := identity{
		UserID: strings.TrimSpace(r.Header.Get("X-User-Id")),
		Role:   strings.ToUpper(strings.TrimSpace(r.Header.Get("X-User-Role"))),
	}
	if id.UserID == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("user ID is required"))
		return identity{}, false
	}
	if !validUUID(id.UserID) {
		writeJSON(w, http.StatusUnauthorized, Fail("invalid user ID"))
		return identity{}, false
	}
	if id.Role == "" {
		id.Role = string(domain.RoleUser)
	}
	return id, true
}
