package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"nomina/internal/transport/http/api"
)

// PermissionStore answers whether a role holds a permission key from the
// seeded catalog (nomina.read, nomina.reopen, reports.read, ...).
type PermissionStore interface {
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

// RequirePermission guards a route behind one permission key. Anonymous
// requests get 401; a denied role gets 403 with the missing key in the
// error details so the frontend can explain what to ask an admin for.
func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := GetRequestID(r.Context())
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
				return
			}

			allowed, err := store.HasPermission(r.Context(), user.RoleID, permission)
			if err != nil {
				slog.Error("permission lookup failed",
					"role_id", user.RoleID,
					"permission", permission,
					"request_id", reqID,
					"err", err,
				)
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", reqID)
				return
			}
			if !allowed {
				api.FailDetailed(w, http.StatusForbidden, "forbidden", "insufficient permissions",
					map[string]string{"required": permission}, reqID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
