package shared

import "net/http"

// Role enumerates the fixed set of user roles.
type Role string

const (
	RoleApplicant Role = "applicant"
	RoleApprover  Role = "approver"
	RoleFinance   Role = "finance"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether the given role is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleApplicant, RoleApprover, RoleFinance, RoleAdmin:
		return true
	}
	return false
}

// Actor identifies the authenticated user performing a request.
type Actor struct {
	ID   int64
	Role Role
}

// Is reports whether the actor holds the given role. Admin satisfies every check.
func (a Actor) Is(role Role) bool {
	return a.Role == role || a.Role == RoleAdmin
}

// RequireAuth rejects unauthenticated requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFromContext(r.Context()); !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the current user holds at least one of the given roles.
func RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if actor.Is(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
