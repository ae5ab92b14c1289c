package tracking

import "prodtrack/internal/models"

// Actor is the authenticated caller. The zero value means no session.
type Actor struct {
	UserID string
	Role   models.UserRole
}

func (a Actor) Authenticated() bool {
	return a.UserID != "" && a.Role.Valid()
}

// RequireAuth is the first call of every operation open to any signed-in user.
func RequireAuth(a Actor) error {
	if !a.Authenticated() {
		return unauthorized("unauthorized")
	}
	return nil
}

// RequireRole is the first call of every role-restricted operation.
func RequireRole(a Actor, roles ...models.UserRole) error {
	if err := RequireAuth(a); err != nil {
		return err
	}
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return unauthorized("unauthorized: requires role " + roleList(roles))
}

func roleList(roles []models.UserRole) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += " or "
		}
		out += string(r)
	}
	return out
}
