package reconcile

import (
	"strings"

	"github.com/rotadesk/rota/backend/internal/domain"
)

// genericRoles are placeholders exporters write when they do not know the position.
var genericRoles = map[string]bool{
	"":         true,
	"staff":    true,
	"general":  true,
	"employee": true,
	"unknown":  true,
	"null":     true,
}

func isSpecificRole(role string) bool {
	return !genericRoles[strings.ToLower(strings.TrimSpace(role))]
}

// InferRole picks the role for a reconciled row. user is nil for open and unknown rows.
// The second result reports that the operator has to choose the role.
func InferRole(matchedUserID, rawRole string, user *domain.User) (string, bool) {
	if matchedUserID == domain.MatchUnknown {
		return "", true
	}

	role := ""
	switch {
	case isSpecificRole(rawRole):
		role = strings.TrimSpace(rawRole)
	case user != nil && len(user.Positions) == 1:
		role = user.Positions[0]
	case user != nil && len(user.Positions) > 1:
		// never guess between several positions
		return "", true
	default:
		role = domain.DefaultRole
	}

	role = strings.TrimSpace(role)
	return role, role == ""
}
