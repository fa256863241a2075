package trust

import (
	"gigstage/pkg/model"
	"gigstage/pkg/sanitizer"
)

// IsQualified decides whether a user may occupy a band role. Fails closed:
// a nil user or role, or a role with no open seats, is never a match.
//
// Matching is a case-insensitive, whitespace-normalized exact match between
// the user's instrument (or role type) and the role name. Deliberately no
// substring or fuzzy matching: "bass" must not match "bassist". Synonym
// mapping ("Lead Vocalist" vs "vocalist") lives in a display-mapping layer
// outside this core.
func IsQualified(user *model.User, role *model.BandRole) bool {
	if user == nil || role == nil {
		return false
	}
	if role.IsFull() {
		return false
	}

	want := sanitizer.NormalizeRole(role.Role)
	if want == "" {
		return false
	}

	if sanitizer.NormalizeRole(user.Instrument) == want {
		return true
	}
	if sanitizer.NormalizeRole(user.RoleType) == want {
		return true
	}
	return false
}
