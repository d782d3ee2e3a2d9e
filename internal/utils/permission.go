package utils

import "github.com/iliyamo/meeting-room-reservation/internal/model"

// ResolveRoles flattens a user's roles into the view embedded in
// login responses and access tokens: the role names in encounter
// order and the union of their permissions deduplicated by code.
//
// Role names are deliberately not deduplicated; if a user somehow
// holds the same role twice the name appears twice. Permissions are
// deduplicated by Code with the first occurrence winning, iterating
// roles in order and permissions within each role in order. The
// permission code is the authorization unit, so a code granted by
// two roles must appear exactly once: the permission guard then
// runs in O(required codes) instead of O(codes held).
//
// The function is pure. The login handler and the token service
// both call it so the two views of a user never disagree.
func ResolveRoles(roles []model.Role) ([]string, []model.Permission) {
	names := make([]string, 0, len(roles))
	perms := make([]model.Permission, 0)
	seen := make(map[string]bool)
	for _, r := range roles {
		names = append(names, r.Name)
		for _, p := range r.Permissions {
			if seen[p.Code] {
				continue
			}
			seen[p.Code] = true
			perms = append(perms, p)
		}
	}
	return names, perms
}

// HasPermissionCodes reports whether every required code is present
// in the given permission set (AND semantics). An empty requirement
// is always satisfied.
func HasPermissionCodes(held []model.Permission, required []string) bool {
	if len(required) == 0 {
		return true
	}
	codes := make(map[string]bool, len(held))
	for _, p := range held {
		codes[p.Code] = true
	}
	for _, c := range required {
		if !codes[c] {
			return false
		}
	}
	return true
}
