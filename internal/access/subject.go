package access

import (
	"context"
	"sort"
)

// Subject is the resolved current user as the evaluator sees it.
type Subject struct {
	ID                    int64
	Email                 string
	RoleName              string
	RolePermissions       []string
	AdditionalPermissions []string
	PharmacyID            *int64
	// Deactivated is set when the user, or the user's role, has been switched off.
	Deactivated bool
}

// SubjectLoader loads a subject by user id. A missing user is (nil, nil).
type SubjectLoader interface {
	LoadSubject(ctx context.Context, userID int64) (*Subject, error)
}

func (s *Subject) InRole(roleName string) bool {
	return s.RoleName == roleName
}

// HasPermission checks the role's set first, then the additional grants.
func (s *Subject) HasPermission(permission string) bool {
	return contains(s.RolePermissions, permission) || contains(s.AdditionalPermissions, permission)
}

func (s *Subject) HasAnyPermission(permissions ...string) bool {
	for _, p := range permissions {
		if s.HasPermission(p) {
			return true
		}
	}
	return false
}

// EffectivePermissions is the sorted, de-duplicated union of both sets.
func (s *Subject) EffectivePermissions() []string {
	seen := make(map[string]struct{}, len(s.RolePermissions)+len(s.AdditionalPermissions))
	out := make([]string, 0, len(seen))
	for _, set := range [][]string{s.RolePermissions, s.AdditionalPermissions} {
		for _, p := range set {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func contains(set []string, name string) bool {
	for _, p := range set {
		if p == name {
			return true
		}
	}
	return false
}
