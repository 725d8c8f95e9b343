package audit

import (
	"context"

	"github.com/teryaq/pharmacy-backend/internal"
)

const (
	// SystemUserID is recorded for writes made without an authenticated user
	// (seeding, migrations, anonymous endpoints).
	SystemUserID int64 = 1

	SystemUserType = "SYSTEM"

	// UnknownUserType labels a real user whose principal carries no role.
	UnknownUserType = "UNKNOWN"
)

// AuditorResolver answers who is responsible for the current write.
type AuditorResolver interface {
	CurrentAuditor(ctx context.Context) (int64, error)
	CurrentAuditorType(ctx context.Context) string
}

// ContextResolver reads the auditor from the authentication carried by the context.
type ContextResolver struct{}

func NewResolver() ContextResolver {
	return ContextResolver{}
}

func (ContextResolver) CurrentAuditor(ctx context.Context) (int64, error) {
	auth, ok := internal.AuthenticationFromContext(ctx)
	if !ok || !auth.Authenticated || auth.IsAnonymous() {
		return SystemUserID, nil
	}

	principal, err := auth.UserPrincipal()
	if err != nil {
		return 0, err
	}
	return principal.UserID, nil
}

func (ContextResolver) CurrentAuditorType(ctx context.Context) string {
	auth, ok := internal.AuthenticationFromContext(ctx)
	if !ok || !auth.Authenticated || auth.IsAnonymous() {
		return SystemUserType
	}

	principal, err := auth.UserPrincipal()
	if err != nil || principal.RoleName == "" {
		return UnknownUserType
	}
	return principal.RoleName
}
