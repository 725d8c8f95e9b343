package access

import (
	"context"
	"log/slog"

	"github.com/teryaq/pharmacy-backend/internal"
)

// Evaluator answers role and permission questions about the user authenticated on
// the context. It keeps no state between calls.
type Evaluator struct {
	loader SubjectLoader
	logger *slog.Logger
}

func NewEvaluator(loader SubjectLoader, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		loader: loader,
		logger: logger,
	}
}

// CurrentUser resolves the authenticated user. It fails with ErrUnauthenticated when the
// context carries no (or anonymous) authentication, ErrInvalidPrincipal for a foreign
// principal, ErrCurrentUserMissing when the user no longer exists and ErrUserInactive
// when the user has been deactivated since the token was issued.
func (e *Evaluator) CurrentUser(ctx context.Context) (*Subject, error) {
	auth, ok := internal.AuthenticationFromContext(ctx)
	if !ok || !auth.Authenticated || auth.IsAnonymous() {
		return nil, internal.ErrUnauthenticated
	}

	principal, err := auth.UserPrincipal()
	if err != nil {
		e.logger.ErrorContext(ctx, "authenticated principal is not a user principal", "error", err)
		return nil, err
	}

	subject, err := e.loader.LoadSubject(ctx, principal.UserID)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewInternalError("Failed to load current user", err)
	}
	if subject == nil {
		e.logger.ErrorContext(ctx, "authenticated user not found", "user_id", principal.UserID)
		return nil, internal.ErrCurrentUserMissing.WithDetails(map[string]int64{"user_id": principal.UserID})
	}
	if subject.Deactivated {
		return nil, internal.ErrUserInactive
	}
	return subject, nil
}

func (e *Evaluator) IsInRole(ctx context.Context, roleName string) (bool, error) {
	subject, err := e.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	return subject.InRole(roleName), nil
}

func (e *Evaluator) HasPermission(ctx context.Context, permission string) (bool, error) {
	subject, err := e.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	return subject.HasPermission(permission), nil
}

func (e *Evaluator) IsAdmin(ctx context.Context) (bool, error) {
	return e.IsInRole(ctx, RolePlatformAdmin)
}

func (e *Evaluator) IsPharmacyManager(ctx context.Context) (bool, error) {
	return e.IsInRole(ctx, RolePharmacyManager)
}

func (e *Evaluator) IsPharmacist(ctx context.Context) (bool, error) {
	return e.IsInRole(ctx, RolePharmacyEmployee)
}

func (e *Evaluator) IsTrainee(ctx context.Context) (bool, error) {
	return e.IsInRole(ctx, RolePharmacyTrainee)
}

func (e *Evaluator) IsCurrentUser(ctx context.Context, userID int64) (bool, error) {
	subject, err := e.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	return subject.ID == userID, nil
}

// CurrentPharmacyID returns the pharmacy the current user works for.
func (e *Evaluator) CurrentPharmacyID(ctx context.Context) (int64, error) {
	subject, err := e.CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	return PharmacyOf(subject)
}

// ValidatePharmacyAccess fails with ErrPharmacyAccess unless the current user belongs to pharmacyID.
func (e *Evaluator) ValidatePharmacyAccess(ctx context.Context, pharmacyID int64) error {
	subject, err := e.CurrentUser(ctx)
	if err != nil {
		return err
	}
	return CheckPharmacy(subject, pharmacyID)
}
