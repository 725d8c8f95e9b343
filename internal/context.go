package internal

import (
	"context"
	"fmt"
	"time"
)

type ctxKey string

const (
	ContextAuthenticationKey ctxKey = "authentication"
	ContextClientInfoKey     ctxKey = "clientInfo"
)

// UserPrincipal is the principal placed in the context by the auth middleware
// once a bearer token has been verified.
type UserPrincipal struct {
	UserID   int64
	Email    string
	RoleName string
}

// AnonymousPrincipal marks a request that went through authentication without credentials.
type AnonymousPrincipal struct{}

// Authentication is the request-scoped security context. Principal is usually a
// UserPrincipal; any other value is a wiring error on the caller's side.
type Authentication struct {
	Principal     any
	Authenticated bool
}

func (a *Authentication) IsAnonymous() bool {
	if a == nil {
		return true
	}
	switch a.Principal.(type) {
	case AnonymousPrincipal, *AnonymousPrincipal, nil:
		return true
	}
	return false
}

func NewUserAuthentication(p UserPrincipal) *Authentication {
	return &Authentication{Principal: p, Authenticated: true}
}

func NewAnonymousAuthentication() *Authentication {
	return &Authentication{Principal: AnonymousPrincipal{}, Authenticated: false}
}

func ContextWithAuthentication(ctx context.Context, auth *Authentication) context.Context {
	return context.WithValue(ctx, ContextAuthenticationKey, auth)
}

func AuthenticationFromContext(ctx context.Context) (*Authentication, bool) {
	if ctx == nil {
		return nil, false
	}
	auth, ok := ctx.Value(ContextAuthenticationKey).(*Authentication)
	if !ok || auth == nil {
		return nil, false
	}
	return auth, true
}

// UserPrincipal returns the user principal of the authentication. Any other principal
// shape, or a user principal without an id, is ErrInvalidPrincipal.
func (a *Authentication) UserPrincipal() (UserPrincipal, error) {
	var principal UserPrincipal
	switch p := a.Principal.(type) {
	case UserPrincipal:
		principal = p
	case *UserPrincipal:
		if p != nil {
			principal = *p
		}
	default:
		return UserPrincipal{}, ErrInvalidPrincipal.WithDetails(map[string]string{
			"principal_type": fmt.Sprintf("%T", a.Principal),
		})
	}

	if principal.UserID <= 0 {
		return UserPrincipal{}, ErrInvalidPrincipal.WithMessage("Authenticated principal carries no user id")
	}
	return principal, nil
}

// UserPrincipalFromContext returns the authenticated user principal, if any.
func UserPrincipalFromContext(ctx context.Context) (UserPrincipal, bool) {
	auth, ok := AuthenticationFromContext(ctx)
	if !ok || !auth.Authenticated {
		return UserPrincipal{}, false
	}
	principal, err := auth.UserPrincipal()
	if err != nil {
		return UserPrincipal{}, false
	}
	return principal, true
}

// ClientInfo describes where a request came from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
	TraceID   string
}

func ContextWithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, ContextClientInfoKey, info)
}

func ClientInfoFromContext(ctx context.Context) ClientInfo {
	if ctx == nil {
		return ClientInfo{}
	}
	if info, ok := ctx.Value(ContextClientInfoKey).(ClientInfo); ok {
		return info
	}
	return ClientInfo{}
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
