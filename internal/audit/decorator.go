package audit

import (
	"context"
	"strconv"

	"github.com/teryaq/pharmacy-backend/internal"
)

// Action describes an audited operation returning T. TargetOf is consulted after a
// successful call when the target id is only known from the result (creates).
// ActorOf names the user a successful call authenticated (login), so the event is
// attributed to them rather than to whoever was on the context.
type Action[T any] struct {
	Name       string
	TargetType string
	TargetID   string
	TargetOf   func(T) string
	ActorOf    func(T) (internal.UserPrincipal, bool)
	Details    map[string]interface{}
}

// WithAudit records op's outcome on rec, success or failure, and returns op's result unchanged.
func WithAudit[T any](rec *Recorder, action Action[T], op func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		result, err := op(ctx)
		if rec == nil {
			return result, err
		}

		targetID := action.TargetID
		recordCtx := ctx
		if err == nil {
			if action.TargetOf != nil {
				targetID = action.TargetOf(result)
			}
			if action.ActorOf != nil {
				if actor, ok := action.ActorOf(result); ok {
					recordCtx = internal.ContextWithAuthentication(ctx, internal.NewUserAuthentication(actor))
				}
			}
		}

		rec.Record(recordCtx, Entry{
			Action:     action.Name,
			TargetType: action.TargetType,
			TargetID:   targetID,
			Details:    action.Details,
			Err:        err,
		})
		return result, err
	}
}

func ID(id int64) string {
	return strconv.FormatInt(id, 10)
}
