package domain

import "context"

type CtxKey string

const (
	KeyRequestID CtxKey = "RequestID"
)

// RequestIDFrom returns the request ID stored by the RequestID middleware
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(KeyRequestID).(string)
	return id
}
