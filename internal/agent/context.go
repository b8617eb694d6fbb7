package agent

import "context"

type contextKey int

const userIDContextKey contextKey = iota

// ContextWithUserID attaches the acting user's id to ctx so a Tool's
// Execute can recover it without the registry threading it through every
// call signature.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the acting user's id stashed by
// ContextWithUserID, or "" if none was set.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey).(string)
	return userID
}
