// Package ctxkeys defines typed context keys shared between middleware and
// handlers. This avoids import cycles: both middleware and handlers import
// this package, but neither imports the other for context key types.
package ctxkeys

import "context"

// Key is a typed string used as context key to prevent collisions.
type Key string

// UserID carries the authenticated user's ID through the request context.
const UserID Key = "userID"

// GetUserID returns the authenticated user's ID, or "" if the request
// did not pass through the auth middleware.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(UserID).(string)
	return id
}
