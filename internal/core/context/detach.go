package context

import "context"

// Detach returns a context that keeps the parent's values (trace, user)
// but outlives its cancellation. Used for fire-and-forget work spawned
// from request handlers.
func Detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
