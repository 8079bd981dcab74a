package coordinator

import "context"

// Acquire exposes acquire to the external tests
func Acquire(c *Coordinator, ctx context.Context, roots ...string) (context.Context, func(), error) {
	return c.acquire(ctx, roots...)
}
