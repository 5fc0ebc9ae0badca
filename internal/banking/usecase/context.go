package usecase

import (
	"context"

	"codbank/internal/shared/utils"
)

// ownerContext acts as uid for store calls made before a session exists.
func ownerContext(ctx context.Context, uid, role string) context.Context {
	ctx = utils.WithUserID(ctx, uid)
	if role != "" {
		ctx = utils.WithRole(ctx, role)
	}
	return ctx
}
