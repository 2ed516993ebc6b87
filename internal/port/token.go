package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type TokenIssuer interface {
	Sign(ctx context.Context, identity domain.Identity) (string, error)
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}
