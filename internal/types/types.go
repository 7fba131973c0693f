package types

import (
	"context"

	"github.com/clindoc/compkit/internal/models"
)

// Core interfaces

// Completer issues a single chat completion against the external model.
// The server depends on this seam rather than a concrete client so the
// request path can be tested without live network calls.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, models.Usage, error)
	Model() string
}
