package ports

import (
	"context"

	"github.com/aretw0/onboard/pkg/domain"
)

// Submitter sends a complete registration to the remote endpoint.
// Implementations issue exactly one request per call and never retry.
type Submitter interface {
	Submit(ctx context.Context, sub *domain.Submission) error
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, sub *domain.Submission) error

// Submit calls f(ctx, sub).
func (f SubmitterFunc) Submit(ctx context.Context, sub *domain.Submission) error {
	return f(ctx, sub)
}
