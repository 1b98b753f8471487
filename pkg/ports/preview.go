package ports

import (
	"github.com/aretw0/onboard/pkg/domain"
)

// PreviewProvider owns the resources behind attachment preview handles.
// Every handle returned by Create must be passed to Revoke exactly once.
type PreviewProvider interface {
	// Create allocates a preview for an image attachment.
	Create(att *domain.Attachment) (*domain.PreviewHandle, error)

	// Revoke releases a preview. It returns domain.ErrPreviewNotFound for
	// unknown or already revoked handles.
	Revoke(handle *domain.PreviewHandle) error

	// Live returns the number of handles created and not yet revoked.
	Live() int
}
