package repository

import (
	"context"

	"github.com/tilestudio/site/internal/domain"
)

// EnquiryRepository persists contact enquiries.
type EnquiryRepository interface {
	// Create stores a new enquiry. An enquiry with the same ID is a conflict.
	Create(ctx context.Context, enquiry *domain.Enquiry) error
}
