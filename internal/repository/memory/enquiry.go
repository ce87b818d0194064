// Package memory keeps enquiries in process memory. It backs local runs
// that have no database.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tilestudio/site/internal/domain"
	apperrors "github.com/tilestudio/site/pkg/errors"
)

// EnquiryRepository implements repository.EnquiryRepository in memory.
type EnquiryRepository struct {
	mu        sync.RWMutex
	enquiries []domain.Enquiry
	ids       map[string]struct{}
}

// NewEnquiryRepository creates an empty repository.
func NewEnquiryRepository() *EnquiryRepository {
	return &EnquiryRepository{ids: make(map[string]struct{})}
}

// Create stores a copy of e.
func (r *EnquiryRepository) Create(_ context.Context, e *domain.Enquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[e.ID]; ok {
		return apperrors.Conflict(fmt.Sprintf("enquiry %s already exists", e.ID))
	}
	r.ids[e.ID] = struct{}{}
	r.enquiries = append(r.enquiries, *e)
	return nil
}

// All returns the stored enquiries in insertion order.
func (r *EnquiryRepository) All() []domain.Enquiry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Enquiry(nil), r.enquiries...)
}
