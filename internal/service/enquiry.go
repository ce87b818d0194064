package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tilestudio/site/internal/domain"
	"github.com/tilestudio/site/internal/repository"
	"github.com/tilestudio/site/pkg/logger"
)

// EnquiryService records contact enquiries.
type EnquiryService struct {
	repo   repository.EnquiryRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewEnquiryService creates an enquiry service persisting to repo.
func NewEnquiryService(repo repository.EnquiryRepository, logger *slog.Logger) *EnquiryService {
	return &EnquiryService{repo: repo, logger: logger, now: time.Now}
}

// SubmitEnquiryInput holds an already validated contact form.
type SubmitEnquiryInput struct {
	Name        string
	Email       string
	Phone       string
	Subject     string
	Message     string
	ProductSlug string
}

// Submit stores a new enquiry and returns it.
func (s *EnquiryService) Submit(ctx context.Context, input SubmitEnquiryInput) (*domain.Enquiry, error) {
	e := &domain.Enquiry{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:       strings.TrimSpace(input.Phone),
		Subject:     strings.TrimSpace(input.Subject),
		Message:     strings.TrimSpace(input.Message),
		ProductSlug: strings.TrimSpace(input.ProductSlug),
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "enquiry received",
		slog.String("enquiry_id", e.ID),
		slog.String("product_slug", e.ProductSlug),
	)
	return e, nil
}
