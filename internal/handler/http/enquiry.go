package http

import (
	"log/slog"
	"net/http"

	"github.com/tilestudio/site/internal/service"
	"github.com/tilestudio/site/pkg/httputil"
	"github.com/tilestudio/site/pkg/validator"
)

// EnquiryHandler serves the JSON contact endpoint.
type EnquiryHandler struct {
	service *service.EnquiryService
	logger  *slog.Logger
}

// NewEnquiryHandler creates a new enquiry HTTP handler.
func NewEnquiryHandler(svc *service.EnquiryService, logger *slog.Logger) *EnquiryHandler {
	return &EnquiryHandler{service: svc, logger: logger}
}

// ContactRequest is a contact enquiry. The same struct decodes the JSON API
// body and the HTML form. Website is a honeypot left empty by people.
type ContactRequest struct {
	Name        string `json:"name" form:"name" validate:"required,min=2,max=200"`
	Email       string `json:"email" form:"email" validate:"required,email,max=254"`
	Phone       string `json:"phone" form:"phone" validate:"omitempty,e164"`
	Subject     string `json:"subject" form:"subject" validate:"max=200"`
	Message     string `json:"message" form:"message" validate:"required,min=10,max=5000"`
	ProductSlug string `json:"product_slug" form:"product" validate:"omitempty,slug,max=200"`
	Website     string `json:"website" form:"website" validate:"max=0"`
}

func (req ContactRequest) input() service.SubmitEnquiryInput {
	return service.SubmitEnquiryInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Subject:     req.Subject,
		Message:     req.Message,
		ProductSlug: req.ProductSlug,
	}
}

// SubmitEnquiry handles POST /api/v1/contact.
func (h *EnquiryHandler) SubmitEnquiry(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	enquiry, err := h.service.Submit(r.Context(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: map[string]any{
			"id":         enquiry.ID,
			"created_at": enquiry.CreatedAt,
		},
	})
}
