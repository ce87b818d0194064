package domain

import "time"

// Enquiry is a message submitted through the contact page.
type Enquiry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	Message     string    `json:"message"`
	ProductSlug string    `json:"product_slug,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
