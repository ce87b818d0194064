package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tilestudio/site/internal/domain"
	"github.com/tilestudio/site/pkg/database"
	apperrors "github.com/tilestudio/site/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema migrations of the enquiry store.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

const insertEnquirySQL = `
	INSERT INTO enquiries (id, name, email, phone, subject, message, product_slug, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// EnquiryRepository implements repository.EnquiryRepository using PostgreSQL.
type EnquiryRepository struct {
	db     database.DBTX
	tracer database.QueryTracer
}

// NewEnquiryRepository creates a PostgreSQL-backed enquiry repository.
func NewEnquiryRepository(db database.DBTX, tracer database.QueryTracer) *EnquiryRepository {
	return &EnquiryRepository{db: db, tracer: tracer}
}

// Create inserts a new enquiry.
func (r *EnquiryRepository) Create(ctx context.Context, e *domain.Enquiry) (err error) {
	ctx, end := r.tracer.Trace(ctx, "InsertEnquiry", insertEnquirySQL)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, insertEnquirySQL,
		e.ID,
		e.Name,
		e.Email,
		e.Phone,
		e.Subject,
		e.Message,
		e.ProductSlug,
		e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("enquiry %s already exists", e.ID))
		}
		return fmt.Errorf("insert enquiry: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
