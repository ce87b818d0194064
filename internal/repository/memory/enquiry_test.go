package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilestudio/site/internal/domain"
	apperrors "github.com/tilestudio/site/pkg/errors"
)

func TestEnquiryRepository_Create(t *testing.T) {
	repo := NewEnquiryRepository()
	ctx := context.Background()

	e := &domain.Enquiry{ID: "a", Name: "Ayla", Email: "ayla@example.com", Message: "Hello"}
	require.NoError(t, repo.Create(ctx, e))
	require.NoError(t, repo.Create(ctx, &domain.Enquiry{ID: "b", Name: "Deniz"}))

	e.Name = "changed"
	all := repo.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Ayla", all[0].Name)
	assert.Equal(t, "b", all[1].ID)
}

func TestEnquiryRepository_DuplicateID(t *testing.T) {
	repo := NewEnquiryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Enquiry{ID: "a"}))
	err := repo.Create(ctx, &domain.Enquiry{ID: "a"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Len(t, repo.All(), 1)
}
