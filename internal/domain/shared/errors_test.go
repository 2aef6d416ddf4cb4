package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewNotFoundError("product", uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidInput))

	wrapped := fmt.Errorf("load: %w", NewValidationError("bad quantity"))
	assert.True(t, errors.Is(wrapped, ErrInvalidInput))
}

func TestNewNotFoundError_NamesEntity(t *testing.T) {
	id := uuid.New()
	err := NewNotFoundError("product", id)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Contains(t, err.Message, id.String())
	assert.Contains(t, err.Message, "product")
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2, 3}, 21, 1, 10)
	assert.Equal(t, 3, p.TotalPages)

	empty := NewPaginated([]int{}, 0, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)

	exact := NewPaginated([]int{}, 20, 2, 10)
	assert.Equal(t, 2, exact.TotalPages)
}
