package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConcurrencyTestProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Lamp", "", "home", decimal.NewFromInt(20), 5)
	require.NoError(t, err)
	return p
}

// TestProductSave_OptimisticLocking checks that Save only updates the row
// when the stored version still matches the loaded one
func TestProductSave_OptimisticLocking(t *testing.T) {
	t.Run("successful save advances version", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		gormDB, mock := mdb.DB, mdb.Mock
		repo := NewGormProductRepository(gormDB)

		product := newConcurrencyTestProduct(t)

		mock.ExpectExec(`UPDATE "products" SET .* WHERE \(?id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Save(context.Background(), product)

		require.NoError(t, err)
		assert.Equal(t, 2, product.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version yields a conflict", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		gormDB, mock := mdb.DB, mdb.Mock
		repo := NewGormProductRepository(gormDB)

		product := newConcurrencyTestProduct(t)

		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
			WithArgs(product.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repo.Save(context.Background(), product)

		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
		assert.Equal(t, 1, product.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row yields not found", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		gormDB, mock := mdb.DB, mdb.Mock
		repo := NewGormProductRepository(gormDB)

		product := newConcurrencyTestProduct(t)

		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		err := repo.Save(context.Background(), product)

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("database error is returned as is", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		gormDB, mock := mdb.DB, mdb.Mock
		repo := NewGormProductRepository(gormDB)

		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnError(assert.AnError)

		err := repo.Save(context.Background(), newConcurrencyTestProduct(t))

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestDecrementStock_ConditionalUpdate(t *testing.T) {
	t.Run("decrement guarded by stock predicate", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		gormDB, mock := mdb.DB, mdb.Mock
		repo := NewGormProductRepository(gormDB)
		id := uuid.New()

		mock.ExpectExec(`UPDATE "products" SET .*"stock"=stock - \$\d+.* WHERE \(?id = \$\d+ AND stock >= \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DecrementStock(context.Background(), id, 3)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
