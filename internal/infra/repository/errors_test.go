package repository

import (
	"errors"
	"fmt"
	"testing"

	repo "storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateWriteError(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "ux_cart_items_cart_product"}
	fk := &pgconn.PgError{Code: "23503"}
	other := errors.New("conn reset")

	assert.ErrorIs(t, translateWriteError(unique), repo.ErrDuplicate)
	assert.ErrorIs(t, translateWriteError(fmt.Errorf("insert: %w", unique)), repo.ErrDuplicate)
	assert.ErrorIs(t, translateWriteError(gorm.ErrDuplicatedKey), repo.ErrDuplicate)

	assert.Equal(t, fk, translateWriteError(fk))
	assert.Equal(t, other, translateWriteError(other))
	assert.NoError(t, translateWriteError(nil))
}
