package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
)

func TestCheckoutStoreLinesAndClear(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	store, err := NewCheckoutStore(NewRepository(f.client.DB()), NewItemRepository(f.client.DB()))
	require.NoError(t, err)

	product := f.product(t, "A", "10", 5)
	session := "checkout"
	c := &models.Cart{SessionKey: &session}
	require.NoError(t, f.client.DB().Create(c).Error)
	require.NoError(t, f.client.DB().Create(&models.CartItem{CartID: c.ID, ProductID: product.ID, Quantity: 2}).Error)

	lines, err := store.Lines(ctx, nil, c.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.NotNil(t, lines[0].Product)
	assert.Equal(t, "A", lines[0].Product.SKU)

	require.NoError(t, f.client.WithTx(ctx, func(tx *gorm.DB) error {
		return store.Clear(ctx, tx, c.ID)
	}))
	lines, err = store.Lines(ctx, nil, c.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = store.Lines(ctx, nil, uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	_, err = NewCheckoutStore(nil, nil)
	assert.Error(t, err)
}
