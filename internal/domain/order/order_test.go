package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	ownerID := uuid.New()
	orderDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates valid order", func(t *testing.T) {
		o, err := NewOrder(ownerID, "R-1001", "田中太郎", 1200, orderDate)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, o.ID)
		assert.Equal(t, ownerID, o.OwnerID)
		assert.Equal(t, "R-1001", o.OrderCode)
		assert.Equal(t, "田中太郎", o.CustomerName)
		assert.Equal(t, int64(1200), o.PriceYen)
		assert.Equal(t, orderDate, o.OrderDate)
		assert.Equal(t, SourceUnknown, o.Source)
		assert.Nil(t, o.DeliveryDate)
	})

	t.Run("trims code and name", func(t *testing.T) {
		o, err := NewOrder(ownerID, "  A1  ", " Tanaka ", 0, orderDate)

		require.NoError(t, err)
		assert.Equal(t, "A1", o.OrderCode)
		assert.Equal(t, "Tanaka", o.CustomerName)
	})

	t.Run("rejects empty owner", func(t *testing.T) {
		_, err := NewOrder(uuid.Nil, "A1", "Tanaka", 100, orderDate)
		assert.Error(t, err)
	})

	t.Run("rejects blank order code", func(t *testing.T) {
		_, err := NewOrder(ownerID, "   ", "Tanaka", 100, orderDate)
		assert.Error(t, err)
	})

	t.Run("rejects blank customer name", func(t *testing.T) {
		_, err := NewOrder(ownerID, "A1", "", 100, orderDate)
		assert.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewOrder(ownerID, "A1", "Tanaka", -1, orderDate)
		assert.Error(t, err)
	})

	t.Run("zero order date defaults to now", func(t *testing.T) {
		o, err := NewOrder(ownerID, "A1", "Tanaka", 100, time.Time{})

		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), o.OrderDate, time.Minute)
	})
}

func TestOrderSetters(t *testing.T) {
	ownerID := uuid.New()

	t.Run("SetSource validates", func(t *testing.T) {
		o, err := NewOrder(ownerID, "A1", "Tanaka", 100, time.Now())
		require.NoError(t, err)

		require.NoError(t, o.SetSource(SourceRakuten))
		assert.Equal(t, SourceRakuten, o.Source)

		assert.Error(t, o.SetSource(DataSource("amazon")))
	})

	t.Run("SetDeliveryDate accepts nil", func(t *testing.T) {
		o, err := NewOrder(ownerID, "A1", "Tanaka", 100, time.Now())
		require.NoError(t, err)

		d := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
		o.SetDeliveryDate(&d)
		require.NotNil(t, o.DeliveryDate)

		o.SetDeliveryDate(nil)
		assert.Nil(t, o.DeliveryDate)
	})

	t.Run("SetCategory with nil UUID clears", func(t *testing.T) {
		o, err := NewOrder(ownerID, "A1", "Tanaka", 100, time.Now())
		require.NoError(t, err)

		catID := uuid.New()
		o.SetCategory(catID)
		require.NotNil(t, o.CategoryID)
		assert.Equal(t, catID, *o.CategoryID)

		o.SetCategory(uuid.Nil)
		assert.Nil(t, o.CategoryID)
	})
}

func TestDataSource(t *testing.T) {
	assert.True(t, SourceRakuten.IsValid())
	assert.True(t, SourceYahoo.IsValid())
	assert.True(t, SourceUnknown.IsValid())
	assert.False(t, DataSource("mercari").IsValid())
	assert.Equal(t, "rakuten", SourceRakuten.String())
}
