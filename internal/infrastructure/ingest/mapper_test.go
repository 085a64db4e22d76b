package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orderhub/backend/internal/domain/order"
)

func rowOf(values map[string]string) *Row {
	return &Row{Line: 1, Values: values}
}

func TestMapRow(t *testing.T) {
	registry := DefaultRegistry()

	t.Run("rakuten row", func(t *testing.T) {
		schema := registry.Get(order.SourceRakuten)
		row := rowOf(map[string]string{
			"注文番号": "RKT-1001",
			"顧客名":  "山田太郎",
			"金額":   "1200",
			"注文日":  "2025/03/01",
			"電話番号": "090-1234-5678",
		})

		mapped := MapRow(schema, row)

		assert.Equal(t, "RKT-1001", mapped[FieldOrderCode])
		assert.Equal(t, "山田太郎", mapped[FieldCustomerName])
		assert.Equal(t, "1200", mapped[FieldPrice])
		assert.Equal(t, "2025/03/01", mapped[FieldOrderDate])
		assert.Equal(t, "090-1234-5678", mapped[FieldPhone])
		assert.Equal(t, "", mapped[FieldNotes])
	})

	t.Run("synonyms resolve in preference order", func(t *testing.T) {
		schema := registry.Get(order.SourceRakuten)
		row := rowOf(map[string]string{
			"注文者氏名": "注文者",
			"送付先氏名": "送付先",
		})

		mapped := MapRow(schema, row)

		assert.Equal(t, "注文者", mapped[FieldCustomerName])
	})

	t.Run("empty preferred synonym falls through", func(t *testing.T) {
		schema := registry.Get(order.SourceRakuten)
		row := rowOf(map[string]string{
			"顧客名":  "  ",
			"注文者氏名": "山田",
		})

		mapped := MapRow(schema, row)

		assert.Equal(t, "山田", mapped[FieldCustomerName])
	})

	t.Run("composite address assembles in part order", func(t *testing.T) {
		schema := registry.Get(order.SourceRakuten)
		row := rowOf(map[string]string{
			"送付先都道府県": "東京都",
			"送付先市区町村": "千代田区",
			"送付先住所1":  "1-2-3",
			"送付先住所2":  "サンプルビル4F",
		})

		mapped := MapRow(schema, row)

		assert.Equal(t, "東京都千代田区1-2-3サンプルビル4F", mapped[FieldAddress])
	})

	t.Run("single column address beats composite", func(t *testing.T) {
		schema := registry.Get(order.SourceRakuten)
		row := rowOf(map[string]string{
			"住所":      "大阪府大阪市1-1",
			"送付先都道府県": "東京都",
		})

		mapped := MapRow(schema, row)

		assert.Equal(t, "大阪府大阪市1-1", mapped[FieldAddress])
	})

	t.Run("absent composite parts are skipped", func(t *testing.T) {
		schema := registry.Get(order.SourceYahoo)
		row := rowOf(map[string]string{
			"ShipPrefecture": "東京都",
			"ShipAddress1":   "1-2-3",
		})

		mapped := MapRow(schema, row)

		assert.Equal(t, "東京都1-2-3", mapped[FieldAddress])
	})

	t.Run("missing fields map to empty strings", func(t *testing.T) {
		schema := registry.Get(order.SourceYahoo)
		row := rowOf(map[string]string{"OrderId": "Y-1"})

		mapped := MapRow(schema, row)

		assert.Equal(t, "Y-1", mapped[FieldOrderCode])
		assert.Equal(t, "", mapped[FieldCustomerName])
		assert.Equal(t, "", mapped[FieldPrice])
		assert.Len(t, mapped, 8)
	})
}
