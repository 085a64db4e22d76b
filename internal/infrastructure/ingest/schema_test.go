package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderhub/backend/internal/domain/order"
)

func TestRegistryAnalyze(t *testing.T) {
	registry := DefaultRegistry()

	t.Run("rakuten headers", func(t *testing.T) {
		analysis := registry.Analyze([]string{"注文番号", "顧客名", "金額", "注文日"})

		assert.Equal(t, order.SourceRakuten, analysis.Source)
		assert.Equal(t, 1.0, analysis.Scores[order.SourceRakuten])
		assert.True(t, analysis.HasRequiredFields)
		assert.Empty(t, analysis.MissingFields)
	})

	t.Run("rakuten synonym headers", func(t *testing.T) {
		analysis := registry.Analyze([]string{"受注番号", "注文者氏名", "商品合計金額"})

		assert.Equal(t, order.SourceRakuten, analysis.Source)
		assert.True(t, analysis.HasRequiredFields)
	})

	t.Run("yahoo headers", func(t *testing.T) {
		analysis := registry.Analyze([]string{"OrderId", "ShipName", "TotalPrice", "OrderTime"})

		assert.Equal(t, order.SourceYahoo, analysis.Source)
		assert.Equal(t, 1.0, analysis.Scores[order.SourceYahoo])
		assert.True(t, analysis.HasRequiredFields)
	})

	t.Run("unrelated headers stay unknown", func(t *testing.T) {
		analysis := registry.Analyze([]string{"foo", "bar", "baz"})

		assert.Equal(t, order.SourceUnknown, analysis.Source)
		assert.False(t, analysis.HasRequiredFields)
		assert.ElementsMatch(t, RequiredFields, analysis.MissingFields)
	})

	t.Run("below threshold stays unknown", func(t *testing.T) {
		// one of three required fields matches, score 1/3 < 0.5
		analysis := registry.Analyze([]string{"注文番号", "foo", "bar"})

		assert.Equal(t, order.SourceUnknown, analysis.Source)
		assert.InDelta(t, 1.0/3.0, analysis.Scores[order.SourceRakuten], 0.001)
	})

	t.Run("partial match above threshold wins with missing fields", func(t *testing.T) {
		analysis := registry.Analyze([]string{"注文番号", "顧客名", "注文日"})

		assert.Equal(t, order.SourceRakuten, analysis.Source)
		assert.False(t, analysis.HasRequiredFields)
		assert.Equal(t, []Field{FieldPrice}, analysis.MissingFields)
	})

	t.Run("composite parts count toward required fields", func(t *testing.T) {
		analysis := registry.Analyze([]string{"OrderId", "ShipName", "TotalPrice", "ShipPrefecture", "ShipCity"})

		assert.Equal(t, order.SourceYahoo, analysis.Source)
		assert.True(t, analysis.HasRequiredFields)
	})

	t.Run("shared header scores both schemas", func(t *testing.T) {
		// 商品合計金額 is a price spelling in both schemas
		analysis := registry.Analyze([]string{"商品合計金額"})

		assert.InDelta(t, 1.0/3.0, analysis.Scores[order.SourceRakuten], 0.001)
		assert.InDelta(t, 1.0/3.0, analysis.Scores[order.SourceYahoo], 0.001)
		assert.Equal(t, order.SourceUnknown, analysis.Source)
	})
}

func TestRegistryApplyHint(t *testing.T) {
	registry := DefaultRegistry()

	t.Run("hint wins within tolerance", func(t *testing.T) {
		// both schemas score 2/3: the headers carry each schema's order
		// code spelling plus the shared price spelling
		headers := []string{"注文番号", "注文ID", "商品合計金額"}
		analysis := registry.Analyze(headers)
		require.Equal(t, order.SourceRakuten, analysis.Source)

		hinted := registry.ApplyHint(analysis, order.SourceYahoo)

		assert.Equal(t, order.SourceYahoo, hinted.Source)
	})

	t.Run("hint loses when clearly outscored", func(t *testing.T) {
		analysis := registry.Analyze([]string{"注文番号", "顧客名", "金額"})

		hinted := registry.ApplyHint(analysis, order.SourceYahoo)

		assert.Equal(t, order.SourceRakuten, hinted.Source,
			"yahoo scores 0 against pure rakuten headers")
	})

	t.Run("hint matching the automatic result is a no-op", func(t *testing.T) {
		analysis := registry.Analyze([]string{"OrderId", "ShipName", "TotalPrice"})

		hinted := registry.ApplyHint(analysis, order.SourceYahoo)

		assert.Equal(t, order.SourceYahoo, hinted.Source)
		assert.True(t, hinted.HasRequiredFields)
	})

	t.Run("unregistered hint is ignored", func(t *testing.T) {
		analysis := registry.Analyze([]string{"注文番号", "顧客名", "金額"})

		hinted := registry.ApplyHint(analysis, order.SourceUnknown)

		assert.Equal(t, order.SourceRakuten, hinted.Source)
	})

	t.Run("winning hint recomputes missing fields", func(t *testing.T) {
		headers := []string{"注文ID", "注文番号", "商品合計金額"}
		analysis := registry.Analyze(headers)

		hinted := registry.ApplyHint(analysis, order.SourceYahoo)

		assert.Equal(t, order.SourceYahoo, hinted.Source)
		assert.False(t, hinted.HasRequiredFields)
		assert.Equal(t, []Field{FieldCustomerName}, hinted.MissingFields)
	})
}

func TestRegistryAccessors(t *testing.T) {
	registry := DefaultRegistry()

	assert.Equal(t, []order.DataSource{order.SourceRakuten, order.SourceYahoo}, registry.Sources())
	require.NotNil(t, registry.Get(order.SourceRakuten))
	assert.Nil(t, registry.Get(order.SourceUnknown))
}

func TestSchemaHeaderCandidates(t *testing.T) {
	schema := DefaultRegistry().Get(order.SourceRakuten)

	candidates := schema.headerCandidates(FieldAddress)
	assert.Contains(t, candidates, "住所")
	assert.Contains(t, candidates, "送付先都道府県")
	assert.Contains(t, candidates, "建物名")
}
