package ingest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderhub/backend/internal/domain/order"
)

func TestDiagnosticRedacted(t *testing.T) {
	d := Diagnostic{
		Severity: SeverityCritical,
		Category: CategoryEncoding,
		Message:  "undecodable",
		Debug:    map[string]any{"detected_encoding": "Shift_JIS"},
	}

	redacted := d.Redacted()

	assert.Nil(t, redacted.Debug)
	assert.NotNil(t, d.Debug, "original keeps its payload")
	assert.Equal(t, d.Message, redacted.Message)
}

func TestDiagnosticIsCritical(t *testing.T) {
	assert.True(t, Diagnostic{Severity: SeverityCritical}.IsCritical())
	assert.False(t, Diagnostic{Severity: SeverityWarning}.IsCritical())
	assert.False(t, Diagnostic{Severity: SeverityInfo}.IsCritical())
}

func TestNewEncodingDiagnostic(t *testing.T) {
	t.Run("low confidence", func(t *testing.T) {
		d := NewEncodingDiagnostic(DetectionResult{Encoding: EncodingShiftJIS, Confidence: 0.2})

		assert.Equal(t, SeverityCritical, d.Severity)
		assert.Equal(t, CategoryEncoding, d.Category)
		assert.Contains(t, d.Message, "Shift_JIS")
		assert.Contains(t, d.Message, "20%")
		require.NotEmpty(t, d.Suggestions)
		assert.Contains(t, d.Suggestions[0], "UTF-8")
		assert.Equal(t, EncodingShiftJIS, d.Debug["detected_encoding"])
	})

	t.Run("garbled decode", func(t *testing.T) {
		d := NewEncodingDiagnostic(DetectionResult{Encoding: EncodingEUCJP, Confidence: 0.8, Garbled: true})

		assert.Contains(t, d.Message, "garbled")
		assert.Contains(t, d.Message, "EUC-JP")
	})
}

func TestNewMissingFieldsDiagnostic(t *testing.T) {
	t.Run("with classified schema", func(t *testing.T) {
		schema := DefaultRegistry().Get(order.SourceRakuten)

		d := NewMissingFieldsDiagnostic(schema, []Field{FieldPrice})

		assert.Equal(t, SeverityCritical, d.Severity)
		assert.Equal(t, CategoryMissingFields, d.Category)
		assert.Contains(t, d.Message, "price")
		require.Len(t, d.Suggestions, 1)
		assert.Contains(t, d.Suggestions[0], "金額")
		assert.Contains(t, d.Suggestions[0], "商品合計金額")
	})

	t.Run("without schema", func(t *testing.T) {
		d := NewMissingFieldsDiagnostic(nil, []Field{FieldOrderCode, FieldPrice})

		assert.Contains(t, d.Message, "order_code")
		assert.Contains(t, d.Message, "price")
		require.NotEmpty(t, d.Suggestions)
		assert.Contains(t, d.Suggestions[0], "admin console")
	})
}

func TestNewUnknownSourceDiagnostic(t *testing.T) {
	registry := DefaultRegistry()

	d := NewUnknownSourceDiagnostic(registry, []string{"foo", "bar"})

	assert.Equal(t, SeverityCritical, d.Severity)
	assert.Equal(t, CategoryMissingFields, d.Category)
	require.NotEmpty(t, d.Suggestions)
	assert.Contains(t, d.Suggestions[0], "rakuten")
	assert.Contains(t, d.Suggestions[0], "yahoo")
	assert.Equal(t, []string{"foo", "bar"}, d.Debug["headers"])
}

func TestNewFileFormatDiagnostic(t *testing.T) {
	d := NewFileFormatDiagnostic("The file is empty.", "Upload a non-empty CSV file.")

	assert.Equal(t, SeverityCritical, d.Severity)
	assert.Equal(t, CategoryFileFormat, d.Category)
	assert.Equal(t, "The file is empty.", d.Message)
	assert.Equal(t, []string{"Upload a non-empty CSV file."}, d.Suggestions)
}

func TestNewValidationDiagnostic(t *testing.T) {
	t.Run("quotes the first errors", func(t *testing.T) {
		ec := NewErrorCollection(100)
		ec.Add(NewRowError(2, "price", ErrCodeFieldInvalid, "price is not a number"))
		ec.Add(NewRowError(5, "order_code", ErrCodeFieldRequired, "order code is required"))

		d := NewValidationDiagnostic(10, 2, ec)

		assert.Equal(t, SeverityWarning, d.Severity)
		assert.Equal(t, CategoryValidation, d.Category)
		assert.Contains(t, d.Message, "2 of 10 rows failed validation (8 valid)")
		assert.Contains(t, d.Message, "line 2, field 'price'")
		assert.Contains(t, d.Message, "line 5")
	})

	t.Run("caps the quoted errors", func(t *testing.T) {
		ec := NewErrorCollection(100)
		for i := 1; i <= 10; i++ {
			ec.Add(NewRowError(i, "price", ErrCodeFieldInvalid, fmt.Sprintf("bad %d", i)))
		}

		d := NewValidationDiagnostic(10, 10, ec)

		assert.Contains(t, d.Message, "bad 5")
		assert.NotContains(t, d.Message, "bad 6")
	})
}

func TestNewDuplicateDiagnostic(t *testing.T) {
	existing := map[string]any{"customer_name": "山田太郎", "price_yen": int64(1200)}
	incoming := map[string]any{"customer_name": "山田太郎", "price_yen": int64(1500)}

	d := NewDuplicateDiagnostic(3, "RKT-1001", existing, incoming)

	assert.Equal(t, SeverityInfo, d.Severity)
	assert.Equal(t, CategoryDuplicate, d.Category)
	assert.Contains(t, d.Message, "Line 3")
	assert.Contains(t, d.Message, "RKT-1001")
	assert.Equal(t, existing, d.Debug["existing"])
	assert.Equal(t, incoming, d.Debug["incoming"])
}

func TestNewUnknownDiagnostic(t *testing.T) {
	d := NewUnknownDiagnostic("req-123", fmt.Errorf("connection reset"))

	assert.Equal(t, SeverityCritical, d.Severity)
	assert.Equal(t, CategoryUnknown, d.Category)
	assert.Contains(t, d.Message, "req-123")
	assert.NotContains(t, d.Message, "connection reset")
	assert.Equal(t, "connection reset", d.Debug["error"])
}
