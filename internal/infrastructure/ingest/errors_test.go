package ingest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowErrorError(t *testing.T) {
	withField := NewRowError(3, "price", ErrCodeFieldInvalid, "price is not a number")
	assert.Equal(t, "line 3, field 'price': price is not a number", withField.Error())

	withoutField := RowError{Line: 7, Message: "row could not be parsed"}
	assert.Equal(t, "line 7: row could not be parsed", withoutField.Error())
}

func TestNewRowErrorWithValue(t *testing.T) {
	err := NewRowErrorWithValue(2, "order_date", ErrCodeFieldInvalid, "bad date", "not-a-date")

	assert.Equal(t, 2, err.Line)
	assert.Equal(t, "order_date", err.Field)
	assert.Equal(t, ErrCodeFieldInvalid, err.Code)
	assert.Equal(t, "not-a-date", err.Value)
}

func TestErrorCollection(t *testing.T) {
	t.Run("empty collection", func(t *testing.T) {
		ec := NewErrorCollection(10)

		assert.False(t, ec.HasErrors())
		assert.Equal(t, 0, ec.TotalCount())
		assert.Empty(t, ec.Errors())
		assert.Equal(t, "no errors", ec.String())
	})

	t.Run("keeps all errors under the cap", func(t *testing.T) {
		ec := NewErrorCollection(10)
		ec.Add(NewRowError(1, "price", ErrCodeFieldRequired, "price is required"))
		ec.Add(NewRowError(2, "order_code", ErrCodeFieldRequired, "order code is required"))

		assert.True(t, ec.HasErrors())
		assert.Equal(t, 2, ec.TotalCount())
		assert.Len(t, ec.Errors(), 2)
		assert.False(t, ec.IsTruncated())
	})

	t.Run("truncates beyond the cap but counts everything", func(t *testing.T) {
		ec := NewErrorCollection(3)
		for i := 1; i <= 5; i++ {
			ec.Add(NewRowError(i, "price", ErrCodeFieldInvalid, fmt.Sprintf("bad value %d", i)))
		}

		assert.Equal(t, 5, ec.TotalCount())
		assert.Len(t, ec.Errors(), 3)
		assert.True(t, ec.IsTruncated())
		assert.Contains(t, ec.String(), "5 error(s)")
		assert.Contains(t, ec.String(), "showing first 3")
	})

	t.Run("first returns a bounded prefix", func(t *testing.T) {
		ec := NewErrorCollection(10)
		ec.Add(NewRowError(1, "a", ErrCodeFieldInvalid, "one"))
		ec.Add(NewRowError(2, "b", ErrCodeFieldInvalid, "two"))

		first := ec.First(1)
		require.Len(t, first, 1)
		assert.Equal(t, 1, first[0].Line)

		assert.Len(t, ec.First(5), 2)
	})

	t.Run("non-positive cap falls back to default", func(t *testing.T) {
		ec := NewErrorCollection(0)
		for i := 0; i < 150; i++ {
			ec.Add(NewRowError(i, "f", ErrCodeFieldInvalid, "x"))
		}

		assert.Len(t, ec.Errors(), 100)
		assert.Equal(t, 150, ec.TotalCount())
	})
}
