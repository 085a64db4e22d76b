package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const japaneseCSV = "注文番号,顧客名,金額,注文日\nRKT-1001,山田太郎,1200,2025/03/01\n"

func encodeAs(t *testing.T, enc encoding.Encoding, s string) []byte {
	t.Helper()
	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(s))
	require.NoError(t, err)
	return out
}

func TestDetectEncoding(t *testing.T) {
	t.Run("empty input is UTF-8", func(t *testing.T) {
		res := DetectEncoding(nil)

		assert.Equal(t, EncodingUTF8, res.Encoding)
		assert.Equal(t, 1.0, res.Confidence)
		assert.True(t, res.Usable())
	})

	t.Run("UTF-8 BOM", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(japaneseCSV)...)

		res := DetectEncoding(data)

		assert.Equal(t, EncodingUTF8, res.Encoding)
		assert.Equal(t, 1.0, res.Confidence)
		assert.Equal(t, japaneseCSV, res.Text)
		assert.True(t, res.LikelyJapanese)
		assert.True(t, res.Usable())
	})

	t.Run("UTF-16LE BOM", func(t *testing.T) {
		text := "a,b\n1,2\n"
		data := []byte{0xFF, 0xFE}
		for _, c := range []byte(text) {
			data = append(data, c, 0x00)
		}

		res := DetectEncoding(data)

		assert.Equal(t, EncodingUTF16LE, res.Encoding)
		assert.Equal(t, 1.0, res.Confidence)
		assert.Equal(t, text, res.Text)
		assert.True(t, res.Usable())
	})

	t.Run("UTF-16BE BOM", func(t *testing.T) {
		text := "a,b\n1,2\n"
		data := []byte{0xFE, 0xFF}
		for _, c := range []byte(text) {
			data = append(data, 0x00, c)
		}

		res := DetectEncoding(data)

		assert.Equal(t, EncodingUTF16BE, res.Encoding)
		assert.Equal(t, 1.0, res.Confidence)
		assert.Equal(t, text, res.Text)
	})

	t.Run("ISO-2022-JP escape sequence", func(t *testing.T) {
		data := encodeAs(t, japanese.ISO2022JP, japaneseCSV)

		res := DetectEncoding(data)

		assert.Equal(t, EncodingISO2022JP, res.Encoding)
		assert.Equal(t, 0.95, res.Confidence)
		assert.Equal(t, japaneseCSV, res.Text)
		assert.True(t, res.LikelyJapanese)
		assert.True(t, res.Usable())
	})

	t.Run("Shift_JIS", func(t *testing.T) {
		data := encodeAs(t, japanese.ShiftJIS, japaneseCSV)

		res := DetectEncoding(data)

		assert.Equal(t, EncodingShiftJIS, res.Encoding)
		assert.Equal(t, japaneseCSV, res.Text)
		assert.True(t, res.LikelyJapanese)
		assert.True(t, res.Usable())
	})

	t.Run("EUC-JP", func(t *testing.T) {
		data := encodeAs(t, japanese.EUCJP, japaneseCSV)

		res := DetectEncoding(data)

		assert.Equal(t, EncodingEUCJP, res.Encoding)
		assert.Equal(t, japaneseCSV, res.Text)
		assert.True(t, res.LikelyJapanese)
		assert.True(t, res.Usable())
	})

	t.Run("UTF-8 without BOM", func(t *testing.T) {
		res := DetectEncoding([]byte(japaneseCSV))

		assert.Equal(t, EncodingUTF8, res.Encoding)
		assert.Equal(t, japaneseCSV, res.Text)
		assert.True(t, res.LikelyJapanese)
		assert.True(t, res.Usable())
	})

	t.Run("pure ASCII resolves to UTF-8", func(t *testing.T) {
		res := DetectEncoding([]byte("id,name,price\n1,Alice,100\n"))

		assert.Equal(t, EncodingUTF8, res.Encoding)
		assert.False(t, res.LikelyJapanese)
		assert.True(t, res.Usable())
	})

	t.Run("undecodable bytes are not usable", func(t *testing.T) {
		res := DetectEncoding([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

		assert.False(t, res.Usable())
	})
}

func TestDetectionResultUsable(t *testing.T) {
	assert.True(t, DetectionResult{Confidence: MinEncodingConfidence}.Usable())
	assert.False(t, DetectionResult{Confidence: 0.29}.Usable())
	assert.False(t, DetectionResult{Confidence: 0.9, Garbled: true}.Usable())
}

func TestIsGarbled(t *testing.T) {
	assert.False(t, isGarbled("注文番号,顧客名\nRKT-1,山田\n"))
	assert.True(t, isGarbled("abc�def"))
	assert.True(t, isGarbled("ok\x01\x02\x03\x04ok"))
	assert.False(t, isGarbled("ok\x01\x02\x03ok"), "short control runs are tolerated")
	assert.False(t, isGarbled("tabs\tand\nnewlines\r\n"))
}

func TestJapaneseDensity(t *testing.T) {
	assert.Equal(t, 0.0, japaneseDensity("ascii only"))
	assert.Equal(t, 1.0, japaneseDensity("注文"))
	assert.InDelta(t, 0.5, japaneseDensity("注é"), 0.001)
}
