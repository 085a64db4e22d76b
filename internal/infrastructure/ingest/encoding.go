package ingest

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	textunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding labels reported in detection results and diagnostics
const (
	EncodingUTF8      = "UTF-8"
	EncodingUTF16LE   = "UTF-16LE"
	EncodingUTF16BE   = "UTF-16BE"
	EncodingShiftJIS  = "Shift_JIS"
	EncodingEUCJP     = "EUC-JP"
	EncodingISO2022JP = "ISO-2022-JP"
)

const (
	// MinEncodingConfidence is the threshold below which a file is treated
	// as undecodable and the pipeline halts before parsing.
	MinEncodingConfidence = 0.3

	// japaneseDensityThreshold marks decoded text as likely Japanese.
	japaneseDensityThreshold = 0.05

	// garbledControlRun is the length of a run of raw control characters
	// that marks decoded text as garbled.
	garbledControlRun = 4
)

// DetectionResult describes how a byte buffer was decoded
type DetectionResult struct {
	Encoding       string  `json:"encoding"`
	Confidence     float64 `json:"confidence"`
	Text           string  `json:"-"`
	LikelyJapanese bool    `json:"likely_japanese"`
	Garbled        bool    `json:"garbled"`
}

// Usable reports whether the decoded text is trustworthy enough to parse
func (r DetectionResult) Usable() bool {
	return r.Confidence >= MinEncodingConfidence && !r.Garbled
}

// DetectEncoding infers the byte encoding of data, decodes it, and reports
// a confidence score. It never fails on malformed input; undecodable byte
// sequences are substituted with U+FFFD and surfaced via the Garbled flag.
func DetectEncoding(data []byte) DetectionResult {
	if len(data) == 0 {
		return DetectionResult{Encoding: EncodingUTF8, Confidence: 1.0}
	}

	// BOM shortcuts
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return finishDetection(EncodingUTF8, 1.0, string(data[3:]))
	}
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) {
		return decodeWith(EncodingUTF16LE, 1.0, data,
			textunicode.UTF16(textunicode.LittleEndian, textunicode.ExpectBOM).NewDecoder())
	}
	if bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		return decodeWith(EncodingUTF16BE, 1.0, data,
			textunicode.UTF16(textunicode.BigEndian, textunicode.ExpectBOM).NewDecoder())
	}

	// ISO-2022-JP announces itself with escape sequences
	if bytes.Contains(data, []byte("\x1b$B")) || bytes.Contains(data, []byte("\x1b$@")) {
		return decodeWith(EncodingISO2022JP, 0.95, data, japanese.ISO2022JP.NewDecoder())
	}

	// Score the remaining candidates. Declaration order is the tie-break:
	// for a pure-ASCII buffer every candidate is structurally perfect and
	// the first one wins.
	type candidate struct {
		name    string
		decoder *encoding.Decoder
		valid   float64
	}
	candidates := []candidate{
		{EncodingUTF8, nil, utf8Validity(data)},
		{EncodingShiftJIS, japanese.ShiftJIS.NewDecoder(), shiftJISValidity(data)},
		{EncodingEUCJP, japanese.EUCJP.NewDecoder(), eucJPValidity(data)},
	}

	best := candidates[0]
	bestScore := -1.0
	for _, c := range candidates {
		text := decodeText(data, c.decoder)
		score := c.valid * (0.6 + 0.4*japaneseDensity(text))
		if score > bestScore {
			best = c
			bestScore = score
		}
	}

	return decodeWith(best.name, bestScore, data, best.decoder)
}

// decodeWith decodes data with dec (nil means the bytes are already UTF-8)
// and fills in the text-quality flags.
func decodeWith(name string, confidence float64, data []byte, dec *encoding.Decoder) DetectionResult {
	return finishDetection(name, confidence, decodeText(data, dec))
}

func finishDetection(name string, confidence float64, text string) DetectionResult {
	return DetectionResult{
		Encoding:       name,
		Confidence:     confidence,
		Text:           text,
		LikelyJapanese: japaneseDensity(text) >= japaneseDensityThreshold,
		Garbled:        isGarbled(text),
	}
}

// decodeText converts data to a UTF-8 string, substituting U+FFFD for
// anything the decoder rejects.
func decodeText(data []byte, dec *encoding.Decoder) string {
	if dec == nil {
		return string(data) // invalid sequences become U+FFFD on rune iteration
	}
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		// x/text decoders substitute rather than fail; a transform error
		// here means truncated input, keep what was decoded.
		return string(out)
	}
	return string(out)
}

// utf8Validity returns the fraction of bytes that belong to well-formed
// UTF-8 sequences.
func utf8Validity(data []byte) float64 {
	if utf8.Valid(data) {
		return 1.0
	}
	valid, total := 0, 0
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		total += size
		if r != utf8.RuneError || size > 1 {
			valid += size
		}
		i += size
	}
	if total == 0 {
		return 0
	}
	return float64(valid) / float64(total)
}

// shiftJISValidity returns the fraction of bytes that form legal Shift_JIS
// code units.
func shiftJISValidity(data []byte) float64 {
	valid := 0
	for i := 0; i < len(data); {
		b := data[i]
		switch {
		case b < 0x80:
			valid++
			i++
		case b >= 0xA1 && b <= 0xDF: // half-width katakana
			valid++
			i++
		case (b >= 0x81 && b <= 0x9F) || (b >= 0xE0 && b <= 0xFC):
			if i+1 < len(data) {
				second := data[i+1]
				if second >= 0x40 && second <= 0xFC && second != 0x7F {
					valid += 2
					i += 2
					continue
				}
			}
			i++
		default:
			i++
		}
	}
	return float64(valid) / float64(len(data))
}

// eucJPValidity returns the fraction of bytes that form legal EUC-JP
// code units.
func eucJPValidity(data []byte) float64 {
	valid := 0
	for i := 0; i < len(data); {
		b := data[i]
		switch {
		case b < 0x80:
			valid++
			i++
		case b == 0x8E: // half-width katakana prefix
			if i+1 < len(data) && data[i+1] >= 0xA1 && data[i+1] <= 0xDF {
				valid += 2
				i += 2
				continue
			}
			i++
		case b == 0x8F: // JIS X 0212 three-byte sequence
			if i+2 < len(data) &&
				data[i+1] >= 0xA1 && data[i+1] <= 0xFE &&
				data[i+2] >= 0xA1 && data[i+2] <= 0xFE {
				valid += 3
				i += 3
				continue
			}
			i++
		case b >= 0xA1 && b <= 0xFE:
			if i+1 < len(data) && data[i+1] >= 0xA1 && data[i+1] <= 0xFE {
				valid += 2
				i += 2
				continue
			}
			i++
		default:
			i++
		}
	}
	return float64(valid) / float64(len(data))
}

// japaneseDensity returns the fraction of non-ASCII runes that fall in the
// Japanese script ranges.
func japaneseDensity(text string) float64 {
	jp, nonASCII := 0, 0
	for _, r := range text {
		if r < 0x80 {
			continue
		}
		nonASCII++
		if isJapaneseRune(r) {
			jp++
		}
	}
	if nonASCII == 0 {
		return 0
	}
	return float64(jp) / float64(nonASCII)
}

// isJapaneseRune reports whether r belongs to the scripts Japanese order
// exports are written in.
func isJapaneseRune(r rune) bool {
	switch {
	case r >= 0x3000 && r <= 0x303F: // CJK punctuation
		return true
	case r >= 0x3040 && r <= 0x309F: // hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // katakana
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
		return true
	case r >= 0xFF00 && r <= 0xFFEF: // full-width forms, half-width kana
		return true
	}
	return false
}

// isGarbled reports whether decoded text shows signs of a wrong decode:
// replacement characters or runs of raw control characters.
func isGarbled(text string) bool {
	run := 0
	for _, r := range text {
		if r == utf8.RuneError {
			// covers both substituted U+FFFD and raw invalid bytes
			return true
		}
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			run++
			if run >= garbledControlRun {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}
