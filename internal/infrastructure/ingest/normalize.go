package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NormalizedRecord holds typed, validated field values for one row,
// ready to become a canonical order record.
type NormalizedRecord struct {
	OrderCode    string
	CustomerName string
	Phone        string
	Address      string
	Notes        string
	PriceYen     int64
	OrderDate    time.Time
	DeliveryDate *time.Time
}

// dateLayouts are the delimited date notations mall exports use.
// Non-padded layouts accept both "2025/6/1" and "2025/06/01".
var dateLayouts = []string{
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2",
	"2006-01-02T15:04:05",
	"2006.1.2",
	"2006年1月2日 15:04",
	"2006年1月2日",
}

// currencyTokens are stripped from price strings before numeric parsing
var currencyTokens = []string{"¥", "￥", "円", "JPY", "jpy", "yen"}

// NormalizeRow coerces mapped raw strings into typed values and collects
// validation errors for the row. A non-nil record is returned only when the
// row has no errors. now supplies the processing date used when the order
// date column is empty.
func NormalizeRow(mapped map[Field]string, line int, now time.Time) (*NormalizedRecord, []RowError) {
	var errs []RowError

	orderCode := strings.TrimSpace(mapped[FieldOrderCode])
	if orderCode == "" {
		errs = append(errs, NewRowError(line, string(FieldOrderCode), ErrCodeFieldRequired,
			"order code is required"))
	}

	customerName := strings.TrimSpace(mapped[FieldCustomerName])
	if customerName == "" {
		errs = append(errs, NewRowError(line, string(FieldCustomerName), ErrCodeFieldRequired,
			"customer name is required"))
	}

	var priceYen int64
	rawPrice := strings.TrimSpace(mapped[FieldPrice])
	if rawPrice == "" {
		errs = append(errs, NewRowError(line, string(FieldPrice), ErrCodeFieldRequired,
			"price is required"))
	} else if parsed, ok := ParsePriceYen(rawPrice); !ok {
		errs = append(errs, NewRowErrorWithValue(line, string(FieldPrice), ErrCodeFieldInvalid,
			"price is not a number", rawPrice))
	} else if parsed < 0 {
		errs = append(errs, NewRowErrorWithValue(line, string(FieldPrice), ErrCodeFieldInvalid,
			"price cannot be negative", rawPrice))
	} else {
		priceYen = parsed
	}

	orderDate := dateOnly(now)
	if rawDate := strings.TrimSpace(mapped[FieldOrderDate]); rawDate != "" {
		parsed, ok := ParseDate(rawDate)
		if !ok {
			errs = append(errs, NewRowErrorWithValue(line, string(FieldOrderDate), ErrCodeFieldInvalid,
				fmt.Sprintf("unrecognized date format %q", rawDate), rawDate))
		} else {
			orderDate = parsed
		}
	}

	// Delivery date is optional: empty or unparseable input yields nil
	// without failing validation.
	var deliveryDate *time.Time
	if rawDelivery := strings.TrimSpace(mapped[FieldDeliveryDate]); rawDelivery != "" {
		if parsed, ok := ParseDate(rawDelivery); ok {
			deliveryDate = &parsed
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &NormalizedRecord{
		OrderCode:    orderCode,
		CustomerName: customerName,
		Phone:        strings.TrimSpace(mapped[FieldPhone]),
		Address:      strings.TrimSpace(mapped[FieldAddress]),
		Notes:        strings.TrimSpace(mapped[FieldNotes]),
		PriceYen:     priceYen,
		OrderDate:    orderDate,
		DeliveryDate: deliveryDate,
	}, nil
}

// ParsePriceYen parses a localized price string into integer yen. Currency
// symbols, grouping separators, and full-width digits are normalized away
// first; any non-numeric remainder after that fails the parse.
func ParsePriceYen(s string) (int64, bool) {
	cleaned := normalizeWidth(s)
	for _, tok := range currencyTokens {
		cleaned = strings.ReplaceAll(cleaned, tok, "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	if !d.IsInteger() {
		return 0, false
	}
	return d.IntPart(), true
}

// ParseDate parses a delimited date or datetime string into a calendar
// date, trying the known mall notations in order.
func ParseDate(s string) (time.Time, bool) {
	cleaned := strings.TrimSpace(normalizeWidth(s))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

// normalizeWidth folds full-width digits and separators to their ASCII
// equivalents; mall exports mix both freely.
func normalizeWidth(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '０' && r <= '９':
			sb.WriteRune('0' + (r - '０'))
		case r == '，':
			sb.WriteRune(',')
		case r == '．':
			sb.WriteRune('.')
		case r == '／':
			sb.WriteRune('/')
		case r == '－' || r == 'ー':
			sb.WriteRune('-')
		case r == '　': // full-width space
			sb.WriteRune(' ')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// dateOnly truncates a time to its calendar date in UTC
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
