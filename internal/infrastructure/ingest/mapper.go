package ingest

import "strings"

// MapRow extracts canonical field values from a raw row using the schema's
// extraction rules. It is purely syntactic: absent fields resolve to "",
// never an error, and no validation happens here.
func MapRow(schema *Schema, row *Row) map[Field]string {
	mapped := make(map[Field]string, 8)
	for _, f := range []Field{
		FieldOrderCode,
		FieldCustomerName,
		FieldPhone,
		FieldAddress,
		FieldNotes,
		FieldPrice,
		FieldOrderDate,
		FieldDeliveryDate,
	} {
		mapped[f] = extractField(schema, f, row)
	}
	return mapped
}

// extractField tries the schema's single-column candidates in order,
// returning the first non-empty match, then falls back to assembling the
// field from its composite part columns.
func extractField(schema *Schema, f Field, row *Row) string {
	for _, header := range schema.Synonyms[f] {
		if v := strings.TrimSpace(row.Get(header)); v != "" {
			return v
		}
	}
	return assembleComposite(schema, f, row)
}

// assembleComposite concatenates the composite parts that are present, in
// part order. When only one part is non-empty that part alone is the value.
func assembleComposite(schema *Schema, f Field, row *Row) string {
	parts := schema.Composites[f]
	if len(parts) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, candidates := range parts {
		for _, header := range candidates {
			if v := strings.TrimSpace(row.Get(header)); v != "" {
				sb.WriteString(v)
				break
			}
		}
	}
	return sb.String()
}
