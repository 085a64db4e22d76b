package ingest

import (
	"github.com/orderhub/backend/internal/domain/order"
)

// Field is a canonical order field name, independent of any mall schema
type Field string

const (
	FieldOrderCode    Field = "order_code"
	FieldCustomerName Field = "customer_name"
	FieldPhone        Field = "phone"
	FieldAddress      Field = "address"
	FieldNotes        Field = "notes"
	FieldPrice        Field = "price"
	FieldOrderDate    Field = "order_date"
	FieldDeliveryDate Field = "delivery_date"
)

// RequiredFields is the minimal canonical set a row must provide
var RequiredFields = []Field{FieldOrderCode, FieldCustomerName, FieldPrice}

const (
	// SchemaMatchThreshold is the minimum required-field match score for
	// automatic classification.
	SchemaMatchThreshold = 0.5

	// HintScoreTolerance is how far the declared source's score may trail
	// the best automatic score and still win. Explicit intent overrides
	// ambiguous heuristics.
	HintScoreTolerance = 0.2
)

// Schema describes one mall platform's export format: which header
// spellings map to each canonical field, and how composite fields are
// assembled from multiple columns.
type Schema struct {
	Source order.DataSource

	// Synonyms lists accepted header spellings per canonical field, in
	// preference order.
	Synonyms map[Field][]string

	// Composites lists multi-column fallbacks per canonical field. The
	// outer slice is part order; each part has its own accepted spellings.
	// Parts that are present are concatenated, absent parts are skipped.
	Composites map[Field][][]string
}

// headerCandidates returns all accepted spellings for a field, including
// composite part columns, for use in remediation suggestions.
func (s *Schema) headerCandidates(f Field) []string {
	out := append([]string(nil), s.Synonyms[f]...)
	for _, part := range s.Composites[f] {
		out = append(out, part...)
	}
	return out
}

// SchemaRegistry holds the known mall schemas. Declaration order is
// significant: classification ties break toward the first-registered schema.
type SchemaRegistry struct {
	schemas []*Schema
}

// NewSchemaRegistry creates a registry with the given schemas
func NewSchemaRegistry(schemas ...*Schema) *SchemaRegistry {
	return &SchemaRegistry{schemas: schemas}
}

// DefaultRegistry returns the registry of the two supported mall platforms.
// Adding a third platform means registering a new Schema here, nothing else.
func DefaultRegistry() *SchemaRegistry {
	return NewSchemaRegistry(rakutenSchema(), yahooSchema())
}

// rakutenSchema matches the Rakuten-style export: fully Japanese headers.
func rakutenSchema() *Schema {
	return &Schema{
		Source: order.SourceRakuten,
		Synonyms: map[Field][]string{
			FieldOrderCode:    {"注文番号", "受注番号"},
			FieldCustomerName: {"顧客名", "注文者氏名", "送付先氏名"},
			FieldPhone:        {"電話番号", "注文者電話番号", "送付先電話番号"},
			FieldAddress:      {"住所", "送付先住所"},
			FieldNotes:        {"備考", "コメント"},
			FieldPrice:        {"金額", "合計金額", "商品合計金額"},
			FieldOrderDate:    {"注文日", "注文日時", "受注日"},
			FieldDeliveryDate: {"お届け日", "お届け希望日", "配達希望日"},
		},
		Composites: map[Field][][]string{
			FieldAddress: {
				{"送付先都道府県", "都道府県"},
				{"送付先市区町村", "市区町村"},
				{"送付先住所1", "番地"},
				{"送付先住所2", "建物名"},
			},
		},
	}
}

// yahooSchema matches the Yahoo-style export: ASCII field names with a few
// Japanese variants seen in older exports.
func yahooSchema() *Schema {
	return &Schema{
		Source: order.SourceYahoo,
		Synonyms: map[Field][]string{
			FieldOrderCode:    {"OrderId", "Id", "注文ID"},
			FieldCustomerName: {"ShipName", "BillName", "購入者名"},
			FieldPhone:        {"ShipPhoneNumber", "BillPhoneNumber"},
			FieldAddress:      {"ShipAddress"},
			FieldNotes:        {"BuyerComments", "備考"},
			FieldPrice:        {"TotalPrice", "商品合計金額", "総合計金額"},
			FieldOrderDate:    {"OrderTime", "注文日時"},
			FieldDeliveryDate: {"ShipRequestDate", "お届け希望日"},
		},
		Composites: map[Field][][]string{
			FieldAddress: {
				{"ShipPrefecture"},
				{"ShipCity"},
				{"ShipAddress1"},
				{"ShipAddress2"},
			},
		},
	}
}

// Get returns the schema for a source, or nil for unknown sources
func (r *SchemaRegistry) Get(source order.DataSource) *Schema {
	for _, s := range r.schemas {
		if s.Source == source {
			return s
		}
	}
	return nil
}

// Sources returns the registered sources in declaration order
func (r *SchemaRegistry) Sources() []order.DataSource {
	out := make([]order.DataSource, len(r.schemas))
	for i, s := range r.schemas {
		out[i] = s.Source
	}
	return out
}

// HeaderAnalysis is the outcome of matching a header row against the
// registered schemas.
type HeaderAnalysis struct {
	Headers           []string
	Scores            map[order.DataSource]float64
	Source            order.DataSource
	HasRequiredFields bool
	MissingFields     []Field
}

// Analyze matches header tokens against every registered schema and picks
// the best-scoring one above the threshold. Ties break toward the
// first-registered schema, deterministic but arbitrary.
func (r *SchemaRegistry) Analyze(headers []string) *HeaderAnalysis {
	analysis := &HeaderAnalysis{
		Headers: headers,
		Scores:  make(map[order.DataSource]float64, len(r.schemas)),
		Source:  order.SourceUnknown,
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	best := -1.0
	for _, s := range r.schemas {
		score := r.requiredScore(s, present)
		analysis.Scores[s.Source] = score
		if score >= SchemaMatchThreshold && score > best {
			best = score
			analysis.Source = s.Source
		}
	}

	r.fillRequiredFields(analysis, present)
	return analysis
}

// ApplyHint resolves a caller-declared source against the automatic
// classification: the hint wins when its own score is within
// HintScoreTolerance of the best automatic score, otherwise the automatic
// result stands.
func (r *SchemaRegistry) ApplyHint(analysis *HeaderAnalysis, hint order.DataSource) *HeaderAnalysis {
	hinted := r.Get(hint)
	if hinted == nil {
		return analysis
	}

	bestAuto := 0.0
	for _, score := range analysis.Scores {
		if score > bestAuto {
			bestAuto = score
		}
	}

	if analysis.Scores[hint] < bestAuto-HintScoreTolerance {
		return analysis
	}

	analysis.Source = hint
	present := make(map[string]bool, len(analysis.Headers))
	for _, h := range analysis.Headers {
		present[h] = true
	}
	r.fillRequiredFields(analysis, present)
	return analysis
}

// requiredScore computes |required ∩ present| / |required| for a schema
func (r *SchemaRegistry) requiredScore(s *Schema, present map[string]bool) float64 {
	matched := 0
	for _, f := range RequiredFields {
		if fieldPresent(s, f, present) {
			matched++
		}
	}
	return float64(matched) / float64(len(RequiredFields))
}

// fillRequiredFields recomputes HasRequiredFields and MissingFields against
// the currently selected schema.
func (r *SchemaRegistry) fillRequiredFields(analysis *HeaderAnalysis, present map[string]bool) {
	analysis.MissingFields = nil

	schema := r.Get(analysis.Source)
	if schema == nil {
		analysis.HasRequiredFields = false
		analysis.MissingFields = append(analysis.MissingFields, RequiredFields...)
		return
	}

	for _, f := range RequiredFields {
		if !fieldPresent(schema, f, present) {
			analysis.MissingFields = append(analysis.MissingFields, f)
		}
	}
	analysis.HasRequiredFields = len(analysis.MissingFields) == 0
}

// fieldPresent reports whether any accepted spelling (or composite part)
// of a canonical field appears in the header set.
func fieldPresent(s *Schema, f Field, present map[string]bool) bool {
	for _, syn := range s.Synonyms[f] {
		if present[syn] {
			return true
		}
	}
	for _, part := range s.Composites[f] {
		for _, syn := range part {
			if present[syn] {
				return true
			}
		}
	}
	return false
}
