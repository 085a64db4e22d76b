package ingestapp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	ingestdomain "github.com/orderhub/backend/internal/domain/ingest"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/domain/shared"
	"github.com/orderhub/backend/internal/infrastructure/ingest"
	"go.uber.org/zap"
)

// stage tracks where in the pipeline an invocation is; used for logging
// and for naming the abort point.
type stage string

const (
	stageDecoding        stage = "decoding"
	stageClassifying     stage = "classifying"
	stageRequiredFields  stage = "required_fields_check"
	stageRowProcessing   stage = "row_processing"
	stageAggregating     stage = "aggregating"
	stageDone            stage = "done"
	stageAborted         stage = "aborted"
)

// SkipReason says why a row was not persisted
type SkipReason string

const (
	SkipDuplicate   SkipReason = "duplicate"
	SkipValidation  SkipReason = "validation"
	SkipPersistence SkipReason = "persistence"
)

// SkipDetail itemizes one skipped row so the user can decide whether to
// correct and re-upload it. For duplicate skips the existing and incoming
// snapshots are included for review.
type SkipDetail struct {
	Line      int            `json:"line"`
	OrderCode string         `json:"order_code,omitempty"`
	Reason    SkipReason     `json:"reason"`
	Message   string         `json:"message"`
	Existing  map[string]any `json:"existing,omitempty"`
	Incoming  map[string]any `json:"incoming,omitempty"`
}

// Outcome aggregates one ingestion run
type Outcome struct {
	HistoryID   *uuid.UUID           `json:"history_id,omitempty"`
	TotalRows   int                  `json:"total_rows"`
	Registered  int                  `json:"registered"`
	Skipped     int                  `json:"skipped"`
	Encoding    string               `json:"encoding,omitempty"`
	Source      order.DataSource     `json:"source,omitempty"`
	SkipDetails []SkipDetail         `json:"skip_details,omitempty"`
	Diagnostics []ingest.Diagnostic  `json:"diagnostics,omitempty"`
}

// HasCritical reports whether the run was aborted by a critical diagnostic
func (o *Outcome) HasCritical() bool {
	for _, d := range o.Diagnostics {
		if d.IsCritical() {
			return true
		}
	}
	return false
}

// RedactDebug strips debug payloads from all diagnostics; called before
// serializing a response outside debug mode.
func (o *Outcome) RedactDebug() {
	for i := range o.Diagnostics {
		o.Diagnostics[i] = o.Diagnostics[i].Redacted()
	}
}

// Upload is one ingestion request: the file bytes plus request parameters.
// OwnerID arrives pre-validated from the session layer; the pipeline never
// authenticates.
type Upload struct {
	Data       []byte
	FileName   string
	OwnerID    uuid.UUID
	CategoryID *uuid.UUID
	SourceHint order.DataSource // empty when the caller declared nothing
	RequestID  string
	Debug      bool
}

// Config bounds one pipeline instance
type Config struct {
	MaxFileSize int64
	MaxRows     int
	MaxErrors   int
}

// DefaultConfig returns the default pipeline bounds
func DefaultConfig() Config {
	return Config{
		MaxFileSize: 10 * 1024 * 1024,
		MaxRows:     100000,
		MaxErrors:   100,
	}
}

// PipelineService sequences the ingestion pipeline: decode, classify,
// check required columns, process rows with duplicate-checked persistence,
// and aggregate the outcome.
//
// Batch policy: partial commit. Valid rows are persisted even when other
// rows fail validation; failed rows are itemized in the outcome. Only
// file-level problems (encoding, unknown schema, missing columns, format
// checks) abort the whole batch before any persistence.
type PipelineService struct {
	orders   order.Repository
	history  ingestdomain.HistoryRepository
	registry *ingest.SchemaRegistry
	cfg      Config
	log      *zap.Logger
}

// NewPipelineService creates a PipelineService. history may be nil when no
// audit trail is wanted (tests).
func NewPipelineService(
	orders order.Repository,
	history ingestdomain.HistoryRepository,
	registry *ingest.SchemaRegistry,
	cfg Config,
	log *zap.Logger,
) *PipelineService {
	if registry == nil {
		registry = ingest.DefaultRegistry()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg = DefaultConfig()
	}
	return &PipelineService{
		orders:   orders,
		history:  history,
		registry: registry,
		cfg:      cfg,
		log:      log,
	}
}

// Ingest runs the full pipeline for one upload. It never returns an error
// for content problems; those become diagnostics in the outcome. The error
// return is reserved for context cancellation.
func (s *PipelineService) Ingest(ctx context.Context, up Upload) (outcome *Outcome, err error) {
	outcome = &Outcome{}
	current := stageDecoding

	hist := s.beginHistory(ctx, up)
	if hist != nil {
		outcome.HistoryID = &hist.ID
	}

	// An unexpected panic anywhere in the run becomes a single UNKNOWN
	// diagnostic instead of a raw failure.
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("ingestion panicked",
				zap.String("request_id", up.RequestID),
				zap.String("stage", string(current)),
				zap.Any("panic", r))
			outcome.Diagnostics = append(outcome.Diagnostics,
				ingest.NewUnknownDiagnostic(up.RequestID, fmt.Errorf("panic in stage %s: %v", current, r)))
			s.abortHistory(ctx, hist, "unexpected internal error")
			err = nil
		}
	}()

	// File-level checks happen before any parsing
	if d, ok := s.checkFile(up); !ok {
		return s.abort(ctx, outcome, hist, current, d), nil
	}

	det := ingest.DetectEncoding(up.Data)
	outcome.Encoding = det.Encoding
	if !det.Usable() {
		return s.abort(ctx, outcome, hist, current, ingest.NewEncodingDiagnostic(det)), nil
	}

	current = stageClassifying
	table, parseErr := ingest.ParseTable(det.Text)
	if parseErr != nil {
		d := ingest.NewFileFormatDiagnostic(
			fmt.Sprintf("The file could not be read as tabular data: %s.", parseErr),
			"Export the order CSV again from the mall's admin console.")
		return s.abort(ctx, outcome, hist, current, d), nil
	}

	analysis := s.registry.Analyze(table.Headers)
	if up.SourceHint != "" {
		analysis = s.registry.ApplyHint(analysis, up.SourceHint)
	}
	outcome.Source = analysis.Source
	if analysis.Source == order.SourceUnknown {
		return s.abort(ctx, outcome, hist, current,
			ingest.NewUnknownSourceDiagnostic(s.registry, table.Headers)), nil
	}

	current = stageRequiredFields
	schema := s.registry.Get(analysis.Source)
	if !analysis.HasRequiredFields {
		return s.abort(ctx, outcome, hist, current,
			ingest.NewMissingFieldsDiagnostic(schema, analysis.MissingFields)), nil
	}

	if hist != nil {
		if err := hist.Start(det.Encoding, analysis.Source.String()); err == nil {
			s.saveHistory(ctx, hist)
		}
	}

	current = stageRowProcessing
	if err := s.processRows(ctx, up, schema, table, outcome); err != nil {
		return outcome, err
	}

	current = stageAggregating
	s.aggregate(outcome, table)

	if hist != nil {
		if err := hist.Complete(outcome.TotalRows, outcome.Registered, outcome.Skipped); err == nil {
			s.saveHistory(ctx, hist)
		}
	}

	current = stageDone
	s.log.Info("ingestion completed",
		zap.String("request_id", up.RequestID),
		zap.String("source", analysis.Source.String()),
		zap.String("encoding", det.Encoding),
		zap.Int("total_rows", outcome.TotalRows),
		zap.Int("registered", outcome.Registered),
		zap.Int("skipped", outcome.Skipped))
	return outcome, nil
}

// checkFile performs the pre-parse file-format checks
func (s *PipelineService) checkFile(up Upload) (ingest.Diagnostic, bool) {
	if len(up.Data) == 0 {
		return ingest.NewFileFormatDiagnostic(
			"The uploaded file is empty.",
			"Export the order CSV again and make sure it contains data rows."), false
	}
	if int64(len(up.Data)) > s.cfg.MaxFileSize {
		return ingest.NewFileFormatDiagnostic(
			fmt.Sprintf("The file is larger than the %d MB limit.", s.cfg.MaxFileSize/(1024*1024)),
			"Split the export into smaller date ranges and upload them separately."), false
	}
	switch strings.ToLower(filepath.Ext(up.FileName)) {
	case ".csv", ".txt", "":
	default:
		return ingest.NewFileFormatDiagnostic(
			fmt.Sprintf("%q is not a CSV file.", up.FileName),
			"Upload the .csv file exported by the mall's admin console, not a spreadsheet or archive."), false
	}
	return ingest.Diagnostic{}, true
}

// processRows iterates rows strictly in file order: duplicate detection
// depends on earlier inserts being visible to later lookups, so an
// in-batch duplicate is detected against the just-inserted row.
func (s *PipelineService) processRows(
	ctx context.Context,
	up Upload,
	schema *ingest.Schema,
	table *ingest.Table,
	outcome *Outcome,
) error {
	now := time.Now()
	errs := ingest.NewErrorCollection(s.cfg.MaxErrors)
	invalidRows := 0

	for _, line := range table.MalformedLines {
		errs.Add(ingest.NewRowError(line, "", ingest.ErrCodeRowMalformed, "row could not be parsed"))
		outcome.SkipDetails = append(outcome.SkipDetails, SkipDetail{
			Line:    line,
			Reason:  SkipValidation,
			Message: "row could not be parsed",
		})
		outcome.Skipped++
		invalidRows++
	}
	outcome.TotalRows = len(table.Rows) + len(table.MalformedLines)

	for i, row := range table.Rows {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if i >= s.cfg.MaxRows {
			errs.Add(ingest.NewRowError(row.Line, "", ingest.ErrCodeRowMalformed,
				fmt.Sprintf("row limit of %d exceeded; remaining rows were not processed", s.cfg.MaxRows)))
			break
		}

		mapped := ingest.MapRow(schema, row)
		record, rowErrs := ingest.NormalizeRow(mapped, row.Line, now)
		if len(rowErrs) > 0 {
			invalidRows++
			for _, e := range rowErrs {
				errs.Add(e)
			}
			outcome.SkipDetails = append(outcome.SkipDetails, SkipDetail{
				Line:      row.Line,
				OrderCode: strings.TrimSpace(mapped[ingest.FieldOrderCode]),
				Reason:    SkipValidation,
				Message:   rowErrs[0].Error(),
			})
			outcome.Skipped++
			continue
		}

		s.persistRow(ctx, up, schema.Source, record, row.Line, outcome)
	}

	if errs.HasErrors() {
		outcome.Diagnostics = append(outcome.Diagnostics,
			ingest.NewValidationDiagnostic(outcome.TotalRows, invalidRows, errs))
	}
	return nil
}

// persistRow performs the duplicate-checked lookup-then-insert for one
// validated row. Any failure here is recorded as a skip and never aborts
// sibling rows.
func (s *PipelineService) persistRow(
	ctx context.Context,
	up Upload,
	source order.DataSource,
	record *ingest.NormalizedRecord,
	line int,
	outcome *Outcome,
) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("row persistence panicked",
				zap.String("request_id", up.RequestID),
				zap.Int("line", line),
				zap.Any("panic", r))
			outcome.SkipDetails = append(outcome.SkipDetails, SkipDetail{
				Line:      line,
				OrderCode: record.OrderCode,
				Reason:    SkipPersistence,
				Message:   "internal error while saving the row",
			})
			outcome.Skipped++
		}
	}()

	existing, err := s.orders.FindByCode(ctx, up.OwnerID, record.OrderCode)
	if err != nil && err != shared.ErrNotFound {
		outcome.SkipDetails = append(outcome.SkipDetails, SkipDetail{
			Line:      line,
			OrderCode: record.OrderCode,
			Reason:    SkipPersistence,
			Message:   fmt.Sprintf("duplicate check failed: %s", err),
		})
		outcome.Skipped++
		return
	}

	if existing != nil {
		incoming := recordSnapshot(record)
		outcome.SkipDetails = append(outcome.SkipDetails, SkipDetail{
			Line:      line,
			OrderCode: record.OrderCode,
			Reason:    SkipDuplicate,
			Message:   fmt.Sprintf("order %q is already registered", record.OrderCode),
			Existing:  orderSnapshot(existing),
			Incoming:  incoming,
		})
		outcome.Diagnostics = append(outcome.Diagnostics,
			ingest.NewDuplicateDiagnostic(line, record.OrderCode, orderSnapshot(existing), incoming))
		outcome.Skipped++
		return
	}

	o, err := s.buildOrder(up, source, record)
	if err != nil {
		outcome.SkipDetails = append(outcome.SkipDetails, SkipDetail{
			Line:      line,
			OrderCode: record.OrderCode,
			Reason:    SkipPersistence,
			Message:   err.Error(),
		})
		outcome.Skipped++
		return
	}

	if err := s.orders.Insert(ctx, o); err != nil {
		outcome.SkipDetails = append(outcome.SkipDetails, SkipDetail{
			Line:      line,
			OrderCode: record.OrderCode,
			Reason:    SkipPersistence,
			Message:   fmt.Sprintf("save failed: %s", err),
		})
		outcome.Skipped++
		return
	}

	outcome.Registered++
}

// buildOrder converts a normalized record into a domain order for this upload
func (s *PipelineService) buildOrder(up Upload, source order.DataSource, record *ingest.NormalizedRecord) (*order.Order, error) {
	o, err := order.NewOrder(up.OwnerID, record.OrderCode, record.CustomerName, record.PriceYen, record.OrderDate)
	if err != nil {
		return nil, err
	}
	if err := o.SetSource(source); err != nil {
		return nil, err
	}
	o.SetContact(record.Phone, record.Address)
	o.SetNotes(record.Notes)
	o.SetDeliveryDate(record.DeliveryDate)
	if up.CategoryID != nil {
		o.SetCategory(*up.CategoryID)
	}
	return o, nil
}

// aggregate finalizes counts once all rows are processed
func (s *PipelineService) aggregate(outcome *Outcome, table *ingest.Table) {
	// Skipped already tracks per-row skips; nothing else to fold in today.
	// Kept as a separate stage so the state machine matches the pipeline.
	_ = table
}

func recordSnapshot(r *ingest.NormalizedRecord) map[string]any {
	snap := map[string]any{
		"order_code":    r.OrderCode,
		"customer_name": r.CustomerName,
		"price_yen":     r.PriceYen,
		"order_date":    r.OrderDate.Format("2006-01-02"),
	}
	if r.DeliveryDate != nil {
		snap["delivery_date"] = r.DeliveryDate.Format("2006-01-02")
	}
	return snap
}

func orderSnapshot(o *order.Order) map[string]any {
	snap := map[string]any{
		"order_code":    o.OrderCode,
		"customer_name": o.CustomerName,
		"price_yen":     o.PriceYen,
		"order_date":    o.OrderDate.Format("2006-01-02"),
	}
	if o.DeliveryDate != nil {
		snap["delivery_date"] = o.DeliveryDate.Format("2006-01-02")
	}
	return snap
}

// beginHistory creates and saves a pending history record; failures are
// logged, never fatal to the run.
func (s *PipelineService) beginHistory(ctx context.Context, up Upload) *ingestdomain.History {
	if s.history == nil {
		return nil
	}
	name := up.FileName
	if name == "" {
		name = "upload.csv"
	}
	hist, err := ingestdomain.NewHistory(up.OwnerID, name, int64(len(up.Data)))
	if err != nil {
		s.log.Warn("could not create upload history", zap.Error(err))
		return nil
	}
	s.saveHistory(ctx, hist)
	return hist
}

func (s *PipelineService) saveHistory(ctx context.Context, hist *ingestdomain.History) {
	if s.history == nil || hist == nil {
		return
	}
	if err := s.history.Save(ctx, hist); err != nil {
		s.log.Warn("could not save upload history",
			zap.String("history_id", hist.ID.String()), zap.Error(err))
	}
}

func (s *PipelineService) abortHistory(ctx context.Context, hist *ingestdomain.History, reason string) {
	if hist == nil {
		return
	}
	if err := hist.Abort(reason); err == nil {
		s.saveHistory(ctx, hist)
	}
}

// abort records a critical diagnostic and finalizes the run with no
// persistence side effects.
func (s *PipelineService) abort(
	ctx context.Context,
	outcome *Outcome,
	hist *ingestdomain.History,
	at stage,
	d ingest.Diagnostic,
) *Outcome {
	outcome.Diagnostics = append(outcome.Diagnostics, d)
	s.abortHistory(ctx, hist, d.Message)
	s.log.Warn("ingestion aborted",
		zap.String("stage", string(at)),
		zap.String("category", string(d.Category)),
		zap.String("message", d.Message))
	return outcome
}
