// Package check runs the dataset schema-conformance pipeline: fetch, decode,
// validate, report. Each stage runs only if the previous one succeeded and
// the first failure ends the run.
package check

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"openml-schema-check/internal/dataset"
	"openml-schema-check/internal/failure"
	"openml-schema-check/internal/models"
	"openml-schema-check/internal/observability/logging"
	"openml-schema-check/internal/observability/metrics"
	"openml-schema-check/internal/report"
	"openml-schema-check/internal/source"
)

// DatasetURL is the pinned OpenML dataset snapshot.
const DatasetURL = "https://data.openml.org/datasets/0004/46500/dataset_46500.pq"

// FetchTimeout bounds the fetch stage.
const FetchTimeout = 30 * time.Second

// Stage names, in execution order.
const (
	StageFetch    = "fetch"
	StageDecode   = "decode"
	StageValidate = "validate"
	StageReport   = "report"
)

const publishTimeout = 10 * time.Second

// Decoder turns a fetched body into a table.
type Decoder interface {
	Decode(ctx context.Context, body []byte) (dataset.Table, error)
}

// Validator checks a decoded table.
type Validator interface {
	Validate(t dataset.Table) error
}

// ReportPublisher ships the report of a finished run.
type ReportPublisher interface {
	PublishReport(ctx context.Context, r *models.ValidationReport) error
}

// Options configures a Runner. Fetcher, Decoder and Validator are required.
type Options struct {
	Fetcher      source.Fetcher
	Decoder      Decoder
	Validator    Validator
	Publisher    ReportPublisher  // optional
	Metrics      *metrics.Metrics // defaults to metrics.DefaultMetrics
	Console      *report.Console  // defaults to a discarding console
	IDs          *IDGenerator
	FetchTimeout time.Duration // defaults to FetchTimeout
	Now          func() time.Time
}

// Runner executes validation runs. It holds no state between runs.
type Runner struct {
	fetcher      source.Fetcher
	decoder      Decoder
	validator    Validator
	publisher    ReportPublisher
	metrics      *metrics.Metrics
	console      *report.Console
	ids          *IDGenerator
	fetchTimeout time.Duration
	now          func() time.Time
}

// New creates a runner from opts.
func New(opts Options) *Runner {
	r := &Runner{
		fetcher:      opts.Fetcher,
		decoder:      opts.Decoder,
		validator:    opts.Validator,
		publisher:    opts.Publisher,
		metrics:      opts.Metrics,
		console:      opts.Console,
		ids:          opts.IDs,
		fetchTimeout: opts.FetchTimeout,
		now:          opts.Now,
	}
	if r.metrics == nil {
		r.metrics = metrics.DefaultMetrics
	}
	if r.console == nil {
		r.console = report.NewConsole(nil)
	}
	if r.ids == nil {
		r.ids = NewIDGenerator("local")
	}
	if r.fetchTimeout <= 0 {
		r.fetchTimeout = FetchTimeout
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Run validates the resource at url. It always returns a report describing
// the run; err is nil only if every check passed.
func (r *Runner) Run(ctx context.Context, url string) (rep *models.ValidationReport, err error) {
	start := r.now()
	rep = &models.ValidationReport{
		EventType:  models.EventTypeValidationReport,
		RunID:      r.ids.Next(),
		DatasetURL: url,
		Timestamp:  start.UnixMilli(),
	}
	logger := logging.WithRun(rep.RunID, url)

	defer func() {
		if p := recover(); p != nil {
			err = failure.Internal(errors.Newf("panic: %v", p), "%s stage", rep.Stage)
		}
		r.finish(ctx, logger, rep, err, start)
	}()

	r.console.Start()
	logger.Info().Msg("Starting dataset schema validation")

	err = r.run(ctx, rep, url)
	return rep, err
}

func (r *Runner) run(ctx context.Context, rep *models.ValidationReport, url string) error {
	// Fetch
	r.console.Downloading()
	sl := r.startStage(rep, StageFetch)
	t0 := time.Now()
	body, err := r.fetch(ctx, url)
	if err != nil {
		return err
	}
	rep.BodyBytes = int64(len(body))
	sl.Info().
		Int("bytes", len(body)).
		Dur("duration", time.Since(t0)).
		Msg("Stage finished")

	// Decode
	r.console.Parsing()
	sl = r.startStage(rep, StageDecode)
	t0 = time.Now()
	tbl, err := r.decoder.Decode(ctx, body)
	r.metrics.RecordStage(StageDecode, time.Since(t0))
	if err != nil {
		return err
	}
	defer tbl.Release()

	rep.Rows = tbl.NumRows()
	rep.Columns = int64(tbl.NumColumns())
	rep.ColumnNames = dataset.ColumnNames(tbl)
	rep.MissingCells = tbl.MissingCells()
	r.metrics.RecordShape(rep.Rows, tbl.NumColumns(), rep.MissingCells)
	r.console.Shape(rep.Rows, rep.ColumnNames)
	sl.Info().
		Int64("rows", rep.Rows).
		Int64("columns", rep.Columns).
		Int64("missingCells", rep.MissingCells).
		Dur("duration", time.Since(t0)).
		Msg("Stage finished")

	// Validate
	sl = r.startStage(rep, StageValidate)
	t0 = time.Now()
	err = r.validator.Validate(tbl)
	r.metrics.RecordStage(StageValidate, time.Since(t0))
	if err != nil {
		return err
	}
	sl.Info().Dur("duration", time.Since(t0)).Msg("Stage finished")

	rep.Stage = StageReport
	return nil
}

// startStage moves rep to stage and returns the stage's logger.
func (r *Runner) startStage(rep *models.ValidationReport, stage string) zerolog.Logger {
	rep.Stage = stage
	sl := logging.WithStage(rep.RunID, rep.DatasetURL, stage)
	sl.Debug().Msg("Stage started")
	return sl
}

func (r *Runner) fetch(ctx context.Context, url string) ([]byte, error) {
	fctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	t0 := time.Now()
	body, err := r.fetcher.Fetch(fctx, url)
	r.metrics.RecordStage(StageFetch, time.Since(t0))
	if err != nil {
		return nil, err
	}
	r.metrics.RecordFetch(len(body))
	return body, nil
}

// finish fills in the outcome, records it, prints it and publishes it.
func (r *Runner) finish(ctx context.Context, logger zerolog.Logger, rep *models.ValidationReport, err error, start time.Time) {
	end := r.now()
	rep.DurationMs = end.Sub(start).Milliseconds()

	if err == nil {
		rep.Outcome = models.OutcomePassed
		r.metrics.RecordRun("", end.Sub(start), end)
		r.console.Passed(rep)
		r.console.Completed()
		logger.Info().Int64("durationMs", rep.DurationMs).Msg("Dataset validation passed")
	} else {
		kind := failure.Classify(err)
		rep.Outcome = models.OutcomeFailed
		rep.FailureKind = kind.String()
		rep.Message = err.Error()
		if v, ok := failure.AsSchemaViolation(err); ok {
			rep.Check = v.Check
			expected, actual := v.Expected, v.Actual
			rep.Expected, rep.Actual = &expected, &actual
		}
		r.metrics.RecordRun(kind.String(), end.Sub(start), end)
		r.console.Failed(err)
		logger.Error().
			Err(err).
			Str("stage", rep.Stage).
			Str("kind", kind.String()).
			Int64("durationMs", rep.DurationMs).
			Msg("Dataset validation failed")
	}

	if r.publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if perr := r.publisher.PublishReport(pctx, rep); perr != nil {
		logger.Warn().Err(perr).Msg("Failed to publish validation report")
	}
}
