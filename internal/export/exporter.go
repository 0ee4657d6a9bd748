package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/metrics"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

const DefaultCap = 1000

// Result describes one written export.
type Result struct {
	Entity   string
	Format   Format
	FileName string
	Path     string
	MIME     string
	Rows     int
	Header   []string
	Data     []byte
}

// Exporter refetches a list query with the page size raised to a cap and
// writes every returned record.
type Exporter[T any] struct {
	entity  string
	fetch   func(ctx context.Context, q models.ListQuery) (models.Page[T], error)
	columns []Column[T]
	cap     int
	dir     string
	now     func() time.Time
	bus     events.Publisher
	logger  *zerolog.Logger
}

type Option[T any] func(*Exporter[T])

func WithCap[T any](n int) Option[T] {
	return func(e *Exporter[T]) {
		if n > 0 {
			e.cap = n
		}
	}
}

// WithDir makes Export also save the file under dir.
func WithDir[T any](dir string) Option[T] {
	return func(e *Exporter[T]) {
		e.dir = dir
	}
}

func WithClock[T any](now func() time.Time) Option[T] {
	return func(e *Exporter[T]) {
		e.now = now
	}
}

func WithPublisher[T any](bus events.Publisher) Option[T] {
	return func(e *Exporter[T]) {
		e.bus = bus
	}
}

func WithLogger[T any](logger *zerolog.Logger) Option[T] {
	return func(e *Exporter[T]) {
		if logger != nil {
			l := logger.With().Str("export", e.entity).Logger()
			e.logger = &l
		}
	}
}

func NewExporter[T any](entity string, fetch func(ctx context.Context, q models.ListQuery) (models.Page[T], error), columns []Column[T], opts ...Option[T]) *Exporter[T] {
	nop := zerolog.Nop()
	e := &Exporter[T]{
		entity:  entity,
		fetch:   fetch,
		columns: columns,
		cap:     DefaultCap,
		now:     time.Now,
		logger:  &nop,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exporter[T]) Entity() string {
	return e.entity
}

// Query returns the capped query an export of q issues.
func (e *Exporter[T]) Query(q models.ListQuery) models.ListQuery {
	out := q.Clone()
	out.Page = 1
	out.PageSize = e.cap
	return out
}

// Export fetches the records matching q's filters and search, ignoring its
// page, and encodes them in format.
func (e *Exporter[T]) Export(ctx context.Context, q models.ListQuery, format Format) (Result, error) {
	page, err := e.fetch(ctx, e.Query(q))
	if err != nil {
		msg := api.Message(err, "Failed to export "+e.entity)
		e.logger.Error().Err(err).Msg("export fetch failed")
		events.Notify(e.bus, events.Notice{Level: events.LevelError, Resource: e.entity, Message: msg})
		return Result{}, fmt.Errorf("export %s: %w", e.entity, err)
	}

	items := page.Items
	if len(items) > e.cap {
		items = items[:e.cap]
	}
	if page.TotalItems > len(items) {
		e.logger.Warn().Int("total", page.TotalItems).Int("cap", e.cap).Msg("export truncated at cap")
	}

	header := Header(e.columns)
	rows := Rows(items, e.columns)

	var buf bytes.Buffer
	switch format {
	case FormatCSV, "":
		format = FormatCSV
		err = WriteCSV(&buf, header, rows)
	case FormatXLSX:
		err = WriteXLSX(&buf, e.entity, header, rows)
	default:
		err = fmt.Errorf("format %q is not available for list exports", format)
	}
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Entity:   e.entity,
		Format:   format,
		FileName: FileName(e.entity, format, e.now()),
		MIME:     format.MIME(),
		Rows:     len(rows),
		Header:   header,
		Data:     buf.Bytes(),
	}
	if e.dir != "" {
		if res.Path, err = Save(e.dir, res.FileName, res.Data); err != nil {
			return Result{}, err
		}
	}

	metrics.AddExportRows(e.entity, string(format), res.Rows)
	e.logger.Info().Int("rows", res.Rows).Str("file", res.FileName).Msg("export written")
	events.Emit(e.bus, events.EventExportCompleted, events.ExportPayload{
		Entity: e.entity,
		Format: string(format),
		Path:   res.Path,
		Rows:   res.Rows,
	})
	events.Notify(e.bus, events.Notice{
		Level:    events.LevelSuccess,
		Resource: e.entity,
		Message:  fmt.Sprintf("Exported %d %s", res.Rows, e.entity),
	})
	return res, nil
}

// Save writes data to dir/name, creating dir when needed.
func Save(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return path, nil
}
