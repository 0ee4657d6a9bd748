// Package screens assembles the console's list screens: a list controller,
// a create/update modal, an exporter and the per-record toggles of each
// admin collection.
package screens

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/export"
	"github.com/sm-junior0/ndarehe-sub001/internal/forms"
	"github.com/sm-junior0/ndarehe-sub001/internal/listing"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

// Resource is the slice of api.Resource a screen talks to.
type Resource[T models.Record, In any] interface {
	List(ctx context.Context, q models.ListQuery) (models.Page[T], error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id string, in In) (T, error)
	Delete(ctx context.Context, id string) error
}

// Options carries what every screen shares.
type Options struct {
	PageSize      int
	ExportCap     int
	ExportDir     string
	StrictNumbers bool
	Bus           events.Publisher
	Logger        *zerolog.Logger
	Now           func() time.Time
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return o.Logger
}

// formSpec describes the modal of one collection.
type formSpec[T models.Record, In any] struct {
	fields   func() *forms.Fields
	build    func(*forms.Fields) In
	values   func(T) map[string]string
	editable bool
}

// Screen is one admin collection.
type Screen[T models.Record, In any] struct {
	name    string
	entity  string
	res     Resource[T, In]
	values  func(T) map[string]string
	columns []export.Column[T]
	bus     events.Publisher
	logger  *zerolog.Logger

	List   *listing.Controller[T]
	Form   *forms.Modal[In]
	Export *export.Exporter[T]
}

func newScreen[T models.Record, In any](name, entity string, res Resource[T, In], columns []export.Column[T], spec formSpec[T, In], opts Options, filters map[string]string) *Screen[T, In] {
	logger := opts.logger().With().Str("screen", name).Logger()
	s := &Screen[T, In]{
		name:    name,
		entity:  entity,
		res:     res,
		values:  spec.values,
		columns: columns,
		bus:     opts.Bus,
		logger:  &logger,
	}

	s.List = listing.New[T](name, opts.PageSize, res.List,
		listing.WithLogger[T](opts.Logger),
		listing.WithPublisher[T](opts.Bus),
		listing.WithFilters[T](filters),
	)

	exportOpts := []export.Option[T]{
		export.WithCap[T](opts.ExportCap),
		export.WithDir[T](opts.ExportDir),
		export.WithPublisher[T](opts.Bus),
		export.WithLogger[T](opts.Logger),
	}
	if opts.Now != nil {
		exportOpts = append(exportOpts, export.WithClock[T](opts.Now))
	}
	s.Export = export.NewExporter[T](name, res.List, columns, exportOpts...)

	if spec.fields != nil {
		submit := s.submitCreate
		if spec.editable {
			submit = s.submitUpsert
		}
		s.Form = forms.NewModal[In](entity, spec.fields(), spec.build, submit,
			forms.WithStrictNumbers[In](opts.StrictNumbers),
			forms.WithRefetch[In](s.List.Refresh),
			forms.WithModalLogger[In](opts.Logger),
			forms.WithModalPublisher[In](opts.Bus),
		)
	}
	return s
}

func (s *Screen[T, In]) Name() string {
	return s.name
}

func (s *Screen[T, In]) Load(ctx context.Context) error {
	return s.List.Load(ctx)
}

// Show loads one page for search and filters with a single request.
func (s *Screen[T, In]) Show(ctx context.Context, page int, search string, filters map[string]string) error {
	q := models.ListQuery{Page: page, Search: search}
	for k, v := range filters {
		q = q.WithFilter(k, v)
	}
	return s.List.SetQuery(ctx, q.WithPage(page))
}

// Table renders the loaded page with the export columns.
func (s *Screen[T, In]) Table() ([]string, [][]string) {
	return export.Header(s.columns), export.Rows(s.List.Items(), s.columns)
}

func (s *Screen[T, In]) Summary() listing.Summary {
	return s.List.View().Summary()
}

// Locate pages through the current query until id is on the loaded page.
func (s *Screen[T, In]) Locate(ctx context.Context, id string) error {
	for page := 1; ; page++ {
		if err := s.List.SetPage(ctx, page); err != nil {
			return err
		}
		if s.loaded(id) {
			return nil
		}
		if page >= s.List.View().Page.TotalPages {
			return listing.ErrNotFound
		}
	}
}

func (s *Screen[T, In]) loaded(id string) bool {
	for _, item := range s.List.Items() {
		if item.RecordID() == id {
			return true
		}
	}
	return false
}

// Create opens the modal, fills it from values and submits.
func (s *Screen[T, In]) Create(ctx context.Context, values map[string]string) error {
	if s.Form == nil {
		return fmt.Errorf("%s cannot be created here", s.name)
	}
	s.Form.Open()
	return s.fill(ctx, values)
}

// Update edits id, which must be on the loaded page, with values layered over
// the record's current fields.
func (s *Screen[T, In]) Update(ctx context.Context, id string, values map[string]string) error {
	if err := s.EditRecord(id); err != nil {
		return err
	}
	return s.fill(ctx, values)
}

func (s *Screen[T, In]) fill(ctx context.Context, values map[string]string) error {
	for name, value := range values {
		if err := s.Form.Set(name, value); err != nil {
			s.Form.Cancel()
			return err
		}
	}
	return s.Form.Submit(ctx)
}

// ExportCurrent exports the records matching the screen's current filters.
func (s *Screen[T, In]) ExportCurrent(ctx context.Context, format export.Format) (export.Result, error) {
	return s.Export.Export(ctx, s.List.Query(), format)
}

// EditRecord opens the modal prefilled from the loaded record id.
func (s *Screen[T, In]) EditRecord(id string) error {
	if s.Form == nil || s.values == nil {
		return fmt.Errorf("%s cannot be edited", s.name)
	}
	for _, item := range s.List.Items() {
		if item.RecordID() == id {
			s.Form.Edit(id, s.values(item))
			return nil
		}
	}
	return listing.ErrNotFound
}

// Delete removes id on the server and reloads the list.
func (s *Screen[T, In]) Delete(ctx context.Context, id string) error {
	if err := s.res.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("delete failed")
		events.Notify(s.bus, events.Notice{
			Level:    events.LevelError,
			Resource: s.entity,
			RecordID: id,
			Message:  api.Message(err, "Failed to delete "+s.entity),
		})
		return err
	}
	events.Notify(s.bus, events.Notice{Level: events.LevelSuccess, Resource: s.entity, RecordID: id, Message: "Deleted " + s.entity + " successfully"})
	events.Emit(s.bus, events.EventRecordMutated, events.MutationPayload{Resource: s.entity, RecordID: id, Action: "delete"})
	return s.List.Refresh(ctx)
}

// toggle runs a single-flag change through Mutate and journals it.
func (s *Screen[T, In]) toggle(ctx context.Context, id, action, detail string, call func(ctx context.Context) error, patch func(T) T) error {
	if err := s.List.Mutate(ctx, id, call, patch); err != nil {
		return err
	}
	events.Emit(s.bus, events.EventRecordMutated, events.MutationPayload{Resource: s.entity, RecordID: id, Action: action, Detail: detail})
	return nil
}

func (s *Screen[T, In]) submitCreate(ctx context.Context, id string, in In) (string, error) {
	if id != "" {
		return "", fmt.Errorf("%s cannot be edited", s.name)
	}
	created, err := s.res.Create(ctx, in)
	if err != nil {
		return "", err
	}
	return created.RecordID(), nil
}

func (s *Screen[T, In]) submitUpsert(ctx context.Context, id string, in In) (string, error) {
	if id == "" {
		return s.submitCreate(ctx, id, in)
	}
	updated, err := s.res.Update(ctx, id, in)
	if err != nil {
		return "", err
	}
	if updated.RecordID() != "" {
		return updated.RecordID(), nil
	}
	return id, nil
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
