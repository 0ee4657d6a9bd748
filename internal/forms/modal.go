package forms

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
)

var ErrNotOpen = errors.New("forms: modal is not open")

// SubmitFunc sends a built input. id is empty for a create. It returns the
// id of the stored record.
type SubmitFunc[In any] func(ctx context.Context, id string, in In) (string, error)

// Modal is a create/update dialog: a field buffer, a builder that turns the
// buffer into a request body and the call that submits it.
type Modal[In any] struct {
	name    string
	fields  *Fields
	build   func(*Fields) In
	submit  SubmitFunc[In]
	refetch func(ctx context.Context) error
	strict  bool
	logger  *zerolog.Logger
	bus     events.Publisher

	mu      sync.Mutex
	open    bool
	editID  string
	message string
}

type ModalOption[In any] func(*Modal[In])

// WithStrictNumbers blocks submission while a numeric field would be sent as NaN.
func WithStrictNumbers[In any](strict bool) ModalOption[In] {
	return func(m *Modal[In]) {
		m.strict = strict
	}
}

// WithRefetch sets the list reload run after a successful submit.
func WithRefetch[In any](refetch func(ctx context.Context) error) ModalOption[In] {
	return func(m *Modal[In]) {
		m.refetch = refetch
	}
}

func WithModalLogger[In any](logger *zerolog.Logger) ModalOption[In] {
	return func(m *Modal[In]) {
		if logger != nil {
			l := logger.With().Str("form", m.name).Logger()
			m.logger = &l
		}
	}
}

func WithModalPublisher[In any](bus events.Publisher) ModalOption[In] {
	return func(m *Modal[In]) {
		m.bus = bus
	}
}

func NewModal[In any](name string, fields *Fields, build func(*Fields) In, submit SubmitFunc[In], opts ...ModalOption[In]) *Modal[In] {
	nop := zerolog.Nop()
	m := &Modal[In]{
		name:   name,
		fields: fields,
		build:  build,
		submit: submit,
		logger: &nop,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open starts a create with a fresh buffer.
func (m *Modal[In]) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields.Reset()
	m.open, m.editID, m.message = true, "", ""
}

// Edit starts an update of id with the buffer prefilled from values.
func (m *Modal[In]) Edit(id string, values map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields.Reset()
	m.fields.Fill(values)
	m.open, m.editID, m.message = true, id, ""
}

// Cancel closes the modal without submitting.
func (m *Modal[In]) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields.Reset()
	m.open, m.editID, m.message = false, "", ""
}

func (m *Modal[In]) Set(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return ErrNotOpen
	}
	return m.fields.Set(name, value)
}

func (m *Modal[In]) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

func (m *Modal[In]) EditingID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editID
}

// Message is the error text shown inside the modal, empty when there is none.
func (m *Modal[In]) Message() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.message
}

func (m *Modal[In]) Values() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fields.Values()
}

// Preview builds the request body the buffer would submit.
func (m *Modal[In]) Preview() In {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.build(m.fields)
}

// Submit sends the buffer. On success the modal closes, the buffer resets
// and the list is refetched. On failure the modal stays open and Message
// holds the server's text or a generic fallback.
func (m *Modal[In]) Submit(ctx context.Context) error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return ErrNotOpen
	}
	if err := m.fields.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) && (m.strict || hasRequired(verr, m.fields)) {
			m.message = err.Error()
			m.mu.Unlock()
			return err
		}
		m.logger.Warn().Err(err).Msg("submitting form with malformed numeric input")
	}
	id := m.editID
	in := m.build(m.fields)
	m.mu.Unlock()

	action, fallback := "create", "Failed to create "+m.name
	if id != "" {
		action, fallback = "update", "Failed to update "+m.name
	}

	storedID, err := m.submit(ctx, id, in)
	if err != nil {
		msg := api.Message(err, fallback)
		m.mu.Lock()
		m.message = msg
		m.mu.Unlock()
		m.logger.Error().Err(err).Str("action", action).Msg("form submission failed")
		events.Notify(m.bus, events.Notice{Level: events.LevelError, Resource: m.name, RecordID: id, Message: msg})
		return err
	}

	m.mu.Lock()
	m.fields.Reset()
	m.open, m.editID, m.message = false, "", ""
	m.mu.Unlock()

	if storedID == "" {
		storedID = id
	}
	m.logger.Info().Str("action", action).Str("id", storedID).Msg("form submitted")
	events.Notify(m.bus, events.Notice{Level: events.LevelSuccess, Resource: m.name, RecordID: storedID, Message: successText(m.name, action)})
	events.Emit(m.bus, events.EventRecordMutated, events.MutationPayload{Resource: m.name, RecordID: storedID, Action: action})

	if m.refetch != nil {
		if err := m.refetch(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("refetch after submit failed")
		}
	}
	return nil
}

// hasRequired reports whether verr includes a missing required field.
func hasRequired(verr *ValidationError, f *Fields) bool {
	for _, fe := range verr.Errors {
		if fd, ok := f.byName[fe.Field]; ok && fd.Required && f.String(fe.Field) == "" {
			return true
		}
	}
	return false
}

func successText(name, action string) string {
	if action == "update" {
		return "Updated " + name + " successfully"
	}
	return "Created " + name + " successfully"
}
