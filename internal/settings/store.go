package settings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/config"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

var ErrUnknownKey = errors.New("settings: unknown key")

// Backend is the part of the admin API the store talks to.
type Backend interface {
	Settings(ctx context.Context) ([]models.SettingEntry, error)
	SaveSettings(ctx context.Context, entries []models.SettingEntry) error
}

// Store is the settings form buffer for a fixed set of known keys.
type Store struct {
	backend Backend
	keys    []config.SettingKey
	known   map[string]config.SettingKey
	logger  *zerolog.Logger
	bus     events.Publisher

	mu      sync.RWMutex
	values  map[string]string
	ignored []string
}

type Option func(*Store)

func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithPublisher(bus events.Publisher) Option {
	return func(s *Store) {
		s.bus = bus
	}
}

func New(backend Backend, keys []config.SettingKey, opts ...Option) *Store {
	if len(keys) == 0 {
		keys = config.DefaultSettingKeys
	}
	nop := zerolog.Nop()
	s := &Store{
		backend: backend,
		keys:    append([]config.SettingKey(nil), keys...),
		known:   make(map[string]config.SettingKey, len(keys)),
		logger:  &nop,
	}
	for _, k := range keys {
		s.known[k.Key] = k
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Reset restores every known key to its default.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string, len(s.keys))
	for _, k := range s.keys {
		s.values[k.Key] = k.Default
	}
}

// Load folds the server's entries into the form. Unknown keys are ignored;
// known keys the server did not return keep their current value.
func (s *Store) Load(ctx context.Context) error {
	entries, err := s.backend.Settings(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load settings")
		events.Notify(s.bus, events.Notice{Level: events.LevelError, Resource: "settings", Message: api.Message(err, "Failed to fetch settings")})
		return fmt.Errorf("load settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ignored = s.ignored[:0]
	for _, e := range entries {
		if _, ok := s.known[e.Key]; !ok {
			s.ignored = append(s.ignored, e.Key)
			continue
		}
		s.values[e.Key] = e.Value
	}
	if len(s.ignored) > 0 {
		sort.Strings(s.ignored)
		s.logger.Debug().Strs("keys", s.ignored).Msg("ignoring unmanaged settings")
	}
	return nil
}

// Ignored lists the unknown keys seen by the last Load.
func (s *Store) Ignored() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.ignored...)
}

func (s *Store) Keys() []config.SettingKey {
	return append([]config.SettingKey(nil), s.keys...)
}

// Form returns a copy of the buffer.
func (s *Store) Form() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

func (s *Store) Bool(key string) bool {
	b, _ := strconv.ParseBool(s.Get(key))
	return b
}

func (s *Store) Int(key string) (int, error) {
	return strconv.Atoi(s.Get(key))
}

func (s *Store) Set(key, value string) error {
	if _, ok := s.known[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *Store) SetBool(key string, v bool) error {
	return s.Set(key, strconv.FormatBool(v))
}

func (s *Store) SetInt(key string, v int) error {
	return s.Set(key, strconv.Itoa(v))
}

// Entries renders the full known key set in configured order.
func (s *Store) Entries() []models.SettingEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SettingEntry, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, models.SettingEntry{Key: k.Key, Value: s.values[k.Key], Description: k.Description})
	}
	return out
}

// Save upserts every known key, changed or not.
func (s *Store) Save(ctx context.Context) error {
	entries := s.Entries()
	if err := s.backend.SaveSettings(ctx, entries); err != nil {
		s.logger.Error().Err(err).Msg("failed to save settings")
		events.Notify(s.bus, events.Notice{Level: events.LevelError, Resource: "settings", Message: api.Message(err, "Failed to save settings")})
		return fmt.Errorf("save settings: %w", err)
	}

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	s.logger.Info().Int("keys", len(keys)).Msg("settings saved")
	events.Emit(s.bus, events.EventSettingsSaved, events.SettingsPayload{Keys: keys})
	events.Notify(s.bus, events.Notice{Level: events.LevelSuccess, Resource: "settings", Message: "Settings saved successfully"})
	return nil
}
