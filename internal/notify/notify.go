// Package notify delivers operator notices published on the event bus.
package notify

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/sm-junior0/ndarehe-sub001/internal/config"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
)

type Sink interface {
	Handle(n events.Notice) error
}

// Attach forwards every notice on bus to sinks. A failing sink does not
// stop the others.
func Attach(bus *events.EventBus, logger *zerolog.Logger, sinks ...Sink) {
	bus.Subscribe(events.EventNotice, func(e *events.Event) error {
		n, err := events.DecodeNotice(e)
		if err != nil {
			return err
		}
		var errs []error
		for _, s := range sinks {
			if err := s.Handle(n); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			if logger != nil {
				logger.Error().Err(err).Str("notice", n.Message).Msg("notice delivery failed")
			}
			return err
		}
		return nil
	})
}

// LogSink writes notices to a zerolog logger.
type LogSink struct {
	logger *zerolog.Logger
}

func NewLogSink(logger *zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Handle(n events.Notice) error {
	var ev *zerolog.Event
	switch n.Level {
	case events.LevelError:
		ev = s.logger.Error()
	case events.LevelWarn:
		ev = s.logger.Warn()
	default:
		ev = s.logger.Info()
	}
	ev.Str("level_notice", string(n.Level)).
		Str("resource", n.Resource).
		Str("record_id", n.RecordID).
		Msg(n.Message)
	return nil
}

// Collector keeps notices in memory, in arrival order.
type Collector struct {
	mu      sync.Mutex
	notices []events.Notice
}

func (c *Collector) Handle(n events.Notice) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
	return nil
}

// Drain returns and clears the collected notices.
func (c *Collector) Drain() []events.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// Sender is the part of the Telegram bot API the sink uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink sends notices at or above a minimum level to a set of chats.
type TelegramSink struct {
	sender   Sender
	chatIDs  []int64
	minLevel events.Level
	app      string
}

func NewTelegramSink(sender Sender, chatIDs []int64, minLevel events.Level, app string) *TelegramSink {
	return &TelegramSink{sender: sender, chatIDs: chatIDs, minLevel: minLevel, app: app}
}

// NewTelegramBot connects to the bot API with the configured token.
func NewTelegramBot(cfg config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	if cfg.BotToken == "" {
		return nil, errors.New("telegram bot_token is required")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug
	return bot, nil
}

func (s *TelegramSink) Handle(n events.Notice) error {
	if n.Level.Rank() < s.minLevel.Rank() {
		return nil
	}
	text := s.format(n)
	var errs []error
	for _, id := range s.chatIDs {
		if _, err := s.sender.Send(tgbotapi.NewMessage(id, text)); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (s *TelegramSink) format(n events.Notice) string {
	var b strings.Builder
	b.WriteString(levelIcon(n.Level))
	b.WriteString(" ")
	if s.app != "" {
		b.WriteString("[" + s.app + "] ")
	}
	if n.Resource != "" {
		b.WriteString(n.Resource)
		if n.RecordID != "" {
			b.WriteString(" " + n.RecordID)
		}
		b.WriteString(": ")
	}
	b.WriteString(n.Message)
	if !n.CreatedAt.IsZero() {
		b.WriteString("\n" + n.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	return b.String()
}

func levelIcon(l events.Level) string {
	switch l {
	case events.LevelError:
		return "❌"
	case events.LevelWarn:
		return "⚠️"
	case events.LevelSuccess:
		return "✅"
	default:
		return "ℹ️"
	}
}
