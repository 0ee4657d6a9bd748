package screens

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/config"
	"github.com/sm-junior0/ndarehe-sub001/internal/dashboard"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/settings"
)

// Console holds every screen of the admin console. Each list screen is
// independent; they only share the client and the event bus.
type Console struct {
	Users          *Users
	Bookings       *Bookings
	Accommodations *Accommodations
	Transportation *Transportation
	Tours          *Tours
	Help           *HelpDesk
	Reports        *Reports
	Settings       *settings.Store
	Dashboard      *dashboard.Aggregator
}

func NewConsole(cfg *config.Config, client *api.Client, bus *events.EventBus, logger *zerolog.Logger) *Console {
	return NewConsoleWithClock(cfg, client, bus, logger, time.Now)
}

func NewConsoleWithClock(cfg *config.Config, client *api.Client, bus *events.EventBus, logger *zerolog.Logger, now func() time.Time) *Console {
	base := Options{
		ExportCap:     cfg.Exports.Cap,
		ExportDir:     cfg.Exports.Path,
		StrictNumbers: cfg.Forms.StrictNumbers,
		Bus:           bus,
		Logger:        logger,
		Now:           now,
	}
	sized := func(n int) Options {
		o := base
		o.PageSize = n
		return o
	}

	return &Console{
		Users:          NewUsers(client, sized(cfg.Screens.Users)),
		Bookings:       NewBookings(client, sized(cfg.Screens.Bookings)),
		Accommodations: NewAccommodations(client, sized(cfg.Screens.Accommodations)),
		Transportation: NewTransportation(client, sized(cfg.Screens.Transportation)),
		Tours:          NewTours(client, sized(cfg.Screens.Tours)),
		Help:           NewHelpDesk(client, sized(cfg.Screens.HelpArticles), sized(cfg.Screens.SupportTickets)),
		Reports:        NewReports(client, base),
		Settings:       settings.New(client, cfg.Settings.Keys, settings.WithLogger(logger), settings.WithPublisher(bus)),
		Dashboard: dashboard.New(client,
			dashboard.WithInterval(cfg.Dashboard.PollInterval),
			dashboard.WithMaxInterval(cfg.Dashboard.MaxPollInterval),
			dashboard.WithLimit(cfg.Dashboard.ActivityLimit),
			dashboard.WithLogger(logger),
			dashboard.WithPublisher(bus),
		),
	}
}

// Close cancels in-flight list loads.
func (c *Console) Close() {
	c.Users.List.Close()
	c.Bookings.List.Close()
	c.Accommodations.List.Close()
	c.Transportation.List.Close()
	c.Tours.List.Close()
	c.Help.Articles.List.Close()
	c.Help.Tickets.List.Close()
}
