package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sm-junior0/ndarehe-sub001/internal/database"
	"github.com/sm-junior0/ndarehe-sub001/internal/export"
	"github.com/sm-junior0/ndarehe-sub001/internal/listing"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

var commands = map[string]command{
	"list":           {"list <screen> [-page n] [-search s] [-filter k=v]", cmdList},
	"export":         {"export <screen> [-format csv|xlsx] [-search s] [-filter k=v]", cmdExport},
	"create":         {"create <screen> field=value...", cmdCreate},
	"update":         {"update <screen> <id> field=value...", cmdUpdate},
	"delete":         {"delete <screen> <id>", cmdDelete},
	"verify":         {"verify <accommodations|transportation|tours> <id> [-off]", cmdVerify},
	"user-status":    {"user-status <id> active|inactive", cmdUserStatus},
	"booking-status": {"booking-status <id> <STATUS>", cmdBookingStatus},
	"ticket-status":  {"ticket-status <id> <STATUS>", cmdTicketStatus},
	"settings":       {"settings [key=value...]", cmdSettings},
	"report":         {"report <revenue|bookings|activity> [-from d] [-to d] [-group g] [-format csv|pdf]", cmdReport},
	"categories":     {"categories", cmdCategories},
	"dashboard":      {"dashboard [-page n]", cmdDashboard},
	"audit":          {"audit [-resource r] [-limit n]", cmdAudit},
}

// screen is what every list screen offers regardless of its record type.
type screen interface {
	Name() string
	Show(ctx context.Context, page int, search string, filters map[string]string) error
	Table() ([]string, [][]string)
	Summary() listing.Summary
	Locate(ctx context.Context, id string) error
	Create(ctx context.Context, values map[string]string) error
	Update(ctx context.Context, id string, values map[string]string) error
	Delete(ctx context.Context, id string) error
	ExportCurrent(ctx context.Context, format export.Format) (export.Result, error)
}

type verifier interface {
	screen
	SetVerified(ctx context.Context, id string, verified bool) error
}

func (a *app) screen(name string) (screen, error) {
	c := a.console
	switch name {
	case "users":
		return c.Users, nil
	case "bookings":
		return c.Bookings, nil
	case "accommodations":
		return c.Accommodations, nil
	case "transportation":
		return c.Transportation, nil
	case "tours":
		return c.Tours, nil
	case "articles":
		return c.Help.Articles, nil
	case "tickets":
		return c.Help.Tickets, nil
	default:
		return nil, fmt.Errorf("unknown screen %q", name)
	}
}

// filterFlag collects repeated -filter k=v pairs.
type filterFlag map[string]string

func (f filterFlag) String() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (f filterFlag) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("filter %q is not key=value", s)
	}
	f[strings.TrimSpace(k)] = v
	return nil
}

func parseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q is not field=value", arg)
		}
		values[k] = v
	}
	return values, nil
}

// positional splits leading positional args from flags so both
// "list users -page 2" and "list -page 2 users" work.
func positional(fs *flag.FlagSet, args []string, n int) ([]string, error) {
	var pos []string
	for len(pos) < n && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		pos = append(pos, args[0])
		args = args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	pos = append(pos, fs.Args()...)
	if len(pos) < n {
		return nil, fmt.Errorf("%s needs %d argument(s)", fs.Name(), n)
	}
	return pos, nil
}

func cmdList(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	search := fs.String("search", "", "search term")
	filters := filterFlag{}
	fs.Var(filters, "filter", "filter as key=value, repeatable")
	pos, err := positional(fs, args, 1)
	if err != nil {
		return err
	}

	s, err := a.screen(pos[0])
	if err != nil {
		return err
	}
	if err := s.Show(ctx, *page, *search, filters); err != nil {
		return err
	}
	printScreen(a.out, s)
	return nil
}

func cmdExport(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", a.cfg.Exports.Format, "csv or xlsx")
	search := fs.String("search", "", "search term")
	filters := filterFlag{}
	fs.Var(filters, "filter", "filter as key=value, repeatable")
	pos, err := positional(fs, args, 1)
	if err != nil {
		return err
	}

	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	s, err := a.screen(pos[0])
	if err != nil {
		return err
	}
	if err := s.Show(ctx, 1, *search, filters); err != nil {
		return err
	}
	res, err := s.ExportCurrent(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s (%d rows)\n", res.Path, res.Rows)
	return nil
}

func cmdCreate(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return errors.New("create needs a screen")
	}
	s, err := a.screen(args[0])
	if err != nil {
		return err
	}
	values, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}
	if err := s.Create(ctx, values); err != nil {
		return err
	}
	printScreen(a.out, s)
	return nil
}

func cmdUpdate(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return errors.New("update needs a screen and an id")
	}
	s, err := a.screen(args[0])
	if err != nil {
		return err
	}
	values, err := parseAssignments(args[2:])
	if err != nil {
		return err
	}
	if err := s.Locate(ctx, args[1]); err != nil {
		return err
	}
	return s.Update(ctx, args[1], values)
}

func cmdDelete(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("delete needs a screen and an id")
	}
	s, err := a.screen(args[0])
	if err != nil {
		return err
	}
	return s.Delete(ctx, args[1])
}

func cmdVerify(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	off := fs.Bool("off", false, "remove the verified mark")
	pos, err := positional(fs, args, 2)
	if err != nil {
		return err
	}

	s, err := a.screen(pos[0])
	if err != nil {
		return err
	}
	v, ok := s.(verifier)
	if !ok {
		return fmt.Errorf("%s cannot be verified", s.Name())
	}
	if err := v.Locate(ctx, pos[1]); err != nil {
		return err
	}
	return v.SetVerified(ctx, pos[1], !*off)
}

func cmdUserStatus(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("user-status needs an id and active|inactive")
	}
	var active bool
	switch strings.ToLower(args[1]) {
	case "active", "true":
		active = true
	case "inactive", "false":
	default:
		return fmt.Errorf("unknown user status %q", args[1])
	}
	users := a.console.Users
	if err := users.Locate(ctx, args[0]); err != nil {
		return err
	}
	return users.SetActive(ctx, args[0], active)
}

func cmdBookingStatus(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("booking-status needs an id and a status")
	}
	status := models.BookingStatus(strings.ToUpper(args[1]))
	if !status.Valid() {
		return fmt.Errorf("unknown booking status %q", args[1])
	}
	bookings := a.console.Bookings
	if err := bookings.Locate(ctx, args[0]); err != nil {
		return err
	}
	return bookings.SetStatus(ctx, args[0], status)
}

func cmdTicketStatus(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("ticket-status needs an id and a status")
	}
	status := models.TicketStatus(strings.ToUpper(args[1]))
	if !status.Valid() {
		return fmt.Errorf("unknown ticket status %q", args[1])
	}
	tickets := a.console.Help.Tickets
	if err := tickets.Locate(ctx, args[0]); err != nil {
		return err
	}
	return a.console.Help.SetTicketStatus(ctx, args[0], status)
}

func cmdSettings(ctx context.Context, a *app, args []string) error {
	store := a.console.Settings
	if err := store.Load(ctx); err != nil {
		return err
	}
	if len(args) > 0 {
		values, err := parseAssignments(args)
		if err != nil {
			return err
		}
		for k, v := range values {
			if err := store.Set(k, v); err != nil {
				return err
			}
		}
		if err := store.Save(ctx); err != nil {
			return err
		}
	}

	rows := [][]string{}
	for _, e := range store.Entries() {
		rows = append(rows, []string{e.Key, e.Value, e.Description})
	}
	printTable(a.out, []string{"Key", "Value", "Description"}, rows)
	if ignored := store.Ignored(); len(ignored) > 0 {
		fmt.Fprintf(a.out, "ignored unknown keys: %s\n", strings.Join(ignored, ", "))
	}
	return nil
}

func cmdReport(ctx context.Context, a *app, args []string) error {
	now := time.Now().UTC()
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	from := fs.String("from", now.AddDate(0, 0, -30).Format("2006-01-02"), "start date YYYY-MM-DD")
	to := fs.String("to", now.Format("2006-01-02"), "end date YYYY-MM-DD")
	group := fs.String("group", "day", "day, week or month")
	format := fs.String("format", "csv", "csv or pdf")
	pos, err := positional(fs, args, 1)
	if err != nil {
		return err
	}

	kind, err := models.ParseReportKind(pos[0])
	if err != nil {
		return err
	}
	params := models.ReportParams{GroupBy: *group}
	if params.StartDate, err = time.Parse("2006-01-02", *from); err != nil {
		return fmt.Errorf("invalid -from: %w", err)
	}
	if params.EndDate, err = time.Parse("2006-01-02", *to); err != nil {
		return fmt.Errorf("invalid -to: %w", err)
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}

	res, err := a.console.Reports.Export(ctx, kind, params, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s (%d rows)\n", res.Path, res.Rows)
	return nil
}

func cmdCategories(ctx context.Context, a *app, _ []string) error {
	cats, err := a.console.Help.Categories(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, len(cats))
	for i, c := range cats {
		rows[i] = []string{c.ID, c.Name, strconv.Itoa(c.ArticleCount), c.Description}
	}
	printTable(a.out, []string{"ID", "Name", "Articles", "Description"}, rows)
	return nil
}

func cmdDashboard(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	page := fs.Int("page", 1, "activity page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dash := a.console.Dashboard
	err := dash.Start(ctx)
	if err == nil && *page > 1 {
		err = dash.GoToPage(ctx, *page)
	}
	printDashboard(a.out, dash.Snapshot())
	return err
}

func cmdAudit(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	resource := fs.String("resource", "", "only this resource")
	limit := fs.Int("limit", 20, "entries to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := a.db.ListAudit(ctx, database.AuditFilter{Resource: *resource, Limit: *limit})
	if err != nil {
		return err
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.CreatedAt.Format(time.RFC3339), e.Resource, e.RecordID, e.Action, e.Detail, e.Actor}
	}
	printTable(a.out, []string{"Time", "Resource", "Record", "Action", "Detail", "Actor"}, rows)
	return nil
}
