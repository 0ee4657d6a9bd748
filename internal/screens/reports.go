package screens

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/export"
	"github.com/sm-junior0/ndarehe-sub001/internal/metrics"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

// Reports fetches aggregated reports and writes them as CSV or PDF.
type Reports struct {
	client *api.Client
	dir    string
	now    func() time.Time
	bus    events.Publisher
	logger *zerolog.Logger
}

func NewReports(client *api.Client, opts Options) *Reports {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.logger().With().Str("screen", "reports").Logger()
	return &Reports{client: client, dir: opts.ExportDir, now: now, bus: opts.Bus, logger: &logger}
}

func (r *Reports) Fetch(ctx context.Context, kind models.ReportKind, params models.ReportParams) (models.Report, error) {
	report, err := r.client.Report(ctx, kind, params)
	if err != nil {
		r.logger.Error().Err(err).Str("kind", string(kind)).Msg("report fetch failed")
		events.Notify(r.bus, events.Notice{Level: events.LevelError, Resource: "reports", Message: api.Message(err, "Failed to fetch report")})
		return models.Report{}, err
	}
	return report, nil
}

// ReportFileName is <kind>-report-<YYYY-MM-DD>.<ext>.
func ReportFileName(kind models.ReportKind, f export.Format, day time.Time) string {
	return fmt.Sprintf("%s-report-%s.%s", kind, day.Format("2006-01-02"), f)
}

// Export fetches a report and encodes it. Only CSV and PDF are offered.
func (r *Reports) Export(ctx context.Context, kind models.ReportKind, params models.ReportParams, format export.Format) (export.Result, error) {
	report, err := r.Fetch(ctx, kind, params)
	if err != nil {
		return export.Result{}, err
	}

	header, rows := export.ReportTable(report)
	var buf bytes.Buffer
	switch format {
	case export.FormatCSV, "":
		format = export.FormatCSV
		err = export.WriteCSV(&buf, header, rows)
	case export.FormatPDF:
		err = export.WriteReportPDF(&buf, report)
	default:
		err = fmt.Errorf("format %q is not available for reports", format)
	}
	if err != nil {
		return export.Result{}, err
	}

	entity := string(kind) + "-report"
	res := export.Result{
		Entity:   entity,
		Format:   format,
		FileName: ReportFileName(kind, format, r.now()),
		MIME:     format.MIME(),
		Rows:     len(report.Rows),
		Header:   header,
		Data:     buf.Bytes(),
	}
	if r.dir != "" {
		if res.Path, err = export.Save(r.dir, res.FileName, res.Data); err != nil {
			return export.Result{}, err
		}
	}

	metrics.AddExportRows(entity, string(format), res.Rows)
	events.Emit(r.bus, events.EventExportCompleted, events.ExportPayload{Entity: entity, Format: string(format), Path: res.Path, Rows: res.Rows})
	events.Notify(r.bus, events.Notice{Level: events.LevelSuccess, Resource: "reports", Message: "Report exported"})
	return res, nil
}
