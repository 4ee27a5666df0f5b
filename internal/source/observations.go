package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/flowcentral/flowcentral/internal/config"
)

// Observations is the normalized output of one fetch cycle for a single
// facility. Nil fields mean the observation was unavailable this cycle; the
// matching failure is recorded in Errors. Downstream validation runs on
// whatever is present.
type Observations struct {
	Facility  string
	FetchedAt time.Time

	Risks      *RiskTables
	WIP        *int
	Plan       *int
	Override   *int
	Processing *ProcessingTotals
	Buffer     *string

	Errors []string
}

// Source fetches all observations for one facility. It holds the HTTP client
// built for the shared auth block and reuses it across cycles.
type Source struct {
	facility   config.Facility
	client     *http.Client
	aggregated bool
	now        func() time.Time
}

// New creates a Source for one facility. aggregated selects the combined
// risk-table layout used by aggregated facilities.
func New(fc config.Facility, client *http.Client, aggregated bool) *Source {
	return &Source{
		facility:   fc,
		client:     client,
		aggregated: aggregated,
		now:        time.Now,
	}
}

// Fetch collects every configured observation for the facility. Individual
// failures are logged and recorded on the result; Fetch itself never fails.
// When a metrics exporter endpoint is configured it replaces all page
// scraping for the numeric observations it covers.
func (s *Source) Fetch(ctx context.Context) *Observations {
	obs := &Observations{
		Facility:  s.facility.ID,
		FetchedAt: s.now(),
	}

	if s.facility.CPTURL != "" {
		risks, err := FetchCPT(ctx, s.client, s.facility.CPTURL, s.aggregated)
		if err != nil {
			obs.fail("cpt", err)
		} else {
			obs.Risks = risks
		}
	}

	if s.facility.MetricsURL != "" {
		s.fetchFromExporter(ctx, obs)
		return obs
	}
	s.fetchFromPages(ctx, obs)
	return obs
}

func (s *Source) fetchFromExporter(ctx context.Context, obs *Observations) {
	readings, err := FetchExporter(ctx, s.client, s.facility.MetricsURL)
	if err != nil {
		obs.fail("exporter", err)
		return
	}
	obs.WIP = readings.WIP
	obs.Plan = readings.Plan
	obs.Override = readings.Override
	obs.Processing = readings.Processing
	obs.Buffer = readings.Buffer
}

func (s *Source) fetchFromPages(ctx context.Context, obs *Observations) {
	if s.facility.WIPURL != "" {
		wip, err := FetchWIP(ctx, s.client, s.facility.WIPURL)
		if err != nil {
			obs.fail("wip", err)
		} else {
			obs.WIP = &wip
		}
	}

	if s.facility.ThroughputURL != "" {
		plan, override, err := FetchThroughput(ctx, s.client, s.facility.ThroughputURL)
		if err != nil {
			obs.fail("throughput", err)
		} else {
			obs.Plan = &plan
			obs.Override = &override
		}
	}

	if s.facility.ProcessingURL != "" {
		totals, err := FetchProcessing(ctx, s.client, s.facility.ProcessingURL, s.facility.ID, s.now())
		if err != nil {
			obs.fail("processing", err)
		} else {
			obs.Processing = totals
		}
	}

	if s.facility.BufferURL != "" && s.facility.BufferQueue != "" {
		buf, err := FetchBuffer(ctx, s.client, s.facility.BufferURL, s.facility.BufferQueue)
		if err != nil {
			obs.fail("buffer", err)
		} else {
			obs.Buffer = &buf
		}
	}
}

// fail records one degraded observation and logs it.
func (o *Observations) fail(metric string, err error) {
	o.Errors = append(o.Errors, fmt.Sprintf("%s: %v", metric, err))
	slog.Warn("source: fetch failed",
		"facility", o.Facility,
		"metric", metric,
		"err", err,
	)
}
