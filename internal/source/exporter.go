package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Gauge names exposed by a facility exporter endpoint. The exporter carries
// the same numbers as the dashboard pages in machine-readable form.
const (
	metricWIP                = "fc_work_in_progress"
	metricThroughputPlan     = "fc_throughput_plan"
	metricThroughputOverride = "fc_throughput_override"
	metricProcessingRate     = "fc_processing_rate" // labeled process="pick"|"pack"
	metricBufferUtilization  = "fc_buffer_utilization_percent"
)

// ExporterReadings holds one scrape of a facility exporter. Pointer fields
// are nil when the corresponding gauge was absent from the exposition.
type ExporterReadings struct {
	WIP        *int
	Plan       *int
	Override   *int
	Processing *ProcessingTotals
	Buffer     *string
}

// FetchExporter scrapes a facility's Prometheus-text-format endpoint and
// extracts the gauges the monitor understands. Absent gauges are left nil;
// only transport and parse failures are errors.
func FetchExporter(ctx context.Context, client *http.Client, endpoint string) (*ExporterReadings, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("exporter fetch: build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exporter fetch: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exporter fetch: unexpected status %d", resp.StatusCode)
	}

	mfs, err := parseMetrics(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("exporter fetch: %w", err)
	}

	out := &ExporterReadings{}
	if v, ok := firstValue(mfs[metricWIP]); ok {
		n := int(v)
		out.WIP = &n
	}
	if v, ok := firstValue(mfs[metricThroughputPlan]); ok {
		n := int(v)
		out.Plan = &n
	}
	if v, ok := firstValue(mfs[metricThroughputOverride]); ok {
		n := int(v)
		out.Override = &n
	}
	if v, ok := firstValue(mfs[metricBufferUtilization]); ok {
		s := strconv.FormatFloat(v, 'f', -1, 64) + "%"
		out.Buffer = &s
	}

	pick, pickOK := labeledValue(mfs[metricProcessingRate], "process", "pick")
	pack, packOK := labeledValue(mfs[metricProcessingRate], "process", "pack")
	if pickOK && packOK {
		out.Processing = &ProcessingTotals{
			Pick: int(pick),
			Pack: int(pack),
			Rate: (pick + pack) / 2,
		}
	}
	return out, nil
}

// parseMetrics decodes a Prometheus text exposition into metric families.
// A partial result with a non-fatal parse warning is still returned.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// firstValue returns the value of the first gauge, counter or untyped metric
// in mf. Returns false when mf is nil or empty.
func firstValue(mf *dto.MetricFamily) (float64, bool) {
	if mf == nil {
		return 0, false
	}
	for _, m := range mf.GetMetric() {
		switch {
		case m.Gauge != nil:
			return m.Gauge.GetValue(), true
		case m.Counter != nil:
			return m.Counter.GetValue(), true
		case m.Untyped != nil:
			return m.Untyped.GetValue(), true
		}
	}
	return 0, false
}

// labeledValue returns the value of the first metric in mf carrying the
// given label pair.
func labeledValue(mf *dto.MetricFamily, label, value string) (float64, bool) {
	if mf == nil {
		return 0, false
	}
	for _, m := range mf.GetMetric() {
		match := false
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label && lp.GetValue() == value {
				match = true
				break
			}
		}
		if !match {
			continue
		}
		switch {
		case m.Gauge != nil:
			return m.Gauge.GetValue(), true
		case m.Counter != nil:
			return m.Counter.GetValue(), true
		case m.Untyped != nil:
			return m.Untyped.GetValue(), true
		}
	}
	return 0, false
}
