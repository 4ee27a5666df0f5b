package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// wipHeader is the rollup row whose adjacent cell carries the total
// work-in-progress count.
const wipHeader = "WorkInProgress Subtotal"

// FetchWIP retrieves the WIP rollup page and returns the subtotal count.
func FetchWIP(ctx context.Context, client *http.Client, pageURL string) (int, error) {
	body, err := get(ctx, client, pageURL)
	if err != nil {
		return 0, fmt.Errorf("wip fetch: %w", err)
	}
	defer body.Close()

	cell, ok, err := CellAfterHeader(body, wipHeader)
	if err != nil {
		return 0, fmt.Errorf("wip fetch: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("wip fetch: %q row not found", wipHeader)
	}

	n, err := strconv.Atoi(strings.ReplaceAll(cell, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("wip fetch: non-numeric subtotal %q", cell)
	}
	return n, nil
}

// FetchThroughput retrieves the throughput page and returns the planned
// value and the operator override. The plan sits in the element with id
// OUTBOUNDdefaultThroughputs0; the override is the first input field on the
// page, empty when no override is set.
func FetchThroughput(ctx context.Context, client *http.Client, pageURL string) (plan, override int, err error) {
	body, err := get(ctx, client, pageURL)
	if err != nil {
		return 0, 0, fmt.Errorf("throughput fetch: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return 0, 0, fmt.Errorf("throughput fetch: parse html: %w", err)
	}

	planText := strings.TrimSpace(doc.Find("#OUTBOUNDdefaultThroughputs0").First().Text())
	if planText == "" {
		return 0, 0, fmt.Errorf("throughput fetch: plan element not found")
	}
	plan, err = strconv.Atoi(strings.ReplaceAll(planText, ",", ""))
	if err != nil {
		return 0, 0, fmt.Errorf("throughput fetch: non-numeric plan %q", planText)
	}

	if v := strings.TrimSpace(doc.Find("input").First().AttrOr("value", "")); v != "" {
		override, err = strconv.Atoi(strings.ReplaceAll(v, ",", ""))
		if err != nil {
			return 0, 0, fmt.Errorf("throughput fetch: non-numeric override %q", v)
		}
	}
	return plan, override, nil
}

// Row ids of the process-path rollup totals we read. The third cell of each
// row holds the unit count for the requested window.
const (
	pprPickRow       = "ppr.detail.outbound.pick.pick.total"
	pprPackMultiRow  = "ppr.detail.outbound.pack.packMultis.total"
	pprPackSingleRow = "ppr.detail.outbound.pack.packSingle.total"

	pprValueCell = 2
)

// ProcessingTotals is the pick/pack outcome of one process-path rollup
// fetch. Rate is the pick/pack average used against the throughput
// references.
type ProcessingTotals struct {
	Pick int     `json:"pick"`
	Pack int     `json:"pack"`
	Rate float64 `json:"rate"`
}

// FetchProcessing retrieves the process-path rollup for the hour ending at
// now rounded down to the nearest 15 minutes, and returns the pick and pack
// totals plus their average.
func FetchProcessing(ctx context.Context, client *http.Client, pageURL, facility string, now time.Time) (*ProcessingTotals, error) {
	u, err := processingURL(pageURL, facility, now)
	if err != nil {
		return nil, fmt.Errorf("processing fetch: %w", err)
	}

	body, err := get(ctx, client, u)
	if err != nil {
		return nil, fmt.Errorf("processing fetch: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("processing fetch: parse html: %w", err)
	}

	pick, err := pprRowValue(doc, pprPickRow)
	if err != nil {
		return nil, fmt.Errorf("processing fetch: %w", err)
	}
	packMulti, err := pprRowValue(doc, pprPackMultiRow)
	if err != nil {
		return nil, fmt.Errorf("processing fetch: %w", err)
	}
	packSingle, err := pprRowValue(doc, pprPackSingleRow)
	if err != nil {
		return nil, fmt.Errorf("processing fetch: %w", err)
	}

	pack := packMulti + packSingle
	return &ProcessingTotals{
		Pick: pick,
		Pack: pack,
		Rate: float64(pick+pack) / 2,
	}, nil
}

// processingURL stamps the intraday window parameters onto the rollup URL:
// a one-hour span ending at now rounded down to a 15-minute boundary.
func processingURL(pageURL, facility string, now time.Time) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	end := RoundTo15(now)
	start := end.Add(-time.Hour)

	q := u.Query()
	if q.Get("warehouseId") == "" {
		q.Set("warehouseId", facility)
	}
	q.Set("startDateIntraday", start.Format("2006/01/02"))
	q.Set("startHourIntraday", strconv.Itoa(start.Hour()))
	q.Set("startMinuteIntraday", strconv.Itoa(start.Minute()))
	q.Set("endDateIntraday", end.Format("2006/01/02"))
	q.Set("endHourIntraday", strconv.Itoa(end.Hour()))
	q.Set("endMinuteIntraday", strconv.Itoa(end.Minute()))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RoundTo15 truncates t to the previous 15-minute boundary.
func RoundTo15(t time.Time) time.Time {
	return t.Truncate(15 * time.Minute)
}

// pprRowValue extracts the unit count from the rollup row with the given id.
// The upstream report renders thousands separators and stray markup inside
// the cell, so everything but digits is dropped before conversion.
func pprRowValue(doc *goquery.Document, rowID string) (int, error) {
	row := doc.Find("tr[id='" + rowID + "']").First()
	if row.Length() == 0 {
		return 0, fmt.Errorf("row %q not found", rowID)
	}
	cell := row.Find("td").Eq(pprValueCell)
	if cell.Length() == 0 {
		return 0, fmt.Errorf("row %q has no value cell", rowID)
	}
	return digits(cell.Text()), nil
}

// digits strips every non-digit rune and converts the remainder, yielding 0
// for text with no digits at all.
func digits(s string) int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, _ := strconv.Atoi(b.String())
	return n
}

// Column headers of the sortation buffer status table.
const (
	bufferDestColumn = "Destination"
	bufferUtilColumn = "Buffers Utilization"
)

// FetchBuffer retrieves the sortation buffer status page and returns the raw
// utilization text for the destination queue (e.g. "pkMULTIZONE"). The value
// keeps its original formatting; the engine parses it.
func FetchBuffer(ctx context.Context, client *http.Client, pageURL, queue string) (string, error) {
	body, err := get(ctx, client, pageURL)
	if err != nil {
		return "", fmt.Errorf("buffer fetch: %w", err)
	}
	defer body.Close()

	tables, err := ExtractTables(body)
	if err != nil {
		return "", fmt.Errorf("buffer fetch: %w", err)
	}
	if len(tables) == 0 {
		return "", fmt.Errorf("buffer fetch: no tables in status page")
	}

	t := tables[0]
	destCol := t.Column(bufferDestColumn)
	utilCol := t.Column(bufferUtilColumn)
	if destCol < 0 || utilCol < 0 {
		return "", fmt.Errorf("buffer fetch: missing %q/%q columns", bufferDestColumn, bufferUtilColumn)
	}

	for _, row := range t.Rows {
		if destCol < len(row) && row[destCol] == queue && utilCol < len(row) {
			return row[utilCol], nil
		}
	}
	return "", fmt.Errorf("buffer fetch: destination %q not found", queue)
}
