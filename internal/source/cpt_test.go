package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const riskPageSingle = `
<html><body>
<table>
  <tr><th></th><th></th><th>08/26 14:00</th><th>08/26 18:00</th><th>08/27 02:00</th></tr>
  <tr><td>Backlog</td><td>units</td><td>1200</td><td>900</td><td>400</td></tr>
  <tr><td>Utilization</td><td>%</td><td>96%</td><td>80%</td><td>∞</td></tr>
</table>
</body></html>
`

const riskPagePair = `
<html><body>
<table>
  <tr><th></th><th></th><th>08/26 14:00</th></tr>
  <tr><td>Utilization</td><td>%</td><td>91%</td></tr>
</table>
<table>
  <tr><th></th><th></th><th>08/26 16:00</th></tr>
  <tr><td>Utilization</td><td>%</td><td>88%</td></tr>
</table>
</body></html>
`

func riskServer(t *testing.T, page string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchCPT_Aggregated(t *testing.T) {
	srv := riskServer(t, riskPageSingle)

	got, err := FetchCPT(context.Background(), srv.Client(), srv.URL, true)
	if err != nil {
		t.Fatalf("FetchCPT() error = %v", err)
	}
	if got.Singles == nil {
		t.Fatal("Singles table missing")
	}
	if got.Multis != nil {
		t.Error("aggregated facility should not report a multis table")
	}

	wantDeadlines := []string{"08/26 14:00", "08/26 18:00", "08/27 02:00"}
	if len(got.Singles.Deadlines) != len(wantDeadlines) {
		t.Fatalf("Deadlines = %v, want %v", got.Singles.Deadlines, wantDeadlines)
	}
	for i, d := range wantDeadlines {
		if got.Singles.Deadlines[i] != d {
			t.Errorf("Deadlines[%d] = %q, want %q", i, got.Singles.Deadlines[i], d)
		}
	}
	if got.Singles.Values[0] != "96%" || got.Singles.Values[2] != "∞" {
		t.Errorf("Values = %v", got.Singles.Values)
	}
}

func TestFetchCPT_SinglesAndMultis(t *testing.T) {
	srv := riskServer(t, riskPagePair)

	got, err := FetchCPT(context.Background(), srv.Client(), srv.URL, false)
	if err != nil {
		t.Fatalf("FetchCPT() error = %v", err)
	}
	if got.Singles == nil || got.Multis == nil {
		t.Fatalf("expected both tables, got singles=%v multis=%v", got.Singles, got.Multis)
	}
	if got.Singles.Values[0] != "91%" {
		t.Errorf("Singles.Values[0] = %q, want 91%%", got.Singles.Values[0])
	}
	if got.Multis.Values[0] != "88%" {
		t.Errorf("Multis.Values[0] = %q, want 88%%", got.Multis.Values[0])
	}
}

func TestFetchCPT_UtilizationRowFallback(t *testing.T) {
	// No "Utilization" label: the tenth data row of the fixed layout wins.
	var b strings.Builder
	b.WriteString("<table><tr><th></th><th></th><th>08/26 14:00</th></tr>")
	for i := 0; i < 9; i++ {
		fmt.Fprintf(&b, "<tr><td>row%d</td><td>x</td><td>%d</td></tr>", i, i)
	}
	b.WriteString("<tr><td>unlabeled</td><td>%</td><td>93%</td></tr></table>")
	srv := riskServer(t, b.String())

	got, err := FetchCPT(context.Background(), srv.Client(), srv.URL, true)
	if err != nil {
		t.Fatalf("FetchCPT() error = %v", err)
	}
	if got.Singles.Values[0] != "93%" {
		t.Errorf("Values[0] = %q, want 93%%", got.Singles.Values[0])
	}
}

func TestFetchCPT_NoTables(t *testing.T) {
	srv := riskServer(t, "<html><body><p>maintenance</p></body></html>")

	if _, err := FetchCPT(context.Background(), srv.Client(), srv.URL, true); err == nil {
		t.Fatal("expected error for a page without tables")
	}
}

func TestFetchCPT_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := FetchCPT(context.Background(), srv.Client(), srv.URL, true); err == nil {
		t.Fatal("expected error for HTTP 502")
	}
}
