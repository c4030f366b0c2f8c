package api

import (
	"bufio"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/goccy/go-json"

	"eurostat/internal/dashboard"
	"eurostat/internal/models"
)

const testData = `[
  {"tara":"BE","an":"2020","indicator":"SV","valoare":75},
  {"tara":"BE","an":"2020","indicator":"PIB","valoare":55000},
  {"tara":"BE","an":"2020","indicator":"POP","valoare":11000000},
  {"tara":"BE","an":"2021","indicator":"PIB","valoare":57000},
  {"tara":"DE","an":"2020","indicator":"PIB","valoare":45000}
]`

type testEnv struct {
	dash   *dashboard.Dashboard
	server http.Handler
}

func setup(t *testing.T, load bool) testEnv {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eurostat.json")
	if err := os.WriteFile(path, []byte(testData), 0644); err != nil {
		t.Fatal(err)
	}

	dash := dashboard.New(dashboard.Options{Source: path, Interval: time.Millisecond})
	if load {
		if err := dash.Reload(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	e := NewServer(NewHandler(dash, 600, 300), ServerOptions{LogLevel: "error"})
	return testEnv{dash: dash, server: e}
}

func (env testEnv) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func TestLoadingState(t *testing.T) {
	env := setup(t, false)

	for _, target := range []string{"/api/years", "/api/table?year=2020", "/api/chart/line.svg?indicator=pib&country=BE", "/api/records"} {
		if rec := env.do(http.MethodGet, target); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: Expected 503, got %d", target, rec.Code)
		}
	}
	if rec := env.do(http.MethodPost, "/api/animation/start"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("animation start: Expected 503, got %d", rec.Code)
	}

	rec := env.do(http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "loading") {
		t.Errorf("Unexpected health %d %s", rec.Code, rec.Body.String())
	}

	// The page still renders, with empty year selectors.
	if rec := env.do(http.MethodGet, "/"); rec.Code != http.StatusOK {
		t.Errorf("index: Expected 200, got %d", rec.Code)
	}

	if rec := env.do(http.MethodPost, "/api/reload"); rec.Code != http.StatusOK {
		t.Fatalf("reload: Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(http.MethodGet, "/api/years"); rec.Code != http.StatusOK {
		t.Errorf("years after reload: Expected 200, got %d", rec.Code)
	}
}

func TestGetYears(t *testing.T) {
	env := setup(t, true)

	rec := env.do(http.MethodGet, "/api/years")
	var years []int
	if err := json.Unmarshal(rec.Body.Bytes(), &years); err != nil {
		t.Fatal(err)
	}
	if len(years) != 2 || years[0] != 2020 || years[1] != 2021 {
		t.Errorf("Expected [2020 2021], got %v", years)
	}
}

func TestGetRecordsPagination(t *testing.T) {
	env := setup(t, true)

	rec := env.do(http.MethodGet, "/api/records?limit=2&offset=1")
	var body struct {
		Data  []models.FlatRecord `json:"data"`
		Total int                 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 5 || len(body.Data) != 2 {
		t.Errorf("Expected 2 of 5, got %d of %d", len(body.Data), body.Total)
	}

	rec = env.do(http.MethodGet, "/api/records?offset=50")
	var past struct {
		Data   []models.FlatRecord `json:"data"`
		Total  int                 `json:"total"`
		Offset int                 `json:"offset"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &past); err != nil {
		t.Fatalf("Expected the paged envelope past the end, got %s", rec.Body.String())
	}
	if past.Data == nil || len(past.Data) != 0 || past.Total != 5 || past.Offset != 50 {
		t.Errorf("Expected empty data with total 5 at offset 50, got %s", rec.Body.String())
	}
}

func TestLineChart(t *testing.T) {
	env := setup(t, true)

	rec := env.do(http.MethodGet, "/api/chart/line.svg?indicator=PIB&country=BE")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Unexpected content type %s", ct)
	}
	if n := strings.Count(rec.Body.String(), "<circle"); n != 2 {
		t.Errorf("Expected 2 points, got %d", n)
	}

	if rec := env.do(http.MethodGet, "/api/chart/line.svg?indicator=pib&country=be"); rec.Code != http.StatusOK {
		t.Errorf("lowercase country: Expected 200, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/chart/line.svg?indicator=POP&country=SE"); rec.Code != http.StatusNotFound {
		t.Errorf("absent combination: Expected 404, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/chart/line.svg?indicator=GDP&country=BE"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad indicator: Expected 400, got %d", rec.Code)
	}

	rec = env.do(http.MethodGet, "/api/chart/line.png?indicator=pib&country=BE")
	if rec.Code != http.StatusOK {
		t.Fatalf("png: Expected 200, got %d", rec.Code)
	}
	if _, err := png.Decode(rec.Body); err != nil {
		t.Errorf("Invalid png: %v", err)
	}
}

func TestBubbleChart(t *testing.T) {
	env := setup(t, true)

	rec := env.do(http.MethodGet, "/api/chart/bubble.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if y := rec.Header().Get("X-Frame-Year"); y != "2020" {
		t.Errorf("Expected default year 2020, got %s", y)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 800 {
		t.Errorf("Expected 800px canvas, got %d", img.Bounds().Dx())
	}

	if rec := env.do(http.MethodGet, "/api/chart/bubble.png?year=abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestTable(t *testing.T) {
	env := setup(t, true)

	rec := env.do(http.MethodGet, "/api/table?year=2020")
	var table models.SummaryTable
	if err := json.Unmarshal(rec.Body.Bytes(), &table); err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 27 {
		t.Errorf("Expected 27 rows, got %d", len(table.Rows))
	}
	if table.Averages[models.PIB] != 50000 {
		t.Errorf("Expected PIB average 50000, got %v", table.Averages[models.PIB])
	}

	rec = env.do(http.MethodGet, "/api/table.html?year=2020")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<table") {
		t.Errorf("Unexpected html table %d", rec.Code)
	}
}

func TestArrowExport(t *testing.T) {
	env := setup(t, true)

	rec := env.do(http.MethodGet, "/api/export.arrow")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	r, err := ipc.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Release()
	rows := int64(0)
	for r.Next() {
		rows += r.Record().NumRows()
	}
	if rows != 5 {
		t.Errorf("Expected 5 rows, got %d", rows)
	}
}

func TestAnimationLifecycle(t *testing.T) {
	env := setup(t, true)

	if rec := env.do(http.MethodGet, "/api/animation/frame.png"); rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 before animation, got %d", rec.Code)
	}

	rec := env.do(http.MethodPost, "/api/animation/start")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := env.dash.WaitAnimation(ctx); err != nil {
		t.Fatal(err)
	}

	rec = env.do(http.MethodGet, "/api/animation/frame.png")
	if rec.Code != http.StatusOK || rec.Header().Get("X-Frame-Year") != "2021" {
		t.Errorf("Expected last frame 2021, got %d %s", rec.Code, rec.Header().Get("X-Frame-Year"))
	}

	rec = env.do(http.MethodGet, "/api/animation")
	if !strings.Contains(rec.Body.String(), `"state":"idle"`) {
		t.Errorf("Expected idle after completion: %s", rec.Body.String())
	}

	env.do(http.MethodPost, "/api/animation/reset")
	if rec := env.do(http.MethodGet, "/api/animation/frame.png"); rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 after reset, got %d", rec.Code)
	}
}

func TestAnimationEventsStream(t *testing.T) {
	env := setup(t, true)
	srv := httptest.NewServer(env.server)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/animation/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	startResp, err := http.Post(srv.URL+"/api/animation/start", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	startResp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	var frames int
	for scanner.Scan() && frames < 2 {
		if strings.HasPrefix(scanner.Text(), "data: ") {
			frames++
		}
	}
	if frames != 2 {
		t.Errorf("Expected 2 frame events, got %d", frames)
	}
}
