package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"eurostat/internal/models"
)

const sampleJSON = `[
  {"tara": "BE", "an": "2020", "indicator": "PIB", "valoare": 100},
  {"tara": "BE", "an": 2021, "indicator": "PIB", "valoare": 200.5},
  {"tara": "BE", "an": "2020", "indicator": "SV", "valoare": 80},
  {"tara": "DE", "an": "2019", "indicator": "GDP", "valoare": 1}
]`

func TestDecode(t *testing.T) {
	records, err := Decode(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(records))
	}
	if *records[0].Year != 2020 || *records[1].Year != 2021 {
		t.Errorf("Years decoded wrong: %d, %d", *records[0].Year, *records[1].Year)
	}
	if *records[1].Value != 200.5 {
		t.Errorf("Expected 200.5, got %v", *records[1].Value)
	}
}

func TestDecodeBadYear(t *testing.T) {
	_, err := Decode(strings.NewReader(`[{"tara":"BE","an":"twenty","indicator":"SV","valoare":1}]`))
	if err == nil {
		t.Fatal("Expected error for non numeric year")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eurostat.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0644); err != nil {
		t.Fatal(err)
	}

	ds, err := Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Len() != 3 {
		t.Errorf("Expected 3 triples, got %d", ds.Len())
	}
	if v, _ := ds.Value(models.PIB, "BE", 2021); v != 200.5 {
		t.Errorf("Expected 200.5, got %v", v)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	body := `[{"tara":"BE","an":2020,"indicator":"SV","valoare":1},{"tara":"BE","an":2021,"indicator":"SV"}]`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(context.Background(), path)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("Expected malformed record error, got %v", err)
	}
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media/eurostat.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	ds, err := Load(context.Background(), srv.URL+"/media/eurostat.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Years()) != 2 {
		t.Errorf("Expected 2 years, got %v", ds.Years())
	}

	if _, err := Load(context.Background(), srv.URL+"/missing.json"); err == nil {
		t.Error("Expected error on 404")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestHolder(t *testing.T) {
	h := NewHolder()
	if h.Load() != nil {
		t.Fatal("Expected nil dataset before first store")
	}
	ds := Empty()
	h.Store(ds)
	if h.Load() != ds {
		t.Error("Expected stored dataset")
	}
}

func TestCountryName(t *testing.T) {
	if got := CountryName("EL"); got == "EL" {
		t.Errorf("Expected EL to resolve to Greece, got %s", got)
	}
	if got := CountryName("ZZ"); got != "ZZ" {
		t.Errorf("Expected fallback to code, got %s", got)
	}
	if len(EU27) != 27 {
		t.Errorf("Expected 27 countries, got %d", len(EU27))
	}
}
