package engine

import (
	"bytes"
	"errors"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"eurostat/internal/models"
)

func fixture(t *testing.T) *Dataset {
	t.Helper()
	// BE: complete in 2020, DE: complete in 2020 with large values,
	// FR: missing population in 2020, MT: zero savings rate.
	ds, err := Normalize([]models.Record{
		models.NewRecord("BE", 2020, "SV", 75),
		models.NewRecord("BE", 2020, "PIB", 55000),
		models.NewRecord("BE", 2020, "POP", 500000),
		models.NewRecord("DE", 2020, "SV", 120),
		models.NewRecord("DE", 2020, "PIB", 5000),
		models.NewRecord("DE", 2020, "POP", 90000000),
		models.NewRecord("FR", 2020, "SV", 70),
		models.NewRecord("FR", 2020, "PIB", 40000),
		models.NewRecord("FR", 2021, "PIB", 41000),
		models.NewRecord("MT", 2020, "SV", 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestLineSeries(t *testing.T) {
	ds := fixture(t)

	s, err := LineSeries(ds, models.PIB, "FR")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Points) != 2 || s.Points[0].Year != 2020 || s.Points[1].Value != 41000 {
		t.Errorf("Unexpected series: %+v", s.Points)
	}

	if _, err := LineSeries(ds, models.POP, "FR"); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

func TestBuildBubbleFrame(t *testing.T) {
	ds := fixture(t)
	p := DefaultBubbleProfile()

	frame := BuildBubbleFrame(ds, 2020, EU27, p)

	// FR lacks population, MT lacks everything but SV.
	if len(frame.Bubbles) != 2 {
		t.Fatalf("Expected 2 bubbles, got %d", len(frame.Bubbles))
	}

	be := frame.Bubbles[0]
	if be.Country != "BE" {
		t.Fatalf("Expected BE first (EU order), got %s", be.Country)
	}
	if be.X != 400 {
		t.Errorf("BE x: Expected 400, got %v", be.X)
	}
	if be.Y != 225 {
		t.Errorf("BE y: Expected 225, got %v", be.Y)
	}
	if be.Radius != 5 {
		t.Errorf("BE r: Expected 5, got %v", be.Radius)
	}

	// DE is out of every domain and must be clamped.
	de := frame.Bubbles[1]
	if de.X != 800 || de.Y != 450 || de.Radius != 40 {
		t.Errorf("DE clamping: got %+v", de)
	}

	if empty := BuildBubbleFrame(ds, 1999, EU27, p); len(empty.Bubbles) != 0 {
		t.Errorf("Expected no bubbles for unknown year, got %d", len(empty.Bubbles))
	}
}

func TestBuildSummaryTable(t *testing.T) {
	ds := fixture(t)

	table := BuildSummaryTable(ds, 2020, EU27)

	if len(table.Rows) != 27 {
		t.Fatalf("Expected 27 rows, got %d", len(table.Rows))
	}
	if table.Rows[0].Country != "BE" || table.Rows[26].Country != "SE" {
		t.Errorf("Rows not in EU order: %s..%s", table.Rows[0].Country, table.Rows[26].Country)
	}

	// SV average counts MT's zero: (75+120+70+0)/4.
	if got := table.Averages[models.SV]; got != 66.25 {
		t.Errorf("SV average: Expected 66.25, got %v", got)
	}
	if got := table.Averages[models.PIB]; got != (55000.0+5000+40000)/3 {
		t.Errorf("PIB average: got %v", got)
	}

	var mt, se models.TableRow
	for _, r := range table.Rows {
		switch r.Country {
		case "MT":
			mt = r
		case "SE":
			se = r
		}
	}
	if cell := mt.Cells[models.SV]; !cell.Present || cell.Value != 0 {
		t.Errorf("MT SV should be a present zero: %+v", cell)
	}
	if cell := se.Cells[models.PIB]; cell.Present || cell.Value != 0 {
		t.Errorf("SE PIB should be absent: %+v", cell)
	}
	if cell := se.Cells[models.PIB]; cell.Color != (models.RGB{R: 255}) {
		t.Errorf("Absent cell should be colored as below average, got %v", cell.Color)
	}
}

func TestBuildSummaryTableNoData(t *testing.T) {
	table := BuildSummaryTable(Empty(), 2020, EU27)
	for _, ind := range models.Indicators {
		if table.Averages[ind] != 0 {
			t.Errorf("%s average should be 0", ind)
		}
	}
}

func TestWriteArrow(t *testing.T) {
	ds := fixture(t)

	var buf bytes.Buffer
	if err := WriteArrow(&buf, ds); err != nil {
		t.Fatal(err)
	}

	r, err := ipc.NewReader(&buf, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Release()

	rows := 0
	for r.Next() {
		rows += int(r.Record().NumRows())
	}
	if rows != ds.Len() {
		t.Errorf("Expected %d rows, got %d", ds.Len(), rows)
	}
	if !r.Schema().Equal(ArrowSchema) {
		t.Error("Schema mismatch")
	}
}
