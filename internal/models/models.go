package models

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// Record is one observation from the Eurostat dump. Fields are pointers so a
// missing key can be told apart from a zero value.
type Record struct {
	Country   *string  `json:"tara"`
	Year      *Year    `json:"an"`
	Indicator *string  `json:"indicator"`
	Value     *float64 `json:"valoare"`
}

// NewRecord builds a fully populated record.
func NewRecord(country string, year int, indicator string, value float64) Record {
	y := Year(year)
	return Record{Country: &country, Year: &y, Indicator: &indicator, Value: &value}
}

// Year is a calendar year that decodes from either 2020 or "2020".
type Year int

func (y *Year) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	n, err := strconv.Atoi(string(bytes.TrimSpace(b)))
	if err != nil {
		return fmt.Errorf("invalid year %q: %w", string(b), err)
	}
	*y = Year(n)
	return nil
}

// Indicator is the internal key of a measured quantity.
type Indicator string

const (
	PIB Indicator = "pib"
	SV  Indicator = "sv"
	POP Indicator = "pop"
)

// Indicators lists the known keys in display order.
var Indicators = []Indicator{PIB, SV, POP}

type DataPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

type LineSeries struct {
	Indicator Indicator   `json:"indicator"`
	Country   string      `json:"country"`
	Points    []DataPoint `json:"points"`
}

type Bubble struct {
	Country string  `json:"country"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"r"`
}

type BubbleFrame struct {
	Year    int      `json:"year"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Bubbles []Bubble `json:"bubbles"`
}

type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

type TableCell struct {
	Value   float64 `json:"value"`
	Present bool    `json:"present"`
	Color   RGB     `json:"color"`
}

type TableRow struct {
	Country string                  `json:"country"`
	Name    string                  `json:"name"`
	Cells   map[Indicator]TableCell `json:"cells"`
}

type SummaryTable struct {
	Year     int                   `json:"year"`
	Averages map[Indicator]float64 `json:"averages"`
	Rows     []TableRow            `json:"rows"`
}

// FlatRecord is the paginated view of the normalized store.
type FlatRecord struct {
	Indicator Indicator `json:"indicator"`
	Country   string    `json:"country"`
	Year      int       `json:"year"`
	Value     float64   `json:"value"`
}
