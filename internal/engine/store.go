package engine

import (
	"sort"
	"sync/atomic"

	"eurostat/internal/models"
)

// Dataset holds the normalized store: indicator -> country -> year -> value.
// It is never mutated after Normalize returns it.
type Dataset struct {
	values map[models.Indicator]map[string]map[int]float64
	years  []int
	size   int
}

func newDataset() *Dataset {
	ds := &Dataset{values: make(map[models.Indicator]map[string]map[int]float64, len(models.Indicators))}
	for _, ind := range models.Indicators {
		ds.values[ind] = make(map[string]map[int]float64)
	}
	return ds
}

// Empty returns a dataset with no observations.
func Empty() *Dataset {
	return newDataset()
}

// Value reports the observation for (ind, country, year) and whether it exists.
// A present zero is returned as (0, true).
func (ds *Dataset) Value(ind models.Indicator, country string, year int) (float64, bool) {
	byYear, ok := ds.values[ind][country]
	if !ok {
		return 0, false
	}
	v, ok := byYear[year]
	return v, ok
}

// Series returns the observations for (ind, country) sorted by year.
func (ds *Dataset) Series(ind models.Indicator, country string) []models.DataPoint {
	byYear := ds.values[ind][country]
	if len(byYear) == 0 {
		return nil
	}
	points := make([]models.DataPoint, 0, len(byYear))
	for y, v := range byYear {
		points = append(points, models.DataPoint{Year: y, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })
	return points
}

// Years returns a copy of AvailableYears.
func (ds *Dataset) Years() []int {
	out := make([]int, len(ds.years))
	copy(out, ds.years)
	return out
}

func (ds *Dataset) HasYear(year int) bool {
	i := sort.SearchInts(ds.years, year)
	return i < len(ds.years) && ds.years[i] == year
}

// Countries lists the countries with at least one value for ind, sorted.
func (ds *Dataset) Countries(ind models.Indicator) []string {
	out := make([]string, 0, len(ds.values[ind]))
	for c := range ds.values[ind] {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len is the number of distinct (indicator, country, year) triples.
func (ds *Dataset) Len() int {
	return ds.size
}

// Flatten lists every triple ordered by indicator, country, year.
func (ds *Dataset) Flatten() []models.FlatRecord {
	out := make([]models.FlatRecord, 0, ds.size)
	for _, ind := range models.Indicators {
		for _, c := range ds.Countries(ind) {
			for _, p := range ds.Series(ind, c) {
				out = append(out, models.FlatRecord{Indicator: ind, Country: c, Year: p.Year, Value: p.Value})
			}
		}
	}
	return out
}

// Holder publishes the current dataset. Store swaps the whole reference so
// readers see either the old or the new dataset, never a partial one.
type Holder struct {
	current atomic.Pointer[Dataset]
}

func NewHolder() *Holder {
	return &Holder{}
}

// Load returns the current dataset or nil before the first successful load.
func (h *Holder) Load() *Dataset {
	return h.current.Load()
}

func (h *Holder) Store(ds *Dataset) {
	h.current.Store(ds)
}
