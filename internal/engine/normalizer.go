package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"eurostat/internal/models"
)

// ErrMalformedRecord matches every *MalformedRecordError.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError identifies the first input record missing a field.
type MalformedRecordError struct {
	Index int
	Field string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at index %d: missing %q", e.Index, e.Field)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

var indicatorKeys = map[string]models.Indicator{
	"SV":  models.SV,
	"PIB": models.PIB,
	"POP": models.POP,
}

// IndicatorKey maps a dataset indicator code to its internal key.
func IndicatorKey(code string) (models.Indicator, bool) {
	k, ok := indicatorKeys[code]
	return k, ok
}

// ParseIndicator accepts either a code ("PIB") or a key ("pib").
func ParseIndicator(s string) (models.Indicator, bool) {
	if k, ok := indicatorKeys[strings.ToUpper(s)]; ok {
		return k, true
	}
	return "", false
}

// Normalize reshapes records into a Dataset. Records with an unknown
// indicator are skipped. A record missing any field aborts the whole call
// and nothing is returned.
func Normalize(records []models.Record) (*Dataset, error) {
	ds := newDataset()
	seen := make(map[int]struct{})

	for i, rec := range records {
		if field := missingField(rec); field != "" {
			return nil, &MalformedRecordError{Index: i, Field: field}
		}

		key, ok := indicatorKeys[*rec.Indicator]
		if !ok {
			continue
		}

		year := int(*rec.Year)
		byCountry := ds.values[key]
		byYear, ok := byCountry[*rec.Country]
		if !ok {
			byYear = make(map[int]float64)
			byCountry[*rec.Country] = byYear
		}
		if _, dup := byYear[year]; !dup {
			ds.size++
		}
		byYear[year] = *rec.Value
		seen[year] = struct{}{}
	}

	ds.years = make([]int, 0, len(seen))
	for y := range seen {
		ds.years = append(ds.years, y)
	}
	sort.Ints(ds.years)

	return ds, nil
}

func missingField(rec models.Record) string {
	switch {
	case rec.Country == nil || *rec.Country == "":
		return "tara"
	case rec.Year == nil:
		return "an"
	case rec.Indicator == nil:
		return "indicator"
	case rec.Value == nil:
		return "valoare"
	}
	return ""
}
