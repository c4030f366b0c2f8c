package engine

import (
	"errors"

	"eurostat/internal/models"
)

// ErrNoData is returned when an indicator/country combination has no values.
var ErrNoData = errors.New("no data for indicator and country")

// BubbleProfile fixes the domains used to place bubbles on the canvas.
type BubbleProfile struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	OffsetY int `yaml:"offset_y"`

	SVMin  float64 `yaml:"sv_min"`
	SVMax  float64 `yaml:"sv_max"`
	PIBMin float64 `yaml:"pib_min"`
	PIBMax float64 `yaml:"pib_max"`
	POPMin float64 `yaml:"pop_min"`
	POPMax float64 `yaml:"pop_max"`

	RadiusMin float64 `yaml:"radius_min"`
	RadiusMax float64 `yaml:"radius_max"`
}

func DefaultBubbleProfile() BubbleProfile {
	return BubbleProfile{
		Width:     800,
		Height:    500,
		OffsetY:   50,
		SVMin:     60,
		SVMax:     90,
		PIBMin:    10000,
		PIBMax:    100000,
		POPMin:    500000,
		POPMax:    80000000,
		RadiusMin: 5,
		RadiusMax: 40,
	}
}

// LineSeries collects the sorted points of one indicator for one country.
func LineSeries(ds *Dataset, ind models.Indicator, country string) (models.LineSeries, error) {
	points := ds.Series(ind, country)
	if len(points) == 0 {
		return models.LineSeries{}, ErrNoData
	}
	return models.LineSeries{Indicator: ind, Country: country, Points: points}, nil
}

// BuildBubbleFrame places one bubble per country that has all three
// indicators for year. Countries with a gap are left out.
func BuildBubbleFrame(ds *Dataset, year int, countries []string, p BubbleProfile) models.BubbleFrame {
	frame := models.BubbleFrame{
		Year:    year,
		Width:   p.Width,
		Height:  p.Height,
		Bubbles: make([]models.Bubble, 0, len(countries)),
	}
	plotHeight := float64(p.Height - p.OffsetY)

	for _, c := range countries {
		sv, okSV := ds.Value(models.SV, c, year)
		pib, okPIB := ds.Value(models.PIB, c, year)
		pop, okPOP := ds.Value(models.POP, c, year)
		if !okSV || !okPIB || !okPOP {
			continue
		}

		frame.Bubbles = append(frame.Bubbles, models.Bubble{
			Country: c,
			X:       Scale(sv, p.SVMin, p.SVMax, 0, float64(p.Width)),
			Y:       plotHeight - Scale(pib, p.PIBMin, p.PIBMax, 0, plotHeight),
			Radius:  Scale(pop, p.POPMin, p.POPMax, p.RadiusMin, p.RadiusMax),
		})
	}
	return frame
}

// BuildSummaryTable computes per-indicator averages over the countries that
// report a value for year, then colors every cell against its average.
// Absent values are shown as zero but do not count toward the average.
func BuildSummaryTable(ds *Dataset, year int, countries []string) models.SummaryTable {
	sums := make(map[models.Indicator]float64, len(models.Indicators))
	counts := make(map[models.Indicator]int, len(models.Indicators))

	for _, c := range countries {
		for _, ind := range models.Indicators {
			if v, ok := ds.Value(ind, c, year); ok {
				sums[ind] += v
				counts[ind]++
			}
		}
	}

	table := models.SummaryTable{
		Year:     year,
		Averages: make(map[models.Indicator]float64, len(models.Indicators)),
		Rows:     make([]models.TableRow, 0, len(countries)),
	}
	for _, ind := range models.Indicators {
		if counts[ind] > 0 {
			table.Averages[ind] = sums[ind] / float64(counts[ind])
		} else {
			table.Averages[ind] = 0
		}
	}

	for _, c := range countries {
		row := models.TableRow{
			Country: c,
			Name:    CountryName(c),
			Cells:   make(map[models.Indicator]models.TableCell, len(models.Indicators)),
		}
		for _, ind := range models.Indicators {
			v, ok := ds.Value(ind, c, year)
			row.Cells[ind] = models.TableCell{
				Value:   v,
				Present: ok,
				Color:   ColorByDistance(v, table.Averages[ind]),
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
