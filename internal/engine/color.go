package engine

import (
	"math"

	"eurostat/internal/models"
)

const averageEpsilon = 1e-10

// ColorByDistance colors value by its ratio to average: red below half the
// average, green above one and a half times, yellowish in between.
func ColorByDistance(value, average float64) models.RGB {
	if average < averageEpsilon {
		average = averageEpsilon
	}

	x := value / average
	if x < 0.5 || math.IsNaN(x) {
		x = 0.5
	}
	if x > 1.5 {
		x = 1.5
	}
	t := (x - 0.5) / 1.0

	g := math.Round(255 * t)
	return models.RGB{R: uint8(255 - g), G: uint8(g), B: 0}
}
