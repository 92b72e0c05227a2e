package exporter

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/odsplit/odsplit/pkg/gtfs"
)

// roundShapeCoordinates rounds shape point coordinates to 5 decimal places,
// about 1.1m of resolution.
func roundShapeCoordinates(schedule *gtfs.Schedule) {
	for index := range schedule.Shapes {
		schedule.Shapes[index].PointLatitude = roundCoordinate(schedule.Shapes[index].PointLatitude)
		schedule.Shapes[index].PointLongitude = roundCoordinate(schedule.Shapes[index].PointLongitude)
	}
}

func roundCoordinate(value float64) float64 {
	return math.Round(value*100000) / 100000
}

// decimateShapes uniformly samples any shape with more than maxPoints points
// down to a stride-bounded subset. The final point is always retained so the
// geometry still reaches the end of the line.
func decimateShapes(schedule *gtfs.Schedule, maxPoints int) {
	var shapeOrder []string
	pointsByShape := map[string][]gtfs.Shape{}

	for _, point := range schedule.Shapes {
		if _, exists := pointsByShape[point.ID]; !exists {
			shapeOrder = append(shapeOrder, point.ID)
		}
		pointsByShape[point.ID] = append(pointsByShape[point.ID], point)
	}

	var decimated []gtfs.Shape

	for _, shapeID := range shapeOrder {
		points := pointsByShape[shapeID]
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].PointSequence < points[j].PointSequence
		})

		if len(points) <= maxPoints {
			decimated = append(decimated, points...)
			continue
		}

		stride := int(math.Ceil(float64(len(points)) / float64(maxPoints)))

		kept := 0
		for index := 0; index < len(points); index += stride {
			decimated = append(decimated, points[index])
			kept += 1
		}

		// Stride alignment can skip the terminus
		if (len(points)-1)%stride != 0 {
			decimated = append(decimated, points[len(points)-1])
			kept += 1
		}

		log.Debug().
			Str("shape", shapeID).
			Int("before", len(points)).
			Int("after", kept).
			Msg("Decimated shape")
	}

	schedule.Shapes = decimated
}
