package gtfs

import "sort"

// StopTimesByTrip groups stop_times rows by trip and orders each group by
// ascending stop_sequence. Input rows are copied, not reordered in place.
func StopTimesByTrip(stopTimes []StopTime) map[string][]StopTime {
	grouped := map[string][]StopTime{}

	for _, stopTime := range stopTimes {
		grouped[stopTime.TripID] = append(grouped[stopTime.TripID], stopTime)
	}

	for tripID := range grouped {
		sort.SliceStable(grouped[tripID], func(i, j int) bool {
			return grouped[tripID][i].StopSequence < grouped[tripID][j].StopSequence
		})
	}

	return grouped
}
