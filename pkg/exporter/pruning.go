package exporter

import (
	"github.com/rs/zerolog/log"

	"github.com/odsplit/odsplit/pkg/gtfs"
	"github.com/odsplit/odsplit/pkg/util"
)

// pruneUnreachable keeps only the rows transitively reachable from the
// selected routes: trips on those routes, then their services, shapes and
// visited stops. Everything else is dropped.
func pruneUnreachable(schedule *gtfs.Schedule, routeIDs []string) {
	util.InPlaceFilter(&schedule.Routes, func(route gtfs.Route) bool {
		return util.ContainsString(routeIDs, route.ID)
	})

	keptTrips := map[string]bool{}
	keptServices := map[string]bool{}
	keptShapes := map[string]bool{}

	util.InPlaceFilter(&schedule.Trips, func(trip gtfs.Trip) bool {
		if !util.ContainsString(routeIDs, trip.RouteID) {
			return false
		}

		keptTrips[trip.ID] = true
		keptServices[trip.ServiceID] = true
		if trip.ShapeID != "" {
			keptShapes[trip.ShapeID] = true
		}

		return true
	})

	keptStops := map[string]bool{}

	util.InPlaceFilter(&schedule.StopTimes, func(stopTime gtfs.StopTime) bool {
		if !keptTrips[stopTime.TripID] {
			return false
		}

		keptStops[stopTime.StopID] = true

		return true
	})

	util.InPlaceFilter(&schedule.Stops, func(stop gtfs.Stop) bool {
		return keptStops[stop.ID]
	})
	util.InPlaceFilter(&schedule.Calendars, func(calendar gtfs.Calendar) bool {
		return keptServices[calendar.ServiceID]
	})
	util.InPlaceFilter(&schedule.CalendarDates, func(calendarDate gtfs.CalendarDate) bool {
		return keptServices[calendarDate.ServiceID]
	})
	util.InPlaceFilter(&schedule.Shapes, func(shape gtfs.Shape) bool {
		return keptShapes[shape.ID]
	})

	keptAgencies := map[string]bool{}
	for _, route := range schedule.Routes {
		keptAgencies[route.AgencyID] = true
	}
	util.InPlaceFilter(&schedule.Agencies, func(agency gtfs.Agency) bool {
		return keptAgencies[agency.ID]
	})

	log.Info().
		Int("routes", len(schedule.Routes)).
		Int("trips", len(schedule.Trips)).
		Int("stops", len(schedule.Stops)).
		Msg("Pruned feed to selected routes")
}
