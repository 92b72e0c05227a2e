package gtfs

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// Schedule is an in-memory snapshot of a GTFS feed. Tables absent from the
// source archive stay as empty slices rather than causing an error.
type Schedule struct {
	Agencies      []Agency
	Stops         []Stop
	Routes        []Route
	Trips         []Trip
	StopTimes     []StopTime
	Calendars     []Calendar
	CalendarDates []CalendarDate
	Shapes        []Shape
}

func (schedule *Schedule) ParseFile(reader io.Reader) error {
	// Allow us to ignore those naughty records that have missing columns
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		return r
	})

	fileMap := map[string]interface{}{
		"agency.txt":         &schedule.Agencies,
		"stops.txt":          &schedule.Stops,
		"routes.txt":         &schedule.Routes,
		"trips.txt":          &schedule.Trips,
		"stop_times.txt":     &schedule.StopTimes,
		"calendar.txt":       &schedule.Calendars,
		"calendar_dates.txt": &schedule.CalendarDates,
		"shapes.txt":         &schedule.Shapes,
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return err
	}

	for _, zipFile := range archive.File {
		fileName := zipFile.Name

		destination, exists := fileMap[fileName]
		if !exists {
			log.Debug().Str("file", fileName).Msg("Skipping unknown gtfs file")
			continue
		}

		log.Info().Str("file", fileName).Msg("Loading file")

		fileReader, err := zipFile.Open()
		if err != nil {
			return err
		}
		defer fileReader.Close()

		err = gocsv.Unmarshal(fileReader, destination)
		if err != nil {
			log.Error().Str("file", fileName).Err(err).Msg("Failed to parse csv file")
			return err
		}
	}

	return nil
}

// WriteArchive serializes every non-empty table back out as a GTFS zip.
func (schedule *Schedule) WriteArchive(writer io.Writer) error {
	archive := zip.NewWriter(writer)

	fileMap := map[string]interface{}{
		"agency.txt":         schedule.Agencies,
		"stops.txt":          schedule.Stops,
		"routes.txt":         schedule.Routes,
		"trips.txt":          schedule.Trips,
		"stop_times.txt":     schedule.StopTimes,
		"calendar.txt":       schedule.Calendars,
		"calendar_dates.txt": schedule.CalendarDates,
		"shapes.txt":         schedule.Shapes,
	}

	for _, fileName := range tableOrder {
		table := fileMap[fileName]
		if tableEmpty(table) {
			continue
		}

		tableFile, err := archive.Create(fileName)
		if err != nil {
			return err
		}

		err = gocsv.Marshal(table, tableFile)
		if err != nil {
			log.Error().Str("file", fileName).Err(err).Msg("Failed to write csv file")
			return err
		}
	}

	return archive.Close()
}

// Deterministic output ordering inside the archive
var tableOrder = []string{
	"agency.txt",
	"stops.txt",
	"routes.txt",
	"trips.txt",
	"stop_times.txt",
	"calendar.txt",
	"calendar_dates.txt",
	"shapes.txt",
}

func tableEmpty(table interface{}) bool {
	switch records := table.(type) {
	case []Agency:
		return len(records) == 0
	case []Stop:
		return len(records) == 0
	case []Route:
		return len(records) == 0
	case []Trip:
		return len(records) == 0
	case []StopTime:
		return len(records) == 0
	case []Calendar:
		return len(records) == 0
	case []CalendarDate:
		return len(records) == 0
	case []Shape:
		return len(records) == 0
	}

	return true
}
