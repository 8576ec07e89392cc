// Package csvcapture parses sample-per-row CSV capture exports.
package csvcapture

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/claude/replens/internal/models"
)

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("missing required column")

// column names by their accepted header spellings, lowercased.
var columns = map[string]string{
	"timestamp_ms":      "timestamp",
	"timestampms":       "timestamp",
	"timestamp":         "timestamp",
	"accelx":            "accelX",
	"accel_x":           "accelX",
	"accely":            "accelY",
	"accel_y":           "accelY",
	"accelz":            "accelZ",
	"accel_z":           "accelZ",
	"gyrox":             "gyroX",
	"gyro_x":            "gyroX",
	"gyroy":             "gyroY",
	"gyro_y":            "gyroY",
	"gyroz":             "gyroZ",
	"gyro_z":            "gyroZ",
	"filteredmag":       "filteredMag",
	"filtered_mag":      "filteredMag",
	"filteredmagnitude": "filteredMag",
	"accelmag":          "accelMag",
	"accel_mag":         "accelMag",
	"accelmagnitude":    "accelMag",
	"roll":              "roll",
	"pitch":             "pitch",
	"yaw":               "yaw",
	"rep":               "rep",
	"rep_number":        "rep",
	"repnumber":         "rep",
	"set":               "set",
	"set_number":        "set",
	"setnumber":         "set",
}

var required = []string{"accelX", "accelY", "accelZ"}

type repKey struct{ set, rep int }

// Parse reads a CSV capture and groups its rows into repetitions keyed by
// (set, rep), in order of first appearance. Rows without a set or rep column
// belong to set 1, rep 1. Empty cells are treated as absent.
func Parse(r io.Reader) (models.CapturePayload, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.CapturePayload{}, models.ErrNoSets
		}
		return models.CapturePayload{}, fmt.Errorf("reading header: %w", err)
	}
	index := make(map[string]int)
	for i, h := range header {
		if name, ok := columns[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, dup := index[name]; !dup {
				index[name] = i
			}
		}
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return models.CapturePayload{}, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var payload models.CapturePayload
	reps := make(map[repKey]int)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.CapturePayload{}, fmt.Errorf("reading record: %w", err)
		}
		if blank(record) {
			continue
		}

		row, err := parseRow(record, index)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return models.CapturePayload{}, fmt.Errorf("line %d: %w", line, err)
		}

		key := repKey{set: row.set, rep: row.rep}
		i, ok := reps[key]
		if !ok {
			setNum, repNum := key.set, key.rep
			payload.Reps = append(payload.Reps, models.RawRep{Set: &setNum, Rep: &repNum})
			i = len(payload.Reps) - 1
			reps[key] = i
		}
		payload.Reps[i].Samples = append(payload.Reps[i].Samples, row.sample)
	}

	if len(payload.Reps) == 0 {
		return models.CapturePayload{}, models.ErrNoSets
	}
	return payload, nil
}

type parsedRow struct {
	set, rep int
	sample   models.RawSample
}

func parseRow(record []string, index map[string]int) (parsedRow, error) {
	row := parsedRow{set: 1, rep: 1}
	var firstErr error
	num := func(name string) *float64 {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return nil
		}
		s := strings.TrimSpace(record[i])
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("column %s: %w", name, err)
			}
			return nil
		}
		return &v
	}

	row.sample = models.RawSample{
		TimestampMs: num("timestamp"),
		AccelX:      num("accelX"),
		AccelY:      num("accelY"),
		AccelZ:      num("accelZ"),
		GyroX:       num("gyroX"),
		GyroY:       num("gyroY"),
		GyroZ:       num("gyroZ"),
		FilteredMag: num("filteredMag"),
		AccelMag:    num("accelMag"),
		Roll:        num("roll"),
		Pitch:       num("pitch"),
		Yaw:         num("yaw"),
	}
	if v := num("set"); v != nil {
		row.set = int(*v)
	}
	if v := num("rep"); v != nil {
		row.rep = int(*v)
	}
	if firstErr != nil {
		return parsedRow{}, firstErr
	}
	return row, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
