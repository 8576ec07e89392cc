// Package export writes per-repetition metrics in columnar form.
package export

import (
	"fmt"

	"github.com/claude/replens/internal/analysis"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// RepRow is one repetition in the Parquet export.
type RepRow struct {
	Source          string  `parquet:"name=source, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Exercise        string  `parquet:"name=exercise, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SetNumber       int32   `parquet:"name=set_number, type=INT32"`
	RepNumber       int32   `parquet:"name=rep_number, type=INT32"`
	SampleCount     int32   `parquet:"name=sample_count, type=INT32"`
	DurationMs      float64 `parquet:"name=duration_ms, type=DOUBLE"`
	ROMDegrees      float64 `parquet:"name=rom_degrees, type=DOUBLE"`
	ROMMagnitude    float64 `parquet:"name=rom_magnitude, type=DOUBLE"`
	Smoothness      float64 `parquet:"name=smoothness, type=DOUBLE"`
	LiftingTime     float64 `parquet:"name=lifting_time_s, type=DOUBLE"`
	LoweringTime    float64 `parquet:"name=lowering_time_s, type=DOUBLE"`
	PeakVelocity    float64 `parquet:"name=peak_velocity, type=DOUBLE"`
	MeanVelocity    float64 `parquet:"name=mean_velocity, type=DOUBLE"`
	PeakAngularRate float64 `parquet:"name=peak_angular_rate, type=DOUBLE"`
	MeanJerk        float64 `parquet:"name=mean_jerk, type=DOUBLE"`
	Shakiness       float64 `parquet:"name=shakiness, type=DOUBLE"`
	SetFatigueScore float64 `parquet:"name=set_fatigue_score, type=DOUBLE"`
	Valid           bool    `parquet:"name=valid, type=BOOLEAN"`
}

// Rows flattens an analysis into export rows. source identifies the capture
// the analysis came from.
func Rows(source string, wa *analysis.WorkoutAnalysis) []RepRow {
	var rows []RepRow
	for _, set := range wa.Sets {
		for _, m := range set.Reps {
			rows = append(rows, RepRow{
				Source:          source,
				Exercise:        wa.Exercise,
				SetNumber:       int32(m.SetNumber),
				RepNumber:       int32(m.RepNumber),
				SampleCount:     int32(m.SampleCount),
				DurationMs:      m.DurationMs,
				ROMDegrees:      m.ROMDegrees,
				ROMMagnitude:    m.ROMMagnitude,
				Smoothness:      m.Smoothness,
				LiftingTime:     m.LiftingTime,
				LoweringTime:    m.LoweringTime,
				PeakVelocity:    m.PeakVelocity,
				MeanVelocity:    m.MeanVelocity,
				PeakAngularRate: m.PeakAngularRate,
				MeanJerk:        m.MeanJerk,
				Shakiness:       m.Shakiness,
				SetFatigueScore: set.Fatigue.Score,
				Valid:           m.Valid(),
			})
		}
	}
	return rows
}

// MarshalParquet encodes rows as a Snappy-compressed Parquet file.
func MarshalParquet(rows []RepRow) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(RepRow), 4)
	if err != nil {
		return nil, fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			_ = pw.WriteStop()
			return nil, fmt.Errorf("writing parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finishing parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("closing parquet buffer: %w", err)
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
