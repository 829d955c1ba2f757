package weather

import "github.com/kdubois/netatmo-weather/internal/netatmo"

// outdoorPoints converts an outdoor measurement series into rows of
// [timestamp, temperature, humidity, ...]; the timestamp is computed from
// the series' own begin/step, mirroring the shape the merge expects.
func outdoorPoints(series *netatmo.MeasurementSeries) [][]*float64 {
	if series == nil {
		return nil
	}

	points := make([][]*float64, 0, len(series.Values))
	for i, tuple := range series.Values {
		ts := float64(series.BeginTime + int64(i)*series.StepTime)
		point := make([]*float64, 0, len(tuple)+1)
		point = append(point, &ts)
		point = append(point, tuple...)
		points = append(points, point)
	}
	return points
}

// mergeSeries aligns the indoor series with the outdoor rows by array
// index and produces one MergedRecord per indoor value. Timestamps come
// from the indoor series alone; the outdoor row's own timestamp (element
// 0) is deliberately ignored. Both series were requested with identical
// scale and date range, so their begin/step are expected to line up; this
// is not verified, see the repository design notes.
func mergeSeries(indoor *netatmo.MeasurementSeries, outdoor [][]*float64) []MergedRecord {
	records := make([]MergedRecord, 0, len(indoor.Values))

	for i, tuple := range indoor.Values {
		ts := indoor.BeginTime + int64(i)*indoor.StepTime
		rec := MergedRecord{Timestamp: formatTimestamp(ts, recordLayout)}

		// Indoor tuple is positional: temperature, humidity, pressure.
		// Missing or null elements leave the field absent, never zero.
		if len(tuple) >= 1 {
			rec.IndoorTemperature = tuple[0]
		}
		if len(tuple) >= 2 {
			rec.IndoorHumidity = tuple[1]
		}
		if len(tuple) >= 3 {
			rec.IndoorPressure = tuple[2]
		}

		// Outdoor row is [timestamp, temperature, humidity].
		if i < len(outdoor) {
			point := outdoor[i]
			if len(point) >= 2 {
				rec.OutdoorTemperature = point[1]
			}
			if len(point) >= 3 {
				rec.OutdoorHumidity = point[2]
			}
		}

		records = append(records, rec)
	}

	return records
}
