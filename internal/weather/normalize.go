package weather

import (
	"strings"
	"time"
)

// Defaults applied when the caller leaves a historical-query parameter
// absent or blank.
const (
	DefaultScale       = "1hour"
	DefaultSensorTypes = "Temperature,Humidity,Pressure"
	DefaultLimit       = 1024
	defaultDaysBack    = 7

	dateLayout      = "2006-01-02"
	recordLayout    = "2006-01-02 15:04"
	timestampLayout = "2006-01-02 15:04:05"

	// endOfDayOffset shifts a parsed end date to 23:59:59, making the
	// requested day inclusive.
	endOfDayOffset = 86399
)

// NormalizeScale returns the scale to request, falling back to the default
// for absent/blank input.
func NormalizeScale(scale string) string {
	return normalizeString(scale, DefaultScale)
}

// NormalizeSensorTypes returns the comma-separated sensor list to request.
func NormalizeSensorTypes(types string) string {
	return normalizeString(types, DefaultSensorTypes)
}

// NormalizeLimit returns the data-point limit, defaulting when the caller
// supplied nothing usable.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func normalizeString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// ParseBeginDate resolves the begin of the query window. A yyyy-MM-dd input
// parses to UTC midnight; anything unparseable, including the empty string,
// falls back to 7 days before now.
func ParseBeginDate(s string) int64 {
	if ts, ok := parseDate(s); ok {
		return ts
	}
	return time.Now().AddDate(0, 0, -defaultDaysBack).Unix()
}

// ParseEndDate resolves the end of the query window. A parsed date is
// shifted to the end of that day; anything unparseable falls back to now.
func ParseEndDate(s string) int64 {
	if ts, ok := parseDate(s); ok {
		return ts + endOfDayOffset
	}
	return time.Now().Unix()
}

func parseDate(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}

// formatTimestamp renders an epoch-seconds value in UTC.
func formatTimestamp(ts int64, layout string) string {
	return time.Unix(ts, 0).UTC().Format(layout)
}
