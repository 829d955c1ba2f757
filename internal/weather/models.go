package weather

import "github.com/kdubois/netatmo-weather/internal/netatmo"

// Device describes one station as reported upstream. Snapshots are rebuilt
// on every successful fetch, never merged with stale fields.
type Device struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	DataTypes []string `json:"dataTypes"`
}

// CurrentWeatherData combines the base station dashboard with the first
// module's outdoor readings. Pointer fields are absent when the upstream
// dashboard does not report them.
type CurrentWeatherData struct {
	StationName           string   `json:"stationName"`
	IndoorTemperature     *float64 `json:"indoorTemperature,omitempty"`
	IndoorHumidity        *int     `json:"indoorHumidity,omitempty"`
	Pressure              *float64 `json:"pressure,omitempty"`
	CO2                   *int     `json:"co2,omitempty"`
	Noise                 *int     `json:"noise,omitempty"`
	TimeUTC               *int64   `json:"timeUtc,omitempty"`
	OutdoorTemperature    *float64 `json:"outdoorTemperature,omitempty"`
	OutdoorHumidity       *int     `json:"outdoorHumidity,omitempty"`
	OutdoorMinTemperature *float64 `json:"outdoorMinTemperature,omitempty"`
	OutdoorMaxTemperature *float64 `json:"outdoorMaxTemperature,omitempty"`
}

// MergedRecord is one timestamped row of the combined historical series.
// Outdoor fields are present only where the outdoor series had a value at
// the same index position.
type MergedRecord struct {
	Timestamp          string   `json:"timestamp"`
	IndoorTemperature  *float64 `json:"indoorTemperature,omitempty"`
	IndoorHumidity     *float64 `json:"indoorHumidity,omitempty"`
	IndoorPressure     *float64 `json:"indoorPressure,omitempty"`
	OutdoorTemperature *float64 `json:"outdoorTemperature,omitempty"`
	OutdoorHumidity    *float64 `json:"outdoorHumidity,omitempty"`
}

// OutdoorModuleInfo echoes which module contributed the outdoor series,
// with its instantaneous readings at fetch time.
type OutdoorModuleInfo struct {
	ModuleID    string   `json:"outdoorModuleId"`
	ModuleName  string   `json:"outdoorModuleName"`
	Temperature *float64 `json:"outdoorTemperature,omitempty"`
	Humidity    *int     `json:"outdoorHumidity,omitempty"`
}

// HistoricalResult is the merged time series plus echoed request metadata.
type HistoricalResult struct {
	DeviceID           string         `json:"deviceId"`
	Scale              string         `json:"scale"`
	SensorTypes        []string       `json:"sensorTypes"`
	Status             string         `json:"status"`
	BeginTimeTimestamp int64          `json:"beginTimeTimestamp"`
	EndTimeTimestamp   int64          `json:"endTimeTimestamp"`
	BeginTime          string         `json:"beginTime"`
	EndTime            string         `json:"endTime"`
	StepTime           int64          `json:"stepTime"`
	Values             []MergedRecord `json:"values"`
	TotalDataPoints    int            `json:"totalDataPoints"`

	Outdoor *OutdoorModuleInfo `json:"outdoor,omitempty"`
}

// HistoricalQuery is the caller-supplied parameter set before
// normalization; every field is optional.
type HistoricalQuery struct {
	DeviceID    string
	ModuleID    string
	Scale       string
	SensorTypes string
	BeginDate   string
	EndDate     string
	Limit       int
}

// deviceFromStation maps an upstream station to the caller-facing Device.
func deviceFromStation(d netatmo.Device) Device {
	return Device{
		ID:        d.ID,
		Name:      d.StationName,
		Type:      d.Type,
		DataTypes: d.DataType,
	}
}
