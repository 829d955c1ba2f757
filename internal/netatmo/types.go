package netatmo

// StationsDataResponse mirrors /api/getstationsdata. Only the fields this
// service reads are mapped; everything else in the upstream tree is ignored.
type StationsDataResponse struct {
	Body       StationsBody `json:"body"`
	Status     string       `json:"status"`
	TimeExec   float64      `json:"time_exec"`
	TimeServer int64        `json:"time_server"`
}

type StationsBody struct {
	Devices []Device `json:"devices"`
}

// Device is one base station as reported upstream.
type Device struct {
	ID            string         `json:"_id"`
	StationName   string         `json:"station_name"`
	Type          string         `json:"type"`
	DataType      []string       `json:"data_type"`
	DashboardData *DashboardData `json:"dashboard_data"`
	Modules       []Module       `json:"modules"`
}

// Module is an auxiliary sensor paired with a station, commonly the
// outdoor NAModule1.
type Module struct {
	ID            string         `json:"_id"`
	ModuleName    string         `json:"module_name"`
	Type          string         `json:"type"`
	DataType      []string       `json:"data_type"`
	DashboardData *DashboardData `json:"dashboard_data"`
}

// DashboardData carries the instantaneous readings of a device or module.
// All fields are pointers: outdoor modules report no pressure, CO2 or
// noise, and absent must stay distinguishable from zero.
type DashboardData struct {
	Temperature *float64 `json:"Temperature"`
	Humidity    *int     `json:"Humidity"`
	Pressure    *float64 `json:"Pressure"`
	CO2         *int     `json:"CO2"`
	Noise       *int     `json:"Noise"`
	TimeUTC     *int64   `json:"time_utc"`
	MinTemp     *float64 `json:"min_temp"`
	MaxTemp     *float64 `json:"max_temp"`
}

// MeasurementSeries is one parsed /api/getmeasure response. Values[i]
// belongs to time BeginTime + i*StepTime; the slice order is exactly the
// upstream order and the index is the join key with a sibling series.
type MeasurementSeries struct {
	Status    string
	BeginTime int64
	StepTime  int64
	Values    [][]*float64
}

// MeasureQuery is the parameter set for a single bounded historical fetch.
// An empty ModuleID selects the base station's own series.
type MeasureQuery struct {
	DeviceID  string
	ModuleID  string
	Scale     string
	Types     string
	DateBegin int64
	DateEnd   int64
	Limit     int
	Optimize  bool
	RealTime  bool
}
