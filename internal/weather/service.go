package weather

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kdubois/netatmo-weather/internal/netatmo"
)

// Service orchestrates the upstream client and repository into the three
// caller-facing operations: current weather, device inventory, and the
// merged historical series.
type Service struct {
	api  StationsAPI
	repo *Repository
	log  *zap.Logger
}

// NewService creates a new Service.
func NewService(api StationsAPI, repo *Repository, log *zap.Logger) *Service {
	return &Service{
		api:  api,
		repo: repo,
		log:  log,
	}
}

// CurrentWeather returns the first station's dashboard readings combined
// with its first module's outdoor readings, or ErrNotFound when no station
// or dashboard exists.
func (s *Service) CurrentWeather(ctx context.Context) (*CurrentWeatherData, error) {
	resp, err := s.api.GetStationsData(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(resp.Body.Devices) == 0 {
		return nil, fmt.Errorf("%w: no stations reported", ErrNotFound)
	}

	device := resp.Body.Devices[0]
	if device.DashboardData == nil {
		return nil, fmt.Errorf("%w: station %s has no dashboard data", ErrNotFound, device.ID)
	}

	dash := device.DashboardData
	data := &CurrentWeatherData{
		StationName:       device.StationName,
		IndoorTemperature: dash.Temperature,
		IndoorHumidity:    dash.Humidity,
		Pressure:          dash.Pressure,
		CO2:               dash.CO2,
		Noise:             dash.Noise,
		TimeUTC:           dash.TimeUTC,
	}

	if len(device.Modules) > 0 && device.Modules[0].DashboardData != nil {
		outdoor := device.Modules[0].DashboardData
		data.OutdoorTemperature = outdoor.Temperature
		data.OutdoorHumidity = outdoor.Humidity
		data.OutdoorMinTemperature = outdoor.MinTemp
		data.OutdoorMaxTemperature = outdoor.MaxTemp
	}

	return data, nil
}

// AvailableDevices returns the station inventory through the repository
// cache.
func (s *Service) AvailableDevices(ctx context.Context) ([]Device, error) {
	return s.repo.ListDevices(ctx)
}

// HistoricalWeather fetches the indoor and outdoor historical series for
// one device and merges them into unified timestamped records. The indoor
// series is mandatory; outdoor data is best effort and silently omitted on
// any failure.
func (s *Service) HistoricalWeather(ctx context.Context, q HistoricalQuery) (*HistoricalResult, error) {
	scale := NormalizeScale(q.Scale)
	sensorTypes := NormalizeSensorTypes(q.SensorTypes)
	limit := NormalizeLimit(q.Limit)
	dateBegin := ParseBeginDate(q.BeginDate)
	dateEnd := ParseEndDate(q.EndDate)

	deviceID := strings.TrimSpace(q.DeviceID)
	if deviceID == "" {
		devices, err := s.repo.ListDevices(ctx)
		if err != nil {
			return nil, err
		}
		deviceID = devices[0].ID
		s.log.Info("no device id supplied, using first station", zap.String("deviceId", deviceID))
	}

	s.log.Info("requesting historical data",
		zap.String("deviceId", deviceID),
		zap.String("scale", scale),
		zap.String("types", sensorTypes),
		zap.Int64("dateBegin", dateBegin),
		zap.Int64("dateEnd", dateEnd),
		zap.Int("limit", limit),
	)

	indoor, err := s.api.GetMeasure(ctx, netatmo.MeasureQuery{
		DeviceID:  deviceID,
		ModuleID:  q.ModuleID,
		Scale:     scale,
		Types:     sensorTypes,
		DateBegin: dateBegin,
		DateEnd:   dateEnd,
		Limit:     limit,
		Optimize:  true,
		RealTime:  true,
	})
	if err != nil {
		return nil, err
	}
	if indoor == nil {
		return nil, &netatmo.UpstreamError{Err: fmt.Errorf("could not parse measurement data for device %s", deviceID)}
	}

	outdoor := s.fetchOutdoor(ctx, deviceID, scale, sensorTypes, dateBegin, dateEnd, limit)

	var points [][]*float64
	if outdoor != nil {
		points = outdoorPoints(outdoor.series)
	}
	records := mergeSeries(indoor, points)

	result := &HistoricalResult{
		DeviceID:           deviceID,
		Scale:              scale,
		SensorTypes:        strings.Split(sensorTypes, ","),
		Status:             indoor.Status,
		BeginTimeTimestamp: dateBegin,
		EndTimeTimestamp:   dateEnd,
		BeginTime:          formatTimestamp(dateBegin, timestampLayout),
		EndTime:            formatTimestamp(dateEnd, timestampLayout),
		StepTime:           indoor.StepTime,
		Values:             records,
		TotalDataPoints:    len(records),
	}
	if outdoor != nil {
		result.Outdoor = &OutdoorModuleInfo{
			ModuleID:    outdoor.moduleID,
			ModuleName:  outdoor.moduleName,
			Temperature: outdoor.temperature,
			Humidity:    outdoor.humidity,
		}
	}

	return result, nil
}

// outdoorData bundles the first module's identity, instantaneous readings,
// and its historical series when one could be fetched.
type outdoorData struct {
	moduleID    string
	moduleName  string
	temperature *float64
	humidity    *int
	series      *netatmo.MeasurementSeries
}

// fetchOutdoor discovers the device's first module and fetches its series
// with the same parameters as the indoor request. Every failure path
// returns nil: outdoor data is secondary and its absence never fails the
// overall operation.
func (s *Service) fetchOutdoor(ctx context.Context, deviceID, scale, sensorTypes string, dateBegin, dateEnd int64, limit int) *outdoorData {
	resp, err := s.repo.GetStation(ctx, deviceID)
	if err != nil {
		s.log.Warn("skipping outdoor data, station fetch failed",
			zap.String("deviceId", deviceID), zap.Error(err))
		return nil
	}
	if len(resp.Body.Devices) == 0 || len(resp.Body.Devices[0].Modules) == 0 {
		return nil
	}

	module := resp.Body.Devices[0].Modules[0]
	data := &outdoorData{
		moduleID:   module.ID,
		moduleName: module.ModuleName,
	}
	if module.DashboardData != nil {
		data.temperature = module.DashboardData.Temperature
		data.humidity = module.DashboardData.Humidity
	}

	series, err := s.api.GetMeasure(ctx, netatmo.MeasureQuery{
		DeviceID:  deviceID,
		ModuleID:  module.ID,
		Scale:     scale,
		Types:     sensorTypes,
		DateBegin: dateBegin,
		DateEnd:   dateEnd,
		Limit:     limit,
		Optimize:  true,
		RealTime:  true,
	})
	if err != nil {
		s.log.Warn("skipping outdoor data, measure fetch failed",
			zap.String("moduleId", module.ID), zap.Error(err))
		return nil
	}

	data.series = series
	return data
}
