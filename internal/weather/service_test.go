package weather

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kdubois/netatmo-weather/internal/netatmo"
)

// fakeAPI is an in-memory StationsAPI recording every upstream call.
type fakeAPI struct {
	mu             sync.Mutex
	stationsCalls  int
	measureQueries []netatmo.MeasureQuery

	stations func(deviceID string) (*netatmo.StationsDataResponse, error)
	measure  func(q netatmo.MeasureQuery) (*netatmo.MeasurementSeries, error)
}

func (f *fakeAPI) GetStationsData(ctx context.Context, deviceID string) (*netatmo.StationsDataResponse, error) {
	f.mu.Lock()
	f.stationsCalls++
	f.mu.Unlock()
	return f.stations(deviceID)
}

func (f *fakeAPI) GetMeasure(ctx context.Context, q netatmo.MeasureQuery) (*netatmo.MeasurementSeries, error) {
	f.mu.Lock()
	f.measureQueries = append(f.measureQueries, q)
	f.mu.Unlock()
	return f.measure(q)
}

const (
	testDeviceID = "70:ee:50:00:00:aa"
	testModuleID = "02:00:00:00:00:bb"
)

func stationsFixture() *netatmo.StationsDataResponse {
	return &netatmo.StationsDataResponse{
		Status: "ok",
		Body: netatmo.StationsBody{
			Devices: []netatmo.Device{{
				ID:          testDeviceID,
				StationName: "Home",
				Type:        "NAMain",
				DataType:    []string{"Temperature", "Humidity", "CO2", "Noise", "Pressure"},
				DashboardData: &netatmo.DashboardData{
					Temperature: fptr(22.5),
					Humidity:    iptr(45),
					Pressure:    fptr(1013.2),
					CO2:         iptr(620),
					Noise:       iptr(38),
					TimeUTC:     i64ptr(1628097600),
				},
				Modules: []netatmo.Module{{
					ID:         testModuleID,
					ModuleName: "Outdoor",
					Type:       "NAModule1",
					DataType:   []string{"Temperature", "Humidity"},
					DashboardData: &netatmo.DashboardData{
						Temperature: fptr(20.5),
						Humidity:    iptr(55),
						MinTemp:     fptr(14.1),
						MaxTemp:     fptr(24.9),
					},
				}},
			}},
		},
	}
}

func i64ptr(v int64) *int64 { return &v }

func newTestService(api StationsAPI) *Service {
	repo := NewRepository(api, time.Minute, zap.NewNop())
	return NewService(api, repo, zap.NewNop())
}

func TestCurrentWeatherMapsDashboards(t *testing.T) {
	api := &fakeAPI{
		stations: func(deviceID string) (*netatmo.StationsDataResponse, error) {
			return stationsFixture(), nil
		},
	}

	data, err := newTestService(api).CurrentWeather(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Home", data.StationName)
	assert.Equal(t, 22.5, *data.IndoorTemperature)
	assert.Equal(t, 45, *data.IndoorHumidity)
	assert.Equal(t, 1013.2, *data.Pressure)
	assert.Equal(t, 620, *data.CO2)
	assert.Equal(t, 38, *data.Noise)
	assert.Equal(t, 20.5, *data.OutdoorTemperature)
	assert.Equal(t, 55, *data.OutdoorHumidity)
	assert.Equal(t, 14.1, *data.OutdoorMinTemperature)
	assert.Equal(t, 24.9, *data.OutdoorMaxTemperature)
}

func TestCurrentWeatherNoDevices(t *testing.T) {
	api := &fakeAPI{
		stations: func(deviceID string) (*netatmo.StationsDataResponse, error) {
			return &netatmo.StationsDataResponse{Status: "ok"}, nil
		},
	}

	_, err := newTestService(api).CurrentWeather(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCurrentWeatherNoDashboard(t *testing.T) {
	resp := stationsFixture()
	resp.Body.Devices[0].DashboardData = nil
	api := &fakeAPI{
		stations: func(deviceID string) (*netatmo.StationsDataResponse, error) {
			return resp, nil
		},
	}

	_, err := newTestService(api).CurrentWeather(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoricalWeatherMergesIndoorAndOutdoor(t *testing.T) {
	api := &fakeAPI{
		stations: func(deviceID string) (*netatmo.StationsDataResponse, error) {
			return stationsFixture(), nil
		},
		measure: func(q netatmo.MeasureQuery) (*netatmo.MeasurementSeries, error) {
			if q.ModuleID == "" {
				return &netatmo.MeasurementSeries{
					Status:    "ok",
					BeginTime: 1628097600,
					StepTime:  3600,
					Values: [][]*float64{
						{fptr(22.5), fptr(45), fptr(1013.2)},
						{fptr(23.0), fptr(46), fptr(1013.0)},
					},
				}, nil
			}
			return &netatmo.MeasurementSeries{
				Status:    "ok",
				BeginTime: 1628097600,
				StepTime:  3600,
				Values: [][]*float64{
					{fptr(20.5), fptr(55)},
					{fptr(19.8), fptr(58)},
				},
			}, nil
		},
	}

	result, err := newTestService(api).HistoricalWeather(context.Background(), HistoricalQuery{
		DeviceID:  testDeviceID,
		BeginDate: "2021-08-04",
		EndDate:   "2021-08-05",
	})
	require.NoError(t, err)

	assert.Equal(t, testDeviceID, result.DeviceID)
	assert.Equal(t, "1hour", result.Scale)
	assert.Equal(t, []string{"Temperature", "Humidity", "Pressure"}, result.SensorTypes)
	assert.Equal(t, int64(3600), result.StepTime)
	assert.Equal(t, 2, result.TotalDataPoints)

	require.Len(t, result.Values, 2)
	rec := result.Values[0]
	assert.Equal(t, "2021-08-04 16:00", rec.Timestamp)
	assert.Equal(t, 22.5, *rec.IndoorTemperature)
	assert.Equal(t, float64(45), *rec.IndoorHumidity)
	assert.Equal(t, 1013.2, *rec.IndoorPressure)
	assert.Equal(t, 20.5, *rec.OutdoorTemperature)
	assert.Equal(t, float64(55), *rec.OutdoorHumidity)

	require.NotNil(t, result.Outdoor)
	assert.Equal(t, testModuleID, result.Outdoor.ModuleID)
	assert.Equal(t, "Outdoor", result.Outdoor.ModuleName)
	assert.Equal(t, 20.5, *result.Outdoor.Temperature)
	assert.Equal(t, 55, *result.Outdoor.Humidity)

	// Both measure requests carried the same window and scale.
	require.Len(t, api.measureQueries, 2)
	assert.Equal(t, api.measureQueries[0].DateBegin, api.measureQueries[1].DateBegin)
	assert.Equal(t, api.measureQueries[0].DateEnd, api.measureQueries[1].DateEnd)
	assert.Equal(t, api.measureQueries[0].Scale, api.measureQueries[1].Scale)
	assert.Equal(t, testModuleID, api.measureQueries[1].ModuleID)
	assert.True(t, api.measureQueries[0].Optimize)
	assert.True(t, api.measureQueries[0].RealTime)
}

func TestHistoricalWeatherResolvesFirstDevice(t *testing.T) {
	api := &fakeAPI{
		stations: func(deviceID string) (*netatmo.StationsDataResponse, error) {
			return stationsFixture(), nil
		},
		measure: func(q netatmo.MeasureQuery) (*netatmo.MeasurementSeries, error) {
			return &netatmo.MeasurementSeries{
				Status:    "ok",
				BeginTime: 1628097600,
				StepTime:  3600,
				Values:    [][]*float64{{fptr(22.5)}},
			}, nil
		},
	}

	result, err := newTestService(api).HistoricalWeather(context.Background(), HistoricalQuery{})
	require.NoError(t, err)
	assert.Equal(t, testDeviceID, result.DeviceID)
	assert.Equal(t, testDeviceID, api.measureQueries[0].DeviceID)
}

func TestHistoricalWeatherNoDevicesAnywhere(t *testing.T) {
	api := &fakeAPI{
		stations: func(deviceID string) (*netatmo.StationsDataResponse, error) {
			return &netatmo.StationsDataResponse{Status: "ok"}, nil
		},
	}

	_, err := newTestService(api).HistoricalWeather(context.Background(), HistoricalQuery{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoricalWeatherAbsentIndoorSeriesIsFatal(t *testing.T) {
	api := &fakeAPI{
		stations: func(deviceID string) (*netatmo.StationsDataResponse, error) {
			return stationsFixture(), nil
		},
		measure: func(q netatmo.MeasureQuery) (*netatmo.MeasurementSeries, error) {
			return nil, nil
		},
	}

	_, err := newTestService(api).HistoricalWeather(context.Background(), HistoricalQuery{DeviceID: testDeviceID})
	require.Error(t, err)

	var upErr *netatmo.UpstreamError
	assert.ErrorAs(t, err, &upErr)
}

func TestHistoricalWeatherOutdoorFailureDegrades(t *testing.T) {
	api := &fakeAPI{
		stations: func(deviceID string) (*netatmo.StationsDataResponse, error) {
			return stationsFixture(), nil
		},
		measure: func(q netatmo.MeasureQuery) (*netatmo.MeasurementSeries, error) {
			if q.ModuleID != "" {
				return nil, &netatmo.UpstreamError{Status: 500, Body: "server error"}
			}
			return &netatmo.MeasurementSeries{
				Status:    "ok",
				BeginTime: 1628097600,
				StepTime:  3600,
				Values:    [][]*float64{{fptr(22.5), fptr(45), fptr(1013.2)}},
			}, nil
		},
	}

	result, err := newTestService(api).HistoricalWeather(context.Background(), HistoricalQuery{DeviceID: testDeviceID})
	require.NoError(t, err)

	assert.Nil(t, result.Outdoor)
	require.Len(t, result.Values, 1)
	assert.Nil(t, result.Values[0].OutdoorTemperature)
	assert.Equal(t, 22.5, *result.Values[0].IndoorTemperature)
}

func TestHistoricalWeatherNoModulesOmitsOutdoor(t *testing.T) {
	resp := stationsFixture()
	resp.Body.Devices[0].Modules = nil
	api := &fakeAPI{
		stations: func(deviceID string) (*netatmo.StationsDataResponse, error) {
			return resp, nil
		},
		measure: func(q netatmo.MeasureQuery) (*netatmo.MeasurementSeries, error) {
			require.Empty(t, q.ModuleID, "no outdoor measure call expected")
			return &netatmo.MeasurementSeries{
				Status:    "ok",
				BeginTime: 1628097600,
				StepTime:  3600,
				Values:    [][]*float64{{fptr(22.5)}},
			}, nil
		},
	}

	result, err := newTestService(api).HistoricalWeather(context.Background(), HistoricalQuery{DeviceID: testDeviceID})
	require.NoError(t, err)
	assert.Nil(t, result.Outdoor)
	require.Len(t, api.measureQueries, 1)
}

func TestHistoricalWeatherUpstreamErrorPropagates(t *testing.T) {
	api := &fakeAPI{
		stations: func(deviceID string) (*netatmo.StationsDataResponse, error) {
			return stationsFixture(), nil
		},
		measure: func(q netatmo.MeasureQuery) (*netatmo.MeasurementSeries, error) {
			return nil, &netatmo.UpstreamError{Status: 401, Body: "unauthorized"}
		},
	}

	_, err := newTestService(api).HistoricalWeather(context.Background(), HistoricalQuery{DeviceID: testDeviceID})
	require.Error(t, err)

	var upErr *netatmo.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 401, upErr.Status)
}
