package weather

import (
	"context"

	"github.com/kdubois/netatmo-weather/internal/netatmo"
)

// StationsAPI abstracts the upstream weather-station provider
// (netatmo.Client in production, fakes in tests).
type StationsAPI interface {
	GetStationsData(ctx context.Context, deviceID string) (*netatmo.StationsDataResponse, error)
	GetMeasure(ctx context.Context, q netatmo.MeasureQuery) (*netatmo.MeasurementSeries, error)
}
