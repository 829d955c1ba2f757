package weather

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kdubois/netatmo-weather/internal/cache"
	"github.com/kdubois/netatmo-weather/internal/netatmo"
)

// ErrNotFound is returned when the upstream responded but no devices or
// station data exist for the request.
var ErrNotFound = errors.New("no weather station data available")

const (
	deviceListCacheKey    = "device_list"
	stationCacheKeyPrefix = "station:"
)

// Repository wraps the upstream client with short-TTL caches for the
// device list and per-device snapshots, bounding upstream request volume.
type Repository struct {
	api      StationsAPI
	devices  *cache.Cache[string, []Device]
	stations *cache.Cache[string, *netatmo.StationsDataResponse]
	log      *zap.Logger
}

// NewRepository creates a Repository whose cached entries expire after ttl.
func NewRepository(api StationsAPI, ttl time.Duration, log *zap.Logger) *Repository {
	return &Repository{
		api:      api,
		devices:  cache.New[string, []Device](ttl),
		stations: cache.New[string, *netatmo.StationsDataResponse](ttl),
		log:      log,
	}
}

// ListDevices returns the known stations in upstream order. An upstream
// response with zero devices yields ErrNotFound, not an empty success; the
// caller decides whether that is fatal.
func (r *Repository) ListDevices(ctx context.Context) ([]Device, error) {
	if devices, ok := r.devices.Get(deviceListCacheKey); ok {
		return devices, nil
	}

	resp, err := r.api.GetStationsData(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(resp.Body.Devices) == 0 {
		return nil, ErrNotFound
	}

	devices := make([]Device, 0, len(resp.Body.Devices))
	for _, d := range resp.Body.Devices {
		devices = append(devices, deviceFromStation(d))
	}

	r.devices.Put(deviceListCacheKey, devices)
	r.log.Debug("cached device list", zap.Int("count", len(devices)))
	return devices, nil
}

// GetStation returns the station tree for one device id, served from cache
// within the TTL.
func (r *Repository) GetStation(ctx context.Context, deviceID string) (*netatmo.StationsDataResponse, error) {
	key := stationCacheKeyPrefix + deviceID
	if resp, ok := r.stations.Get(key); ok {
		return resp, nil
	}

	resp, err := r.api.GetStationsData(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	r.stations.Put(key, resp)
	return resp, nil
}
