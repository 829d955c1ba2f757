package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/kdubois/netatmo-weather/internal/auth"
	"github.com/kdubois/netatmo-weather/internal/netatmo"
	"github.com/kdubois/netatmo-weather/internal/weather"
)

var validate = validator.New()

// apiResponse is the envelope every endpoint returns: callers get a
// structured success/failure result with a coarse status, never a raw
// stack trace.
type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Status  int         `json:"status"`
}

func success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(apiResponse{
		Success: true,
		Message: "Success",
		Data:    data,
		Status:  fiber.StatusOK,
	})
}

func failure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(apiResponse{
		Success: false,
		Message: message,
		Status:  status,
	})
}

// serviceError maps the core error taxonomy onto HTTP statuses.
func serviceError(c *fiber.Ctx, err error) error {
	var authErr *auth.AuthError
	var upErr *netatmo.UpstreamError

	switch {
	case errors.Is(err, weather.ErrNotFound):
		return failure(c, fiber.StatusNotFound, err.Error())
	case errors.As(err, &authErr), errors.As(err, &upErr):
		return failure(c, fiber.StatusBadGateway, err.Error())
	default:
		return failure(c, fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}

// historicalQuery holds query parameters for the historical endpoint.
// Everything is optional; the service defaults away absent values.
type historicalQuery struct {
	DeviceID    string `validate:"omitempty,max=64"`
	ModuleID    string `validate:"omitempty,max=64"`
	Scale       string `validate:"omitempty,max=16"`
	SensorTypes string `validate:"omitempty,max=128"`
	BeginDate   string `validate:"omitempty,max=10"`
	EndDate     string `validate:"omitempty,max=10"`
	Limit       int    `validate:"omitempty,gte=0,lte=1024"`
}

func (h *historicalQuery) bind(c *fiber.Ctx) error {
	h.DeviceID = c.Query("device_id")
	h.ModuleID = c.Query("module_id")
	h.Scale = c.Query("scale")
	h.SensorTypes = c.Query("sensor_types")
	h.BeginDate = c.Query("begin_date")
	h.EndDate = c.Query("end_date")
	h.Limit = c.QueryInt("limit")

	return validate.Struct(h)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		data, err := service.CurrentWeather(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return success(c, data)
	})

	v1.Get("/weather/devices", func(c *fiber.Ctx) error {
		devices, err := service.AvailableDevices(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return success(c, devices)
	})

	v1.Get("/weather/historical", func(c *fiber.Ctx) error {
		var req historicalQuery
		if err := req.bind(c); err != nil {
			return failure(c, fiber.StatusBadRequest, err.Error())
		}

		result, err := service.HistoricalWeather(c.UserContext(), weather.HistoricalQuery{
			DeviceID:    req.DeviceID,
			ModuleID:    req.ModuleID,
			Scale:       req.Scale,
			SensorTypes: req.SensorTypes,
			BeginDate:   req.BeginDate,
			EndDate:     req.EndDate,
			Limit:       req.Limit,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return success(c, result)
	})
}
