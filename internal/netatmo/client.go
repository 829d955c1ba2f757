package netatmo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// UpstreamError reports a failed call to the weather provider: a non-200
// response (Status/Body set) or a transport failure (Err set).
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("netatmo request failed: %v", e.Err)
	}
	return fmt.Sprintf("netatmo API returned status %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// TokenSource supplies a valid bearer token for outbound requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is the stateless HTTP binding to the Netatmo station endpoints.
// Each call attaches a bearer token from the TokenSource; a 401 is not
// retried, the pre-emptive refresh window is relied upon instead.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewClient creates a Client for the given provider root URL, e.g.
// "https://api.netatmo.com".
func NewClient(httpClient *http.Client, baseURL string, tokens TokenSource, log *zap.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "netatmo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		breaker:    cb,
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 10),
		log:        log,
	}
}

// GetStationsData fetches the station/module/dashboard tree, filtered by
// device id when deviceID is non-empty.
func (c *Client) GetStationsData(ctx context.Context, deviceID string) (*StationsDataResponse, error) {
	values := url.Values{}
	if deviceID != "" {
		values.Set("device_id", deviceID)
	}

	body, err := c.get(ctx, "/api/getstationsdata", values)
	if err != nil {
		return nil, err
	}

	var resp StationsDataResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("decode stations data: %w", err)}
	}
	return &resp, nil
}

// measureChunk is the raw shape of one element of the getmeasure body.
// Pointer fields distinguish structurally-missing keys from zero values.
type measureChunk struct {
	BegTime  *int64       `json:"beg_time"`
	StepTime *int64       `json:"step_time"`
	Value    [][]*float64 `json:"value"`
}

type measureResponse struct {
	Status string          `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// GetMeasure fetches one bounded historical series. A 200 response whose
// body lacks beg_time/step_time/value is not an error here: it yields a
// nil series for the caller to interpret.
func (c *Client) GetMeasure(ctx context.Context, q MeasureQuery) (*MeasurementSeries, error) {
	values := url.Values{}
	values.Set("device_id", q.DeviceID)
	if q.ModuleID != "" {
		values.Set("module_id", q.ModuleID)
	}
	values.Set("scale", q.Scale)
	values.Set("type", q.Types)
	values.Set("date_begin", strconv.FormatInt(q.DateBegin, 10))
	values.Set("date_end", strconv.FormatInt(q.DateEnd, 10))
	values.Set("limit", strconv.Itoa(q.Limit))
	values.Set("optimize", strconv.FormatBool(q.Optimize))
	values.Set("real_time", strconv.FormatBool(q.RealTime))

	body, err := c.get(ctx, "/api/getmeasure", values)
	if err != nil {
		return nil, err
	}

	var resp measureResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("decode measure response: %w", err)}
	}

	var chunks []measureChunk
	if err := json.Unmarshal(resp.Body, &chunks); err != nil || len(chunks) == 0 {
		c.log.Warn("measure response body has no measurement chunks",
			zap.String("deviceId", q.DeviceID),
			zap.String("moduleId", q.ModuleID),
		)
		return nil, nil
	}

	chunk := chunks[0]
	if chunk.BegTime == nil || chunk.StepTime == nil || chunk.Value == nil {
		return nil, nil
	}

	return &MeasurementSeries{
		Status:    resp.Status,
		BeginTime: *chunk.BegTime,
		StepTime:  *chunk.StepTime,
		Values:    chunk.Value,
	}, nil
}

// get performs one authenticated GET through the rate limiter and circuit
// breaker and returns the response body of a 200.
func (c *Client) get(ctx context.Context, path string, values url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + path
	if len(values) > 0 {
		u += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
		}
		return body, nil
	})
	if err != nil {
		var upErr *UpstreamError
		if errors.As(err, &upErr) {
			c.log.Error("upstream call rejected",
				zap.String("path", path),
				zap.Int("status", upErr.Status),
			)
			return nil, upErr
		}
		c.log.Error("upstream call failed", zap.String("path", path), zap.Error(err))
		return nil, &UpstreamError{Err: err}
	}

	return result.([]byte), nil
}
