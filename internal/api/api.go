// internal/api/api.go
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tamzrod/finch-bridge/internal/finch"
	"github.com/tamzrod/finch-bridge/internal/poller"
	"github.com/tamzrod/finch-bridge/internal/status"
)

// Robot is the device surface the API drives (device.Finch).
type Robot interface {
	Name() string
	StartSensorDataCollection(frequencyMs int) error
	StopSensorDataCollection()
	PollState() poller.State
	PollFrequency() time.Duration
	PlayTone(frequencyHz, durationMs int) error
	SetBeakColor(r, g, b int) error
	SetWheelPower(left, right int) error
	Disconnect()
}

// Monitor exposes what the bridge has seen so far (bridge.Bridge).
type Monitor interface {
	Latest() (finch.SensorSample, time.Time, bool)
	Status() (status.Snapshot, uint64)
	MarkDisabled()
	MarkEnabled()
}

// ---- request / response bodies ----

type pollingRequest struct {
	FrequencyMs *int `json:"frequency_ms"`
}

type toneRequest struct {
	FrequencyHz int `json:"frequency_hz"`
	DurationMs  int `json:"duration_ms"`
}

type beakRequest struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

type wheelsRequest struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

type sensorsResponse struct {
	Device     string             `json:"device"`
	ReceivedAt time.Time          `json:"received_at"`
	Sample     finch.SensorSample `json:"sample"`
}

type statusResponse struct {
	Device    string          `json:"device"`
	PollState string          `json:"poll_state"`
	Frequency *int            `json:"frequency_ms,omitempty"`
	Samples   uint64          `json:"samples"`
	Link      status.Snapshot `json:"link"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Value *int   `json:"value,omitempty"`
	Min   *int   `json:"min,omitempty"`
	Max   *int   `json:"max,omitempty"`
}

// ------------------------------------------------------------

type handler struct {
	robot   Robot
	monitor Monitor
	log     *slog.Logger
}

// New builds the echo instance with all routes registered.
func New(robot Robot, monitor Monitor, log *slog.Logger) *echo.Echo {
	if log == nil {
		log = slog.Default()
	}
	h := &handler{robot: robot, monitor: monitor, log: log.With("component", "api")}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			h.log.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	e.GET("/sensors", h.sensors)
	e.GET("/status", h.status)
	e.PUT("/polling", h.startPolling)
	e.DELETE("/polling", h.stopPolling)
	e.POST("/tone", h.tone)
	e.POST("/beak", h.beak)
	e.POST("/wheels", h.wheels)
	e.POST("/disconnect", h.disconnect)

	return e
}

// ---- sensors / status ----

func (h *handler) sensors(c echo.Context) error {
	sample, at, ok := h.monitor.Latest()
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "no sensor data yet"})
	}
	return c.JSON(http.StatusOK, sensorsResponse{
		Device:     h.robot.Name(),
		ReceivedAt: at,
		Sample:     sample,
	})
}

func (h *handler) status(c echo.Context) error {
	snap, n := h.monitor.Status()
	state := h.robot.PollState()

	resp := statusResponse{
		Device:    h.robot.Name(),
		PollState: state.String(),
		Samples:   n,
		Link:      snap,
	}
	if state != poller.StateIdle {
		ms := int(h.robot.PollFrequency() / time.Millisecond)
		resp.Frequency = &ms
	}
	return c.JSON(http.StatusOK, resp)
}

// ---- polling ----

func (h *handler) startPolling(c echo.Context) error {
	var req pollingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if req.FrequencyMs == nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "frequency_ms required", Field: "frequency_ms"})
	}

	// Validate before re-enabling so a rejected request leaves a
	// stopped bridge disabled.
	if err := finch.CheckNonNegative("frequency_ms", *req.FrequencyMs); err != nil {
		return badRequest(c, err)
	}
	h.monitor.MarkEnabled()

	if err := h.robot.StartSensorDataCollection(*req.FrequencyMs); err != nil {
		return badRequest(c, err)
	}
	h.log.Info("polling started", "frequency_ms", *req.FrequencyMs)
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) stopPolling(c echo.Context) error {
	h.robot.StopSensorDataCollection()
	h.monitor.MarkDisabled()
	h.log.Info("polling stopped")
	return c.NoContent(http.StatusNoContent)
}

// ---- actuators ----

func (h *handler) tone(c echo.Context) error {
	var req toneRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.robot.PlayTone(req.FrequencyHz, req.DurationMs); err != nil {
		return badRequest(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *handler) beak(c echo.Context) error {
	var req beakRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.robot.SetBeakColor(req.R, req.G, req.B); err != nil {
		return badRequest(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *handler) wheels(c echo.Context) error {
	var req wheelsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.robot.SetWheelPower(req.Left, req.Right); err != nil {
		return badRequest(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *handler) disconnect(c echo.Context) error {
	h.robot.Disconnect()
	return c.NoContent(http.StatusAccepted)
}

// badRequest renders bind failures and InvalidArgument errors.
// Anything else is unexpected here and goes to echo's error handler.
func badRequest(c echo.Context, err error) error {
	var ia *finch.InvalidArgumentError
	if errors.As(err, &ia) {
		body := errorResponse{
			Error: ia.Error(),
			Field: ia.Field,
			Value: &ia.Value,
			Min:   &ia.Min,
		}
		// Unbounded above: MaxInt is not representable in JS numbers.
		if ia.Max != math.MaxInt {
			body.Max = &ia.Max
		}
		return c.JSON(http.StatusBadRequest, body)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprint(he.Message)})
	}
	return err
}
