// internal/api/api_test.go
package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tamzrod/finch-bridge/internal/finch"
	"github.com/tamzrod/finch-bridge/internal/poller"
	"github.com/tamzrod/finch-bridge/internal/status"
)

// ---- fakes ----

// fakeRobot validates through the real command types so the API sees
// the same errors the facade returns.
type fakeRobot struct {
	state     poller.State
	frequency int
	sent      []finch.Command
	stopped   int
	resets    int
}

func (f *fakeRobot) Name() string { return "lab" }

func (f *fakeRobot) StartSensorDataCollection(ms int) error {
	if err := finch.CheckNonNegative("frequency_ms", ms); err != nil {
		return err
	}
	f.state = poller.StateAwaitingResponse
	f.frequency = ms
	return nil
}

func (f *fakeRobot) StopSensorDataCollection() {
	f.state = poller.StateIdle
	f.stopped++
}

func (f *fakeRobot) PollState() poller.State { return f.state }

func (f *fakeRobot) PollFrequency() time.Duration {
	return time.Duration(f.frequency) * time.Millisecond
}

func (f *fakeRobot) send(cmd finch.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	f.sent = append(f.sent, cmd)
	return nil
}

func (f *fakeRobot) PlayTone(hz, ms int) error {
	return f.send(finch.PlayTone{FrequencyHz: hz, DurationMs: ms})
}

func (f *fakeRobot) SetBeakColor(r, g, b int) error {
	return f.send(finch.SetBeakColor{R: r, G: g, B: b})
}

func (f *fakeRobot) SetWheelPower(l, r int) error {
	return f.send(finch.SetWheelPower{Left: l, Right: r})
}

func (f *fakeRobot) Disconnect() { f.resets++ }

type fakeMonitor struct {
	sample   *finch.SensorSample
	snap     status.Snapshot
	disabled int
	enabled  int
}

func (m *fakeMonitor) Latest() (finch.SensorSample, time.Time, bool) {
	if m.sample == nil {
		return finch.SensorSample{}, time.Time{}, false
	}
	return *m.sample, time.Unix(1700000000, 0).UTC(), true
}

func (m *fakeMonitor) Status() (status.Snapshot, uint64) { return m.snap, 7 }

func (m *fakeMonitor) MarkDisabled() { m.disabled++ }

func (m *fakeMonitor) MarkEnabled() { m.enabled++ }

// ------------------------------------------------------------

func setup() (*echo.Echo, *fakeRobot, *fakeMonitor) {
	r := &fakeRobot{}
	m := &fakeMonitor{}
	return New(r, m, slog.New(slog.NewTextHandler(io.Discard, nil))), r, m
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// ---- tests ----

func TestSensors_NoDataYet(t *testing.T) {
	e, _, _ := setup()
	if rec := do(e, http.MethodGet, "/sensors", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("status: got=%d", rec.Code)
	}
}

func TestSensors_ReturnsLatest(t *testing.T) {
	e, _, m := setup()
	m.sample = &finch.SensorSample{Temperature: 21.5, Light: finch.Light{Left: 10, Right: 20}}

	rec := do(e, http.MethodGet, "/sensors", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body)
	}

	var got sensorsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Device != "lab" || got.Sample != *m.sample {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestPolling_StartAndStatus(t *testing.T) {
	e, r, m := setup()

	if rec := do(e, http.MethodPut, "/polling", `{"frequency_ms":250}`); rec.Code != http.StatusNoContent {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body)
	}
	if r.frequency != 250 {
		t.Fatalf("frequency: got=%d", r.frequency)
	}
	if m.enabled != 1 {
		t.Fatalf("start must re-enable the bridge, enabled=%d", m.enabled)
	}

	rec := do(e, http.MethodGet, "/status", "")
	var got statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PollState != "awaiting_response" || got.Frequency == nil || *got.Frequency != 250 || got.Samples != 7 {
		t.Fatalf("unexpected status: %+v", got)
	}
}

func TestPolling_RejectsNegativeAndMissing(t *testing.T) {
	e, r, m := setup()

	rec := do(e, http.MethodPut, "/polling", `{"frequency_ms":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d", rec.Code)
	}
	var body errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Field != "frequency_ms" {
		t.Fatalf("field: got=%q", body.Field)
	}
	if body.Min == nil || *body.Min != 0 || body.Max != nil {
		t.Fatalf("unbounded field must omit max: %s", rec.Body)
	}

	if rec := do(e, http.MethodPut, "/polling", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing frequency: got=%d", rec.Code)
	}
	if r.state != poller.StateIdle {
		t.Fatalf("poller should not have started")
	}
	if m.enabled != 0 {
		t.Fatalf("rejected start must not re-enable, enabled=%d", m.enabled)
	}
}

func TestPolling_StopMarksDisabled(t *testing.T) {
	e, r, m := setup()

	rec := do(e, http.MethodDelete, "/polling", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got=%d", rec.Code)
	}
	if r.stopped != 1 || m.disabled != 1 {
		t.Fatalf("stopped=%d disabled=%d", r.stopped, m.disabled)
	}

	got := do(e, http.MethodGet, "/status", "").Body.String()
	if strings.Contains(got, "frequency_ms") {
		t.Fatalf("idle status should omit frequency: %s", got)
	}
}

func TestActuators_Dispatch(t *testing.T) {
	e, r, _ := setup()

	cases := []struct {
		path string
		body string
		want finch.Command
	}{
		{"/tone", `{"frequency_hz":440,"duration_ms":500}`, finch.PlayTone{FrequencyHz: 440, DurationMs: 500}},
		{"/beak", `{"r":255,"g":0,"b":12}`, finch.SetBeakColor{R: 255, G: 0, B: 12}},
		{"/wheels", `{"left":-255,"right":255}`, finch.SetWheelPower{Left: -255, Right: 255}},
	}

	for _, tc := range cases {
		if rec := do(e, http.MethodPost, tc.path, tc.body); rec.Code != http.StatusAccepted {
			t.Fatalf("%s: status=%d body=%s", tc.path, rec.Code, rec.Body)
		}
	}

	if len(r.sent) != len(cases) {
		t.Fatalf("sent: got=%d", len(r.sent))
	}
	for i, tc := range cases {
		if r.sent[i] != tc.want {
			t.Fatalf("%s: got=%+v want=%+v", tc.path, r.sent[i], tc.want)
		}
	}
}

func TestActuators_InvalidArgumentIs400(t *testing.T) {
	e, r, _ := setup()

	cases := []struct {
		path    string
		body    string
		field   string
		bounded bool
	}{
		{"/tone", `{"frequency_hz":-1,"duration_ms":10}`, "frequency_hz", false},
		{"/tone", `{"frequency_hz":10,"duration_ms":-5}`, "duration_ms", false},
		{"/beak", `{"r":0,"g":256,"b":0}`, "g", true},
		{"/wheels", `{"left":0,"right":-256}`, "right", true},
	}

	for _, tc := range cases {
		rec := do(e, http.MethodPost, tc.path, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", tc.path, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", tc.path, err)
		}
		if body.Field != tc.field || body.Min == nil || (body.Max != nil) != tc.bounded {
			t.Fatalf("%s: unexpected body %s", tc.path, rec.Body)
		}
		if strings.Contains(rec.Body.String(), "9223372036854775807") {
			t.Fatalf("%s: body leaks MaxInt: %s", tc.path, rec.Body)
		}
	}

	if len(r.sent) != 0 {
		t.Fatalf("invalid commands must not dispatch, got %d", len(r.sent))
	}
}

func TestActuators_MalformedBody(t *testing.T) {
	e, _, _ := setup()
	if rec := do(e, http.MethodPost, "/beak", `{"r":`); rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d", rec.Code)
	}
}

func TestDisconnect(t *testing.T) {
	e, r, _ := setup()
	if rec := do(e, http.MethodPost, "/disconnect", ""); rec.Code != http.StatusAccepted {
		t.Fatalf("status: got=%d", rec.Code)
	}
	if r.resets != 1 || r.stopped != 0 {
		t.Fatalf("resets=%d stopped=%d", r.resets, r.stopped)
	}
}
