package simulator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/weather"
)

type stubSource struct {
	value float64
	err   error
}

func (s *stubSource) CurrentRainfall(ctx context.Context) (float64, error) {
	return s.value, s.err
}

func TestPollSuccess(t *testing.T) {
	w := NewWeatherStation("weather-station", &stubSource{value: 1.234}, testConfig())

	w.poll(time.Now())

	s := summaryOf(t, w)
	if s.Status != models.StatusOnline {
		t.Errorf("status = %v, want %v", s.Status, models.StatusOnline)
	}
	if got := s.LastValues["rainfall"]; got != 1.23 {
		t.Errorf("rainfall = %v, want 1.23 (rounded)", got)
	}
	if len(s.History.Timestamps) != 1 {
		t.Errorf("history length = %d, want 1", len(s.History.Timestamps))
	}
}

func TestPollRemoteError(t *testing.T) {
	src := &stubSource{err: fmt.Errorf("%w: status 500", weather.ErrRemote)}
	w := NewWeatherStation("weather-station", src, testConfig())

	w.poll(time.Now())

	s := summaryOf(t, w)
	if s.Status != models.StatusAPIError {
		t.Errorf("status = %v, want %v", s.Status, models.StatusAPIError)
	}
	if got := s.LastValues["rainfall"]; got != RainfallSentinel {
		t.Errorf("rainfall = %v, want sentinel %v", got, RainfallSentinel)
	}
}

func TestPollTransportFailure(t *testing.T) {
	src := &stubSource{err: errors.New("dial tcp: connection refused")}
	w := NewWeatherStation("weather-station", src, testConfig())

	w.poll(time.Now())

	s := summaryOf(t, w)
	if s.Status != models.StatusOffline {
		t.Errorf("status = %v, want %v", s.Status, models.StatusOffline)
	}
	if got := s.LastValues["rainfall"]; got != RainfallSentinel {
		t.Errorf("rainfall = %v, want sentinel %v", got, RainfallSentinel)
	}
}

func TestEveryAttemptAppendsOneReading(t *testing.T) {
	src := &stubSource{value: 0.5}
	w := NewWeatherStation("weather-station", src, testConfig())

	w.poll(time.Now())
	src.err = errors.New("unreachable")
	w.poll(time.Now())
	src.err = fmt.Errorf("%w: status 503", weather.ErrRemote)
	w.poll(time.Now())

	s := summaryOf(t, w)
	if len(s.History.Timestamps) != 3 {
		t.Fatalf("history length = %d, want 3 (one per attempt)", len(s.History.Timestamps))
	}
	series := s.History.Series["rainfall"]
	if series[0] == nil || *series[0] != 0.5 {
		t.Errorf("first reading = %v, want 0.5", series[0])
	}
	for i := 1; i < 3; i++ {
		if series[i] == nil || *series[i] != RainfallSentinel {
			t.Errorf("reading %d = %v, want sentinel", i, series[i])
		}
	}
}

func TestStationFetchesImmediatelyOnStart(t *testing.T) {
	cfg := testConfig()
	cfg.PollInterval = time.Hour // only the initial fetch can fire
	w := NewWeatherStation("weather-station", &stubSource{value: 2}, cfg)

	w.Start()
	defer w.Stop()

	deadline := time.Now().Add(time.Second)
	for {
		if len(summaryOf(t, w).History.Timestamps) == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("no immediate fetch within a second of Start")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStationNotConfigurable(t *testing.T) {
	w := NewWeatherStation("weather-station", &stubSource{}, testConfig())
	if w.Configurable() {
		t.Error("Configurable() = true, want false")
	}

	w.mu.Lock()
	w.UpdatePolicy(models.AlertPolicy{Alerts: map[string]models.Threshold{"rainfall": {Max: f(1)}}})
	w.mu.Unlock()

	s := summaryOf(t, w)
	if len(s.Policy.Alerts) != 0 {
		t.Errorf("policy after UpdatePolicy = %v, want untouched", s.Policy.Alerts)
	}
}

func TestStationPanicIsRecovered(t *testing.T) {
	cfg := testConfig()
	cfg.Hooks = Hooks{OnFetch: func(string, models.DeviceStatus) { panic("hook exploded") }}
	w := NewWeatherStation("weather-station", &stubSource{value: 1}, cfg)

	w.Start()

	// The panic is confined to the poll goroutine; Stop returns once
	// the recovered loop has exited instead of hanging the caller.
	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a task that already panicked")
	}
}

func TestFetchOutcomeHook(t *testing.T) {
	var statuses []models.DeviceStatus
	cfg := testConfig()
	cfg.Hooks = Hooks{OnFetch: func(_ string, status models.DeviceStatus) {
		statuses = append(statuses, status)
	}}

	src := &stubSource{value: 1}
	w := NewWeatherStation("weather-station", src, cfg)

	w.poll(time.Now())
	src.err = errors.New("unreachable")
	w.poll(time.Now())

	want := []models.DeviceStatus{models.StatusOnline, models.StatusOffline}
	if len(statuses) != len(want) {
		t.Fatalf("hook fired %d times, want %d", len(statuses), len(want))
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("fetch %d status = %v, want %v", i, statuses[i], want[i])
		}
	}
}
