package alerting

import (
	"strings"
	"testing"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
)

func f(v float64) *float64 { return &v }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		values     map[string]float64
		policy     models.AlertPolicy
		wantAlerts []string // metric names expected to alert
		wantHigh   []string // alerting metrics expected to be high-alerts
	}{
		{
			name:   "no policy never alerts",
			values: map[string]float64{"temp": 9999},
			policy: models.AlertPolicy{},
		},
		{
			name:   "metric without bounds never alerts",
			values: map[string]float64{"temp": 9999},
			policy: models.AlertPolicy{Alerts: map[string]models.Threshold{"temp": {}}},
		},
		{
			name:       "value above max",
			values:     map[string]float64{"temp": 25.01},
			policy:     models.AlertPolicy{Alerts: map[string]models.Threshold{"temp": {Max: f(25)}}},
			wantAlerts: []string{"temp"},
			wantHigh:   []string{"temp"},
		},
		{
			name:   "value exactly at max does not alert",
			values: map[string]float64{"temp": 25},
			policy: models.AlertPolicy{Alerts: map[string]models.Threshold{"temp": {Max: f(25)}}},
		},
		{
			name:       "value below min",
			values:     map[string]float64{"temp": 17.9},
			policy:     models.AlertPolicy{Alerts: map[string]models.Threshold{"temp": {Min: f(18)}}},
			wantAlerts: []string{"temp"},
		},
		{
			name:   "value exactly at min does not alert",
			values: map[string]float64{"temp": 18},
			policy: models.AlertPolicy{Alerts: map[string]models.Threshold{"temp": {Min: f(18)}}},
		},
		{
			name:       "max checked before min",
			values:     map[string]float64{"temp": 100},
			policy:     models.AlertPolicy{Alerts: map[string]models.Threshold{"temp": {Min: f(18), Max: f(25)}}},
			wantAlerts: []string{"temp"},
			wantHigh:   []string{"temp"},
		},
		{
			name:   "metrics evaluated independently",
			values: map[string]float64{"temp": 30, "humidity": 20},
			policy: models.AlertPolicy{Alerts: map[string]models.Threshold{
				"temp":     {Max: f(25)},
				"humidity": {Min: f(30)},
				"pressure": {Max: f(1100)},
			}},
			wantAlerts: []string{"temp", "humidity"},
			wantHigh:   []string{"temp"},
		},
		{
			name:   "threshold for absent metric is ignored",
			values: map[string]float64{"temp": 20},
			policy: models.AlertPolicy{Alerts: map[string]models.Threshold{"voltage": {Max: f(5)}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := Evaluate(tt.values, tt.policy)
			if len(alerts) != len(tt.wantAlerts) {
				t.Fatalf("Evaluate() produced %d alerts %v, want %d", len(alerts), alerts, len(tt.wantAlerts))
			}
			for _, name := range tt.wantAlerts {
				if _, ok := alerts[name]; !ok {
					t.Errorf("expected alert for %q, got %v", name, alerts)
				}
			}
			for _, name := range tt.wantHigh {
				if !strings.HasPrefix(alerts[name], "high:") {
					t.Errorf("alert for %q = %q, want high-alert", name, alerts[name])
				}
			}
		})
	}
}

func TestChanged(t *testing.T) {
	tests := []struct {
		name string
		old  map[string]string
		new  map[string]string
		want bool
	}{
		{
			name: "both empty",
			old:  map[string]string{},
			new:  map[string]string{},
			want: false,
		},
		{
			name: "alert appears",
			old:  map[string]string{},
			new:  map[string]string{"temp": "high: 26.10 exceeds maximum 25.00"},
			want: true,
		},
		{
			name: "alert clears",
			old:  map[string]string{"temp": "high: 26.10 exceeds maximum 25.00"},
			new:  map[string]string{},
			want: true,
		},
		{
			name: "sustained breach with a different value is not a transition",
			old:  map[string]string{"temp": "high: 26.10 exceeds maximum 25.00"},
			new:  map[string]string{"temp": "high: 27.85 exceeds maximum 25.00"},
			want: false,
		},
		{
			name: "same metric flips high to low",
			old:  map[string]string{"temp": "high: 26.10 exceeds maximum 25.00"},
			new:  map[string]string{"temp": "low: 17.20 below minimum 18.00"},
			want: true,
		},
		{
			name: "different metric alerts",
			old:  map[string]string{"temp": "high: 26.10 exceeds maximum 25.00"},
			new:  map[string]string{"humidity": "high: 81.00 exceeds maximum 80.00"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Changed(tt.old, tt.new); got != tt.want {
				t.Errorf("Changed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	if got := StatusFor(nil); got != models.StatusOnline {
		t.Errorf("StatusFor(nil) = %v, want %v", got, models.StatusOnline)
	}
	if got := StatusFor(map[string]string{}); got != models.StatusOnline {
		t.Errorf("StatusFor(empty) = %v, want %v", got, models.StatusOnline)
	}
	if got := StatusFor(map[string]string{"temp": "high"}); got != models.StatusAlert {
		t.Errorf("StatusFor(non-empty) = %v, want %v", got, models.StatusAlert)
	}
}
