package scorer

import (
	"testing"

	"gitlab.bluewillows.net/root/failoverctl/internal/probe"
)

func TestCompute_EmptyYieldsZero(t *testing.T) {
	got := Compute("cloudflare", nil)
	if got.Value != 0 {
		t.Fatalf("Value = %v, want 0", got.Value)
	}
	if got.WindowSize != 0 {
		t.Fatalf("WindowSize = %v, want 0", got.WindowSize)
	}
}

func TestCompute_BoundaryLatencies(t *testing.T) {
	tests := []struct {
		name      string
		elapsedMS int64
		want      float64
	}{
		{"latency 50ms yields 100.0", 50, 100.0},
		{"latency 1000ms yields 70.0", 1000, 70.0},
		{"latency 525ms yields 85.0", 525, 85.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := []probe.Result{{ProviderID: "p", Success: true, ElapsedMS: tt.elapsedMS}}
			got := Compute("p", results)
			if !almostEqual(got.Value, tt.want) {
				t.Errorf("Value = %v, want %v", got.Value, tt.want)
			}
		})
	}
}

func TestCompute_SingleResultConsistencyIsOne(t *testing.T) {
	results := []probe.Result{{ProviderID: "p", Success: true, ElapsedMS: 50}}
	got := Compute("p", results)
	if got.ConsistencyScore != 1.0 {
		t.Errorf("ConsistencyScore = %v, want 1.0", got.ConsistencyScore)
	}
}

func TestCompute_ZeroLatencyYieldsLatencyScoreOne(t *testing.T) {
	results := []probe.Result{{ProviderID: "p", Success: true, ElapsedMS: 0}}
	got := Compute("p", results)
	if got.LatencyScore != 1.0 {
		t.Errorf("LatencyScore = %v, want 1.0", got.LatencyScore)
	}
}

func TestCompute_LatencyAboveCeilingSaturatesAtZero(t *testing.T) {
	results := []probe.Result{{ProviderID: "p", Success: true, ElapsedMS: 5000}}
	got := Compute("p", results)
	if got.LatencyScore != 0.0 {
		t.Errorf("LatencyScore = %v, want 0.0", got.LatencyScore)
	}
}

func TestCompute_AlwaysInRange(t *testing.T) {
	tests := [][]probe.Result{
		{{Success: true, ElapsedMS: 10}},
		{{Success: false, ElapsedMS: 10000}},
		{
			{Success: true, ElapsedMS: 20},
			{Success: false, ElapsedMS: 2000},
			{Success: true, ElapsedMS: 900},
		},
	}
	for _, results := range tests {
		got := Compute("p", results)
		if got.Value < 0 || got.Value > 100 {
			t.Errorf("Compute(%v).Value = %v, want in [0,100]", results, got.Value)
		}
	}
}

func TestCompute_MixedOutcomesConsistency(t *testing.T) {
	results := []probe.Result{
		{Success: true, ElapsedMS: 50},
		{Success: true, ElapsedMS: 50},
		{Success: false, ElapsedMS: 50},
	}
	got := Compute("p", results)
	// 2 successes, 1 failure out of 3 -> consistency = 2/3
	if !almostEqual(got.ConsistencyScore, 2.0/3.0) {
		t.Errorf("ConsistencyScore = %v, want %v", got.ConsistencyScore, 2.0/3.0)
	}
}

func almostEqual(a, b float64) bool {
	const epsilon = 1e-9
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < epsilon
}
