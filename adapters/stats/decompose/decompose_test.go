package decompose

import (
	"math"
	"testing"

	"godrift/domain/core"
)

func sineWave(n, period int, base, amplitude float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = base + amplitude*math.Sin(2*math.Pi*float64(i)/float64(period))
	}
	return values
}

// TestInferPeriod_FindsSeasonalLag verifies the autocorrelation peak lands
// on the seasonal cycle (or a harmonic of it)
func TestInferPeriod_FindsSeasonalLag(t *testing.T) {
	period := InferPeriod(sineWave(96, 24, 100, 10))
	if period == 0 {
		t.Fatal("no period inferred for strongly seasonal series")
	}
	if period%24 != 0 {
		t.Errorf("inferred period %d is not a multiple of 24", period)
	}
}

// TestInferPeriod_ConstantSeries verifies a flat series yields no period
func TestInferPeriod_ConstantSeries(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 7
	}
	if period := InferPeriod(values); period != 0 {
		t.Errorf("inferred period %d for constant series, want 0", period)
	}
}

// TestDecompose_SeasonalSeries verifies residuals shrink well below the
// seasonal amplitude once the cycle is removed
func TestDecompose_SeasonalSeries(t *testing.T) {
	values := sineWave(96, 24, 100, 10)
	dec, err := Decompose(values, 24)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}

	if dec.Period != 24 {
		t.Errorf("period = %d, want 24", dec.Period)
	}
	if len(dec.Trend) != len(values) || len(dec.Seasonal) != len(values) || len(dec.Residual) != len(values) {
		t.Fatal("components not aligned with input")
	}

	var sumSq float64
	for _, r := range dec.Residual {
		sumSq += r * r
	}
	rms := math.Sqrt(sumSq / float64(len(dec.Residual)))
	if rms > 3.0 {
		t.Errorf("residual RMS %f too large for pure seasonal input", rms)
	}
}

// TestDecompose_ConstantSeries verifies the zero-variance edge case:
// residuals identically zero, no division anywhere
func TestDecompose_ConstantSeries(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 42
	}
	dec, err := Decompose(values, 5)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	for i, r := range dec.Residual {
		if r != 0 {
			t.Fatalf("residual[%d] = %f, want 0", i, r)
		}
	}
}

// TestDecompose_InsufficientData verifies the 2×period floor
func TestDecompose_InsufficientData(t *testing.T) {
	_, err := Decompose(sineWave(15, 10, 0, 1), 10)
	if err == nil {
		t.Fatal("expected insufficient data error")
	}
	if !core.IsInsufficientData(err) {
		t.Errorf("error %v is not an insufficient-data error", err)
	}
}

// TestDecompose_NoSeasonality verifies inference failure is degenerate,
// not fatal
func TestDecompose_NoSeasonality(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 5
	}
	_, err := Decompose(values, 0)
	if err == nil {
		t.Fatal("expected degenerate input error")
	}
	if !core.IsDegenerateInput(err) {
		t.Errorf("error %v is not a degenerate-input error", err)
	}
}
