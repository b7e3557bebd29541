package calibrate

import "testing"

func TestAnalyzeFrameEnergies(t *testing.T) {
	stats := analyzeFrameEnergies([]float64{0.01, 0.02, 0.015, 0.5, 0.6, 0.55})
	if stats.SampleCount != 6 {
		t.Fatalf("expected 6 samples, got %d", stats.SampleCount)
	}
	if stats.Min != 0.01 {
		t.Errorf("expected min 0.01, got %v", stats.Min)
	}
	if stats.Max != 0.6 {
		t.Errorf("expected max 0.6, got %v", stats.Max)
	}
	if stats.Avg <= stats.Min || stats.Avg >= stats.Max {
		t.Errorf("expected min < avg < max, got %v", stats.Avg)
	}
}

func TestAnalyzeFrameEnergies_Empty(t *testing.T) {
	stats := analyzeFrameEnergies(nil)
	if stats.SampleCount != 0 {
		t.Errorf("expected zero-value Statistics for empty input, got %+v", stats)
	}
}

func TestRecommendThreshold_AboveBackgroundP95(t *testing.T) {
	background := Statistics{P95: 0.02, Avg: 0.01}
	speech := Statistics{P5: 0.3}
	threshold := RecommendThreshold(background, speech)
	if threshold != background.P95*1.5 {
		t.Errorf("expected background.P95 * 1.5, got %v", threshold)
	}
	if threshold <= background.P95 {
		t.Errorf("expected recommended threshold above background P95, got %v", threshold)
	}
}

func TestRecommendThreshold_FlooredForQuietRooms(t *testing.T) {
	background := Statistics{P95: 0.001, Avg: 0.01} // P95 < Avg, an unusual but possible distribution
	speech := Statistics{P5: 0.3}
	threshold := RecommendThreshold(background, speech)
	if threshold != background.Avg*2 {
		t.Errorf("expected floor of background.Avg * 2, got %v", threshold)
	}
}
