package sim

import "testing"

func TestCalculatePercentile_EmptyInput_ReturnsZero(t *testing.T) {
	if got := CalculatePercentile([]int{}, 50); got != 0 {
		t.Errorf("CalculatePercentile(empty) = %v, want 0", got)
	}
}

func TestCalculatePercentile_SingleElement(t *testing.T) {
	for _, p := range []float64{0, 50, 99, 100} {
		if got := CalculatePercentile([]int{7}, p); got != 7 {
			t.Errorf("p%v of [7] = %v, want 7", p, got)
		}
	}
}

func TestCalculatePercentile_Interpolates(t *testing.T) {
	// GIVEN an unsorted list
	data := []float64{40, 10, 30, 20}

	// WHEN p50 is taken: rank 1.5 between 20 and 30
	got := CalculatePercentile(data, 50)

	// THEN it interpolates linearly and sorts the input in place
	if got != 25 {
		t.Errorf("p50 = %v, want 25", got)
	}
	if data[0] != 10 || data[3] != 40 {
		t.Errorf("input not sorted: %v", data)
	}
}

func TestCalculatePercentile_Bounds(t *testing.T) {
	data := []int{3, 1, 2}
	if got := CalculatePercentile(data, 0); got != 1 {
		t.Errorf("p0 = %v, want 1", got)
	}
	if got := CalculatePercentile(data, 100); got != 3 {
		t.Errorf("p100 = %v, want 3", got)
	}
}

func TestCalculateMean(t *testing.T) {
	if got := CalculateMean([]int{}); got != 0 {
		t.Errorf("mean(empty) = %v, want 0", got)
	}
	if got := CalculateMean([]int{1, 2, 3, 6}); got != 3 {
		t.Errorf("mean = %v, want 3", got)
	}
}
