package grading

import "testing"

func TestPercentRounding(t *testing.T) {
	cases := []struct {
		score, total, want int
	}{
		{0, 10, 0},
		{10, 10, 100},
		{9, 10, 90},
		{5, 10, 50},
		{224, 250, 90}, // 89.6 rounds up across the threshold
		{223, 250, 89}, // 89.2 rounds down
		{1, 3, 33},
		{2, 3, 67},
	}
	for _, c := range cases {
		if got := Percent(c.score, c.total); got != c.want {
			t.Errorf("Percent(%d,%d) = %d, want %d", c.score, c.total, got, c.want)
		}
	}
}

func TestPassingBoundary(t *testing.T) {
	if !Passing(90) {
		t.Error("90 must pass (boundary inclusive)")
	}
	if Passing(89) {
		t.Error("89 must not pass")
	}
	// rounding precedes the comparison
	if !Passing(Percent(224, 250)) {
		t.Error("89.6%% raw accuracy must round to 90 and pass")
	}
}

func TestValidAttempt(t *testing.T) {
	if ValidAttempt(0, 0) {
		t.Error("total==0 must be invalid")
	}
	if ValidAttempt(-1, 10) {
		t.Error("negative score must be invalid")
	}
	if !ValidAttempt(0, 10) {
		t.Error("zero score with positive total is valid")
	}
}
