package geom

import "testing"

func TestVecArithmetic(t *testing.T) {
	a := Vec{X: 3, Y: 5}
	b := Vec{X: 1, Y: 2}
	if got := a.Add(b); got != (Vec{X: 4, Y: 7}) {
		t.Errorf("Add: got %v", got)
	}
	if got := a.Sub(b); got != (Vec{X: 2, Y: 3}) {
		t.Errorf("Sub: got %v", got)
	}
	if got := a.Scale(2); got != (Vec{X: 6, Y: 10}) {
		t.Errorf("Scale: got %v", got)
	}
}

func TestRidgeLineShift(t *testing.T) {
	r := RidgeLine{Before: 1, Ridge: []Vec{{X: 5, Y: 2}, {X: 10, Y: 3}}}
	got := r.Shift(Vec{X: 100, Y: 10})
	want := RidgeLine{Before: 11, Ridge: []Vec{{X: 105, Y: 12}, {X: 110, Y: 13}}}
	if got.Before != want.Before {
		t.Fatalf("Before: got %d want %d", got.Before, want.Before)
	}
	for i := range want.Ridge {
		if got.Ridge[i] != want.Ridge[i] {
			t.Fatalf("Ridge[%d]: got %v want %v", i, got.Ridge[i], want.Ridge[i])
		}
	}
}

func TestMergeMax(t *testing.T) {
	lhs := RidgeLine{Before: 1, Ridge: []Vec{{X: 10, Y: 3}}}
	rhs := RidgeLine{Before: 2, Ridge: []Vec{{X: 5, Y: 0}}}
	got := Merge(lhs, rhs, Max)
	if got.Before != 2 {
		t.Fatalf("Before: got %d want 2", got.Before)
	}
	// at x=5 rhs drops to 0 but lhs (still 1) wins -> value becomes 1
	// at x=10 lhs becomes 3, which is greater than rhs's 0 -> value becomes 3
	want := []Vec{{X: 5, Y: 1}, {X: 10, Y: 3}}
	if len(got.Ridge) != len(want) {
		t.Fatalf("got %v want %v", got.Ridge, want)
	}
	for i := range want {
		if got.Ridge[i] != want[i] {
			t.Errorf("Ridge[%d]: got %v want %v", i, got.Ridge[i], want[i])
		}
	}
}

func TestMergeMin(t *testing.T) {
	lhs := RidgeLine{Before: 5, Ridge: nil}
	rhs := RidgeLine{Before: 2, Ridge: nil}
	got := Merge(lhs, rhs, Min)
	if got.Before != 2 || len(got.Ridge) != 0 {
		t.Fatalf("got %+v", got)
	}
}

func TestReverseEmpty(t *testing.T) {
	r := RidgeLine{Before: 7}
	got := Reverse(r, 0)
	if got.Before != 7 || len(got.Ridge) != 0 {
		t.Fatalf("got %+v", got)
	}
}

func TestReverseRoundTrip(t *testing.T) {
	r := RidgeLine{Before: 0, Ridge: []Vec{{X: 4, Y: 1}, {X: 9, Y: 2}}}
	once := Reverse(r, 0)
	twice := Reverse(once, 0)
	if twice.Before != r.Before {
		t.Fatalf("Before: got %d want %d", twice.Before, r.Before)
	}
	if len(twice.Ridge) != len(r.Ridge) {
		t.Fatalf("Ridge length: got %d want %d", len(twice.Ridge), len(r.Ridge))
	}
	for i := range r.Ridge {
		if twice.Ridge[i] != r.Ridge[i] {
			t.Errorf("Ridge[%d]: got %v want %v", i, twice.Ridge[i], r.Ridge[i])
		}
	}
}

func TestDistance(t *testing.T) {
	top := RidgeLine{Before: 2, Ridge: []Vec{{X: 5, Y: 4}}}
	bottom := RidgeLine{Before: 1, Ridge: []Vec{{X: 5, Y: 6}}}
	// before x=5: 2+1=3; from x=5: 4+6=10
	if got := Distance(top, bottom); got != 10 {
		t.Fatalf("got %d want 10", got)
	}
}

func TestMaxMin(t *testing.T) {
	if Max(3, 5) != 5 || Max(5, 3) != 5 {
		t.Error("Max wrong")
	}
	if Min(3, 5) != 3 || Min(5, 3) != 3 {
		t.Error("Min wrong")
	}
}
