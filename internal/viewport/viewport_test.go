package viewport

import "testing"

func TestValid(t *testing.T) {
	cases := []struct {
		vp   Viewport
		want bool
	}{
		{Viewport{}, false},
		{Viewport{Width: 10}, false},
		{Viewport{Height: 10}, false},
		{Viewport{Width: -1, Height: 5}, false},
		{Viewport{Width: 1, Height: 1}, true},
		{New(400, 300), true},
		{Viewport{Width: 3, Height: 2, PixelDensity: 2}, true},
	}
	for _, tc := range cases {
		if got := tc.vp.Valid(); got != tc.want {
			t.Fatalf("%+v.Valid()=%v want=%v", tc.vp, got, tc.want)
		}
	}
}

func TestDeviceScalesByDensity(t *testing.T) {
	w, h := Viewport{Width: 400, Height: 300, PixelDensity: 2}.Device()
	if w != 800 || h != 600 {
		t.Fatalf("device size %dx%d want 800x600", w, h)
	}
	w, h = Viewport{Width: 400, Height: 300}.Device()
	if w != 400 || h != 300 {
		t.Fatalf("unset density should act as 1, got %dx%d", w, h)
	}
	w, h = Viewport{}.Device()
	if w != 0 || h != 0 {
		t.Fatalf("invalid viewport should have no device size, got %dx%d", w, h)
	}
}

func TestDeviceNeverZeroForTinyDensity(t *testing.T) {
	w, h := Viewport{Width: 1, Height: 1, PixelDensity: 0.1}.Device()
	if w < 1 || h < 1 {
		t.Fatalf("device size collapsed to %dx%d", w, h)
	}
}

func TestCenter(t *testing.T) {
	x, y := New(400, 300).Center()
	if x != 200 || y != 150 {
		t.Fatalf("center=(%f,%f)", x, y)
	}
}
