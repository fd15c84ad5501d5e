package theme

import "testing"

func TestParse(t *testing.T) {
	if th, err := Parse(" Light "); err != nil || th != Light {
		t.Fatalf("parse light: %v %v", th, err)
	}
	if th, err := Parse(""); err != nil || th != Dark {
		t.Fatalf("empty should default to dark: %v %v", th, err)
	}
	if _, err := Parse("sepia"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSignalNotifiesOnChangeOnly(t *testing.T) {
	s := NewSignal(Dark)
	var got []Theme
	cancel := s.Subscribe(func(th Theme) { got = append(got, th) })

	s.Set(Dark)
	s.Set(Light)
	s.Set(Light)
	if s.Toggle() != Dark {
		t.Fatalf("toggle from light should give dark")
	}
	if len(got) != 2 || got[0] != Light || got[1] != Dark {
		t.Fatalf("notifications=%v", got)
	}

	cancel()
	cancel()
	if s.Subscribers() != 0 {
		t.Fatalf("subscribers=%d after cancel", s.Subscribers())
	}
	s.Set(Light)
	if len(got) != 2 {
		t.Fatalf("cancelled subscriber was notified")
	}
}

func TestColours(t *testing.T) {
	if Dark.Foreground() != Light.Background() || Light.Foreground() != Dark.Background() {
		t.Fatalf("foreground should contrast with background")
	}
}
