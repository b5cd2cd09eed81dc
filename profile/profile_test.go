package profile

import (
	"slices"
	"testing"
)

func TestNew_AppliesOptions(t *testing.T) {
	p := New(WithMode("cpu"), WithPath("/tmp/wz"), WithQuiet(true))

	if p != (Profiler{Mode: "cpu", Path: "/tmp/wz", Quiet: true}) {
		t.Errorf("New() = %+v", p)
	}
}

func TestStart_NoModeIsNoop(t *testing.T) {
	s := New().Start()

	if _, ok := s.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", s)
	}

	s.Stop()
}

func TestStart_UnknownModeIsNoop(t *testing.T) {
	for _, m := range []string{"quiet", "bogus"} {
		s := New(WithMode(m)).Start()

		if _, ok := s.(ignore); !ok {
			t.Errorf("Start(%q) = %T, want no-op", m, s)
		}

		s.Stop()
	}
}

func TestModes(t *testing.T) {
	modes := Modes()

	if !Enabled {
		if len(modes) != 0 {
			t.Errorf("Modes() = %v without pprof tag", modes)
		}

		return
	}

	if !slices.IsSorted(modes) || !slices.Contains(modes, "cpu") || slices.Contains(modes, "quiet") {
		t.Errorf("Modes() = %v", modes)
	}
}
