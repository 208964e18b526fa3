package codeviz

import (
	"strings"
	"testing"
	"time"
)

func TestSettingsLines(t *testing.T) {
	r := newTestRig(t, &fakeSource{block: true}, promptConfig())
	r.v.SetShape(ShapeKnot)
	r.v.SetZoomEnabled(false)
	got := strings.Join(settingsLines(r.v), "\n")
	for _, want := range []string{"Auto mode: off", "Shape: knot", "Rotation speed: 0.15", "Zoom: off", "1-7"} {
		if !strings.Contains(got, want) {
			t.Errorf("settings missing %q:\n%s", want, got)
		}
	}
}

func TestPromptLine(t *testing.T) {
	r := newTestRig(t, &fakeSource{block: true, completion: "x"}, promptConfig())
	even := time.UnixMilli(0)
	odd := time.UnixMilli(caretBlinkMs)

	if got := promptLine(r.v, odd); !strings.HasPrefix(got, "> Describe") || strings.HasSuffix(got, "_") {
		t.Errorf("empty prompt line = %q", got)
	}
	r.v.prompt = "sort a list"
	if got := promptLine(r.v, even); got != "> sort a list_" {
		t.Errorf("prompt line = %q", got)
	}
	r.v.SubmitPrompt(r.v.prompt)
	if got := promptLine(r.v, even); got != "Generating..." {
		t.Errorf("loading line = %q", got)
	}

	auto := newTestRig(t, &fakeSource{block: true}, DefaultConfig())
	if got := promptLine(auto.v, even); got != "" {
		t.Errorf("auto mode shows prompt bar: %q", got)
	}
}
