package surface

import (
	"bytes"
	"io"
	"testing"

	"github.com/matzehuels/chartdeck/pkg/errors"
)

type stubContent struct{ svg string }

func (s stubContent) WriteSVG(w io.Writer) error {
	_, err := io.WriteString(w, s.svg)
	return err
}

func (s stubContent) WritePNG(w io.Writer, _ float64) error { return nil }

func TestMemoryAppend(t *testing.T) {
	m := NewMemory()

	for _, id := range []string{"chart-1", "chart-2", "chart-3"} {
		if _, err := m.Append(id, 600, 400); err != nil {
			t.Fatalf("Append(%s): %v", id, err)
		}
	}

	els := m.Elements()
	if len(els) != 3 {
		t.Fatalf("len = %d, want 3", len(els))
	}
	if els[0].ID != "chart-1" || els[2].ID != "chart-3" {
		t.Errorf("order = %s..%s", els[0].ID, els[2].ID)
	}
	if _, ok := m.Get("chart-2"); !ok {
		t.Error("Get(chart-2) not found")
	}
}

func TestMemoryAppendErrors(t *testing.T) {
	tests := []struct {
		name string
		id   string
		w, h int
	}{
		{"duplicate", "chart-1", 600, 400},
		{"empty id", "", 600, 400},
		{"bad id", "chart 2", 600, 400},
		{"zero width", "chart-9", 0, 400},
	}

	m := NewMemory()
	if _, err := m.Append("chart-1", 600, 400); err != nil {
		t.Fatal(err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Append(tt.id, tt.w, tt.h)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestMemoryReset(t *testing.T) {
	m := NewMemory()
	m.Append("chart-1", 600, 400)
	m.Reset()

	if m.Len() != 0 {
		t.Errorf("Len() = %d after Reset", m.Len())
	}
	if _, err := m.Append("chart-1", 600, 400); err != nil {
		t.Errorf("id should be reusable after Reset: %v", err)
	}
}

func TestElementBind(t *testing.T) {
	el := &Element{ID: "chart-1", Width: 600, Height: 400}

	var buf bytes.Buffer
	if err := el.WriteSVG(&buf); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unbound WriteSVG error = %v", err)
	}

	el.Bind(stubContent{svg: "<svg/>"})
	if err := el.WriteSVG(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "<svg/>" {
		t.Errorf("svg = %q", buf.String())
	}
}
