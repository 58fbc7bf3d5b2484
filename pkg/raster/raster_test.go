package raster

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"strings"
	"testing"

	chartdeckerrors "github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

const squareSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 30 20">` +
	`<path d="M 0 0 L 30 0 L 30 20 L 0 20 Z" style="stroke-width:1;stroke:rgba(0,0,255,1.0);fill:rgba(255,0,0,0.5)"/>` +
	`<text x="1" y="10" style="font-size:10px">ignored</text>` +
	`</svg>`

type fakeContent struct {
	svg    string
	scales []float64
	err    error
}

func (f *fakeContent) WriteSVG(w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, f.svg)
	return err
}

func (f *fakeContent) WritePNG(w io.Writer, scale float64) error {
	f.scales = append(f.scales, scale)
	if f.err != nil {
		return f.err
	}
	_, err := w.Write([]byte("\x89PNG"))
	return err
}

func boundElement(c surface.Content) *surface.Element {
	el := &surface.Element{ID: "chart-1", Width: 30, Height: 20}
	el.Bind(c)
	return el
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", BackendNative, false},
		{"native", BackendNative, false},
		{"RSVG", BackendRSVG, false},
		{"oksvg", BackendOKSVG, false},
		{"chrome", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.name, 0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !chartdeckerrors.Is(err, chartdeckerrors.ErrCodeUnsupported) {
					t.Errorf("code = %v", chartdeckerrors.GetCode(err))
				}
				return
			}
			if got := s.(Namer).Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNativeSnapshot(t *testing.T) {
	c := &fakeContent{}
	uri, err := (&Native{Scale: DefaultScale}).Snapshot(context.Background(), boundElement(c))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("uri = %.40q", uri)
	}
	if len(c.scales) != 1 || c.scales[0] != 2 {
		t.Errorf("scales = %v, want [2]", c.scales)
	}
}

func TestNativeSnapshotErrors(t *testing.T) {
	n := &Native{Scale: 2}

	_, err := n.Snapshot(context.Background(), &surface.Element{ID: "chart-1"})
	if !chartdeckerrors.Is(err, chartdeckerrors.ErrCodeSnapshotFailed) {
		t.Errorf("unbound: %v", err)
	}

	_, err = n.Snapshot(context.Background(), boundElement(&fakeContent{err: errors.New("detached")}))
	if !chartdeckerrors.Is(err, chartdeckerrors.ErrCodeSnapshotFailed) {
		t.Errorf("failing content: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := n.Snapshot(ctx, boundElement(&fakeContent{})); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: %v", err)
	}
}

func TestDataURI(t *testing.T) {
	uri := DataURI(MimePNG, []byte("hello"))
	if uri != "data:image/png;base64,aGVsbG8=" {
		t.Fatalf("DataURI = %q", uri)
	}

	mime, data, err := ParseDataURI(uri)
	if err != nil {
		t.Fatal(err)
	}
	if mime != MimePNG || string(data) != "hello" {
		t.Errorf("ParseDataURI = %q, %q", mime, data)
	}
}

func TestParseDataURIErrors(t *testing.T) {
	for _, uri := range []string{
		"http://example.com/a.png",
		"data:image/png;base64",
		"data:image/svg+xml,<svg/>",
		"data:image/png;base64,!!!",
	} {
		t.Run(uri, func(t *testing.T) {
			if _, _, err := ParseDataURI(uri); !chartdeckerrors.Is(err, chartdeckerrors.ErrCodeInvalidFormat) {
				t.Errorf("error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestNormalizeColors(t *testing.T) {
	out, err := normalizeColors([]byte(squareSVG))
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	for _, want := range []string{
		"stroke:rgb(0,0,255);stroke-opacity:1.0",
		"fill:rgb(255,0,0);fill-opacity:0.5",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in %s", want, s)
		}
	}

	out, err = normalizeColors([]byte(`<svg><rect fill="rgba(1, 2, 3, 0.2)"/></svg>`))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `fill="rgb(1,2,3)"`) || !strings.Contains(string(out), `fill-opacity="0.2"`) {
		t.Errorf("attribute paint not normalized: %s", out)
	}
}

func TestOKSVGSnapshot(t *testing.T) {
	uri, err := (&OKSVG{Scale: 2}).Snapshot(context.Background(), boundElement(&fakeContent{svg: squareSVG}))
	if err != nil {
		t.Fatal(err)
	}
	_, data, err := ParseDataURI(uri)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 40 {
		t.Errorf("size = %dx%d, want 60x40", b.Dx(), b.Dy())
	}
}

func TestOKSVGConvertErrors(t *testing.T) {
	if _, err := (&OKSVG{}).Convert([]byte("<svg")); err == nil {
		t.Error("malformed svg should fail")
	}
	if _, err := (&OKSVG{}).Convert([]byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)); err == nil {
		t.Error("svg without viewBox should fail")
	}
}

func TestRSVGMissingBinary(t *testing.T) {
	r := &RSVG{Scale: 2, Bin: "chartdeck-no-such-rsvg-convert"}
	_, err := r.Snapshot(context.Background(), boundElement(&fakeContent{svg: squareSVG}))
	if !chartdeckerrors.Is(err, chartdeckerrors.ErrCodeSnapshotFailed) {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(err.Error(), "librsvg") {
		t.Errorf("error should mention librsvg: %v", err)
	}
}
