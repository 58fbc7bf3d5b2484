package docx

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/raster"
)

var tinyPNG = append([]byte("\x89PNG\r\n\x1a\n"), []byte("not really pixels")...)

func pair(name string) Pair {
	return Pair{
		Name:   name,
		Raster: raster.DataURI(raster.MimePNG, tinyPNG),
		Vector: []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 600 400"><text>` + name + `</text></svg>`),
	}
}

func pairs(n int) []Pair {
	out := make([]Pair, n)
	for i := range out {
		out[i] = pair("chart-" + string(rune('a'+i)))
	}
	return out
}

func TestAssembleAndInspect(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		doc, err := Assemble(pairs(n), WithTitle("alle-grafieken"))
		if err != nil {
			t.Fatalf("n=%d: Assemble: %v", n, err)
		}
		data, err := doc.Bytes()
		if err != nil {
			t.Fatalf("n=%d: Bytes: %v", n, err)
		}

		report, err := InspectBytes(data)
		if err != nil {
			t.Fatalf("n=%d: Inspect: %v", n, err)
		}
		if report.Sections != n {
			t.Errorf("n=%d: sections = %d", n, report.Sections)
		}
		if len(report.Images) != n {
			t.Fatalf("n=%d: images = %d", n, len(report.Images))
		}
		for i, img := range report.Images {
			if img.Section != i+1 {
				t.Errorf("image %d in section %d", i, img.Section)
			}
			if !img.HasBothEncodings() {
				t.Errorf("image %d lacks an encoding: %+v", i, img)
			}
			if !strings.HasSuffix(img.SVG, ".svg") || !strings.HasSuffix(img.PNG, ".png") {
				t.Errorf("image %d parts = %s, %s", i, img.PNG, img.SVG)
			}
			if img.Width != DefaultWidth || img.Height != DefaultHeight {
				t.Errorf("image %d extent = %dx%d", i, img.Width, img.Height)
			}
		}
	}
}

func TestPackageParts(t *testing.T) {
	doc, err := Assemble(pairs(2), WithCreated(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatal(err)
	}
	data, err := doc.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"docProps/core.xml",
		"docProps/app.xml",
		"word/document.xml",
		"word/_rels/document.xml.rels",
		"word/media/image1.png",
		"word/media/image1.svg",
		"word/media/image2.png",
		"word/media/image2.svg",
	} {
		if !names[want] {
			t.Errorf("missing part %s", want)
		}
	}

	files := map[string]*zip.File{}
	for _, f := range zr.File {
		files[f.Name] = f
	}
	body, err := readPart(files, "word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		svgBlipExt,
		`cx="4800600"`,
		`cy="3810000"`,
		`<asvg:svgBlip r:embed="rId2"/>`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("document.xml missing %s", want)
		}
	}
}

func TestAssembleErrors(t *testing.T) {
	bad := pair("x")
	bad.Raster = "data:image/jpeg;base64,AAAA"
	empty := pair("y")
	empty.Vector = []byte("  ")
	garbage := pair("z")
	garbage.Raster = "not a uri"

	tests := []struct {
		name  string
		pairs []Pair
	}{
		{"no pairs", nil},
		{"jpeg raster", []Pair{pair("a"), bad}},
		{"empty vector", []Pair{empty}},
		{"bad uri", []Pair{garbage}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(tt.pairs)
			if !errors.Is(err, errors.ErrCodeAssembly) {
				t.Errorf("error = %v, want ASSEMBLY_FAILED", err)
			}
		})
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	doc, err := Assemble(pairs(3))
	if err != nil {
		t.Fatal(err)
	}

	path, err := doc.Save(dir, "alle-grafieken")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "alle-grafieken.docx"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	report, err := InspectFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Images) != 3 {
		t.Errorf("images = %d", len(report.Images))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestSaveRejectsBadFilename(t *testing.T) {
	doc, _ := Assemble(pairs(1))
	if _, err := doc.Save(t.TempDir(), "../escape"); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("error = %v, want INVALID_PATH", err)
	}
}

func TestInspectRejectsNonZip(t *testing.T) {
	if _, err := InspectBytes([]byte("plain text")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v", err)
	}
}
