package svgfont

import (
	"strings"
	"testing"

	"github.com/matzehuels/chartdeck/pkg/errors"
)

func TestToPx(t *testing.T) {
	tests := []struct {
		value  string
		base   float64
		want   string
		wantOK bool
	}{
		{"1.5rem", 16, "24px", true},
		{"2em", 10, "20px", true},
		{"0.75em", 10, "7.5px", true},
		{".5rem", 16, "8px", true},
		{"12px", 16, "", false},
		{"large", 16, "", false},
		{"1.2.3em", 16, "", false},
		{" 2em", 16, "", false},
		{"2EM", 16, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := ToPx(tt.value, tt.base)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ToPx(%q, %v) = %q, %v; want %q, %v", tt.value, tt.base, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestConvertStyle(t *testing.T) {
	tests := []struct {
		name  string
		style string
		base  float64
		want  string
		n     int
	}{
		{"example", "color:red;font-size:2em;", 10, "color:red;font-size:20px;", 1},
		{"spaces kept", "font-size : 1.5rem ; fill:#000", 16, "font-size : 24px ; fill:#000", 1},
		{"no trailing semicolon", "font-size:1em", 16, "font-size:16px", 1},
		{"px untouched", "font-size:12.0px;fill:#333", 16, "font-size:12.0px;fill:#333", 0},
		{"two declarations", "font-size:1em;x:y;font-size:2em", 10, "font-size:10px;x:y;font-size:20px", 2},
		{"no font size", "stroke:none", 16, "stroke:none", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := ConvertStyle(tt.style, tt.base)
			if got != tt.want || n != tt.n {
				t.Errorf("ConvertStyle(%q) = %q, %d; want %q, %d", tt.style, got, n, tt.want, tt.n)
			}
		})
	}
}

func TestConvertFontSizes(t *testing.T) {
	in := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">` +
		`<g font-size="1.5rem"><text style="color:red;font-size:2em;">a</text></g>` +
		`<text font-size="12px">b</text><text font-size="large">c</text>` +
		`</svg>`

	out, err := ConvertFontSizes([]byte(in), 16)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)

	for _, want := range []string{
		`font-size="24px"`,
		`style="color:red;font-size:32px;"`,
		`font-size="12px"`,
		`font-size="large"`,
		`viewBox="0 0 10 10"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %s:\n%s", want, s)
		}
	}
	if strings.Contains(s, "rem") || strings.Contains(s, "2em") {
		t.Errorf("relative sizes left in output:\n%s", s)
	}
}

func TestConvertFontSizesRootAttribute(t *testing.T) {
	out, err := ConvertFontSizes([]byte(`<svg font-size="1em"/>`), 12)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `font-size="12px"`) {
		t.Errorf("root not converted: %s", out)
	}
}

func TestConvertFontSizesErrors(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		base float64
		code errors.Code
	}{
		{"malformed", `<svg><g></svg>`, 16, errors.ErrCodeVectorFailed},
		{"empty", ``, 16, errors.ErrCodeVectorFailed},
		{"zero base", `<svg/>`, 0, errors.ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertFontSizes([]byte(tt.svg), tt.base)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}
