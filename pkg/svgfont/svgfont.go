// Package svgfont rewrites relative font sizes in SVG markup to pixels.
//
// Word and most standalone SVG viewers resolve em and rem against their own
// defaults rather than against the page the chart came from. Before a chart
// is embedded, every em/rem font size is converted to an absolute px value
// using a base font size (16px unless told otherwise).
//
// Both places a font size can live are handled:
//
//	<text font-size="1.5rem">      -> <text font-size="24px">
//	<text style="font-size:2em;">  -> <text style="font-size:32px;">
//
// Anything else (px, pt, keywords, malformed numbers) is left untouched.
package svgfont

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/matzehuels/chartdeck/pkg/errors"
)

// DefaultBasePx is the font size em and rem resolve against.
const DefaultBasePx = 16.0

var (
	relativeSize = regexp.MustCompile(`^([\d.]+)(em|rem)$`)
	styleSize    = regexp.MustCompile(`font-size\s*:\s*([^;]+)`)
)

// ConvertFontSizes parses svg, rewrites relative font sizes against basePx,
// and serializes the tree again.
func ConvertFontSizes(svg []byte, basePx float64) ([]byte, error) {
	if basePx <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "base font size must be positive, got %v", basePx)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(svg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeVectorFailed, err, "parse svg")
	}
	if doc.Root() == nil {
		return nil, errors.New(errors.ErrCodeVectorFailed, "parse svg: no root element")
	}

	ConvertTree(doc.Root(), basePx)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeVectorFailed, err, "serialize svg")
	}
	return out, nil
}

// ConvertTree rewrites root and all of its descendants in place and returns
// the number of values changed.
func ConvertTree(root *etree.Element, basePx float64) int {
	changed := convertElement(root, basePx)
	for _, el := range root.FindElements(".//*") {
		changed += convertElement(el, basePx)
	}
	return changed
}

func convertElement(el *etree.Element, basePx float64) int {
	changed := 0
	if a := el.SelectAttr("font-size"); a != nil {
		if v, ok := ToPx(a.Value, basePx); ok {
			a.Value = v
			changed++
		}
	}
	if a := el.SelectAttr("style"); a != nil {
		if v, n := ConvertStyle(a.Value, basePx); n > 0 {
			a.Value = v
			changed += n
		}
	}
	return changed
}

// ToPx converts an em/rem length to px. ok is false when the value is not a
// relative length or its number does not parse.
func ToPx(value string, basePx float64) (px string, ok bool) {
	m := relativeSize.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(n*basePx, 'f', -1, 64) + "px", true
}

// ConvertStyle rewrites every font-size declaration in an inline style.
// Only the value is replaced; separators and other declarations are kept
// byte for byte. It returns the new style and the number of changes.
func ConvertStyle(style string, basePx float64) (string, int) {
	matches := styleSize.FindAllStringSubmatchIndex(style, -1)
	if matches == nil {
		return style, 0
	}

	var b strings.Builder
	last, changed := 0, 0
	for _, m := range matches {
		start, end := m[2], m[3]
		raw := style[start:end]
		trimmed := strings.TrimSpace(raw)
		px, ok := ToPx(trimmed, basePx)
		if !ok {
			continue
		}
		lead := strings.Index(raw, trimmed)
		b.WriteString(style[last : start+lead])
		b.WriteString(px)
		last = start + lead + len(trimmed)
		changed++
	}
	b.WriteString(style[last:])
	return b.String(), changed
}
