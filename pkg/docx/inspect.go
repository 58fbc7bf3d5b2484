package docx

import (
	"bytes"
	"io"
	"os"
	"path"
	"strconv"

	"github.com/beevik/etree"
	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/chartdeck/pkg/errors"
)

// Report describes the pictures found in a document package.
type Report struct {
	Sections int
	Images   []ImageInfo
}

// ImageInfo describes one inline picture.
type ImageInfo struct {
	Section int    // 1-based section holding the picture
	Name    string // docPr name
	PNG     string // fallback part name, "" when missing
	SVG     string // primary part name, "" when missing
	PNGSize int
	SVGSize int
	Width   int // declared extent in px
	Height  int
}

// HasBothEncodings reports whether the picture has an SVG and a PNG part.
func (i ImageInfo) HasBothEncodings() bool {
	return i.PNG != "" && i.SVG != "" && i.PNGSize > 0 && i.SVGSize > 0
}

// InspectFile opens and inspects a .docx file.
func InspectFile(name string) (*Report, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", name)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "stat %s", name)
	}
	return Inspect(f, st.Size())
}

// InspectBytes inspects an in-memory package.
func InspectBytes(data []byte) (*Report, error) {
	return Inspect(bytes.NewReader(data), int64(len(data)))
}

// Inspect reads a document package and lists its sections and pictures.
func Inspect(r io.ReaderAt, size int64) (*Report, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "not a zip package")
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	docXML, err := readPart(files, partDocument)
	if err != nil {
		return nil, err
	}
	relsXML, err := readPart(files, partDocumentRels)
	if err != nil {
		return nil, err
	}

	targets, err := parseRels(relsXML)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(docXML); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", partDocument)
	}
	body := doc.FindElement("/w:document/w:body")
	if body == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "%s has no body", partDocument)
	}

	report := &Report{}
	section := 1
	for _, p := range body.SelectElements("w:p") {
		for _, inline := range p.FindElements(".//wp:inline") {
			info := ImageInfo{Section: section}
			if docPr := inline.FindElement("wp:docPr"); docPr != nil {
				info.Name = docPr.SelectAttrValue("name", "")
			}
			if ext := inline.FindElement("wp:extent"); ext != nil {
				info.Width = emuToPx(ext.SelectAttrValue("cx", ""))
				info.Height = emuToPx(ext.SelectAttrValue("cy", ""))
			}
			if blip := inline.FindElement(".//a:blip"); blip != nil {
				info.PNG, info.PNGSize = resolve(files, targets, blip.SelectAttrValue("r:embed", ""))
			}
			if svg := inline.FindElement(".//asvg:svgBlip"); svg != nil {
				info.SVG, info.SVGSize = resolve(files, targets, svg.SelectAttrValue("r:embed", ""))
			}
			report.Images = append(report.Images, info)
		}
		if p.FindElement("w:pPr/w:sectPr") != nil {
			section++
		}
	}
	if body.SelectElement("w:sectPr") != nil {
		report.Sections = section
	} else {
		report.Sections = section - 1
	}
	return report, nil
}

func readPart(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "package has no %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "open %s", name)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", name)
	}
	return data, nil
}

func parseRels(data []byte) (map[string]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", partDocumentRels)
	}
	targets := make(map[string]string)
	for _, rel := range doc.FindElements("//Relationship") {
		targets[rel.SelectAttrValue("Id", "")] = rel.SelectAttrValue("Target", "")
	}
	return targets, nil
}

// resolve maps a relationship id to its part name and uncompressed size.
func resolve(files map[string]*zip.File, targets map[string]string, id string) (string, int) {
	target, ok := targets[id]
	if !ok {
		return "", 0
	}
	name := path.Join("word", target)
	f, ok := files[name]
	if !ok {
		return "", 0
	}
	return name, int(f.UncompressedSize64)
}

func emuToPx(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n / EMUPerPixel
}
