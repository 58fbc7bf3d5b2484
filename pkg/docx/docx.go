// Package docx assembles chart snapshots into a Word document.
//
// Every chart becomes its own section holding one paragraph with one inline
// picture. The picture carries two encodings: the SVG is the primary image
// (an asvg:svgBlip extension that current Word versions render) and the PNG
// is the fallback blip older readers show instead.
//
// The package is a plain OOXML zip: content types, package relationships,
// core and app properties, the main document with its relationships, and
// the media parts.
package docx

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/raster"
)

const (
	// DefaultWidth and DefaultHeight are the declared picture extent in px.
	DefaultWidth  = 504
	DefaultHeight = 400

	// EMUPerPixel converts pixels (96 dpi) to English Metric Units.
	EMUPerPixel = 9525

	// Extension is the file extension of produced documents.
	Extension = ".docx"

	// MimeType is the media type of produced documents.
	MimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Pair is one converted chart: a PNG data URI and its SVG markup.
type Pair struct {
	Name   string // optional picture name, e.g. "chart-3"
	Raster string
	Vector []byte
}

// Image is one decoded picture of a document.
type Image struct {
	Name   string
	PNG    []byte
	SVG    []byte
	Width  int
	Height int
}

// Document is an assembled document ready to be written.
type Document struct {
	Title   string
	Creator string
	Created time.Time
	Images  []Image
}

// Option configures Assemble.
type Option func(*Document)

// WithTitle sets the document title property.
func WithTitle(title string) Option {
	return func(d *Document) { d.Title = title }
}

// WithCreated sets the creation timestamp. Defaults to time.Now().
func WithCreated(t time.Time) Option {
	return func(d *Document) { d.Created = t }
}

// WithExtent sets the declared picture size in px.
func WithExtent(width, height int) Option {
	return func(d *Document) {
		for i := range d.Images {
			d.Images[i].Width, d.Images[i].Height = width, height
		}
	}
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// Assemble decodes the pairs into a document. Any undecodable pair fails the
// whole document.
func Assemble(pairs []Pair, opts ...Option) (*Document, error) {
	if len(pairs) == 0 {
		return nil, errors.New(errors.ErrCodeAssembly, "document needs at least one image")
	}

	d := &Document{Creator: "chartdeck", Created: time.Now()}
	for i, p := range pairs {
		mime, data, err := raster.ParseDataURI(p.Raster)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeAssembly, err, "image %d: raster", i+1)
		}
		if mime != raster.MimePNG || !bytes.HasPrefix(data, pngMagic) {
			return nil, errors.New(errors.ErrCodeAssembly, "image %d: raster is not a PNG (%s)", i+1, mime)
		}
		if len(bytes.TrimSpace(p.Vector)) == 0 {
			return nil, errors.New(errors.ErrCodeAssembly, "image %d: empty vector", i+1)
		}

		name := p.Name
		if name == "" {
			name = "chart"
		}
		d.Images = append(d.Images, Image{
			Name:   name,
			PNG:    data,
			SVG:    p.Vector,
			Width:  DefaultWidth,
			Height: DefaultHeight,
		})
	}

	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// WriteTo writes the zip package to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := d.writePackage(cw); err != nil {
		return cw.n, errors.Wrap(errors.ErrCodeAssembly, err, "write document")
	}
	return cw.n, nil
}

// Bytes returns the encoded package.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the document to dir/<filename>.docx and returns the path.
// The file is written under a temporary name and renamed, so a failed save
// never leaves a truncated document behind.
func (d *Document) Save(dir, filename string) (string, error) {
	if err := errors.ValidateFilename(filename); err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(errors.ErrCodeAssembly, err, "create %s", dir)
	}

	path := filepath.Join(dir, filename+Extension)
	tmp, err := os.CreateTemp(dir, "."+filename+"-*.tmp")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeAssembly, err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := d.WriteTo(tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeAssembly, err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrap(errors.ErrCodeAssembly, err, "rename to %s", path)
	}
	return path, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
