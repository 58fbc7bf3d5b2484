package docx

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/chartdeck/pkg/buildinfo"
)

// Namespaces and relationship types.
const (
	nsContentTypes = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsPackageRels  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsW            = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP           = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA            = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic          = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsASVG         = "http://schemas.microsoft.com/office/drawing/2016/SVG/main"
	nsCP           = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDC           = "http://purl.org/dc/elements/1.1/"
	nsDCTerms      = "http://purl.org/dc/terms/"
	nsXSI          = "http://www.w3.org/2001/XMLSchema-instance"
	nsExtended     = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"

	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relExtendedProps  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	// svgBlipExt is the extension URI Word uses for the SVG blip.
	svgBlipExt = "{96DAC541-7B7A-43D3-8B79-37D633B846F1}"

	ctMain = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

// Part names.
const (
	partContentTypes = "[Content_Types].xml"
	partRels         = "_rels/.rels"
	partCore         = "docProps/core.xml"
	partApp          = "docProps/app.xml"
	partDocument     = "word/document.xml"
	partDocumentRels = "word/_rels/document.xml.rels"
)

// mediaNames returns the part names (relative to word/) of image n (1-based).
func mediaNames(n int) (png, svg string) {
	return fmt.Sprintf("media/image%d.png", n), fmt.Sprintf("media/image%d.svg", n)
}

// imageRelIDs returns the relationship ids of image n (1-based).
func imageRelIDs(n int) (png, svg string) {
	return fmt.Sprintf("rId%d", 2*n-1), fmt.Sprintf("rId%d", 2*n)
}

func (d *Document) writePackage(w io.Writer) error {
	zw := zip.NewWriter(w)
	modified := d.Created
	if modified.IsZero() {
		modified = time.Now()
	}

	add := func(name string, data []byte) error {
		f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return err
		}
		_, err = f.Write(data)
		return err
	}
	addXML := func(name string, doc *etree.Document) error {
		data, err := doc.WriteToBytes()
		if err != nil {
			return err
		}
		return add(name, data)
	}

	parts := []struct {
		name string
		doc  *etree.Document
	}{
		{partContentTypes, contentTypes()},
		{partRels, packageRels()},
		{partCore, d.coreProps()},
		{partApp, appProps()},
		{partDocument, d.document()},
		{partDocumentRels, d.documentRels()},
	}
	for _, p := range parts {
		if err := addXML(p.name, p.doc); err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
	}

	for i, img := range d.Images {
		png, svg := mediaNames(i + 1)
		if err := add("word/"+png, img.PNG); err != nil {
			return err
		}
		if err := add("word/"+svg, img.SVG); err != nil {
			return err
		}
	}
	return zw.Close()
}

func newXML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	return doc
}

func contentTypes() *etree.Document {
	doc := newXML()
	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", nsContentTypes)

	defaults := [][2]string{
		{"rels", "application/vnd.openxmlformats-package.relationships+xml"},
		{"xml", "application/xml"},
		{"png", "image/png"},
		{"svg", "image/svg+xml"},
	}
	for _, d := range defaults {
		e := types.CreateElement("Default")
		e.CreateAttr("Extension", d[0])
		e.CreateAttr("ContentType", d[1])
	}

	overrides := [][2]string{
		{"/" + partDocument, ctMain},
		{"/" + partCore, "application/vnd.openxmlformats-package.core-properties+xml"},
		{"/" + partApp, "application/vnd.openxmlformats-officedocument.extended-properties+xml"},
	}
	for _, o := range overrides {
		e := types.CreateElement("Override")
		e.CreateAttr("PartName", o[0])
		e.CreateAttr("ContentType", o[1])
	}
	return doc
}

func relationships() (*etree.Document, *etree.Element) {
	doc := newXML()
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsPackageRels)
	return doc, rels
}

func addRel(rels *etree.Element, id, typ, target string) {
	r := rels.CreateElement("Relationship")
	r.CreateAttr("Id", id)
	r.CreateAttr("Type", typ)
	r.CreateAttr("Target", target)
}

func packageRels() *etree.Document {
	doc, rels := relationships()
	addRel(rels, "rId1", relOfficeDocument, partDocument)
	addRel(rels, "rId2", relCoreProps, partCore)
	addRel(rels, "rId3", relExtendedProps, partApp)
	return doc
}

func (d *Document) documentRels() *etree.Document {
	doc, rels := relationships()
	for i := range d.Images {
		pngID, svgID := imageRelIDs(i + 1)
		png, svg := mediaNames(i + 1)
		addRel(rels, pngID, relImage, png)
		addRel(rels, svgID, relImage, svg)
	}
	return doc
}

func (d *Document) coreProps() *etree.Document {
	doc := newXML()
	cp := doc.CreateElement("cp:coreProperties")
	cp.CreateAttr("xmlns:cp", nsCP)
	cp.CreateAttr("xmlns:dc", nsDC)
	cp.CreateAttr("xmlns:dcterms", nsDCTerms)
	cp.CreateAttr("xmlns:xsi", nsXSI)

	if d.Title != "" {
		cp.CreateElement("dc:title").SetText(d.Title)
	}
	cp.CreateElement("dc:creator").SetText(d.Creator)
	created := cp.CreateElement("dcterms:created")
	created.CreateAttr("xsi:type", "dcterms:W3CDTF")
	created.SetText(d.Created.UTC().Format(time.RFC3339))
	return doc
}

func appProps() *etree.Document {
	doc := newXML()
	props := doc.CreateElement("Properties")
	props.CreateAttr("xmlns", nsExtended)
	props.CreateElement("Application").SetText(buildinfo.Application())
	return doc
}

// document builds word/document.xml. Sections end with a paragraph whose
// properties carry a sectPr; the last section's sectPr is the body's own.
func (d *Document) document() *etree.Document {
	doc := newXML()
	root := doc.CreateElement("w:document")
	for prefix, ns := range map[string]string{
		"w": nsW, "r": nsR, "wp": nsWP, "a": nsA, "pic": nsPic, "asvg": nsASVG,
	} {
		root.CreateAttr("xmlns:"+prefix, ns)
	}
	root.SortAttrs()

	body := root.CreateElement("w:body")
	last := len(d.Images) - 1
	for i, img := range d.Images {
		p := body.CreateElement("w:p")
		if i < last {
			pPr := p.CreateElement("w:pPr")
			sectPr(pPr)
		}
		drawing := p.CreateElement("w:r").CreateElement("w:drawing")
		inlinePicture(drawing, i+1, img)
	}
	sectPr(body)
	return doc
}

// sectPr appends an A4 portrait section break starting on a new page.
func sectPr(parent *etree.Element) {
	s := parent.CreateElement("w:sectPr")
	s.CreateElement("w:type").CreateAttr("w:val", "nextPage")
	pg := s.CreateElement("w:pgSz")
	pg.CreateAttr("w:w", "11906")
	pg.CreateAttr("w:h", "16838")
	m := s.CreateElement("w:pgMar")
	for _, side := range []string{"w:top", "w:right", "w:bottom", "w:left"} {
		m.CreateAttr(side, "1440")
	}
}

func inlinePicture(parent *etree.Element, n int, img Image) {
	cx := strconv.Itoa(img.Width * EMUPerPixel)
	cy := strconv.Itoa(img.Height * EMUPerPixel)
	id := strconv.Itoa(n)
	pngID, svgID := imageRelIDs(n)

	inline := parent.CreateElement("wp:inline")
	for _, a := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(a, "0")
	}
	extent := inline.CreateElement("wp:extent")
	extent.CreateAttr("cx", cx)
	extent.CreateAttr("cy", cy)
	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", id)
	docPr.CreateAttr("name", img.Name)
	inline.CreateElement("wp:cNvGraphicFramePr").
		CreateElement("a:graphicFrameLocks").
		CreateAttr("noChangeAspect", "1")

	data := inline.CreateElement("a:graphic").CreateElement("a:graphicData")
	data.CreateAttr("uri", nsPic)
	pic := data.CreateElement("pic:pic")

	nv := pic.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", id)
	cNvPr.CreateAttr("name", img.Name+".svg")
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	blip := fill.CreateElement("a:blip")
	blip.CreateAttr("r:embed", pngID)
	ext := blip.CreateElement("a:extLst").CreateElement("a:ext")
	ext.CreateAttr("uri", svgBlipExt)
	ext.CreateElement("asvg:svgBlip").CreateAttr("r:embed", svgID)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	spPr := pic.CreateElement("pic:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	aext := xfrm.CreateElement("a:ext")
	aext.CreateAttr("cx", cx)
	aext.CreateAttr("cy", cy)
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
}
