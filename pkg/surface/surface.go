// Package surface models the page area charts are drawn into.
//
// A [Surface] owns an ordered list of container elements. The chart renderer
// appends one element per chart and binds the live chart to it; exporters
// later read the element back through its [Content].
package surface

import (
	"io"
	"sync"

	"github.com/matzehuels/chartdeck/pkg/errors"
)

// Content is anything bound to an element that can draw itself.
type Content interface {
	// WriteSVG writes the vector rendition.
	WriteSVG(w io.Writer) error
	// WritePNG writes a raster rendition at scale times the natural size.
	WritePNG(w io.Writer, scale float64) error
}

// Surface is the container that chart elements are appended to.
type Surface interface {
	// Append creates a new, empty child element. IDs are unique per surface.
	Append(id string, width, height int) (*Element, error)
	// Reset drops every child element.
	Reset()
}

// Element is one container on a surface.
type Element struct {
	ID     string
	Width  int
	Height int

	mu      sync.RWMutex
	content Content
}

// Bind attaches the drawable content to the element.
func (e *Element) Bind(c Content) {
	e.mu.Lock()
	e.content = c
	e.mu.Unlock()
}

// Content returns the bound content, or nil before Bind.
func (e *Element) Content() Content {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.content
}

// WriteSVG writes the vector rendition of the bound content.
func (e *Element) WriteSVG(w io.Writer) error {
	c := e.Content()
	if c == nil {
		return errors.New(errors.ErrCodeNotFound, "element %s has no content", e.ID)
	}
	return c.WriteSVG(w)
}

// Memory is an in-process Surface.
type Memory struct {
	mu       sync.RWMutex
	elements []*Element
	byID     map[string]*Element
}

// NewMemory returns an empty surface.
func NewMemory() *Memory {
	return &Memory{byID: make(map[string]*Element)}
}

// Append implements Surface.
func (m *Memory) Append(id string, width, height int) (*Element, error) {
	if err := errors.ValidateElementID(id); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "element %s: invalid size %dx%d", id, width, height)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate element id %q", id)
	}
	el := &Element{ID: id, Width: width, Height: height}
	m.elements = append(m.elements, el)
	m.byID[id] = el
	return el, nil
}

// Reset implements Surface.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.elements = nil
	m.byID = make(map[string]*Element)
	m.mu.Unlock()
}

// Get returns the element with the given id.
func (m *Memory) Get(id string) (*Element, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	el, ok := m.byID[id]
	return el, ok
}

// Elements returns the children in append order.
func (m *Memory) Elements() []*Element {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Element, len(m.elements))
	copy(out, m.elements)
	return out
}

// Len returns the number of children.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.elements)
}
