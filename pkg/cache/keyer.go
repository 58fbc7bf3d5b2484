package cache

// ArtifactKeyOpts are the conversion settings that change an artifact.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`             // "png" or "svg"
	Backend string  `json:"backend,omitempty"`  // raster backend name
	Scale   float64 `json:"scale,omitempty"`    // raster scale
	BasePx  float64 `json:"base_px,omitempty"`  // vector font base size
	Width   int     `json:"width,omitempty"`
	Height  int     `json:"height,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a converted chart. specHash identifies
	// the chart content (see HashValue).
	ArtifactKey(specHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(specHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, specHash, opts)
}
