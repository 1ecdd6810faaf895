package types

import "io"

const (
	SERIES_BAR     = "bar"
	SERIES_SCATTER = "scatter"
)

// Series is what the analysis hands to a renderer. Bar series use Labels and
// Y; scatter series use X and Y.
type Series struct {
	Kind   string
	Title  string
	XLabel string
	YLabel string
	Labels []string
	X      []float64
	Y      []float64
	// Optional fixed Y axis, ignored when YMax <= YMin.
	YMin float64
	YMax float64
}

type Renderer interface {
	Render(w io.Writer, s Series) error
	Extension() string
}
