package points

import (
	"math/rand/v2"

	"github.com/SSK015/Workload-Profiling/internal/reservoir"
	"github.com/SSK015/Workload-Profiling/pkg/types"
)

type Point struct {
	Time float64
	Addr uint64
}

// PointsCollector keeps a uniform sample of at most maxPoints (time, address)
// pairs for scatter plots.
type PointsCollector struct {
	res *reservoir.Reservoir[Point]
}

func NewPointsCollector(maxPoints int, seed uint64) *PointsCollector {
	return &PointsCollector{
		res: reservoir.New[Point](maxPoints, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))),
	}
}

func (pc *PointsCollector) Update(s types.Sample) {
	pc.res.Add(Point{Time: s.Time, Addr: s.Addr})
}

func (pc *PointsCollector) Points() []Point { return pc.res.Items() }

func (pc *PointsCollector) Seen() uint64 { return pc.res.Seen() }

// Series lays the points out for a scatter renderer. A non-zero offset is
// subtracted from every address.
func (pc *PointsCollector) Series(title, ylabel string, offset uint64) types.Series {
	pts := pc.res.Items()
	s := types.Series{
		Kind:   types.SERIES_SCATTER,
		Title:  title,
		XLabel: "Time (sec)",
		YLabel: ylabel,
		X:      make([]float64, len(pts)),
		Y:      make([]float64, len(pts)),
	}
	for i, p := range pts {
		s.X[i] = p.Time
		s.Y[i] = float64(p.Addr - offset)
	}
	return s
}
