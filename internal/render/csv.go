package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/SSK015/Workload-Profiling/pkg/types"
)

// CSVRenderer writes the series as plain rows, for when a chart is not
// wanted or further processing happens elsewhere.
type CSVRenderer struct{}

func (CSVRenderer) Extension() string { return ".csv" }

func (CSVRenderer) Render(w io.Writer, s types.Series) error {
	cw := csv.NewWriter(w)
	var rows [][]string

	switch s.Kind {
	case types.SERIES_BAR:
		rows = append(rows, []string{"label", "value"})
		for i, v := range s.Y {
			label := ""
			if i < len(s.Labels) {
				label = s.Labels[i]
			}
			rows = append(rows, []string{label, strconv.FormatFloat(v, 'f', -1, 64)})
		}
	case types.SERIES_SCATTER:
		rows = append(rows, []string{"x", "y"})
		for i := range s.X {
			rows = append(rows, []string{
				strconv.FormatFloat(s.X[i], 'f', -1, 64),
				strconv.FormatFloat(s.Y[i], 'f', -1, 64),
			})
		}
	default:
		return fmt.Errorf("csv: unsupported series kind %q", s.Kind)
	}

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
