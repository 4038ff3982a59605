package statfit

import (
	"fmt"
	"strings"
)

// SummaryTable renders the summary of a fitted model as fixed-width text.
// Columns hold either []string or []float64 values; float columns are
// formatted with four decimal places.
type SummaryTable struct {

	// Title of the table
	Title string

	// Values at the top of the summary, rendered in two columns
	Top []string

	// Column names
	ColNames []string

	// Cols[j] is the j'th column, either []string or []float64
	Cols []interface{}

	// Messages displayed below the table
	Msg []string
}

func (s *SummaryTable) formatCol(j int) []string {

	switch col := s.Cols[j].(type) {
	case []string:
		w := len(s.ColNames[j])
		for _, x := range col {
			if len(x) > w {
				w = len(x)
			}
		}
		out := make([]string, len(col))
		for i, x := range col {
			out[i] = fmt.Sprintf("%-*s", w, x)
		}
		return out
	case []float64:
		out := make([]string, len(col))
		for i, x := range col {
			out[i] = fmt.Sprintf("%10.4f", x)
		}
		return out
	default:
		panic(fmt.Sprintf("statfit: unsupported column type %T", col))
	}
}

// String returns the table as a string.
func (s *SummaryTable) String() string {

	var tab [][]string
	var wx []int
	for j := range s.Cols {
		u := s.formatCol(j)
		tab = append(tab, u)
		w := len(s.ColNames[j])
		if len(u) > 0 && len(u[0]) > w {
			w = len(u[0])
		}
		wx = append(wx, w)
	}

	// Total width of the table
	tw := 0
	for _, w := range wx {
		tw += w + 2
	}
	if tw < len(s.Title) {
		tw = len(s.Title)
	}

	line := strings.Repeat("-", tw) + "\n"

	var b strings.Builder

	// Center the title
	pad := (tw - len(s.Title)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(s.Title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", tw) + "\n")

	for _, x := range s.Top {
		b.WriteString(x)
		b.WriteString("\n")
	}
	b.WriteString(line)

	for j, c := range s.ColNames {
		fmt.Fprintf(&b, "%*s", wx[j]+2, c)
	}
	b.WriteString("\n")
	b.WriteString(line)

	var nrow int
	if len(tab) > 0 {
		nrow = len(tab[0])
	}
	for i := 0; i < nrow; i++ {
		for j := range tab {
			fmt.Fprintf(&b, "%*s", wx[j]+2, tab[j][i])
		}
		b.WriteString("\n")
	}
	b.WriteString(line)

	for _, msg := range s.Msg {
		b.WriteString(msg)
		b.WriteString("\n")
	}

	return b.String()
}
