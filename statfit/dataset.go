// Package statfit provides the shared infrastructure for fitting
// statistical models by maximum likelihood: a column-major dataset type, a
// generic fitter interface, sampling covariance computation from the
// observed information, and a plain-text summary table.
package statfit

import "fmt"

// Dtype is the type of all data values used to fit models.
type Dtype = float64

// Dataset holds a column-major rectangular data array and its column names.
// A Dataset is read-only after construction and is never mutated by a
// model.
type Dataset struct {
	names []string
	data  [][]Dtype
}

// NewDataset constructs a Dataset from columns and their names.  The
// columns must all have the same length.
func NewDataset(data [][]Dtype, names []string) (Dataset, error) {

	if len(data) == 0 {
		return Dataset{}, fmt.Errorf("statfit: dataset has no columns")
	}
	if len(data) != len(names) {
		return Dataset{}, fmt.Errorf("statfit: %d columns but %d names", len(data), len(names))
	}

	n := len(data[0])
	for j, col := range data {
		if len(col) != n {
			return Dataset{}, fmt.Errorf("statfit: column '%s' has length %d, expected %d",
				names[j], len(col), n)
		}
	}

	return Dataset{names: names, data: data}, nil
}

// Names returns the column names.
func (ds Dataset) Names() []string {
	return ds.names
}

// Data returns the data columns.
func (ds Dataset) Data() [][]Dtype {
	return ds.data
}

// NumObs returns the number of rows in the dataset.
func (ds Dataset) NumObs() int {
	if len(ds.data) == 0 {
		return 0
	}
	return len(ds.data[0])
}

// Pos returns the position of the named column, or -1 if it is not
// present.
func (ds Dataset) Pos(name string) int {
	for j, na := range ds.names {
		if na == name {
			return j
		}
	}
	return -1
}

// Column returns the named column, or nil if it is not present.
func (ds Dataset) Column(name string) []Dtype {
	j := ds.Pos(name)
	if j == -1 {
		return nil
	}
	return ds.data[j]
}
