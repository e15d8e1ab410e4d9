// Package table holds the decoded form of CRDB responses: an ordered
// sequence of measurement rows with fixed, typed columns.
package table

import (
	"sort"
)

// ADSURL is the template for bibliographic reference links.
const ADSURL = "https://ui.adsabs.harvard.edu/abs/"

// Measurement is one row of a CRDB table. Energies are in GeV or GV, solar
// modulation phi in MV, distances in AU. Pairs hold the lower then upper
// bound; error pairs are always non-negative.
type Measurement struct {
	Quantity     string     `json:"quantity"`
	Exp          string     `json:"exp,omitempty"`
	ExpType      string     `json:"exp_type,omitempty"`
	SubExp       string     `json:"sub_exp"`
	ERelErr      float64    `json:"e_relerr"`
	EType        string     `json:"e_type"`
	E            float64    `json:"e"`
	EBin         [2]float64 `json:"e_bin"`
	Value        float64    `json:"value"`
	ErrSta       [2]float64 `json:"err_sta"`
	ErrSys       [2]float64 `json:"err_sys"`
	ADS          string     `json:"ads"`
	Phi          float64    `json:"phi"`
	Distance     float64    `json:"distance"`
	Datetime     string     `json:"datetime"`
	IsUpperLimit bool       `json:"is_upper_limit"`
}

// Table is an ordered sequence of rows in server response order.
type Table []Measurement

// Mask selects rows of a table by index.
type Mask []bool

// Count returns the number of selected rows.
func (m Mask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t) }

// Select returns the rows whose mask entry is true. Rows past the end of the
// mask are not selected.
func (t Table) Select(mask Mask) Table {
	out := make(Table, 0, mask.Count())
	for i, m := range t {
		if i < len(mask) && mask[i] {
			out = append(out, m)
		}
	}
	return out
}

// Filter returns the rows for which keep reports true.
func (t Table) Filter(keep func(Measurement) bool) Table {
	out := make(Table, 0, len(t))
	for _, m := range t {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// Where returns a mask of the rows for which pred reports true.
func (t Table) Where(pred func(Measurement) bool) Mask {
	mask := make(Mask, len(t))
	for i, m := range t {
		mask[i] = pred(m)
	}
	return mask
}

// Quantities returns the distinct quantity names, sorted.
func (t Table) Quantities() []string {
	return t.distinct(func(m Measurement) string { return m.Quantity })
}

// SubExps returns the distinct sub-experiment labels, sorted.
func (t Table) SubExps() []string {
	return t.distinct(func(m Measurement) string { return m.SubExp })
}

// ADSKeys returns the distinct bibliographic keys, sorted.
func (t Table) ADSKeys() []string {
	return t.distinct(func(m Measurement) string { return m.ADS })
}

// ReferenceURLs returns one ADS link per distinct bibliographic key, in key
// order.
func (t Table) ReferenceURLs() []string {
	keys := t.ADSKeys()
	urls := make([]string, len(keys))
	for i, k := range keys {
		urls[i] = ADSURL + k
	}
	return urls
}

// Energies returns the e column.
func (t Table) Energies() []float64 {
	return t.column(func(m Measurement) float64 { return m.E })
}

// Values returns the value column.
func (t Table) Values() []float64 {
	return t.column(func(m Measurement) float64 { return m.Value })
}

func (t Table) column(get func(Measurement) float64) []float64 {
	out := make([]float64, len(t))
	for i, m := range t {
		out[i] = get(m)
	}
	return out
}

func (t Table) distinct(get func(Measurement) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range t {
		k := get(m)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Concat joins tables in argument order.
func Concat(tables ...Table) Table {
	n := 0
	for _, t := range tables {
		n += len(t)
	}
	out := make(Table, 0, n)
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}
