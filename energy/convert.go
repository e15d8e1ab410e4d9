package energy

import (
	"math"

	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/table"
)

// Energy bases Convert can target.
const (
	R   = "R"
	EK  = "EK"
	EKN = "EKN"
)

// Bases lists the convertible energy bases.
var Bases = []string{R, EK, EKN}

// factor returns the multiplier taking energies of quantity n from basis
// from to basis to, and whether it involves A. ok is false when from is not
// convertible.
func factor(from, to string, n Numbers) (f float64, usesA, ok bool) {
	z := float64(n.Z)
	a := n.A
	switch from + ">" + to {
	case "R>R", "EK>EK", "EKN>EKN":
		return 1, false, true
	case "R>EK":
		return z, false, true
	case "R>EKN":
		return z / a, true, true
	case "EK>R":
		return 1 / z, false, true
	case "EK>EKN":
		return 1 / a, true, true
	case "EKN>R":
		return a / z, true, true
	case "EKN>EK":
		return a, true, true
	}
	return math.NaN(), false, false
}

// Convert returns the rows of t expressed in basis target, which must be one
// of R, EK or EKN. Energies and bin edges are multiplied by the conversion
// factor; values and errors are divided by it.
//
// Rows in another basis, rows of quantities without conversion numbers, and
// rows whose converted value is NaN are dropped. When approximate is false,
// rows whose factor uses a mean nucleon number are dropped too. Converting a
// table already in target returns an equal table.
func Convert(t table.Table, target string, approximate bool) (table.Table, error) {
	switch target {
	case R, EK, EKN:
	default:
		return nil, errors.NewInvalidOptionError("invalid target %s, must be one of R, EK, EKN", target)
	}

	out := make(table.Table, 0, len(t))
	for _, m := range t {
		if m.EType == target {
			if !math.IsNaN(m.Value) {
				out = append(out, m)
			}
			continue
		}
		n, found := Lookup(m.Quantity)
		if !found {
			continue
		}
		f, usesA, ok := factor(m.EType, target, n)
		if !ok || (usesA && !n.Exact && !approximate) {
			continue
		}
		m = scale(m, f)
		m.EType = target
		if math.IsNaN(m.Value) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func scale(m table.Measurement, f float64) table.Measurement {
	m.E *= f
	m.Value /= f
	for i := range 2 {
		m.EBin[i] *= f
		m.ErrSta[i] /= f
		m.ErrSys[i] /= f
	}
	return m
}
