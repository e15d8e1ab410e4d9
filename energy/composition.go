// Package energy converts CRDB tables between the rigidity (R), kinetic
// energy (EK) and kinetic energy per nucleon (EKN) bases.
//
// Conversion needs the charge Z and nucleon number A of each quantity. A is
// known exactly for isotopes; for elements it is the mean over the
// solar-system isotopic composition of Lodders, ApJ 591, 1220 (2003).
package energy

import (
	"bufio"
	"bytes"
	_ "embed"
	"regexp"
	"strconv"
	"sync"
)

//go:embed solarsystem_abundances2003.dat
var abundanceData []byte

// Isotope is one entry of the solar-system composition: nucleon number and
// abundance in arbitrary units.
type Isotope struct {
	A         int
	Abundance float64
}

var isotopeLine = regexp.MustCompile(`^ *([0-9]+)([A-Za-z]+)\s*[0-9.]+\s*([0-9.e+-]+)`)

var composition = sync.OnceValue(func() map[string][]Isotope {
	out := make(map[string][]Isotope)
	sc := bufio.NewScanner(bytes.NewReader(abundanceData))
	for sc.Scan() {
		m := isotopeLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		a, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		w, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}
		out[m[2]] = append(out[m[2]], Isotope{A: a, Abundance: w})
	}
	return out
})

// SolarSystemComposition maps element names to their isotopes in file
// order. The returned map is a fresh copy.
func SolarSystemComposition() map[string][]Isotope {
	src := composition()
	out := make(map[string][]Isotope, len(src))
	for k, v := range src {
		out[k] = append([]Isotope(nil), v...)
	}
	return out
}
