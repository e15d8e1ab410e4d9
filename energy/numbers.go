package energy

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/teranos/crdb/names"
)

// Numbers are the conversion numbers of one quantity. A is NaN when the
// nucleon number is undefined, as for leptons. Exact is false when A is an
// abundance-weighted mean.
type Numbers struct {
	Z     int
	A     float64
	Exact bool
}

var isotopeName = regexp.MustCompile(`^([0-9]+)([A-Z][a-z]?)$`)

var conversionNumbers = sync.OnceValue(func() map[string]Numbers {
	out := make(map[string]Numbers)
	for _, k := range []string{"e-", "e+", "e-+e+"} {
		out[k] = Numbers{Z: 1, A: math.NaN(), Exact: true}
	}

	comp := composition()
	elements := names.Elements()
	for el, z := range elements {
		out[el] = Numbers{Z: z, A: meanA(comp[el])}
	}

	for _, n := range names.Valid {
		m := isotopeName.FindStringSubmatch(n)
		if m == nil {
			continue
		}
		z, ok := elements[m[2]]
		if !ok {
			continue
		}
		a, _ := strconv.Atoi(m[1])
		out[n] = Numbers{Z: z, A: float64(a), Exact: true}
	}

	for _, n := range names.Valid {
		base, ok := strings.CutSuffix(n, "-bar")
		if !ok {
			continue
		}
		if num, ok := out[base]; ok {
			out[n] = num
		}
	}
	return out
})

// meanA returns the abundance-weighted mean nucleon number, or NaN without
// isotope data.
func meanA(isotopes []Isotope) float64 {
	var sum, weight float64
	for _, iso := range isotopes {
		sum += float64(iso.A) * iso.Abundance
		weight += iso.Abundance
	}
	if weight == 0 {
		return math.NaN()
	}
	return sum / weight
}

// ConversionNumbers maps quantity names to their conversion numbers. Leptons
// have Z=1 and no A, elements the mean A of their solar-system isotopes,
// isotopes their exact A, and "-bar" names the numbers of their matter
// counterpart. The returned map is a fresh copy.
func ConversionNumbers() map[string]Numbers {
	src := conversionNumbers()
	out := make(map[string]Numbers, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Lookup returns the conversion numbers of quantity.
func Lookup(quantity string) (Numbers, bool) {
	n, ok := conversionNumbers()[quantity]
	return n, ok
}
