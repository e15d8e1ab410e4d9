// Package experiment groups sub-experiment labels into canonical
// experiments.
//
// A label is matched against an ordered prefix list; the first prefix it
// starts with becomes its bucket. Labels matching no prefix bucket to the
// text before their first "(", so "HEAO3-C2(1979/10-1980/06)" and
// "HEAO3-C2(1980/01)" share the bucket "HEAO3-C2".
package experiment

import (
	"sort"
	"strings"

	"github.com/teranos/crdb/table"
)

// Combine is the default prefix list. Order is precedence.
var Combine = []string{
	"AESOP",
	"AMS01",
	"ATIC",
	"BESS",
	"BETS",
	"Balloon",
	"CAPRICE",
	"CREAM",
	"Fermi-LAT",
	"Gemini",
	"H.E.S.S.",
	"HEAO3",
	"HEAT",
	"IMAX",
	"IMP",
	"ISEE3",
	"IceCube",
	"KASCADE-Grande",
	"MASS",
	"NUCLEON",
	"OGO",
	"PAMELA",
	"PierreAugerObservatory",
	"Pioneer",
	"SMILI",
	"TRACER",
	"TUNKA",
	"TelescopeArray",
	"Tibet",
	"Trek",
	"UHECR-LDEF",
	"Ulysses",
	"Voyager",
}

// DefaultCombine returns a copy of Combine for callers that extend it.
func DefaultCombine() []string {
	return append([]string(nil), Combine...)
}

// Label returns the bucket of a sub-experiment label.
func Label(subExp string, combine []string) string {
	for _, c := range combine {
		if strings.HasPrefix(subExp, c) {
			return c
		}
	}
	if i := strings.IndexByte(subExp, '('); i >= 0 {
		return strings.TrimSpace(subExp[:i])
	}
	return strings.TrimSpace(subExp)
}

// Buckets maps every distinct sub-experiment label in t to its bucket.
func Buckets(t table.Table, combine []string) map[string]string {
	out := make(map[string]string)
	for _, m := range t {
		if _, ok := out[m.SubExp]; !ok {
			out[m.SubExp] = Label(m.SubExp, combine)
		}
	}
	return out
}

// Masks returns one row mask per bucket, each of length t.Len().
func Masks(t table.Table, combine []string) map[string]table.Mask {
	buckets := Buckets(t, combine)
	out := make(map[string]table.Mask)
	for i, m := range t {
		label := buckets[m.SubExp]
		mask, ok := out[label]
		if !ok {
			mask = make(table.Mask, len(t))
			out[label] = mask
		}
		mask[i] = true
	}
	return out
}

// Labels returns the keys of masks in sorted order.
func Labels(masks map[string]table.Mask) []string {
	out := make([]string, 0, len(masks))
	for k := range masks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
