// Package names holds the closed vocabulary of quantity names the service
// accepts, and validates quantities and ratios against it.
package names

import (
	"sort"
	"strings"

	"github.com/teranos/crdb/errors"
)

// Valid lists every recognized quantity name. The first 99 entries are the
// chemical elements in order of atomic number, H through Es.
var Valid = []string{
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne", "Na", "Mg", "Al", "Si", "P",
	"S", "Cl", "Ar", "K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru",
	"Rh", "Pd", "Ag", "Cd", "In", "Sn", "Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce",
	"Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb", "Lu", "Hf",
	"Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra", "Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Zgeq1",
	"Zgeq2", "Zgeq3", "Zgeq4", "Zgeq5", "Zgeq6", "Zgeq7", "Zgeq8", "H-bar", "He-bar",
	"Li-bar", "Be-bar", "B-bar", "C-bar", "N-bar", "O-bar", "Zgeq1-bar", "Zgeq2-bar",
	"Zgeq3-bar", "Zgeq4-bar", "Zgeq5-bar", "Zgeq6-bar", "Zgeq7-bar", "Zgeq8-bar",
	"1H-bar", "2H-bar", "3He-bar", "4He-bar", "6Li-bar", "9Be-bar", "11B-bar", "12C-bar",
	"14N-bar", "16O-bar", "e-", "e+", "NU_E", "NU_M", "NU_T", "GAMMA", "e-+e+", "SubFe",
	"1H", "2H", "3He", "4He", "6Li", "7Li", "7Be", "9Be", "10B", "10Be", "11B", "12C",
	"13C", "14N", "14C", "15N", "16O", "17O", "18O", "19F", "20Ne", "21Ne", "22Ne",
	"23Na", "24Mg", "25Mg", "26Mg", "26Al", "27Al", "28Si", "29Si", "30Si", "31P", "32S",
	"33S", "34S", "35Cl", "36S", "36Ar", "36Cl", "37Cl", "37Ar", "38Ar", "39K", "40Ar",
	"40Ca", "40K", "41K", "41Ca", "42Ca", "43Ca", "44Ca", "44Ti", "45Sc", "46Ti", "46Ca",
	"47Ti", "48Ti", "48Ca", "48Cr", "49Ti", "49V", "50Ti", "50Cr", "50V", "51V", "51Cr",
	"52Cr", "53Cr", "53Mn", "54Cr", "54Fe", "54Mn", "55Mn", "55Fe", "56Fe", "56Ni",
	"57Fe", "57Co", "58Fe", "58Ni", "59Co", "59Ni", "60Ni", "60Fe", "61Ni", "62Ni",
	"63Cu", "64Ni", "64Zn", "65Cu", "66Zn", "67Zn", "68Zn", "70Zn", "H-He-group",
	"N-group", "O-group", "Al-group", "Si-group", "Fe-group", "O-Fe-group", "C-Fe-group",
	"AllParticles", "<LnA>", "<X_max>", "X_mu_max", "<rho_mu_600>", "<rho_mu_800>",
	"<R_mu>", "LS-group", "HS-group", "Pt-group", "Pb-group", "Subactinides", "Actinides",
	"Z_33-34", "Z_35-36", "Z_37-38", "Z_39-40", "Z_41-42", "Z_43-44", "Z_45-46",
	"Z_47-48", "Z_49-50", "Z_51-52", "Z_53-54", "Z_55-56", "Z_57-58", "Z_59-60", "Zgeq70",
	"9Be+10Be",
}

// numElements is the number of element names at the head of Valid.
const numElements = 99

var valid = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Valid))
	for _, n := range Valid {
		m[n] = struct{}{}
	}
	return m
}()

// Elements maps element names to their atomic number Z. The returned map is
// a fresh copy.
func Elements() map[string]int {
	m := make(map[string]int, numElements)
	for i, n := range Valid[:numElements] {
		m[n] = i + 1
	}
	return m
}

// IsValid reports whether name is in the recognized set. The comparison is
// exact; callers trim whitespace first.
func IsValid(name string) bool {
	_, ok := valid[name]
	return ok
}

// Split separates a quantity into numerator and optional denominator, trimming
// surrounding whitespace on each side. It fails when more than one "/" is
// present. Names are not checked.
func Split(quantity string) (num, den string, err error) {
	parts := strings.Split(quantity, "/")
	if len(parts) > 2 {
		return "", "", errors.NewInvalidQuantityError("ratio contains more than one / operator")
	}
	num = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		den = strings.TrimSpace(parts[1])
	}
	return num, den, nil
}

// Validate checks a quantity such as "B/C" against the recognized set and
// returns its trimmed numerator and denominator. An empty denominator means
// the quantity is not a ratio.
func Validate(quantity string) (num, den string, err error) {
	num, den, err = Split(quantity)
	if err != nil {
		return "", "", err
	}
	if !IsValid(num) || (den != "" && !IsValid(den)) {
		err := errors.NewInvalidQuantityError("quantity %s is not valid", quantity)
		return "", "", errors.WithHint(err, "run 'crdb names' to list recognized names")
	}
	return num, den, nil
}

// Discover returns the distinct numerator and denominator names appearing in
// quantities, sorted. Entries that are not well-formed quantities are skipped.
func Discover(quantities []string) []string {
	seen := make(map[string]struct{})
	for _, q := range quantities {
		num, den, err := Split(q)
		if err != nil {
			continue
		}
		for _, n := range []string{num, den} {
			if n != "" {
				seen[n] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
