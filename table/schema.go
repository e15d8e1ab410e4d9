package table

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/query"
)

// slot maps one physical CSV field to a Measurement column. A nil set
// discards the field on decode and a nil get writes it empty.
type slot struct {
	name string
	set  func(m *Measurement, v string) error
	get  func(m *Measurement) string
}

// Schema is the physical column layout of one response format.
type Schema struct {
	Format string
	slots  []slot
}

// Fields returns the number of physical fields per row.
func (s Schema) Fields() int { return len(s.slots) }

// Columns returns the wire column names in physical order. Pair columns
// appear twice; discarded columns are included.
func (s Schema) Columns() []string {
	out := make([]string, len(s.slots))
	for i, sl := range s.slots {
		out[i] = sl.name
	}
	return out
}

func text(name string, field func(*Measurement) *string) slot {
	return slot{
		name: name,
		set: func(m *Measurement, v string) error {
			*field(m) = v
			return nil
		},
		get: func(m *Measurement) string { return *field(m) },
	}
}

func number(name string, field func(*Measurement) *float64) slot {
	return slot{
		name: name,
		set: func(m *Measurement, v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return errors.Newf("column %s: cannot parse %q as a number", name, v)
			}
			*field(m) = f
			return nil
		},
		get: func(m *Measurement) string { return strconv.FormatFloat(*field(m), 'g', -1, 64) },
	}
}

func flag(name string, field func(*Measurement) *bool) slot {
	return slot{
		name: name,
		set: func(m *Measurement, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return errors.Newf("column %s: cannot parse %q as 0/1", name, v)
			}
			*field(m) = n != 0
			return nil
		},
		get: func(m *Measurement) string {
			if *field(m) {
				return "1"
			}
			return "0"
		},
	}
}

func skip(name string) slot { return slot{name: name} }

var (
	colQuantity = text("quantity", func(m *Measurement) *string { return &m.Quantity })
	colSubExp   = text("sub_exp", func(m *Measurement) *string { return &m.SubExp })
	colEType    = text("e_type", func(m *Measurement) *string { return &m.EType })
	colADS      = text("ads", func(m *Measurement) *string { return &m.ADS })
	colDatetime = text("datetime", func(m *Measurement) *string { return &m.Datetime })
	colE        = number("e", func(m *Measurement) *float64 { return &m.E })
	colEBinLo   = number("e_bin", func(m *Measurement) *float64 { return &m.EBin[0] })
	colEBinHi   = number("e_bin", func(m *Measurement) *float64 { return &m.EBin[1] })
	colValue    = number("value", func(m *Measurement) *float64 { return &m.Value })
	colErrStaLo = number("err_sta", func(m *Measurement) *float64 { return &m.ErrSta[0] })
	colErrStaHi = number("err_sta", func(m *Measurement) *float64 { return &m.ErrSta[1] })
	colErrSysLo = number("err_sys", func(m *Measurement) *float64 { return &m.ErrSys[0] })
	colErrSysHi = number("err_sys", func(m *Measurement) *float64 { return &m.ErrSys[1] })
	colPhi      = number("phi", func(m *Measurement) *float64 { return &m.Phi })
	colDistance = number("distance", func(m *Measurement) *float64 { return &m.Distance })
	colUpper    = flag("is_upper_limit", func(m *Measurement) *bool { return &m.IsUpperLimit })
)

// Compact is the layout of format=csv, also used by the bulk export.
var Compact = Schema{
	Format: query.FormatCSV,
	slots: []slot{
		colQuantity, colSubExp, colEType, colE, colEBinLo, colEBinHi, colValue,
		colErrStaLo, colErrStaHi, colErrSysLo, colErrSysHi,
		colADS, colPhi, colDistance, colDatetime, colUpper,
	},
}

// AsImport is the layout of format=csv-asimport.
var AsImport = Schema{
	Format: query.FormatCSVAsImport,
	slots: []slot{
		text("exp", func(m *Measurement) *string { return &m.Exp }),
		text("exp_type", func(m *Measurement) *string { return &m.ExpType }),
		skip("exp_html"),
		skip("exp_startyear"),
		colSubExp,
		skip("subexp_description"),
		number("e_relerr", func(m *Measurement) *float64 { return &m.ERelErr }),
		skip("subexp_info"),
		colDistance, colDatetime, colADS,
		skip("publi_dataorigin"),
		colQuantity, colEType, colE, colEBinLo, colEBinHi, colValue,
		colErrStaLo, colErrStaHi, colErrSysLo, colErrSysHi,
		colUpper, colPhi,
	},
}

// SchemaFor returns the schema decoding format. The usine and galprop
// formats have no schema; their responses are used as raw lines.
func SchemaFor(format string) (Schema, bool) {
	switch format {
	case query.FormatCSV:
		return Compact, true
	case query.FormatCSVAsImport:
		return AsImport, true
	}
	return Schema{}, false
}

// Decode parses response lines into a table.
//
// A response of exactly one non-blank line is the service's error message
// and is returned as a server error. Otherwise a leading run of "#" comment
// lines and any trailing blank lines are dropped and the rest is parsed as
// quoted CSV. Every row must carry exactly s.Fields() fields. After parsing,
// "&amp;" in sub-experiment labels becomes "&" and error bounds are made
// non-negative. Decoding is all-or-nothing.
func Decode(lines []string, s Schema) (Table, error) {
	if len(lines) == 1 && strings.TrimSpace(lines[0]) != "" {
		return nil, errors.NewServerError(lines[0])
	}

	start := 0
	for start < len(lines) && strings.HasPrefix(lines[start], "#") {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if end <= start {
		return nil, errors.NewEmptyResponseError()
	}

	r := csv.NewReader(strings.NewReader(strings.Join(lines[start:end], "\n")))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	var t Table
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, errors.NewMalformedRowError(start+pe.StartLine, "%s", pe.Err)
			}
			return nil, errors.Wrap(err, "failed to read csv")
		}
		line, _ := r.FieldPos(0)
		line += start

		if len(rec) != len(s.slots) {
			return nil, errors.NewMalformedRowError(line,
				"expected %d fields for format %s, got %d", len(s.slots), s.Format, len(rec))
		}
		var m Measurement
		for i, sl := range s.slots {
			if sl.set == nil {
				continue
			}
			if err := sl.set(&m, rec[i]); err != nil {
				return nil, errors.NewMalformedRowError(line, "%s", err)
			}
		}
		t = append(t, normalize(m))
	}
	if len(t) == 0 {
		return nil, errors.NewEmptyResponseError()
	}
	return t, nil
}

func normalize(m Measurement) Measurement {
	m.SubExp = strings.ReplaceAll(m.SubExp, "&amp;", "&")
	for i := range 2 {
		m.ErrSta[i] = math.Abs(m.ErrSta[i])
		m.ErrSys[i] = math.Abs(m.ErrSys[i])
	}
	return m
}
