package table

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/teranos/crdb/errors"
)

// WriteCSV encodes t in the layout of s, preceded by a "#" header naming the
// columns. The output decodes back with Decode(lines, s); columns s discards
// are written empty.
func WriteCSV(w io.Writer, t Table, s Schema) error {
	if _, err := io.WriteString(w, "# "+strings.Join(s.Columns(), ",")+"\n"); err != nil {
		return errors.Wrap(err, "failed to write csv header")
	}
	cw := csv.NewWriter(w)
	rec := make([]string, len(s.slots))
	for i := range t {
		for j, sl := range s.slots {
			rec[j] = ""
			if sl.get != nil {
				rec[j] = sl.get(&t[i])
			}
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "failed to write csv row %d", i)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv")
}
