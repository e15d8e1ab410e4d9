package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/table"
)

var tableHeader = []string{
	"quantity", "sub_exp", "e_type", "e", "e_bin", "value", "err_sta", "err_sys", "ads", "upper",
}

// RenderTable writes t to w as an aligned text table. At most maxRows rows
// are shown, followed by a line counting the rest; maxRows <= 0 shows all.
func RenderTable(w io.Writer, t table.Table, maxRows int) error {
	shown := t
	if maxRows > 0 && len(t) > maxRows {
		shown = t[:maxRows]
	}

	data := pterm.TableData{tableHeader}
	for _, m := range shown {
		data = append(data, []string{
			m.Quantity,
			m.SubExp,
			m.EType,
			num(m.E),
			pair(m.EBin),
			num(m.Value),
			pair(m.ErrSta),
			pair(m.ErrSys),
			m.ADS,
			upper(m.IsUpperLimit),
		})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(out, "\n")); err != nil {
		return err
	}
	if rest := len(t) - len(shown); rest > 0 {
		_, err = fmt.Fprintf(w, "... %d more rows (%d total)\n", rest, len(t))
	}
	return err
}

// Count is one labelled row count.
type Count struct {
	Label string `json:"label" yaml:"label"`
	Rows  int    `json:"rows" yaml:"rows"`
}

// RenderCounts writes label/row-count pairs in the given order.
func RenderCounts(w io.Writer, header string, counts []Count) error {
	data := pterm.TableData{{header, "rows"}}
	for _, c := range counts {
		data = append(data, []string{c.Label, strconv.Itoa(c.Rows)})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	_, err = fmt.Fprintln(w, strings.TrimRight(out, "\n"))
	return err
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }

func pair(p [2]float64) string { return num(p[0]) + ".." + num(p[1]) }

func upper(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
