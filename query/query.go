// Package query builds request URLs for the CRDB REST endpoint.
//
// Options carries every parameter the service understands. Validate checks
// each option against its closed domain in a fixed order, and BuildURL emits
// the canonical query string, omitting options left at their defaults.
package query

import (
	"strconv"
	"strings"

	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/names"
)

// DefaultServerURL is the public CRDB service.
const DefaultServerURL = "http://lpsc.in2p3.fr/crdb"

// Output formats understood by the service.
const (
	FormatUsine       = "usine"
	FormatGalprop     = "galprop"
	FormatCSV         = "csv"
	FormatCSVAsImport = "csv-asimport"
)

// Closed option domains, in the order the service documents them.
var (
	EnergyTypes     = []string{"EKN", "EK", "R", "ETOT", "ETOTN"}
	TimeSeriesModes = []string{"no", "only", "all"}
	Formats         = []string{FormatUsine, FormatGalprop, FormatCSV, FormatCSVAsImport}
	Modulations     = []string{"USO05", "USO17", "GHE17"}
)

// MaxFluxRescaling is the largest accepted flux_rescaling exponent.
const MaxFluxRescaling = 2.5

// Options is an immutable bundle of query parameters. Use Defaults to obtain
// the service defaults; the zero value requests combo_level=0 and
// energy_convert_level=0.
type Options struct {
	Quantity           string  `json:"quantity" mapstructure:"quantity"`
	EnergyType         string  `json:"energy_type" mapstructure:"energy_type"`
	ComboLevel         int     `json:"combo_level" mapstructure:"combo_level"`
	EnergyConvertLevel int     `json:"energy_convert_level" mapstructure:"energy_convert_level"`
	FluxRescaling      float64 `json:"flux_rescaling" mapstructure:"flux_rescaling"`
	ExpDates           string  `json:"exp_dates,omitempty" mapstructure:"exp_dates"`
	EnergyStart        float64 `json:"energy_start" mapstructure:"energy_start"`
	EnergyStop         float64 `json:"energy_stop" mapstructure:"energy_stop"`
	TimeStart          string  `json:"time_start,omitempty" mapstructure:"time_start"`
	TimeStop           string  `json:"time_stop,omitempty" mapstructure:"time_stop"`
	TimeSeries         string  `json:"time_series,omitempty" mapstructure:"time_series"`
	Format             string  `json:"format,omitempty" mapstructure:"format"`
	Modulation         string  `json:"modulation,omitempty" mapstructure:"modulation"`
	ServerURL          string  `json:"server_url" mapstructure:"server_url"`
}

// Defaults returns the options the service applies when a parameter is absent.
func Defaults() Options {
	return Options{
		EnergyType:         "R",
		ComboLevel:         1,
		EnergyConvertLevel: 1,
		ServerURL:          DefaultServerURL,
	}
}

// WithQuantity returns a copy of o requesting quantity q.
func (o Options) WithQuantity(q string) Options {
	o.Quantity = q
	return o
}

// WithFormat returns a copy of o requesting output format f.
func (o Options) WithFormat(f string) Options {
	o.Format = f
	return o
}

// Validate checks every option and returns the first failure. The quantity
// is checked first, then energy_type, combo_level, energy_convert_level,
// flux_rescaling, time_series, format and modulation.
func (o Options) Validate() error {
	if _, _, err := names.Validate(o.Quantity); err != nil {
		return err
	}
	return o.ValidateParams()
}

// ValidateParams checks every option except the quantity. Configuration
// defaults are validated this way since they carry no quantity.
func (o Options) ValidateParams() error {
	if !contains(EnergyTypes, strings.ToUpper(o.EnergyType)) {
		return errors.NewInvalidOptionError("energy_type must be one of %s", strings.Join(EnergyTypes, ","))
	}
	if o.ComboLevel < 0 || o.ComboLevel > 2 {
		return errors.NewInvalidOptionError("invalid combo_level %d", o.ComboLevel)
	}
	if o.EnergyConvertLevel < 0 || o.EnergyConvertLevel > 2 {
		return errors.NewInvalidOptionError("invalid energy_convert_level %d", o.EnergyConvertLevel)
	}
	// NaN fails both comparisons, so test for the accepted range.
	if !(o.FluxRescaling >= 0 && o.FluxRescaling <= MaxFluxRescaling) {
		return errors.NewInvalidOptionError("invalid flux_rescaling %g", o.FluxRescaling)
	}
	if o.TimeSeries != "" && !contains(TimeSeriesModes, o.TimeSeries) {
		return errors.NewInvalidOptionError("invalid time_series %s", o.TimeSeries)
	}
	if o.Format != "" && !contains(Formats, o.Format) {
		return errors.NewInvalidOptionError("invalid format %s", o.Format)
	}
	if o.Modulation != "" && !contains(Modulations, o.Modulation) {
		return errors.NewInvalidOptionError("invalid modulation %s", o.Modulation)
	}
	return nil
}

// BuildURL validates o and returns the request URL.
//
// Parameters are emitted in the order num, energy_type, den, combo_level,
// energy_convert_level, flux_rescaling, exp_dates, energy_start, energy_stop,
// time_start, time_stop, time_series, format, modulation. A parameter equal to
// its default (1 for the levels, 0 or "" otherwise) is omitted.
func BuildURL(o Options) (string, error) {
	num, den, err := names.Validate(o.Quantity)
	if err != nil {
		return "", err
	}
	if err := o.ValidateParams(); err != nil {
		return "", err
	}

	server := o.ServerURL
	if server == "" {
		server = DefaultServerURL
	}

	var params []string
	add := func(key, value string) {
		params = append(params, key+"="+value)
	}

	add("num", escapeName(num))
	add("energy_type", strings.ToUpper(o.EnergyType))
	if den != "" {
		add("den", escapeName(den))
	}
	if o.ComboLevel != 1 {
		add("combo_level", strconv.Itoa(o.ComboLevel))
	}
	if o.EnergyConvertLevel != 1 {
		add("energy_convert_level", strconv.Itoa(o.EnergyConvertLevel))
	}
	if o.FluxRescaling != 0 {
		add("flux_rescaling", formatFloat(o.FluxRescaling))
	}
	if o.ExpDates != "" {
		add("exp_dates", escapeText(o.ExpDates))
	}
	if o.EnergyStart != 0 {
		add("energy_start", formatFloat(o.EnergyStart))
	}
	if o.EnergyStop != 0 {
		add("energy_stop", formatFloat(o.EnergyStop))
	}
	if o.TimeStart != "" {
		add("time_start", escapeText(o.TimeStart))
	}
	if o.TimeStop != "" {
		add("time_stop", escapeText(o.TimeStop))
	}
	if o.TimeSeries != "" {
		add("time_series", o.TimeSeries)
	}
	if o.Format != "" {
		add("format", o.Format)
	}
	if o.Modulation != "" {
		add("modulation", o.Modulation)
	}

	return server + "/rest.php?" + strings.Join(params, "&"), nil
}

// "+" means space in a query string.
var nameEscaper = strings.NewReplacer("+", "%2B")

// Free text additionally must not terminate the pair or the query.
var textEscaper = strings.NewReplacer("+", "%2B", " ", "%20", "&", "%26", "#", "%23")

func escapeName(s string) string { return nameEscaper.Replace(s) }

func escapeText(s string) string { return textEscaper.Replace(s) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
