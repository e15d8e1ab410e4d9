package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/crdb/query"
)

// addQueryFlags registers one flag per query parameter, named as the
// service names them. Unset flags fall back to the configured defaults.
func addQueryFlags(cmd *cobra.Command) {
	d := query.Defaults()
	f := cmd.Flags()
	f.String("energy_type", d.EnergyType, "Energy basis: "+strings.Join(query.EnergyTypes, ", "))
	f.Int("combo_level", d.ComboLevel, "Combination level 0-2")
	f.Int("energy_convert_level", d.EnergyConvertLevel, "Energy conversion level 0-2")
	f.Float64("flux_rescaling", 0, "Multiply fluxes by E^x, 0 <= x <= 2.5")
	f.String("exp_dates", "", "Experiments and dates to select")
	f.Float64("energy_start", 0, "Lower energy bound, 0 for none")
	f.Float64("energy_stop", 0, "Upper energy bound, 0 for none")
	f.String("time_start", "", "Start of the data-taking period (YYYY or YYYY/MM)")
	f.String("time_stop", "", "End of the data-taking period")
	f.String("time_series", "", "Time series: "+strings.Join(query.TimeSeriesModes, ", "))
	f.String("format", "", "Response format: "+strings.Join(query.Formats, ", "))
	f.String("modulation", "", "Solar modulation model: "+strings.Join(query.Modulations, ", "))
	f.String("server_url", query.DefaultServerURL, "CRDB server URL")
	f.Float64("timeout", 0, "Request timeout in seconds (default from config, 120)")
}

// queryOptions merges the explicitly set flags of cmd over the configured
// defaults.
func (a *app) queryOptions(cmd *cobra.Command) query.Options {
	o := a.cfg.Options()
	f := cmd.Flags()

	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	num := func(name string, dst *float64) {
		if f.Changed(name) {
			*dst, _ = f.GetFloat64(name)
		}
	}
	level := func(name string, dst *int) {
		if f.Changed(name) {
			*dst, _ = f.GetInt(name)
		}
	}

	str("energy_type", &o.EnergyType)
	level("combo_level", &o.ComboLevel)
	level("energy_convert_level", &o.EnergyConvertLevel)
	num("flux_rescaling", &o.FluxRescaling)
	str("exp_dates", &o.ExpDates)
	num("energy_start", &o.EnergyStart)
	num("energy_stop", &o.EnergyStop)
	str("time_start", &o.TimeStart)
	str("time_stop", &o.TimeStop)
	str("time_series", &o.TimeSeries)
	str("format", &o.Format)
	str("modulation", &o.Modulation)
	str("server_url", &o.ServerURL)

	if f.Changed("timeout") {
		secs, _ := f.GetFloat64("timeout")
		a.cfg.Server.TimeoutSeconds = secs
	}
	return o
}
