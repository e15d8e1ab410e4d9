package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/crdb/errors"
)

func TestBuildURLMinimal(t *testing.T) {
	url, err := BuildURL(Defaults().WithQuantity("H"))
	require.NoError(t, err)
	assert.Equal(t, "http://lpsc.in2p3.fr/crdb/rest.php?num=H&energy_type=R", url)
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name string
		opts func(o Options) Options
		want string
	}{
		{
			name: "ratio",
			opts: func(o Options) Options { o.Quantity = "B/C"; return o },
			want: "num=B&energy_type=R&den=C",
		},
		{
			name: "ratio with spaces",
			opts: func(o Options) Options { o.Quantity = " B / C "; return o },
			want: "num=B&energy_type=R&den=C",
		},
		{
			name: "plus is percent encoded",
			opts: func(o Options) Options { o.Quantity = "e+/e-+e+"; return o },
			want: "num=e%2B&energy_type=R&den=e-%2Be%2B",
		},
		{
			name: "energy type upper cased",
			opts: func(o Options) Options { o.Quantity = "Li"; o.EnergyType = "ekn"; return o },
			want: "num=Li&energy_type=EKN",
		},
		{
			name: "non-default levels",
			opts: func(o Options) Options {
				o.Quantity = "H"
				o.ComboLevel = 0
				o.EnergyConvertLevel = 2
				return o
			},
			want: "num=H&energy_type=R&combo_level=0&energy_convert_level=2",
		},
		{
			name: "every option in order",
			opts: func(o Options) Options {
				o.Quantity = "B/C"
				o.EnergyType = "EKN"
				o.ComboLevel = 2
				o.EnergyConvertLevel = 0
				o.FluxRescaling = 2.5
				o.ExpDates = "AMS02"
				o.EnergyStart = 10
				o.EnergyStop = 1000.5
				o.TimeStart = "2010/06"
				o.TimeStop = "2020"
				o.TimeSeries = "all"
				o.Format = FormatCSVAsImport
				o.Modulation = "USO17"
				return o
			},
			want: "num=B&energy_type=EKN&den=C&combo_level=2&energy_convert_level=0" +
				"&flux_rescaling=2.5&exp_dates=AMS02&energy_start=10&energy_stop=1000.5" +
				"&time_start=2010/06&time_stop=2020&time_series=all&format=csv-asimport&modulation=USO17",
		},
		{
			name: "free text escaped",
			opts: func(o Options) Options { o.Quantity = "H"; o.ExpDates = "AMS02 (2011&2016)"; return o },
			want: "num=H&energy_type=R&exp_dates=AMS02%20(2011%262016)",
		},
	}

	const prefix = "http://lpsc.in2p3.fr/crdb/rest.php?"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, err := BuildURL(tt.opts(Defaults()))
			require.NoError(t, err)
			assert.Equal(t, prefix+tt.want, url)
		})
	}
}

func TestBuildURLCustomServer(t *testing.T) {
	o := Defaults().WithQuantity("He")
	o.ServerURL = "http://localhost:8080/crdb"
	url, err := BuildURL(o)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/crdb/rest.php?num=He&energy_type=R", url)

	o.ServerURL = ""
	url, err = BuildURL(o)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL+"/rest.php?num=He&energy_type=R", url)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		opts func(o Options) Options
		msg  string
	}{
		{"quantity", func(o Options) Options { o.Quantity = "Foobar"; return o }, "quantity Foobar is not valid"},
		{"two slashes", func(o Options) Options { o.Quantity = "B/C/O"; return o }, "ratio contains more than one / operator"},
		{"energy type", func(o Options) Options { o.EnergyType = "Foobar"; return o }, "energy_type must be one of EKN,EK,R,ETOT,ETOTN"},
		{"combo level", func(o Options) Options { o.ComboLevel = 3; return o }, "invalid combo_level 3"},
		{"negative combo level", func(o Options) Options { o.ComboLevel = -1; return o }, "invalid combo_level -1"},
		{"convert level", func(o Options) Options { o.EnergyConvertLevel = 5; return o }, "invalid energy_convert_level 5"},
		{"flux rescaling high", func(o Options) Options { o.FluxRescaling = 2.6; return o }, "invalid flux_rescaling 2.6"},
		{"flux rescaling negative", func(o Options) Options { o.FluxRescaling = -0.1; return o }, "invalid flux_rescaling -0.1"},
		{"flux rescaling NaN", func(o Options) Options { o.FluxRescaling = math.NaN(); return o }, "invalid flux_rescaling NaN"},
		{"time series", func(o Options) Options { o.TimeSeries = "some"; return o }, "invalid time_series some"},
		{"format", func(o Options) Options { o.Format = "json"; return o }, "invalid format json"},
		{"modulation", func(o Options) Options { o.Modulation = "USO99"; return o }, "invalid modulation USO99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.opts(Defaults().WithQuantity("H"))
			err := o.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.msg, err.Error())
			assert.True(t, errors.IsInvalidOption(err))

			_, err = BuildURL(o)
			require.Error(t, err)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestValidateOrder(t *testing.T) {
	// A bad quantity is reported before a bad energy type, which is reported
	// before a bad combo level.
	o := Defaults()
	o.Quantity = "Foobar"
	o.EnergyType = "X"
	o.ComboLevel = 9
	assert.Contains(t, o.Validate().Error(), "quantity Foobar")

	o.Quantity = "H"
	assert.Contains(t, o.Validate().Error(), "energy_type")

	o.EnergyType = "R"
	assert.Contains(t, o.Validate().Error(), "combo_level")
}

func TestFluxRescalingBounds(t *testing.T) {
	for _, v := range []float64{0, 1.3, MaxFluxRescaling} {
		o := Defaults().WithQuantity("H")
		o.FluxRescaling = v
		assert.NoError(t, o.Validate(), "flux_rescaling %g", v)
	}
}

func TestValidateParamsIgnoresQuantity(t *testing.T) {
	assert.NoError(t, Defaults().ValidateParams())
	assert.Error(t, Defaults().WithQuantity("H").WithFormat("xml").ValidateParams())
}

func TestWithQuantityCopies(t *testing.T) {
	base := Defaults()
	o := base.WithQuantity("Fe")
	assert.Empty(t, base.Quantity)
	assert.Equal(t, "Fe", o.Quantity)
}
