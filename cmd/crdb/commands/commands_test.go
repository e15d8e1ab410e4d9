package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/crdb/am"
	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/table"
)

// fakeServer answers like the CRDB service for every quantity: two
// as-import rows, or one raw line in the other formats.
type fakeServer struct {
	*httptest.Server
	requests atomic.Int32
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/rest.php", func(w http.ResponseWriter, r *http.Request) {
		fs.requests.Add(1)
		q := r.URL.Query()
		quantity := q.Get("num")
		if den := q.Get("den"); den != "" {
			quantity += "/" + den
		}
		if quantity == "Li" {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
			return
		}
		if q.Get("format") != "csv-asimport" {
			fmt.Fprintf(w, "raw %s %s\n", quantity, q.Get("energy_type"))
			return
		}
		fmt.Fprintln(w, "# header")
		for i, sub := range []string{"AMS02(2011/05-2016/05)", "Voyager1-HET-Aend(2012/10-2012/12)"} {
			fmt.Fprintf(w, `X,Space,"",2011,"%s","",0,"",1,"",2015PhRvL.114q1103A,"",%s,%s,%d,1,2,3,-0.1,0.1,0.2,-0.2,0,500`+"\n",
				sub, quantity, q.Get("energy_type"), 10*(i+1))
		}
	})
	mux.HandleFunc("/_export_all_data.php", func(w http.ResponseWriter, r *http.Request) {
		fs.requests.Add(1)
		for _, q := range []string{"H", "He", "B/C"} {
			fmt.Fprintf(w, `%s,"AMS02(2011)",R,1,1,1,1,1,1,1,1,2015PhRvL.114q1103A,0,1,"",0`+"\n", q)
		}
	})
	mux.HandleFunc("/bibtex", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"export": "@ARTICLE{2015PhRvL.114q1103A,\n  year = 2015,\n}\n",
		})
	})
	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

// setup points the configuration at fs and isolates it from the host.
func setup(t *testing.T, fs *fakeServer) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CRDB_SERVER_URL", fs.URL)
	t.Setenv("CRDB_SERVER_EXPORT_URL", fs.URL+"/_export_all_data.php?format=csv")
	t.Setenv("CRDB_SERVER_ALLOW_PRIVATE_NETWORKS", "true")
	t.Setenv("CRDB_SERVER_REQUESTS_PER_MINUTE", "0")
	t.Setenv("CRDB_CACHE_ENABLED", "false")
	t.Setenv("CRDB_BIBLIOGRAPHY_ADS_URL", fs.URL+"/bibtex")
	t.Setenv("ADS_API_TOKEN", "")
	t.Setenv("CRDB_ADS_TOKEN", "")
	t.Setenv("CRDB_BIBLIOGRAPHY_ADS_TOKEN", "")

	am.Reset()
	t.Cleanup(am.Reset)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), err
}

func TestVersionFlag(t *testing.T) {
	setup(t, newFakeServer(t))
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "crdb-dev\n", out)
}

func TestVersionJSON(t *testing.T) {
	setup(t, newFakeServer(t))
	out, err := run(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

func TestURL(t *testing.T) {
	fs := newFakeServer(t)
	setup(t, fs)

	out, err := run(t, "url", "B/C", "--energy_start", "10", "--energy_type", "EKN")
	require.NoError(t, err)
	assert.Equal(t, fs.URL+"/rest.php?num=B&energy_type=EKN&den=C&energy_start=10\n", out)

	_, err = run(t, "url", "Foobar")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidOption(err))
	assert.Zero(t, fs.requests.Load())
}

func TestConfigDefaultsApplyToFlags(t *testing.T) {
	fs := newFakeServer(t)
	setup(t, fs)
	t.Setenv("CRDB_QUERY_ENERGY_TYPE", "EK")
	t.Setenv("CRDB_QUERY_COMBO_LEVEL", "0")

	out, err := run(t, "url", "H")
	require.NoError(t, err)
	assert.Equal(t, fs.URL+"/rest.php?num=H&energy_type=EK&combo_level=0\n", out)

	am.Reset()
	out, err = run(t, "url", "H", "--combo_level", "2")
	require.NoError(t, err)
	assert.Equal(t, fs.URL+"/rest.php?num=H&energy_type=EK&combo_level=2\n", out)
}

func TestQueryRaw(t *testing.T) {
	fs := newFakeServer(t)
	setup(t, fs)

	out, err := run(t, "query", "B/C", "--energy_type", "EKN")
	require.NoError(t, err)
	assert.Equal(t, "raw B/C EKN\n\n", out)

	out, err = run(t, "query", "H", "He")
	require.NoError(t, err)
	assert.Equal(t, "raw H R\n\nraw He R\n\n", out)
}

func TestQueryJSON(t *testing.T) {
	setup(t, newFakeServer(t))

	out, err := run(t, "query", "H", "He", "--json", "--format", "usine")
	require.NoError(t, err)
	var rows table.Table
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"H", "H", "He", "He"}, []string{rows[0].Quantity, rows[1].Quantity, rows[2].Quantity, rows[3].Quantity})
	assert.Equal(t, [2]float64{0.1, 0.1}, rows[0].ErrSta)
}

func TestQueryTable(t *testing.T) {
	setup(t, newFakeServer(t))

	out, err := run(t, "query", "B/C", "--table")
	require.NoError(t, err)
	assert.Contains(t, out, "AMS02(2011/05-2016/05)")
	assert.Contains(t, out, "Voyager1-HET-Aend(2012/10-2012/12)")
}

func TestQueryParquet(t *testing.T) {
	setup(t, newFakeServer(t))
	path := filepath.Join(t.TempDir(), "h.parquet")

	out, err := run(t, "query", "H", "--parquet", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PAR1")))
}

func TestQueryTimeout(t *testing.T) {
	setup(t, newFakeServer(t))

	_, err := run(t, "query", "Li", "--timeout", "0.05")
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
	assert.Contains(t, err.Error(), "timeout=0.05")
}

func TestQueryCached(t *testing.T) {
	fs := newFakeServer(t)
	setup(t, fs)
	t.Setenv("CRDB_CACHE_ENABLED", "true")
	t.Setenv("CRDB_CACHE_PATH", filepath.Join(t.TempDir(), "cache.db"))

	for range 2 {
		out, err := run(t, "query", "H")
		require.NoError(t, err)
		assert.Equal(t, "raw H R\n\n", out)
	}
	assert.EqualValues(t, 1, fs.requests.Load())

	out, err := run(t, "cache", "stats", "--json")
	require.NoError(t, err)
	var st struct{ Entries int }
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 1, st.Entries)

	out, err = run(t, "cache", "clear", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted": 1}`, out)

	_, err = run(t, "query", "H")
	require.NoError(t, err)
	assert.EqualValues(t, 2, fs.requests.Load())
}

func TestExperiments(t *testing.T) {
	setup(t, newFakeServer(t))

	out, err := run(t, "experiments", "H", "He", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"label": "AMS02", "rows": 2}, {"label": "Voyager", "rows": 2}]`, out)

	out, err = run(t, "experiments", "H")
	require.NoError(t, err)
	assert.Contains(t, out, "AMS02")
}

func TestConvert(t *testing.T) {
	setup(t, newFakeServer(t))

	out, err := run(t, "convert", "4He", "--to", "EK", "--json")
	require.NoError(t, err)
	var rows table.Table
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "EK", rows[0].EType)
	assert.InDelta(t, 20, rows[0].E, 1e-9)

	_, err = run(t, "convert", "H", "--to", "ETOT")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidOption(err))
}

func TestRefs(t *testing.T) {
	setup(t, newFakeServer(t))

	out, err := run(t, "refs", "B/C")
	require.NoError(t, err)
	assert.Equal(t, "https://ui.adsabs.harvard.edu/abs/2015PhRvL.114q1103A\n", out)

	_, err = run(t, "refs", "B/C", "--bibtex")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestRefsBibTeX(t *testing.T) {
	setup(t, newFakeServer(t))
	t.Setenv("ADS_API_TOKEN", "tok")

	out, err := run(t, "refs", "B/C", "--bibtex")
	require.NoError(t, err)
	assert.Equal(t, "@ARTICLE{2015PhRvL.114q1103A,\n  year = 2015,\n}\n\n", out)
}

func TestAll(t *testing.T) {
	setup(t, newFakeServer(t))
	path := filepath.Join(t.TempDir(), "all.parquet")

	out, err := run(t, "all", "--json", "--parquet", path)
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`{"rows": 3, "quantities": 3, "sub_exps": 1, "references": 1, "parquet": %q}`, path), out)
	assert.FileExists(t, path)
}

func TestNames(t *testing.T) {
	setup(t, newFakeServer(t))

	out, err := run(t, "names")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "H", lines[0])

	out, err = run(t, "names", "--elements")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "  1 H\n  2 He\n"), out)

	out, err = run(t, "names", "--discover", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `["B", "C", "H", "He"]`, out)
}

func TestAmShowRedactsToken(t *testing.T) {
	setup(t, newFakeServer(t))
	t.Setenv("ADS_API_TOKEN", "secret-token")

	out, err := run(t, "am", "show")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# crdb configuration\n"))
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "secret-token")

	out, err = run(t, "am", "show", "--format", "json")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret-token")

	out, err = run(t, "am", "show", "--sources", "--json")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret-token")
	assert.Contains(t, out, `"source": "environment"`)
}

func TestAmValidate(t *testing.T) {
	setup(t, newFakeServer(t))

	out, err := run(t, "am", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	bad := filepath.Join(t.TempDir(), "am.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[server]\ntimeout = 3\n"), 0o644))
	_, err = run(t, "am", "validate", "--file", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys")
}

func TestAmInit(t *testing.T) {
	setup(t, newFakeServer(t))
	t.Setenv("ADS_API_TOKEN", "secret-token")
	path := filepath.Join(t.TempDir(), "am.toml")

	_, err := run(t, "am", "init", "--path", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-token")

	cfg, err := am.LoadFromFile(path)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())

	_, err = run(t, "am", "init", "--path", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "am", "init", "--path", path, "--force")
	require.NoError(t, err)
	assert.FileExists(t, path+".back1")
}
