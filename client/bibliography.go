package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/table"
)

// BibliographySource resolves ADS bibcodes to BibTeX entries.
type BibliographySource interface {
	BibTeX(ctx context.Context, bibcodes []string) (map[string]string, error)
}

// Bibliography maps every ADS key in t to its BibTeX entry.
func (c *Client) Bibliography(ctx context.Context, t table.Table) (map[string]string, error) {
	if c.bib == nil {
		return nil, errors.WithHint(
			errors.Wrap(errors.ErrUnavailable, "no bibliography source configured"),
			"set bibliography.ads_token in am.toml or export ADS_API_TOKEN")
	}
	keys := t.ADSKeys()
	if len(keys) == 0 {
		return map[string]string{}, nil
	}
	return c.bib.BibTeX(ctx, keys)
}

// Doer sends HTTP requests; *httpclient.SaferClient satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ADSSource uses the ADS export API.
type ADSSource struct {
	URL   string
	Token string
	HTTP  Doer
}

// NewADSSource returns a source for the export endpoint at url. An empty
// token fails with errors.ErrUnavailable.
func NewADSSource(url, token string, doer Doer) (*ADSSource, error) {
	if token == "" {
		return nil, errors.WithHint(
			errors.Wrap(errors.ErrUnavailable, "ADS API token missing"),
			"create a token at https://ui.adsabs.harvard.edu/user/settings/token and set ADS_API_TOKEN")
	}
	return &ADSSource{URL: url, Token: token, HTTP: doer}, nil
}

type adsRequest struct {
	Bibcode []string `json:"bibcode"`
}

type adsResponse struct {
	Export string `json:"export"`
	Msg    string `json:"msg"`
}

// BibTeX implements BibliographySource.
func (s *ADSSource) BibTeX(ctx context.Context, bibcodes []string) (map[string]string, error) {
	body, err := json.Marshal(adsRequest{Bibcode: bibcodes})
	if err != nil {
		return nil, errors.Wrap(err, "encode ADS request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "invalid ADS request")
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return nil, errors.NewConnectionError(err, s.URL)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read ADS response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("ADS export failed: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var out adsResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "decode ADS response")
	}
	return SplitBibTeX(out.Export), nil
}

var entryKey = regexp.MustCompile(`^@\w+\{([^,\s]+),`)

// SplitBibTeX splits concatenated BibTeX entries into a map keyed by the
// entry key. Text before the first entry is ignored.
func SplitBibTeX(export string) map[string]string {
	result := map[string]string{}
	var key string
	var buf strings.Builder
	flush := func() {
		if key != "" {
			result[key] = strings.TrimSpace(buf.String()) + "\n"
		}
		buf.Reset()
	}
	for _, line := range strings.Split(export, "\n") {
		if m := entryKey.FindStringSubmatch(line); m != nil {
			flush()
			key = m[1]
		}
		if key != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	flush()
	return result
}
