// Package client runs CRDB queries end to end: validate the options, build
// the URL, fetch the response and decode it into a table.
package client

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/crdb/cache"
	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/logger"
	"github.com/teranos/crdb/names"
	"github.com/teranos/crdb/query"
	"github.com/teranos/crdb/table"
)

// DefaultTimeout bounds a single server request.
const DefaultTimeout = 120 * time.Second

// DefaultExportURL serves the whole database in the compact csv format.
const DefaultExportURL = "https://lpsc.in2p3.fr/crdb/_export_all_data.php?format=csv"

// Fetcher retrieves the response lines for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) ([]string, error)
}

// Client queries a CRDB server.
type Client struct {
	fetcher     Fetcher
	downloader  Downloader
	store       *cache.Store
	bib         BibliographySource
	timeout     time.Duration
	concurrency int
	exportURL   string
	logger      *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout; zero or less means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithConcurrency bounds how many quantities of a batch are fetched at once.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithDownloader sets how the bulk export is downloaded.
func WithDownloader(d Downloader) Option {
	return func(c *Client) { c.downloader = d }
}

// WithCache memoizes the bulk export in store.
func WithCache(store *cache.Store) Option {
	return func(c *Client) { c.store = store }
}

// WithBibliography sets the BibTeX source.
func WithBibliography(b BibliographySource) Option {
	return func(c *Client) { c.bib = b }
}

// WithExportURL overrides the bulk export location.
func WithExportURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.exportURL = u
		}
	}
}

// WithLogger sets the logger; the default is silent.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a client fetching through f.
func New(f Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher:     f,
		timeout:     DefaultTimeout,
		concurrency: 1,
		exportURL:   DefaultExportURL,
		logger:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query fetches every quantity with opts and returns the rows concatenated
// in request order. With no quantities, opts.Quantity is queried.
//
// The csv-asimport format is always requested, whatever opts.Format says.
// All quantities are validated before the first request; one failing
// quantity fails the whole batch.
func (c *Client) Query(ctx context.Context, opts query.Options, quantities ...string) (table.Table, error) {
	if len(quantities) == 0 {
		quantities = []string{opts.Quantity}
	}

	urls := make([]string, len(quantities))
	for i, q := range quantities {
		u, err := query.BuildURL(opts.WithQuantity(q).WithFormat(query.FormatCSVAsImport))
		if err != nil {
			return nil, err
		}
		urls[i] = u
	}

	ctx = logger.WithRequestID(ctx, uuid.NewString())
	log := logger.FromContext(ctx, c.logger)
	start := time.Now()

	results := make([]table.Table, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tab, err := c.fetchTable(gctx, u, table.AsImport)
			if err != nil {
				return errors.WithDetailf(err, "quantity: %s", quantities[i])
			}
			log.Debugw("decoded", logger.FieldQuantity, quantities[i], logger.FieldRows, tab.Len())
			results[i] = tab
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := table.Concat(results...)
	log.Infow("query complete",
		logger.FieldCount, len(quantities),
		logger.FieldRows, out.Len(),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return out, nil
}

// QueryRaw fetches opts as requested, including usine and galprop, and
// returns the response lines undecoded.
func (c *Client) QueryRaw(ctx context.Context, opts query.Options) ([]string, error) {
	u, err := query.BuildURL(opts)
	if err != nil {
		return nil, err
	}
	return c.fetcher.Fetch(ctx, u, c.timeout)
}

// fetchTable fetches u and decodes the response with s.
func (c *Client) fetchTable(ctx context.Context, u string, s table.Schema) (table.Table, error) {
	lines, err := c.fetcher.Fetch(ctx, u, c.timeout)
	if err != nil {
		return nil, err
	}
	tab, err := table.Decode(lines, s)
	if err != nil {
		return nil, errors.WithDetailf(err, "url: %s", u)
	}
	return tab, nil
}

// ValidNames lists every numerator and denominator appearing in the bulk
// export. This is informational; validation uses the static name list.
func (c *Client) ValidNames(ctx context.Context) ([]string, error) {
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return names.Discover(all.Quantities()), nil
}
