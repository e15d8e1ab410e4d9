package client

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter"

	"github.com/teranos/crdb/cache"
	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/logger"
	"github.com/teranos/crdb/table"
)

// Downloader saves the resource at url to the file dst.
type Downloader interface {
	Download(ctx context.Context, url, dst string) error
}

// GetterDownloader downloads with go-getter over HTTP(S).
type GetterDownloader struct {
	// HTTPClient performs the requests; nil means http.DefaultClient.
	HTTPClient *http.Client
	// Progress, if set, is called with the running byte count.
	Progress func(downloaded, total int64)
}

// Download implements Downloader.
func (d *GetterDownloader) Download(ctx context.Context, url, dst string) error {
	httpGetter := &getter.HttpGetter{Client: d.HTTPClient}
	gc := &getter.Client{
		Ctx:  ctx,
		Src:  url,
		Dst:  dst,
		Mode: getter.ClientModeFile,
		Getters: map[string]getter.Getter{
			"http":  httpGetter,
			"https": httpGetter,
		},
	}
	if d.Progress != nil {
		gc.ProgressListener = progressFunc(d.Progress)
	}
	if err := gc.Get(); err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "download canceled")
		}
		return errors.NewConnectionError(err, url)
	}
	return nil
}

// progressFunc adapts a callback to getter.ProgressTracker.
type progressFunc func(downloaded, total int64)

func (f progressFunc) TrackProgress(src string, currentSize, totalSize int64, stream io.ReadCloser) io.ReadCloser {
	return &countingReader{ReadCloser: stream, n: currentSize, total: totalSize, report: f}
}

type countingReader struct {
	io.ReadCloser
	n, total int64
	report   func(downloaded, total int64)
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	r.n += int64(n)
	r.report(r.n, r.total)
	return n, err
}

// All returns the whole database decoded with the compact schema. The
// export is cached when the client has a store.
func (c *Client) All(ctx context.Context) (table.Table, error) {
	lines, err := c.exportLines(ctx)
	if err != nil {
		return nil, err
	}
	tab, err := table.Decode(lines, table.Compact)
	if err != nil {
		return nil, errors.WithDetailf(err, "url: %s", c.exportURL)
	}
	return tab, nil
}

func (c *Client) exportLines(ctx context.Context) ([]string, error) {
	key := cache.Key(cache.KindAll, c.exportURL)
	if c.store != nil {
		lines, err := c.store.Get(ctx, key)
		if err == nil {
			c.logger.Debugw("export from cache", logger.FieldKey, key, logger.FieldCacheHit, true)
			return lines, nil
		}
		if !errors.IsNotFoundError(err) {
			c.logger.Warnw("cache read failed", logger.FieldKey, key, logger.FieldError, err)
		}
	}

	lines, err := c.download(ctx)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if err := c.store.Put(ctx, key, c.exportURL, lines); err != nil {
			c.logger.Warnw("cache write failed", logger.FieldKey, key, logger.FieldError, err)
		}
	}
	return lines, nil
}

// download fetches the export through the downloader into a temporary
// file, or through the fetcher when no downloader is set.
func (c *Client) download(ctx context.Context) ([]string, error) {
	if c.downloader == nil {
		return c.fetcher.Fetch(ctx, c.exportURL, 0)
	}

	dir, err := os.MkdirTemp("", "crdb-export-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp directory")
	}
	defer os.RemoveAll(dir)

	dst := filepath.Join(dir, "export.csv")
	c.logger.Infow("downloading export", logger.FieldURL, c.exportURL)
	if err := c.downloader.Download(ctx, c.exportURL, dst); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read export")
	}
	if len(data) == 0 {
		return nil, errors.WithDetailf(errors.NewEmptyResponseError(), "url: %s", c.exportURL)
	}
	c.logger.Infow("export downloaded", logger.FieldBytes, len(data))
	return strings.Split(string(data), "\n"), nil
}
