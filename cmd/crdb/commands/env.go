package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/crdb/cache"
	"github.com/teranos/crdb/client"
	"github.com/teranos/crdb/db"
	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/internal/httpclient"
	"github.com/teranos/crdb/logger"
)

// session is a configured client plus the resources it holds open.
type session struct {
	client *client.Client
	store  *cache.Store
	db     *sql.DB
}

func (s *session) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// openStore opens the response cache configured in a.cfg.
func (a *app) openStore(log *zap.SugaredLogger) (*cache.Store, *sql.DB, error) {
	database, err := db.OpenWithMigrations(a.cfg.Cache.Path, log)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open cache %s", a.cfg.Cache.Path)
	}
	return cache.New(database, a.cfg.CacheMaxAge(), log), database, nil
}

// newSession wires transport, cache and client from the configuration.
// progress, if not nil, receives bulk download progress lines.
func (a *app) newSession(progress io.Writer) (*session, error) {
	cfg := a.cfg
	log := logger.Logger.Named("crdb")

	block := !cfg.Server.AllowPrivateNetworks
	hc := httpclient.NewSaferClientWithOptions(0, httpclient.SaferClientOptions{
		BlockPrivateIP:     &block,
		InsecureSkipVerify: cfg.Server.InsecureSkipVerify,
	})
	transport := httpclient.NewTransport(hc, cfg.Server.RequestsPerMinute, log.Named("http"))

	s := &session{}
	var fetcher client.Fetcher = transport
	if cfg.Cache.Enabled {
		store, database, err := a.openStore(log.Named("cache"))
		if err != nil {
			return nil, err
		}
		s.store, s.db = store, database
		fetcher = cache.Wrap(store, transport)
	}

	downloader := &client.GetterDownloader{HTTPClient: hc.Client}
	if progress != nil {
		downloader.Progress = func(n, total int64) {
			fmt.Fprintf(progress, "\r%.1f Mb downloaded", float64(n)/1e6)
			if total > 0 && n >= total {
				fmt.Fprintln(progress)
			}
		}
	}

	opts := []client.Option{
		client.WithTimeout(cfg.Timeout()),
		client.WithConcurrency(cfg.Server.Concurrency),
		client.WithExportURL(cfg.Server.ExportURL),
		client.WithDownloader(downloader),
		client.WithLogger(log.Named("client")),
	}
	if s.store != nil {
		opts = append(opts, client.WithCache(s.store))
	}
	if token := cfg.Bibliography.ADSToken; token != "" {
		src, err := client.NewADSSource(cfg.Bibliography.ADSURL, token, hc)
		if err != nil {
			s.Close()
			return nil, err
		}
		opts = append(opts, client.WithBibliography(src))
	}

	s.client = client.New(fetcher, opts...)
	return s, nil
}

// status prints a short highlighted line to w.
func status(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, pterm.Info.Sprintf(format, args...))
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
