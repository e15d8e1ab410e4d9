package httpclient

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/logger"
)

// Transport fetches CRDB responses as text lines.
type Transport struct {
	client  *SaferClient
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// NewTransport returns a transport issuing at most requestsPerMinute
// requests; zero or less disables the limit. log may be nil.
func NewTransport(client *SaferClient, requestsPerMinute float64, log *zap.SugaredLogger) *Transport {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(requestsPerMinute / 60.0)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Transport{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  log,
	}
}

// Fetch GETs url and returns the body split on "\n". A timeout of zero or
// less means no timeout beyond ctx.
//
// Exceeding the timeout fails with errors.ErrTimeout. Unreachable hosts,
// blocked addresses and non-2xx statuses fail with errors.ErrConnection.
func (t *Transport) Fetch(ctx context.Context, url string, timeout time.Duration) ([]string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := t.get(ctx, url)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.NewTimeoutError(url, timeout.Seconds())
		}
		if errors.Is(err, context.Canceled) {
			return nil, errors.Wrapf(err, "request to %s canceled", url)
		}
		return nil, errors.NewConnectionError(err, url)
	}

	lines := strings.Split(string(body), "\n")
	t.logger.Debugw("fetched",
		logger.FieldURL, url,
		logger.FieldBytes, len(body),
		logger.FieldLines, len(lines),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return lines, nil
}

func (t *Transport) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "invalid request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return body, nil
}

const userAgent = "crdb-go (+https://github.com/teranos/crdb)"

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
