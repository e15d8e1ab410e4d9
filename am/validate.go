package am

import (
	"net/url"

	"github.com/teranos/crdb/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	for _, u := range []struct{ key, value string }{
		{"server.url", c.Server.URL},
		{"server.export_url", c.Server.ExportURL},
		{"bibliography.ads_url", c.Bibliography.ADSURL},
	} {
		if err := validateHTTPURL(u.key, u.value); err != nil {
			return err
		}
	}

	// 0 = no timeout / no rate limit, negative = invalid
	if c.Server.TimeoutSeconds < 0 {
		return errors.Newf("server.timeout_seconds must be >= 0, got %g", c.Server.TimeoutSeconds)
	}
	if c.Server.RequestsPerMinute < 0 {
		return errors.Newf("server.requests_per_minute must be >= 0, got %g", c.Server.RequestsPerMinute)
	}
	if c.Server.Concurrency < 1 {
		return errors.Newf("server.concurrency must be >= 1, got %d", c.Server.Concurrency)
	}

	if c.Cache.Enabled && c.Cache.Path == "" {
		return errors.New("cache.path cannot be empty when cache is enabled")
	}
	if c.Cache.MaxAgeDays < 0 {
		return errors.Newf("cache.max_age_days must be >= 0, got %d", c.Cache.MaxAgeDays)
	}

	switch c.Log.Theme {
	case "", "everforest", "gruvbox", "none":
	default:
		return errors.Newf("log.theme must be one of everforest, gruvbox, none, got %q", c.Log.Theme)
	}

	if err := c.Options().ValidateParams(); err != nil {
		return errors.Wrap(err, "query defaults")
	}
	return nil
}

func validateHTTPURL(key, value string) error {
	if value == "" {
		return errors.Newf("%s cannot be empty", key)
	}
	u, err := url.Parse(value)
	if err != nil {
		return errors.Wrapf(err, "%s", key)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Newf("%s must be an http or https URL, got %q", key, value)
	}
	if u.Host == "" {
		return errors.Newf("%s is missing a host: %q", key, value)
	}
	return nil
}
