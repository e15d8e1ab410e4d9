package am

import (
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teranos/crdb/errors"
)

// CheckFile decodes the TOML file at path strictly: syntax errors, type
// mismatches and unknown keys are all reported. Viper silently ignores the
// latter, so a typo like `[sever]` would otherwise go unnoticed.
func CheckFile(path string) error {
	var c Config
	meta, err := toml.DecodeFile(path, &c)
	if err != nil {
		return errors.Wrapf(err, "invalid config file %s", path)
	}

	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return errors.WithHint(
		errors.Newf("unknown keys in %s: %s", path, strings.Join(keys, ", ")),
		"run 'crdb am show' to list recognized keys")
}
