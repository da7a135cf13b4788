package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

const starterHeader = `# ffigen configuration.
# Every key can be overridden with FFIGEN_<SECTION>_<KEY>, e.g.
# FFIGEN_GENERATE_BACKEND=python, and by command-line flags.

`

// Starter renders the default configuration as TOML.
func Starter() ([]byte, error) {
	body, err := toml.Marshal(Default())
	if err != nil {
		return nil, errors.Wrap(err, "encode starter config")
	}
	return append([]byte(starterHeader), body...), nil
}

// WriteStarter writes the starter config to path. An existing file is only
// replaced when force is set.
func WriteStarter(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.WithHint(
				errors.Newf("%s already exists", path),
				"pass --force to overwrite it")
		}
	}
	data, err := Starter()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
