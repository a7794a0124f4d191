package collect

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/seda/pkg/archive"
	"github.com/arthur-debert/seda/pkg/errors"
	"github.com/arthur-debert/seda/pkg/logging"
)

// Collector walks a directory tree and produces the ordered entry
// list for an archive.
type Collector struct {
	rules  Rules
	logger zerolog.Logger
}

// NewCollector creates a collector with the given ignore rules.
func NewCollector(rules Rules) *Collector {
	return &Collector{
		rules:  rules,
		logger: logging.GetLogger("collect.collector"),
	}
}

// Collect walks root depth-first and returns one entry per accepted
// file, with relative forward-slash paths and content classified as
// text or binary. Unreadable files are logged and skipped; a missing
// root aborts before any traversal.
func (c *Collector) Collect(root string) ([]archive.Entry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve source directory %s", root)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrSourceNotFound, "source directory %s does not exist", root)
	}

	var entries []archive.Entry
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable path")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && c.rules.SkipDir(d.Name()) {
				c.logger.Debug().Str("dir", d.Name()).Msg("Pruning ignored directory")
				return fs.SkipDir
			}
			return nil
		}

		if c.rules.SkipFile(d.Name()) {
			c.logger.Debug().Str("file", d.Name()).Msg("Skipping ignored file")
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			c.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable file")
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "cannot relativize %s", path)
		}

		entry := archive.Entry{
			Path: filepath.ToSlash(rel),
			Kind: Classify(data),
			Data: data,
		}
		c.logger.Debug().
			Str("path", entry.Path).
			Str("kind", entry.Kind.String()).
			Int("bytes", len(entry.Data)).
			Msg("Added entry")
		entries = append(entries, entry)
		return nil
	})
	if walkErr != nil {
		return nil, errors.Wrap(walkErr, errors.ErrInternal, "traversal failed")
	}

	return entries, nil
}
