package collect_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/seda/pkg/archive"
	"github.com/arthur-debert/seda/pkg/collect"
	"github.com/arthur-debert/seda/pkg/config"
	"github.com/arthur-debert/seda/pkg/errors"
	"github.com/arthur-debert/seda/pkg/testutil"
)

func defaultRules() collect.Rules {
	cfg := config.Default()
	return collect.NewRules(cfg.Ignore.Dirs, cfg.Ignore.Extensions, false)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, archive.Text, collect.Classify([]byte("plain ascii")))
	assert.Equal(t, archive.Text, collect.Classify([]byte("unicode: héllo wörld ☃")))
	assert.Equal(t, archive.Text, collect.Classify(nil))
	assert.Equal(t, archive.Binary, collect.Classify([]byte{0xff, 0xfe, 0x00}))
	assert.Equal(t, archive.Binary, collect.Classify(testutil.SampleBinary(200)))
}

func TestRules(t *testing.T) {
	t.Run("skip_dirs_by_name", func(t *testing.T) {
		rules := defaultRules()
		assert.True(t, rules.SkipDir("__pycache__"))
		assert.True(t, rules.SkipDir(".git"))
		assert.False(t, rules.SkipDir("src"))
	})

	t.Run("skip_files_by_suffix", func(t *testing.T) {
		rules := defaultRules()
		assert.True(t, rules.SkipFile("module.pyc"))
		assert.True(t, rules.SkipFile("old.seda"))
		// Suffix matching covers the whole compound family.
		assert.True(t, rules.SkipFile("project.commit.seda"))
		assert.True(t, rules.SkipFile("project.vault.seda"))
		assert.False(t, rules.SkipFile("module.py"))
	})

	t.Run("suffix_match_is_case_sensitive", func(t *testing.T) {
		rules := defaultRules()
		assert.False(t, rules.SkipFile("module.PYC"))
	})

	t.Run("recursive_opt_in_allows_archives", func(t *testing.T) {
		cfg := config.Default()
		rules := collect.NewRules(cfg.Ignore.Dirs, cfg.Ignore.Extensions, true)
		assert.False(t, rules.SkipFile("nested.seda"))
		// Other suffixes remain in force.
		assert.True(t, rules.SkipFile("module.pyc"))
	})

	t.Run("extra_entries_extend_defaults", func(t *testing.T) {
		cfg := config.Default()
		dirs := append(cfg.Ignore.Dirs, "secrets")
		exts := append(cfg.Ignore.Extensions, ".tmp")
		rules := collect.NewRules(dirs, exts, false)
		assert.True(t, rules.SkipDir("secrets"))
		assert.True(t, rules.SkipFile("scratch.tmp"))
	})
}

func TestCollect(t *testing.T) {
	t.Run("sample_tree", func(t *testing.T) {
		root := testutil.SampleTree(t)

		entries, err := collect.NewCollector(defaultRules()).Collect(root)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		byPath := make(map[string]archive.Entry, len(entries))
		for _, e := range entries {
			byPath[e.Path] = e
		}

		readme, ok := byPath["README.md"]
		require.True(t, ok)
		assert.Equal(t, archive.Text, readme.Kind)

		util, ok := byPath["src/util.py"]
		require.True(t, ok)
		assert.Equal(t, archive.Text, util.Kind)

		logo, ok := byPath["img/logo.png"]
		require.True(t, ok)
		assert.Equal(t, archive.Binary, logo.Kind)
		assert.Equal(t, testutil.SampleBinary(200), logo.Data)

		// Nothing from the pruned cache directory.
		for path := range byPath {
			assert.NotContains(t, path, "__pycache__")
		}
	})

	t.Run("missing_source_aborts", func(t *testing.T) {
		_, err := collect.NewCollector(defaultRules()).Collect(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSourceNotFound))
	})

	t.Run("source_is_file_aborts", func(t *testing.T) {
		dir := t.TempDir()
		path := testutil.CreateFile(t, dir, "plain.txt", "not a directory")
		_, err := collect.NewCollector(defaultRules()).Collect(path)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSourceNotFound))
	})

	t.Run("ignored_dirs_pruned_at_depth", func(t *testing.T) {
		root := testutil.CreateDir(t, t.TempDir(), "tree")
		testutil.CreateFile(t, root, "keep.txt", "keep")
		testutil.CreateFile(t, root, "a/b/node_modules/lib/index.js", "skip")
		testutil.CreateFile(t, root, "a/b/keep.js", "keep")

		entries, err := collect.NewCollector(defaultRules()).Collect(root)
		require.NoError(t, err)

		var paths []string
		for _, e := range entries {
			paths = append(paths, e.Path)
		}
		assert.ElementsMatch(t, []string{"keep.txt", "a/b/keep.js"}, paths)
	})

	t.Run("root_name_in_ignore_set_still_packs", func(t *testing.T) {
		parent := t.TempDir()
		root := testutil.CreateDir(t, parent, "build")
		testutil.CreateFile(t, root, "artifact.txt", "content")

		entries, err := collect.NewCollector(defaultRules()).Collect(root)
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})

	t.Run("paths_are_slash_normalized_and_relative", func(t *testing.T) {
		root := testutil.CreateDir(t, t.TempDir(), "tree")
		testutil.CreateFile(t, root, "deep/nested/file.txt", "x")

		entries, err := collect.NewCollector(defaultRules()).Collect(root)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "deep/nested/file.txt", entries[0].Path)
		assert.False(t, strings.HasPrefix(entries[0].Path, "/"))
	})
}
