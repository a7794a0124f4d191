package archive_test

import (
	"strings"
	"testing"

	"github.com/arthur-debert/seda/pkg/archive"
	"github.com/arthur-debert/seda/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []archive.Entry {
	return []archive.Entry{
		{Path: "README.md", Kind: archive.Text, Data: []byte("# Sample\n\nHello.\n")},
		{Path: "src/util.py", Kind: archive.Text, Data: []byte("def f():\n    return 1\n")},
		{Path: "img/logo.png", Kind: archive.Binary, Data: []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0xff, 0xfe}},
	}
}

func TestAssembleParseRoundTrip(t *testing.T) {
	doc := &archive.Document{
		Variant: archive.VariantMessageAndPipeline,
		Message: "Fix bug #42\n\nDetails below.",
		PostInstall: archive.PostInstallSpec{
			Posix:     "make install",
			Universal: "echo done",
		},
		Entries: sampleEntries(),
	}

	parsed, err := archive.Parse(archive.Assemble(doc))
	require.NoError(t, err)

	assert.Equal(t, doc.Variant, parsed.Variant)
	assert.Equal(t, doc.Message, parsed.Message)
	assert.Equal(t, doc.PostInstall, parsed.PostInstall)
	require.Len(t, parsed.Entries, len(doc.Entries))
	for i, want := range doc.Entries {
		assert.Equal(t, want.Path, parsed.Entries[i].Path)
		assert.Equal(t, want.Kind, parsed.Entries[i].Kind)
		assert.Equal(t, want.Data, parsed.Entries[i].Data)
	}
}

func TestAssembleLayout(t *testing.T) {
	doc := &archive.Document{
		Variant: archive.VariantStandard,
		Entries: sampleEntries(),
	}
	text := archive.Assemble(doc)
	lines := strings.Split(text, "\n")

	assert.Equal(t, "#!/bin/sh", lines[0])
	assert.Contains(t, text, "# seda: format=1 variant=standard")
	assert.Contains(t, text, `exec seda extract "$0" "$@"`)
	// Placeholder documentation for a message-less archive.
	assert.Contains(t, text, "# SEDA Archive")
	assert.NotContains(t, text, "# <!--")
}

func TestAssembleWebFences(t *testing.T) {
	doc := &archive.Document{
		Variant: archive.VariantWebPolyglot,
		Entries: sampleEntries(),
	}
	text := archive.Assemble(doc)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	assert.Equal(t, "#!/bin/sh", lines[0])
	assert.Equal(t, "# <!--", lines[1])
	assert.Equal(t, "# -->", lines[len(lines)-1])
	// Quick-start documentation lists the packed files.
	assert.Contains(t, text, "- `img/logo.png`")

	parsed, err := archive.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, archive.VariantWebPolyglot, parsed.Variant)
	require.Len(t, parsed.Entries, 3)
}

func TestWebArchiveMessageRoundTrip(t *testing.T) {
	doc := &archive.Document{
		Variant: archive.VariantWebPolyglot,
		Message: "Fix bug #42",
		Entries: sampleEntries(),
	}
	text := archive.Assemble(doc)

	// The quick-start block is present but stays out of the message.
	assert.Contains(t, text, "# Self-Extracting Document Archive (SEDA)")

	parsed, err := archive.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "Fix bug #42", parsed.Message)
}

func TestParseRejectsMissingWebFence(t *testing.T) {
	text := archive.Assemble(&archive.Document{
		Variant: archive.VariantWebPolyglot,
		Entries: sampleEntries(),
	})
	text = strings.Replace(text, "# <!--\n", "", 1)

	_, err := archive.Parse(text)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveParse))
}

func TestDelimiterCollisionFallsBackToBase64(t *testing.T) {
	tricky := []archive.Entry{
		{
			Path: "notes.txt",
			Kind: archive.Text,
			Data: []byte("before\n::: end\nSEDA_PAYLOAD\nafter\n"),
		},
		{
			Path: "no-trailing-newline.txt",
			Kind: archive.Text,
			Data: []byte("no newline at end"),
		},
	}
	doc := &archive.Document{Variant: archive.VariantStandard, Entries: tricky}
	text := archive.Assemble(doc)

	// The colliding content must not appear verbatim in the artifact.
	assert.NotContains(t, text, "\n::: end\nSEDA_PAYLOAD\n")

	parsed, err := archive.Parse(text)
	require.NoError(t, err)
	require.Len(t, parsed.Entries, 2)
	assert.Equal(t, tricky[0].Data, parsed.Entries[0].Data)
	assert.Equal(t, tricky[1].Data, parsed.Entries[1].Data)
}

func TestMessageHeredocCollision(t *testing.T) {
	doc := &archive.Document{
		Variant: archive.VariantMessage,
		Message: "first\nSEDA_MESSAGE\n SEDA_MESSAGE\nlast",
		Entries: sampleEntries(),
	}
	parsed, err := archive.Parse(archive.Assemble(doc))
	require.NoError(t, err)
	assert.Equal(t, doc.Message, parsed.Message)
}

func TestPathsWithSpacesRoundTrip(t *testing.T) {
	doc := &archive.Document{
		Variant: archive.VariantStandard,
		Entries: []archive.Entry{
			{Path: "my docs/read me.txt", Kind: archive.Text, Data: []byte("hi\n")},
		},
	}
	parsed, err := archive.Parse(archive.Assemble(doc))
	require.NoError(t, err)
	require.Len(t, parsed.Entries, 1)
	assert.Equal(t, "my docs/read me.txt", parsed.Entries[0].Path)
}

func TestAssembleVault(t *testing.T) {
	doc := &archive.Document{
		Variant:   archive.VariantVault,
		Message:   "should never appear in cleartext",
		VaultBlob: strings.Repeat("QUJDRA==", 30),
	}
	text := archive.Assemble(doc)

	// Vault archives expose only the generic placeholder.
	assert.NotContains(t, text, "should never appear")
	assert.Contains(t, text, "# SEDA Archive")

	parsed, err := archive.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, archive.VariantVault, parsed.Variant)
	assert.Equal(t, doc.VaultBlob, parsed.VaultBlob)
	assert.Empty(t, parsed.Message)
	assert.Empty(t, parsed.Entries)
}

func TestParseRejectsMalformedDocuments(t *testing.T) {
	valid := archive.Assemble(&archive.Document{
		Variant: archive.VariantStandard,
		Entries: sampleEntries(),
	})

	tests := []struct {
		name   string
		mangle func(string) string
	}{
		{"empty", func(string) string { return "" }},
		{"missing_shebang", func(s string) string { return strings.TrimPrefix(s, "#!/bin/sh\n") }},
		{"bad_format_version", func(s string) string {
			return strings.Replace(s, "format=1", "format=99", 1)
		}},
		{"unknown_variant", func(s string) string {
			return strings.Replace(s, "variant=standard", "variant=mystery", 1)
		}},
		{"truncated", func(s string) string { return s[:len(s)/2] }},
		{"web_fence_on_non_web_variant", func(s string) string {
			return strings.Replace(s, "#!/bin/sh\n", "#!/bin/sh\n# <!--\n", 1)
		}},
		{"missing_payload", func(s string) string {
			start := strings.Index(s, ": <<'SEDA_PAYLOAD'")
			end := strings.Index(s, "\nexec seda")
			return s[:start] + s[end+1:]
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := archive.Parse(tt.mangle(valid))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveParse))
		})
	}
}

func TestParseRejectsMismatchedBody(t *testing.T) {
	// A vault variant declaring a cleartext payload must not parse.
	text := archive.Assemble(&archive.Document{
		Variant: archive.VariantStandard,
		Entries: sampleEntries(),
	})
	text = strings.Replace(text, "variant=standard", "variant=vault", 1)

	_, err := archive.Parse(text)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveParse))
}
