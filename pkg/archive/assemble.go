package archive

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/arthur-debert/seda/pkg/errors"
	"github.com/arthur-debert/seda/pkg/logging"
)

// Document format markers. The heredoc delimiters keep the blocks
// inert when the artifact runs as a shell script; the extractor stub
// is the only line the shell ever executes.
const (
	FormatVersion = 1

	shebang    = "#!/bin/sh"
	metaPrefix = "# seda: "

	messageDelim = "SEDA_MESSAGE"
	webDocDelim  = "SEDA_WEBDOC"
	payloadDelim = "SEDA_PAYLOAD"
	vaultDelim   = "SEDA_VAULT"

	entryFramePrefix = ":::"
	entryHeader      = "::: file "
	entryEnd         = "::: end"

	postInstallPrefix = "# seda-post-install "

	webOpenFence  = "# <!--"
	webCloseFence = "# -->"

	extractorStub = `exec seda extract "$0" "$@"`

	placeholderMessage = "# SEDA Archive"

	// MessageFileName is the fixed side-file the extraction runtime
	// writes a recovered message to.
	MessageFileName = "commit_msg.txt"
)

const base64LineWidth = 76

// Assemble renders the document into the final artifact text.
func Assemble(doc *Document) string {
	var b strings.Builder

	b.WriteString(shebang + "\n")
	if doc.Variant == VariantWebPolyglot {
		b.WriteString(webOpenFence + "\n")
	}
	fmt.Fprintf(&b, "%sformat=%d variant=%s\n", metaPrefix, FormatVersion, doc.Variant)

	writeHeredoc(&b, messageDelim, messageBlock(doc))
	if doc.Variant == VariantWebPolyglot {
		writeHeredoc(&b, webDocDelim, webDocumentation(doc))
	}

	writePostInstall(&b, doc.PostInstall)

	if doc.Variant == VariantVault {
		b.WriteString(heredocOpen(vaultDelim))
		for _, line := range wrapBase64(doc.VaultBlob) {
			b.WriteString(line + "\n")
		}
		b.WriteString(vaultDelim + "\n")
	} else {
		b.WriteString(heredocOpen(payloadDelim))
		for _, entry := range doc.Entries {
			writeEntry(&b, entry)
		}
		b.WriteString(payloadDelim + "\n")
	}

	b.WriteString(stubComment(doc.Variant))
	b.WriteString(extractorStub + "\n")
	if doc.Variant == VariantWebPolyglot {
		b.WriteString(webCloseFence + "\n")
	}
	return b.String()
}

// WriteArchive renders the document and writes it to path, marking it
// executable as a best-effort step.
func WriteArchive(path string, doc *Document) error {
	logger := logging.GetLogger("archive.assemble")

	if err := os.WriteFile(path, []byte(Assemble(doc)), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrArchiveWrite, "failed to write archive %s", path)
	}
	if err := os.Chmod(path, 0755); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Could not mark archive executable")
	}
	return nil
}

// messageBlock returns the message block content for the document.
// Vault archives always get the generic placeholder: their message
// travels inside the encrypted payload.
func messageBlock(doc *Document) string {
	if doc.Variant == VariantVault || doc.Message == "" {
		return placeholderMessage
	}
	return doc.Message
}

// webDocumentation renders the quick-start block for WebPolyglot
// archives. It lives in its own heredoc so the custom message stays
// separable from the generated text.
func webDocumentation(doc *Document) string {
	var b strings.Builder
	b.WriteString("# Self-Extracting Document Archive (SEDA)\n")
	b.WriteString("\n")
	b.WriteString("This file is a self-extracting archive. You can read it as\n")
	b.WriteString("documentation, or run it to unpack the contents:\n")
	b.WriteString("\n")
	b.WriteString("    sh <archive-file>\n")
	b.WriteString("\n")
	b.WriteString("## Contents\n")
	b.WriteString("\n")
	for _, entry := range doc.Entries {
		b.WriteString("- `" + entry.Path + "`\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func stubComment(v Variant) string {
	switch v {
	case VariantVault:
		return "# encrypted archive: extraction will ask for the password\n"
	case VariantPipeline, VariantMessageAndPipeline:
		return "# extraction runs the declared post-install command\n"
	}
	return "# run this file to unpack the archive\n"
}

func heredocOpen(delim string) string {
	return ": <<'" + delim + "'\n"
}

// writeHeredoc writes content inside a quoted heredoc. Content lines
// that would terminate the heredoc early are shifted right by one
// space; the parser reverses the shift.
func writeHeredoc(b *strings.Builder, delim, content string) {
	b.WriteString(heredocOpen(delim))
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimLeft(line, " ") == delim {
			line = " " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(delim + "\n")
}

func writePostInstall(b *strings.Builder, spec PostInstallSpec) {
	if spec.Windows != "" {
		b.WriteString(postInstallPrefix + "windows: " + spec.Windows + "\n")
	}
	if spec.Posix != "" {
		b.WriteString(postInstallPrefix + "posix: " + spec.Posix + "\n")
	}
	if spec.Universal != "" {
		b.WriteString(postInstallPrefix + "universal: " + spec.Universal + "\n")
	}
}

// writeEntry renders one payload entry. Text content is embedded raw
// when it cannot collide with the framing; everything else falls back
// to base64 so byte identity survives the round trip.
func writeEntry(b *strings.Builder, entry Entry) {
	encoding := "base64"
	if entry.Kind == Text && rawSafe(entry.Data) {
		encoding = "raw"
	}

	fmt.Fprintf(b, "%s%s %s %s\n", entryHeader, strconv.Quote(entry.Path), entry.Kind, encoding)
	if encoding == "raw" {
		b.Write(entry.Data)
	} else {
		for _, line := range wrapBase64(base64.StdEncoding.EncodeToString(entry.Data)) {
			b.WriteString(line + "\n")
		}
	}
	b.WriteString(entryEnd + "\n")
}

// rawSafe reports whether text content can be embedded verbatim:
// it must end with a newline and no line may collide with the entry
// framing or terminate the payload heredoc.
func rawSafe(data []byte) bool {
	s := string(data)
	if !strings.HasSuffix(s, "\n") {
		return false
	}
	for _, line := range strings.Split(strings.TrimSuffix(s, "\n"), "\n") {
		if strings.HasPrefix(line, entryFramePrefix) || line == payloadDelim {
			return false
		}
	}
	return true
}

func wrapBase64(s string) []string {
	if s == "" {
		return []string{""}
	}
	var lines []string
	for len(s) > base64LineWidth {
		lines = append(lines, s[:base64LineWidth])
		s = s[base64LineWidth:]
	}
	return append(lines, s)
}
