package archive

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/arthur-debert/seda/pkg/errors"
)

// Parse reads an artifact back into a Document. The decode side
// observes only "parsed" or "did not parse": any malformed framing is
// reported as an ARCHIVE_PARSE error with no partial result.
func Parse(text string) (*Document, error) {
	lines := strings.Split(text, "\n")

	if len(lines) == 0 || lines[0] != shebang {
		return nil, errors.New(errors.ErrArchiveParse, "missing executable marker line")
	}

	doc := &Document{}
	i := 1

	isWeb := false
	if i < len(lines) && lines[i] == webOpenFence {
		isWeb = true
		i++
	}

	if i >= len(lines) || !strings.HasPrefix(lines[i], metaPrefix) {
		return nil, errors.New(errors.ErrArchiveParse, "missing metadata line")
	}
	variant, err := parseMeta(lines[i])
	if err != nil {
		return nil, err
	}
	doc.Variant = variant
	i++

	if isWeb != (variant == VariantWebPolyglot) {
		return nil, errors.New(errors.ErrArchiveParse, "web fence does not match declared variant")
	}

	if i >= len(lines) || lines[i] != strings.TrimSuffix(heredocOpen(messageDelim), "\n") {
		return nil, errors.New(errors.ErrArchiveParse, "missing documentation block")
	}
	i++
	message, next, err := readHeredoc(lines, i, messageDelim)
	if err != nil {
		return nil, err
	}
	i = next
	if message != placeholderMessage {
		doc.Message = message
	}

	sawBody := false
	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, postInstallPrefix):
			if err := parsePostInstallLine(line, &doc.PostInstall); err != nil {
				return nil, err
			}
			i++
		case line == strings.TrimSuffix(heredocOpen(webDocDelim), "\n"):
			if variant != VariantWebPolyglot {
				return nil, errors.New(errors.ErrArchiveParse, "web documentation block in non-web archive")
			}
			// Generated quick-start text; nothing to recover from it.
			_, next, err := readHeredoc(lines, i+1, webDocDelim)
			if err != nil {
				return nil, err
			}
			i = next
		case line == strings.TrimSuffix(heredocOpen(payloadDelim), "\n"):
			if variant == VariantVault {
				return nil, errors.New(errors.ErrArchiveParse, "cleartext payload in vault archive")
			}
			entries, next, err := readEntries(lines, i+1)
			if err != nil {
				return nil, err
			}
			doc.Entries = entries
			i = next
			sawBody = true
		case line == strings.TrimSuffix(heredocOpen(vaultDelim), "\n"):
			if variant != VariantVault {
				return nil, errors.New(errors.ErrArchiveParse, "vault blob in cleartext archive")
			}
			blob, next, err := readHeredoc(lines, i+1, vaultDelim)
			if err != nil {
				return nil, err
			}
			doc.VaultBlob = strings.Join(strings.Fields(blob), "")
			i = next
			sawBody = true
		default:
			// Stub, fences, trailing blank lines.
			i++
		}
	}

	if !sawBody {
		return nil, errors.New(errors.ErrArchiveParse, "missing payload")
	}
	return doc, nil
}

func parseMeta(line string) (Variant, error) {
	variant := VariantStandard
	sawFormat, sawVariant := false, false
	for _, field := range strings.Fields(strings.TrimPrefix(line, metaPrefix)) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "format":
			version, err := strconv.Atoi(value)
			if err != nil || version != FormatVersion {
				return 0, errors.Newf(errors.ErrArchiveParse, "unsupported format version %q", value)
			}
			sawFormat = true
		case "variant":
			v, ok := ParseVariant(value)
			if !ok {
				return 0, errors.Newf(errors.ErrArchiveParse, "unknown variant %q", value)
			}
			variant = v
			sawVariant = true
		}
	}
	if !sawFormat || !sawVariant {
		return 0, errors.New(errors.ErrArchiveParse, "incomplete metadata line")
	}
	return variant, nil
}

// readHeredoc collects lines until the delimiter, reversing the
// one-space shift applied to colliding content lines on assembly.
func readHeredoc(lines []string, start int, delim string) (string, int, error) {
	var content []string
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if line == delim {
			return strings.Join(content, "\n"), i + 1, nil
		}
		if line != "" && strings.TrimLeft(line, " ") == delim {
			line = line[1:]
		}
		content = append(content, line)
	}
	return "", 0, errors.Newf(errors.ErrArchiveParse, "unterminated %s block", delim)
}

func parsePostInstallLine(line string, spec *PostInstallSpec) error {
	rest := strings.TrimPrefix(line, postInstallPrefix)
	platform, cmd, ok := strings.Cut(rest, ": ")
	if !ok {
		return errors.Newf(errors.ErrArchiveParse, "malformed post-install line %q", line)
	}
	switch platform {
	case "windows":
		spec.Windows = cmd
	case "posix":
		spec.Posix = cmd
	case "universal":
		spec.Universal = cmd
	default:
		return errors.Newf(errors.ErrArchiveParse, "unknown post-install platform %q", platform)
	}
	return nil
}

func readEntries(lines []string, start int) ([]Entry, int, error) {
	var entries []Entry
	i := start
	for i < len(lines) {
		line := lines[i]
		if line == payloadDelim {
			return entries, i + 1, nil
		}
		if !strings.HasPrefix(line, entryHeader) {
			return nil, 0, errors.Newf(errors.ErrArchiveParse, "unexpected payload line %q", line)
		}
		entry, next, err := readEntry(lines, i)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
		i = next
	}
	return nil, 0, errors.New(errors.ErrArchiveParse, "unterminated payload block")
}

func readEntry(lines []string, i int) (Entry, int, error) {
	header := strings.TrimPrefix(lines[i], entryHeader)

	quoted, rest, err := quotedPrefix(header)
	if err != nil {
		return Entry{}, 0, errors.Newf(errors.ErrArchiveParse, "malformed entry header %q", lines[i])
	}
	path, err := strconv.Unquote(quoted)
	if err != nil {
		return Entry{}, 0, errors.Newf(errors.ErrArchiveParse, "malformed entry path in %q", lines[i])
	}

	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return Entry{}, 0, errors.Newf(errors.ErrArchiveParse, "malformed entry header %q", lines[i])
	}
	kind, ok := ParseKind(fields[0])
	if !ok {
		return Entry{}, 0, errors.Newf(errors.ErrArchiveParse, "unknown entry kind %q", fields[0])
	}
	encoding := fields[1]
	if encoding != "raw" && encoding != "base64" {
		return Entry{}, 0, errors.Newf(errors.ErrArchiveParse, "unknown entry encoding %q", encoding)
	}

	var content []string
	i++
	for ; i < len(lines); i++ {
		if lines[i] == entryEnd {
			data, err := decodeEntryContent(content, encoding)
			if err != nil {
				return Entry{}, 0, errors.Wrapf(err, errors.ErrArchiveParse, "bad content for entry %s", path)
			}
			return Entry{Path: path, Kind: kind, Data: data}, i + 1, nil
		}
		content = append(content, lines[i])
	}
	return Entry{}, 0, errors.Newf(errors.ErrArchiveParse, "unterminated entry %s", path)
}

func decodeEntryContent(content []string, encoding string) ([]byte, error) {
	if encoding == "raw" {
		// Raw entries always end with a newline; see rawSafe.
		return []byte(strings.Join(content, "\n") + "\n"), nil
	}
	return base64.StdEncoding.DecodeString(strings.Join(content, ""))
}

// quotedPrefix splits s into its leading Go-quoted string and the
// remainder.
func quotedPrefix(s string) (string, string, error) {
	prefix, err := strconv.QuotedPrefix(s)
	if err != nil {
		return "", "", err
	}
	return prefix, s[len(prefix):], nil
}
