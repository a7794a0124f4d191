package archive

import (
	"strings"
)

// Kind classifies entry content. It is decided once at collection
// time and carried unchanged through assembly and extraction.
type Kind int

const (
	// Text content is valid UTF-8 and may be embedded verbatim.
	Text Kind = iota
	// Binary content is always embedded base64-encoded.
	Binary
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	if k == Binary {
		return "binary"
	}
	return "text"
}

// ParseKind maps a wire name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "text":
		return Text, true
	case "binary":
		return Binary, true
	}
	return Text, false
}

// Entry is one path + content + kind triple in the payload. Path is
// relative to the archive root and forward-slash separated.
type Entry struct {
	Path string
	Kind Kind
	Data []byte
}

// PostInstallSpec maps platforms to a shell command executed after
// extraction. Universal is the fallback when the platform-specific
// command is empty.
type PostInstallSpec struct {
	Windows   string
	Posix     string
	Universal string
}

// IsZero reports whether no command is configured.
func (s PostInstallSpec) IsZero() bool {
	return s.Windows == "" && s.Posix == "" && s.Universal == ""
}

// CommandFor selects the command for the given GOOS, falling back to
// the universal command.
func (s PostInstallSpec) CommandFor(goos string) string {
	var cmd string
	if goos == "windows" {
		cmd = s.Windows
	} else {
		cmd = s.Posix
	}
	if cmd == "" {
		cmd = s.Universal
	}
	return cmd
}

// ParsePostInstall parses the CLI post-install argument. A value with
// `win:` or `unix:` prefix tags is comma-split into per-platform
// commands; anything else is a universal command.
func ParsePostInstall(arg string) PostInstallSpec {
	if arg == "" {
		return PostInstallSpec{}
	}
	if !strings.Contains(arg, "win:") && !strings.Contains(arg, "unix:") {
		return PostInstallSpec{Universal: arg}
	}
	var spec PostInstallSpec
	for _, part := range strings.Split(arg, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "win:"):
			spec.Windows = strings.TrimPrefix(part, "win:")
		case strings.HasPrefix(part, "unix:"):
			spec.Posix = strings.TrimPrefix(part, "unix:")
		}
	}
	return spec
}

// Document is the logical content of an archive: a pure function of
// the packing inputs, consumed any number of times by independent
// extraction runs.
type Document struct {
	Variant     Variant
	Message     string
	PostInstall PostInstallSpec

	// Entries holds the cleartext payload. Empty for Vault archives.
	Entries []Entry

	// VaultBlob is base64(salt || ciphertext) for Vault archives.
	VaultBlob string
}
