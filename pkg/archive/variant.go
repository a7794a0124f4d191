package archive

import "strings"

// Variant is the feature combination determining the archive suffix
// and which runtime logic runs on extraction.
type Variant int

const (
	VariantStandard Variant = iota
	VariantMessage
	VariantPipeline
	VariantMessageAndPipeline
	VariantVault
	VariantWebPolyglot
)

// String returns the wire name written to the metadata line.
func (v Variant) String() string {
	switch v {
	case VariantMessage:
		return "message"
	case VariantPipeline:
		return "pipeline"
	case VariantMessageAndPipeline:
		return "message-pipeline"
	case VariantVault:
		return "vault"
	case VariantWebPolyglot:
		return "web"
	}
	return "standard"
}

// ParseVariant maps a wire name back to a Variant.
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case "standard":
		return VariantStandard, true
	case "message":
		return VariantMessage, true
	case "pipeline":
		return VariantPipeline, true
	case "message-pipeline":
		return VariantMessageAndPipeline, true
	case "vault":
		return VariantVault, true
	case "web":
		return VariantWebPolyglot, true
	}
	return VariantStandard, false
}

// Suffix returns the canonical file suffix for the variant.
func (v Variant) Suffix() string {
	switch v {
	case VariantMessage:
		return ".commit.seda"
	case VariantPipeline:
		return ".construct.seda"
	case VariantMessageAndPipeline:
		return ".smartpatch.seda"
	case VariantVault:
		return ".vault.seda"
	case VariantWebPolyglot:
		return ".web.seda"
	}
	return ".seda"
}

// Select computes the archive variant from the feature flags. Vault
// overrides everything, the web wrapper overrides the
// message/pipeline-derived naming, and the remaining four variants
// follow the message/pipeline combination. Message and pipeline
// features still function inside Vault and WebPolyglot archives; only
// the suffix and wrapper differ.
func Select(hasMessage, hasPipeline, isVault, isWeb bool) Variant {
	switch {
	case isVault:
		return VariantVault
	case isWeb:
		return VariantWebPolyglot
	case hasMessage && hasPipeline:
		return VariantMessageAndPipeline
	case hasMessage:
		return VariantMessage
	case hasPipeline:
		return VariantPipeline
	}
	return VariantStandard
}

// familySuffixes lists every suffix this tool may have produced,
// compound forms first so they are stripped whole. The plain script
// suffixes are included so a caller-given "name.sh" does not become
// "name.sh.seda".
var familySuffixes = []string{
	".smartpatch.seda",
	".construct.seda",
	".commit.seda",
	".vault.seda",
	".web.seda",
	".seda",
	".sh",
	".py",
}

// ApplySuffix strips one stale suffix of the archive family from name
// and appends the variant's canonical suffix. Repacking an already
// suffixed name therefore never accumulates compound suffixes. Only a
// single suffix is stripped: a doubled form like "x.seda.seda" keeps
// its inner suffix.
func ApplySuffix(name string, v Variant) string {
	lower := strings.ToLower(name)
	for _, suffix := range familySuffixes {
		if strings.HasSuffix(lower, suffix) {
			name = name[:len(name)-len(suffix)]
			break
		}
	}
	return name + v.Suffix()
}
