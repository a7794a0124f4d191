package collect

import "strings"

// ArchiveSuffix is the base of the archive's own suffix family. It is
// part of the default ignore set so packing a directory never embeds
// prior archives, unless recursion is explicitly requested.
const ArchiveSuffix = ".seda"

// Rules is the ignore configuration applied during traversal. It is
// built once at construction time and never mutated afterwards.
type Rules struct {
	dirs       map[string]struct{}
	extensions []string
}

// NewRules builds ignore rules from directory names and extension
// suffixes. When allowArchives is true the archive's own suffix
// family is dropped from the extension set, enabling recursive
// packing of nested archives.
func NewRules(dirs, extensions []string, allowArchives bool) Rules {
	rules := Rules{dirs: make(map[string]struct{}, len(dirs))}
	for _, dir := range dirs {
		rules.dirs[dir] = struct{}{}
	}
	for _, ext := range extensions {
		if allowArchives && ext == ArchiveSuffix {
			continue
		}
		rules.extensions = append(rules.extensions, ext)
	}
	return rules
}

// SkipDir reports whether a directory with this name is pruned, at
// any nesting depth.
func (r Rules) SkipDir(name string) bool {
	_, skip := r.dirs[name]
	return skip
}

// SkipFile reports whether a file with this name is skipped.
// Matching is suffix-based and case-sensitive, not dot-bounded, so
// ".seda" also matches the compound forms like ".commit.seda".
func (r Rules) SkipFile(name string) bool {
	for _, ext := range r.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
