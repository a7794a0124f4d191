package collect

import (
	"unicode/utf8"

	"github.com/arthur-debert/seda/pkg/archive"
)

// Classify decides whether content is text or binary. Valid UTF-8 is
// text; anything else is binary. A binary blob that happens to be
// valid UTF-8 is classified as text; the content still round-trips
// byte-identically either way.
func Classify(data []byte) archive.Kind {
	if utf8.Valid(data) {
		return archive.Text
	}
	return archive.Binary
}
