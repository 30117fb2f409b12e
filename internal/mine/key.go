package mine

import (
	"regexp"
	"strings"

	"github.com/smilemakc/boxflow/internal/hierr"
)

// Sep joins key segments in the canonical dotted form.
const Sep = "."

// renam matches a valid key segment, box name or boxer name.
var renam = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Renam reports whether name matches the identifier pattern required
// for boxes, boxers and key segments.
func Renam(name string) bool {
	return renam.MatchString(name)
}

// Key is the canonical dotted form of a hierarchical bag key. A leading
// separator stands for the permitted empty leading segment, so the
// segments ("", "boxer", "b", "end") canonicalize to ".boxer.b.end".
type Key string

// KeyFrom builds a Key from ordered segments. Only the first segment
// may be empty; every other segment must match the identifier pattern.
func KeyFrom(segs ...string) (Key, error) {
	if len(segs) == 0 {
		return "", hierr.NewInvalidKey("", "empty key")
	}
	for i, seg := range segs {
		if seg == "" {
			if i == 0 {
				continue
			}
			return "", hierr.NewInvalidKey(strings.Join(segs, Sep), "empty segment")
		}
		if !Renam(seg) {
			return "", hierr.NewInvalidKey(strings.Join(segs, Sep), "segment "+seg)
		}
	}
	if len(segs) == 1 && segs[0] == "" {
		return "", hierr.NewInvalidKey("", "empty key")
	}
	return Key(strings.Join(segs, Sep)), nil
}

// ParseKey builds a Key from its dotted string form, validating every
// segment. A single leading separator is permitted.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return "", hierr.NewInvalidKey(s, "empty key")
	}
	return KeyFrom(strings.Split(s, Sep)...)
}

// Segs returns the ordered segments of the key. The permitted empty
// leading segment is preserved.
func (k Key) Segs() []string {
	return strings.Split(string(k), Sep)
}

func (k Key) String() string {
	return string(k)
}
