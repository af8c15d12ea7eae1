package util

import (
	"regexp"
	"strings"
)

// Reader ids are embedded in broker topics, so separators and wildcards are
// not allowed.
var readerIDRegex = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,64}$`)

func IsValidReaderID(s string) bool {
	return readerIDRegex.MatchString(s)
}

// NormalizeTagUID canonicalises a hardware UID so that "04:a1:b2", "04-A1-B2"
// and "04A1B2" address the same tag. Colons, dashes and whitespace are dropped.
func NormalizeTagUID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.TrimSpace(s) {
		switch r {
		case ':', '-', ' ', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

func IsValidTagUID(s string) bool {
	return s != "" && len(s) <= 128
}
