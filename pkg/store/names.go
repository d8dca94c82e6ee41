package store

import "strings"

// SanitizeCollectionName maps a caller-controlled collection name onto the
// safe identifier charset (lowercase alphanumerics plus hyphen and
// underscore, starting with a letter). Collection names are interpolated
// into DDL text, so every identifier position goes through this first.
func SanitizeCollectionName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	sanitized := b.String()
	if sanitized == "" {
		return "c"
	}
	if first := sanitized[0]; first < 'a' || first > 'z' {
		sanitized = "c_" + sanitized
	}
	return sanitized
}

// IndexCollectionName derives the physical collection backing a vector
// index on one property of an index.
func IndexCollectionName(indexName, propertyName string) string {
	return SanitizeCollectionName(indexName + "_" + propertyName)
}

// quoteIdentifier wraps a sanitized name in double quotes so it is valid in
// identifier position even when it contains a hyphen. The sanitized charset
// cannot contain quote characters, so no escaping is needed.
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}
