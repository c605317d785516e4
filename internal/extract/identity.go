// Package extract derives the persisted shape of a feed entry: its identity,
// bounded summary and tags.
package extract

import (
	"crypto/md5" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"strings"
)

// ID returns the stable identifier for a canonical link: the hex MD5 of its
// UTF-8 bytes.
func ID(link string) string {
	sum := md5.Sum([]byte(link)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// Tags collapses category labels into a comma-separated string. Blank labels
// are dropped; the result is empty when nothing remains.
func Tags(categories []string) string {
	if len(categories) == 0 {
		return ""
	}
	kept := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, ",")
}
