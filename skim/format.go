package skim

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes decoded page content with xxhash. The fingerprint
// is stored in the journal so unchanged pages can be told apart from
// changed ones across runs.
func Fingerprint(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

// TruncateURI shortens a URI for display, keeping its tail.
func TruncateURI(uri string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		// No room for the "..." marker.
		return uri[:min(len(uri), maxLen)]
	}
	if len(uri) <= maxLen {
		return uri
	}
	return "..." + uri[len(uri)-maxLen+3:]
}

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
