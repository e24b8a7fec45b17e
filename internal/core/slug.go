package core

import (
	"strings"
	"unicode"
)

// fallbackSlug is returned when nothing usable survives slugging.
const fallbackSlug = "service"

// maxImageTagLen is the longest repository name accepted by docker and podman.
const maxImageTagLen = 128

// Slugify converts a name into a lowercase hyphen slug.
// - allowed: [a-z0-9-]
// - whitespace/underscore/dot => hyphen
// - drop all other chars
// - collapse multiple hyphens
// - trim leading/trailing hyphens
// - maxLen enforced (truncate after cleanup)
// - after truncation, re-trim leading/trailing hyphens and collapse repeats
// if result empty or maxLen <= 0 => "service"
func Slugify(name string, maxLen int) string {
	if maxLen <= 0 {
		return fallbackSlug
	}

	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '_' || r == '-' || r == '.':
			b.WriteRune('-')
		}
	}

	result := collapseHyphens(b.String())
	result = strings.Trim(result, "-")

	if len(result) > maxLen {
		result = result[:maxLen]
	}

	result = collapseHyphens(result)
	result = strings.Trim(result, "-")

	if result == "" {
		return fallbackSlug
	}
	return result
}

// ImageTag returns the container image name used for a service.
func ImageTag(serviceName string) string {
	return Slugify(serviceName, maxImageTagLen)
}

// collapseHyphens replaces multiple consecutive hyphens with a single hyphen.
func collapseHyphens(s string) string {
	var b strings.Builder
	prevHyphen := false
	for _, r := range s {
		if r == '-' {
			if !prevHyphen {
				b.WriteRune(r)
				prevHyphen = true
			}
		} else {
			b.WriteRune(r)
			prevHyphen = false
		}
	}
	return b.String()
}
