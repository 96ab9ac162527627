package utils

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

// MaxDisplayNameLength caps folder display names built from project data,
// leaving headroom below the validator limit.
const MaxDisplayNameLength = 255

// transliterations folds the accented letters common in project
// descriptions down to ASCII before sanitizing.
var transliterations = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ã", "a", "ä", "a", "å", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ò", "o", "ó", "o", "ô", "o", "õ", "o", "ö", "o", "ø", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ý", "y", "ÿ", "y",
	"ç", "c", "ñ", "n", "ß", "ss", "æ", "ae",
	"À", "A", "Á", "A", "Â", "A", "Ã", "A", "Ä", "A", "Å", "A",
	"È", "E", "É", "E", "Ê", "E", "Ë", "E",
	"Ì", "I", "Í", "I", "Î", "I", "Ï", "I",
	"Ò", "O", "Ó", "O", "Ô", "O", "Õ", "O", "Ö", "O", "Ø", "O",
	"Ù", "U", "Ú", "U", "Û", "U", "Ü", "U",
	"Ç", "C", "Ñ", "N", "Æ", "AE",
)

// SanitizeProjectCode strips everything outside letters, digits, hyphens
// and underscores. The code is used verbatim in folder names and lookups.
func SanitizeProjectCode(code string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, strings.TrimSpace(code))
}

// SanitizeDescription turns a free-text project description into a safe
// folder name fragment: transliterated, non-name characters replaced with
// underscores, runs collapsed.
func SanitizeDescription(text string) string {
	text = transliterations.Replace(strings.TrimSpace(text))

	text = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, text)

	// Remove multiple consecutive underscores
	for strings.Contains(text, "__") {
		text = strings.ReplaceAll(text, "__", "_")
	}

	return strings.Trim(text, "_")
}

// BuildFolderDisplayName composes the remote folder name for a project:
// the bare code, or code_description. Truncation always preserves the
// code so lookups by prefix keep working.
func BuildFolderDisplayName(code, description string) string {
	code = SanitizeProjectCode(code)
	desc := SanitizeDescription(description)
	if desc == "" {
		return code
	}

	name := code + "_" + desc
	if utf8.RuneCountInString(name) <= MaxDisplayNameLength {
		return name
	}

	budget := MaxDisplayNameLength - utf8.RuneCountInString(code) - 1
	if budget <= 0 {
		return truncateRunes(code, MaxDisplayNameLength)
	}
	return strings.TrimRight(code+"_"+truncateRunes(desc, budget), "_")
}

// SuffixedName inserts _n before the extension, so report.pdf becomes
// report_2.pdf and a folder Photos becomes Photos_2.
func SuffixedName(name string, n int) string {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%d%s", stem, n, ext)
}

// JoinDrivePath joins path fragments into a normalized absolute remote
// path with single slashes.
func JoinDrivePath(parts ...string) string {
	segments := []string{}
	for _, part := range parts {
		for _, seg := range strings.Split(part, "/") {
			if seg != "" {
				segments = append(segments, seg)
			}
		}
	}
	return "/" + strings.Join(segments, "/")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// SliceContains checks if slice contains element
func SliceContains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
