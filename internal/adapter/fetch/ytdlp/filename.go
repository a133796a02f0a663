package ytdlp

import (
	"strings"
	"unicode/utf8"
)

// maxBaseLength caps the sanitized title so the full filename (plus quality
// descriptor and extension) stays under common filesystem limits.
const maxBaseLength = 180

// unsafeChars are replaced in download filenames: path separators, shell
// metacharacters that routinely break ffmpeg invocations, and quoting.
var unsafeChars = map[rune]bool{
	'/':  true,
	'\\': true,
	':':  true,
	'"':  true,
	'\'': true,
	'?':  true,
	'*':  true,
	'|':  true,
	'<':  true,
	'>':  true,
}

// sanitizeTitle turns a video title into a filesystem-safe base name.
// Unicode is preserved; control characters and unsafe punctuation become
// underscores, whitespace collapses to single underscores.
func sanitizeTitle(title string) string {
	var sb strings.Builder
	sb.Grow(len(title))

	lastUnderscore := false
	for _, r := range title {
		replace := r < 32 || r == 127 || unsafeChars[r] || r == ' '
		if replace {
			if !lastUnderscore {
				sb.WriteRune('_')
				lastUnderscore = true
			}
			continue
		}
		sb.WriteRune(r)
		lastUnderscore = false
	}

	result := strings.Trim(sb.String(), "_")
	if result == "" {
		return "video"
	}
	return truncateToBytes(result, maxBaseLength)
}

// truncateToBytes cuts s to at most maxBytes without splitting a rune.
func truncateToBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:maxBytes])
		if r != utf8.RuneError {
			break
		}
		maxBytes--
	}
	return s[:maxBytes]
}
