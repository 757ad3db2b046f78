package discord

import (
	"regexp"
	"strings"
)

var urlNoEmbedRegex = regexp.MustCompile(`https?://[^\s\[\]()<>]+`)

// WrapURLsNoEmbed wraps URLs in angle brackets so Discord does not unfurl them. Trailing
// punctuation stays outside the brackets.
func WrapURLsNoEmbed(text string) string {
	matches := urlNoEmbedRegex.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + len(matches)*2)
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		b.WriteString(text[last:start])
		last = end

		if start > 0 && text[start-1] == '<' && end < len(text) && text[end] == '>' {
			b.WriteString(text[start:end])
			continue
		}
		core, punct := trimTrailingPunctuation(text[start:end])
		if core == "" {
			b.WriteString(text[start:end])
			continue
		}
		b.WriteString("<" + core + ">" + punct)
	}
	b.WriteString(text[last:])
	return b.String()
}

func trimTrailingPunctuation(s string) (string, string) {
	i := len(s)
	for i > 0 && strings.ContainsRune(".,;:!?)", rune(s[i-1])) {
		i--
	}
	return s[:i], s[i:]
}

// siteLink joins the public site URL and an app path.
func siteLink(site, path string) string {
	if site == "" || path == "" {
		return ""
	}
	return strings.TrimRight(site, "/") + path
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
