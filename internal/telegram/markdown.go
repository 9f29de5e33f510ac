package telegram

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const fence = "```"

// SplitMessage splits a message into chunks of at most maxLen characters,
// preferring newline boundaries. A code block cut by a split is closed at the
// end of one chunk and reopened at the start of the next.
func SplitMessage(text string, maxLen int) []string {
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	limit := maxLen
	if strings.Contains(text, fence) {
		limit -= len(fence+"\n") + len("\n"+fence)
	}

	var parts []string
	runes := []rune(text)
	for len(runes) > 0 {
		if len(runes) <= limit {
			parts = append(parts, string(runes))
			break
		}

		splitAt := limit
		if nl := strings.LastIndex(string(runes[:limit]), "\n"); nl >= 0 {
			if at := utf8.RuneCountInString(string(runes[:limit])[:nl]) + 1; at > limit/2 {
				splitAt = at
			}
		}

		parts = append(parts, string(runes[:splitAt]))
		runes = runes[splitAt:]
	}

	open := false
	for i, part := range parts {
		if open {
			part = fence + "\n" + part
		}
		if strings.Count(part, fence)%2 != 0 {
			part += "\n" + fence
			open = true
		} else {
			open = false
		}
		parts[i] = part
	}
	return parts
}

var headingRe = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.*)$`)

// FormatReply rewrites a model reply into Telegram's legacy Markdown.
// Code is passed through untouched and left closed. In prose, headings become
// bold lines, "**" becomes "*" and "-" bullets become "•". Stray "_" and
// "*" that would open an entity are escaped.
func FormatReply(text string) string {
	if strings.Count(text, fence)%2 != 0 {
		text += "\n" + fence
	}

	var b strings.Builder
	for _, seg := range splitCode(text) {
		if seg.code {
			b.WriteString(closeInline(seg.text))
			continue
		}
		b.WriteString(formatProse(seg.text))
	}
	return b.String()
}

type segment struct {
	text string
	code bool
}

// splitCode cuts text into alternating prose and code segments. Code
// segments keep their backtick delimiters.
func splitCode(text string) []segment {
	var segs []segment
	add := func(s string, code bool) {
		if s != "" {
			segs = append(segs, segment{text: s, code: code})
		}
	}

	start := 0
	inBlock, inInline := false, false
	for i := 0; i < len(text); {
		switch {
		case !inInline && strings.HasPrefix(text[i:], fence):
			if inBlock {
				i += len(fence)
				add(text[start:i], true)
				start = i
			} else {
				add(text[start:i], false)
				start = i
				i += len(fence)
			}
			inBlock = !inBlock
		case !inBlock && text[i] == '`':
			if inInline {
				i++
				add(text[start:i], true)
				start = i
			} else {
				add(text[start:i], false)
				start = i
				i++
			}
			inInline = !inInline
		default:
			i++
		}
	}
	add(text[start:], inBlock || inInline)
	return segs
}

func closeInline(code string) string {
	if !strings.HasPrefix(code, fence) && !strings.HasSuffix(code[1:], "`") {
		return code + "`"
	}
	return code
}

func formatProse(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			lines[i] = "*" + escapeAll(strings.ReplaceAll(m[1], "**", ""), '*') + "*"
			continue
		}

		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			line = line[:len(line)-len(trimmed)] + "• " + trimmed[2:]
		}
		line = strings.ReplaceAll(line, "**", "*")
		line = escapeIntraword(line, '_')
		line = balance(line, '*')
		line = balance(line, '_')
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// escapeIntraword escapes delim between two letters or digits, as in
// snake_case, where Telegram would otherwise open an entity.
func escapeIntraword(s string, delim rune) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if r == delim && i > 0 && i+1 < len(runes) && isWord(runes[i-1]) && isWord(runes[i+1]) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// balance escapes the last unescaped delim when a line holds an odd number.
func balance(s string, delim rune) string {
	runes := []rune(s)
	last, count := -1, 0
	for i, r := range runes {
		if r == delim && (i == 0 || runes[i-1] != '\\') {
			last = i
			count++
		}
	}
	if count%2 == 0 {
		return s
	}
	return string(runes[:last]) + "\\" + string(runes[last:])
}

func escapeAll(s string, delim rune) string {
	return strings.ReplaceAll(s, string(delim), "\\"+string(delim))
}

func isWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
