package forward

import "strings"

// markdownV2Special is Telegram's MarkdownV2 special character set; every
// occurrence must be backslash-escaped in text sent with parse_mode
// MarkdownV2.
const markdownV2Special = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdownV2 escapes every MarkdownV2 special character in text.
func EscapeMarkdownV2(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(markdownV2Special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
