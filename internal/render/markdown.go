package render

import (
	"strings"

	"github.com/go-telegram/bot"
)

// Inside code spans Telegram only requires ` and \ to be escaped.
var codeEscaper = strings.NewReplacer(`\`, `\\`, "`", "\\`")

// Inside the URL part of an inline link only ) and \ need escaping.
var linkEscaper = strings.NewReplacer(`\`, `\\`, `)`, `\)`)

// Escape makes plain text safe for MarkdownV2.
func Escape(text string) string {
	return bot.EscapeMarkdown(text)
}

// Bold renders text as a bold entity.
func Bold(text string) string {
	return "*" + Escape(text) + "*"
}

// Code renders text as an inline code entity.
func Code(text string) string {
	return "`" + codeEscaper.Replace(text) + "`"
}

// Link renders an inline link.
func Link(text, url string) string {
	return "[" + Escape(text) + "](" + linkEscaper.Replace(url) + ")"
}

// Blockquote quotes every line of an already formatted text.
func Blockquote(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = ">" + line
	}
	return strings.Join(lines, "\n")
}
