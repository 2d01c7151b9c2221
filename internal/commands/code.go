package commands

import (
	"strings"
	"unicode"
)

// MissingCodeBlockReply is sent when a command needs code and got none.
const MissingCodeBlockReply = "Missing code block. Please use the following markdown:\n" +
	"``\u200B`rust\ncode here\n``\u200B`"

// ExtractCode returns the code inside a fenced (```lang ... ```) or inline
// (`...`) block making up the whole trimmed body.
func ExtractCode(body string) (string, error) {
	body = strings.TrimSpace(body)

	var code string
	switch {
	case strings.HasPrefix(body, "```") && strings.HasSuffix(body, "```"):
		start := strings.IndexFunc(body, unicode.IsSpace)
		end := strings.LastIndex(body, "```")
		if start < 0 || start > end {
			return "", ErrMissingCodeBlock
		}
		code = body[start:end]
	case len(body) > 2 && strings.HasPrefix(body, "`") && strings.HasSuffix(body, "`"):
		code = body[1 : len(body)-1]
	default:
		return "", ErrMissingCodeBlock
	}

	return strings.TrimSpace(code), nil
}
