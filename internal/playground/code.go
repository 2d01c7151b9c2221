package playground

import (
	"fmt"
	"net/url"
	"strings"
)

// EntryPoint is the marker that makes a snippet a runnable program.
const EntryPoint = "fn main"

// CrateTypeFor classifies code as a binary when it mentions EntryPoint.
// This is a plain substring test, so a string literal or comment containing
// the marker also counts.
func CrateTypeFor(code string) CrateType {
	if strings.Contains(code, EntryPoint) {
		return CrateBinary
	}
	return CrateLibrary
}

// NewExecuteRequest builds an execute call for code under flags.
func NewExecuteRequest(code string, flags Flags) ExecuteRequest {
	return ExecuteRequest{
		Channel:   flags.Channel,
		Edition:   flags.Edition,
		Code:      code,
		CrateType: CrateTypeFor(code),
		Mode:      flags.Mode,
		Tests:     false,
	}
}

// NewMiriRequest builds a miri call for code under flags.
func NewMiriRequest(code string, flags Flags) MiriRequest {
	return MiriRequest{
		Edition: flags.Edition,
		Code:    code,
	}
}

// WrapEval turns an expression into a program printing its Debug form.
func WrapEval(code string) string {
	var b strings.Builder
	b.WriteString("fn main() {\n    println!(\"{:?}\", {\n")
	for _, line := range strings.Split(strings.TrimSuffix(code, "\n"), "\n") {
		b.WriteString("        ")
		b.WriteString(strings.TrimSuffix(line, "\r"))
		b.WriteString("\n")
	}
	b.WriteString("    });\n}")
	return b.String()
}

// Render picks the output streams to show. With warn both streams are shown,
// stderr first; otherwise stdout on success and stderr on failure.
func Render(res Result, warn bool) string {
	switch {
	case warn:
		return res.Stderr + "\n" + res.Stdout
	case res.Success:
		return res.Stdout
	default:
		return res.Stderr
	}
}

// ShareURL links to the playground with the gist loaded and flags selected.
func ShareURL(base string, flags Flags, gistID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing share url: %w", err)
	}
	q := u.Query()
	q.Set("version", string(flags.Channel))
	q.Set("mode", string(flags.Mode))
	q.Set("edition", string(flags.Edition))
	q.Set("gist", gistID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
