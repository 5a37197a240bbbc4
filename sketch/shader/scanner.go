// scanner.go implements the shader source scanner. It separates a raw shader
// snippet into complete top-level function definitions and the remaining
// "loose" statements that the assembler later wraps in a synthesized entry
// point. The scanner is a single left-to-right character cursor that counts
// brace depth while skipping line comments, nested block comments, and quoted
// text, so braces inside those regions never unbalance a function body.
//
// Scanning never fails: when the cursor cannot complete cleanly (unterminated
// group, corrupt input) the scanner falls back to a best-effort line-based
// split and marks the result as recovered. Invalid shader text is not this
// layer's concern; the device-side compiler reports it.
package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glazegpu/glaze/common"
)

// ScanResult holds the outcome of scanning one shader snippet.
type ScanResult struct {
	// Functions are the complete top-level function definitions in source
	// order, each spanning "fn" through its matching closing brace.
	Functions []string

	// Body is the loose statements outside any function, one trimmed line per
	// statement joined by newlines, blank lines dropped.
	Body string

	// Recovered is true when the cursor scan failed and the result was
	// produced by the line-based fallback split instead.
	Recovered bool
}

// ExtractFunctionsAndBody splits shader source into top-level function
// definitions and the loose statement body. It never returns an error: scan
// failures are logged and recovered by a line-based best-effort split, since
// malformed text still has to reach the device-side compiler for a real
// diagnostic.
//
// Parameters:
//   - src: raw shader source text, with or without function definitions
//
// Returns:
//   - ScanResult: the extracted functions and body, with Recovered set when
//     the fallback path produced them
func ExtractFunctionsAndBody(src string) ScanResult {
	res, err := scan(src)
	if err != nil {
		common.Logger().Warn("shader scan failed, recovering with line-based split", "error", err)
		res = lineSplit(src)
		res.Recovered = true
	}
	return res
}

// scan is the primary cursor pass over the source.
func scan(src string) (ScanResult, error) {
	var fns []string
	var lines []string

	i := 0
	for i < len(src) {
		c := src[i]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			i++
			continue
		}
		if matchKeyword(src, i, "fn") {
			end, err := scanFunction(src, i)
			if err != nil {
				return ScanResult{}, err
			}
			fns = append(fns, src[i:end])
			i = end
			continue
		}
		// Comments between declarations carry nothing forward; drop them so a
		// multi-line block comment cannot be split across loose lines.
		if next, ok := skipComment(src, i); ok {
			i = next
			continue
		}
		// Anything else is one loose statement line, consumed through the
		// newline so functions are never taken apart line by line.
		line := src[i:]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
			i += nl + 1
		} else {
			i = len(src)
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	return ScanResult{Functions: fns, Body: strings.Join(lines, "\n")}, nil
}

// scanFunction consumes one complete function definition starting at the "fn"
// keyword and returns the index one past its closing brace. The signature is
// not parsed further: the name is one identifier, the parameter list is a
// balanced parenthesis group (attribute parens nest), and an optional return
// clause runs until the opening brace of the body.
func scanFunction(src string, start int) (int, error) {
	i := start + len("fn")

	i = skipSpace(src, i)
	nameStart := i
	for i < len(src) && isIdentByte(src[i]) {
		i++
	}
	if i == nameStart {
		return 0, fmt.Errorf("expected function name at offset %d", nameStart)
	}
	name := src[nameStart:i]

	i = skipSpace(src, i)
	if i >= len(src) || src[i] != '(' {
		return 0, fmt.Errorf("expected parameter list for function %q", name)
	}
	i, err := scanGroup(src, i, '(', ')')
	if err != nil {
		return 0, fmt.Errorf("failed to scan parameters of function %q: %w", name, err)
	}

	// Return clause: everything up to the body's opening brace. A semicolon
	// here means there is no body to scan, which the cursor cannot represent.
	for i < len(src) && src[i] != '{' {
		if next, ok := skipComment(src, i); ok {
			i = next
			continue
		}
		if next, ok, serr := skipQuoted(src, i); serr != nil {
			return 0, serr
		} else if ok {
			i = next
			continue
		}
		if src[i] == ';' {
			return 0, fmt.Errorf("function signature at offset %d ends without a body", start)
		}
		i++
	}
	if i >= len(src) {
		return 0, fmt.Errorf("function at offset %d has no body", start)
	}

	end, err := scanGroup(src, i, '{', '}')
	if err != nil {
		return 0, fmt.Errorf("failed to scan body of function at offset %d: %w", start, err)
	}
	return end, nil
}

// scanGroup consumes one balanced group from the opening delimiter at src[i]
// through its matching closer, counting nesting and skipping comments and
// quoted text, and returns the index one past the closer.
func scanGroup(src string, i int, open, closing byte) (int, error) {
	depth := 0
	for i < len(src) {
		if next, ok := skipComment(src, i); ok {
			i = next
			continue
		}
		if next, ok, err := skipQuoted(src, i); err != nil {
			return 0, err
		} else if ok {
			i = next
			continue
		}
		switch src[i] {
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
		i++
	}
	return 0, fmt.Errorf("unterminated %q group", string(open))
}

// skipComment consumes a line or block comment starting at src[i]. Block
// comments nest. Returns the index past the comment and whether one was
// present; an unterminated block comment consumes to the end of input.
func skipComment(src string, i int) (int, bool) {
	if i+1 >= len(src) || src[i] != '/' {
		return i, false
	}
	switch src[i+1] {
	case '/':
		for i < len(src) && src[i] != '\n' {
			i++
		}
		return i, true
	case '*':
		depth := 1
		i += 2
		for i < len(src) && depth > 0 {
			if i+1 < len(src) && src[i] == '/' && src[i+1] == '*' {
				depth++
				i += 2
				continue
			}
			if i+1 < len(src) && src[i] == '*' && src[i+1] == '/' {
				depth--
				i += 2
				continue
			}
			i++
		}
		return i, true
	}
	return i, false
}

// skipQuoted consumes a single- or double-quoted run starting at src[i] so
// braces inside it never count toward balance. The closing quote must appear
// before the next newline; hitting the end of input first is a scan failure.
func skipQuoted(src string, i int) (int, bool, error) {
	if i >= len(src) || (src[i] != '"' && src[i] != '\'') {
		return i, false, nil
	}
	quote := src[i]
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1, true, nil
		case '\n':
			// Quotes never span lines; treat the newline as the terminator.
			return i, true, nil
		}
		i++
	}
	return 0, false, errors.New("unterminated quoted text")
}

// lineSplit is the recovery path: a line-based best-effort split that treats
// lines starting with the function keyword through brace balance as
// functions and everything else as body.
func lineSplit(src string) ScanResult {
	var fns []string
	var body []string
	var current []string
	depth := 0
	inFunction := false

	for line := range strings.SplitSeq(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if !inFunction {
			if matchKeyword(trimmed, 0, "fn") {
				inFunction = true
				depth = 0
				current = current[:0]
			} else {
				if trimmed != "" {
					body = append(body, trimmed)
				}
				continue
			}
		}
		current = append(current, line)
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth <= 0 && strings.Contains(line, "}") {
			fns = append(fns, strings.Join(current, "\n"))
			current = nil
			inFunction = false
		}
	}
	if inFunction && len(current) > 0 {
		fns = append(fns, strings.Join(current, "\n"))
	}

	return ScanResult{Functions: fns, Body: strings.Join(body, "\n")}
}

// matchKeyword reports whether the keyword occurs at src[i] as a whole
// identifier rather than a prefix or suffix of a longer one.
func matchKeyword(src string, i int, keyword string) bool {
	if i+len(keyword) > len(src) || src[i:i+len(keyword)] != keyword {
		return false
	}
	if i > 0 && isIdentByte(src[i-1]) {
		return false
	}
	if i+len(keyword) < len(src) && isIdentByte(src[i+len(keyword)]) {
		return false
	}
	return true
}

// skipSpace returns the index of the first byte at or after i that is not
// horizontal or vertical whitespace.
func skipSpace(src string, i int) int {
	for i < len(src) {
		switch src[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}

func isIdentByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
