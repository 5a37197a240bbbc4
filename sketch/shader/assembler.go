// assembler.go turns body snippets into complete compute shader source. The
// pipeline is pure text construction: substitute environment constants, inject
// referenced noise-library blocks, then either pass a complete program through
// untouched or wrap the scanned loose body in a synthesized entry point.
// Malformed shader text is never an error here; the device-side compiler is
// the authority on validity.
package shader

import (
	"fmt"
	"regexp"
	"strings"
)

// Env carries the per-sketch values the assembler substitutes into shader
// source and the hook for the noise library's one-time support resource.
type Env struct {
	// Width is the output surface width in pixels, substituted for whole-word
	// canvasWidth occurrences.
	Width float32

	// Height is the output surface height in pixels, substituted for
	// whole-word canvasHeight occurrences.
	Height float32

	// EnsureNoise is invoked each time a noise-library block is injected.
	// The owner creates the shared offset buffer on the first call and must
	// treat later calls as no-ops.
	EnsureNoise func()
}

var (
	// canvasWidthRegex matches the reserved width identifier as a whole word.
	canvasWidthRegex = regexp.MustCompile(`\bcanvasWidth\b`)

	// canvasHeightRegex matches the reserved height identifier as a whole word.
	canvasHeightRegex = regexp.MustCompile(`\bcanvasHeight\b`)

	// mainEntryRegex matches an existing main entry-point definition, which
	// short-circuits entry synthesis.
	mainEntryRegex = regexp.MustCompile(`\bfn\s+main\b`)
)

// Templatef renders a shader body template by interpolating the given values,
// with fmt.Sprintf semantics. It exists so call sites composing shader
// snippets read as template rendering rather than generic formatting.
//
// Parameters:
//   - format: the template text with fmt verbs for each interpolated value
//   - args: the values to interpolate
//
// Returns:
//   - string: the rendered snippet
func Templatef(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// Expand applies the environment substitutions without entry-point synthesis:
// whole-word canvasWidth and canvasHeight become the current surface size
// formatted to two decimal places, referenced-but-undefined noise-library
// blocks are prepended exactly once each, and surrounding whitespace is
// trimmed. Render pass sources, which are complete programs, go through
// Expand alone.
//
// Parameters:
//   - src: shader source text, a fragment or a complete program
//   - env: the substitution values and noise hook
//
// Returns:
//   - string: the expanded source
func Expand(src string, env Env) string {
	src = canvasWidthRegex.ReplaceAllString(src, fmt.Sprintf("%.2f", env.Width))
	src = canvasHeightRegex.ReplaceAllString(src, fmt.Sprintf("%.2f", env.Height))
	for _, block := range noiseLibrary {
		if !block.call.MatchString(src) || block.defined.MatchString(src) {
			continue
		}
		src = block.source + "\n" + src
		if env.EnsureNoise != nil {
			env.EnsureNoise()
		}
	}
	return strings.TrimSpace(src)
}

// Assemble produces complete compute shader source from a body snippet. After
// Expand, a source that already defines fn main is returned as-is; anything
// else is scanned into helper functions and loose statements, and the loose
// statements are wrapped in a synthesized single-invocation compute entry
// point taking the global invocation id.
//
// Assemble is deterministic and idempotent and never fails on malformed text.
//
// Parameters:
//   - src: shader source text, a fragment or a complete program
//   - env: the substitution values and noise hook
//
// Returns:
//   - string: complete WGSL source with exactly one main entry point
func Assemble(src string, env Env) string {
	src = Expand(src, env)
	if mainEntryRegex.MatchString(src) {
		return src
	}

	res := ExtractFunctionsAndBody(src)
	var b strings.Builder
	for _, fn := range res.Functions {
		b.WriteString(fn)
		b.WriteString("\n\n")
	}
	b.WriteString("@compute @workgroup_size(1)\n")
	b.WriteString("fn main(@builtin(global_invocation_id) id: vec3<u32>) {\n")
	if res.Body != "" {
		for line := range strings.SplitSeq(res.Body, "\n") {
			b.WriteString("\t")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	// No trailing newline: reassembling the output must reproduce it exactly.
	b.WriteString("}")
	return b.String()
}
