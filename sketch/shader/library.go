package shader

import (
	_ "embed"
	"regexp"
)

// The noise library ships as pre-written WGSL consumed unmodified. Each block
// defines one noise function and its hash helper, and reads the shared
// noiseOffsets vector so every sketch run samples a different region of the
// noise field. The offset buffer's binding declaration is synthesized later
// by the binding resolver, not by these blocks.

//go:embed assets/noise1.wgsl
var noise1WGSL string

//go:embed assets/noise2.wgsl
var noise2WGSL string

//go:embed assets/noise3.wgsl
var noise3WGSL string

// libraryBlock pairs an injectable source block with the patterns that decide
// whether a shader references it and whether it is already defined.
type libraryBlock struct {
	// name is the function the block defines.
	name string
	// call matches a reference to the function, name followed by an open paren.
	call *regexp.Regexp
	// defined matches an existing definition, which suppresses injection.
	defined *regexp.Regexp
	// source is the complete WGSL block to prepend.
	source string
}

// noiseLibrary lists the injectable blocks checked by the assembler, one per
// noise dimensionality.
var noiseLibrary = []libraryBlock{
	{
		name:    "noise1",
		call:    regexp.MustCompile(`\bnoise1\(`),
		defined: regexp.MustCompile(`\bfn\s+noise1\b`),
		source:  noise1WGSL,
	},
	{
		name:    "noise2",
		call:    regexp.MustCompile(`\bnoise2\(`),
		defined: regexp.MustCompile(`\bfn\s+noise2\b`),
		source:  noise2WGSL,
	},
	{
		name:    "noise3",
		call:    regexp.MustCompile(`\bnoise3\(`),
		defined: regexp.MustCompile(`\bfn\s+noise3\b`),
		source:  noise3WGSL,
	},
}

// NoiseReferenced reports whether the source calls any noise-library function.
// The binding resolver uses this to decide when the shared offset buffer must
// ride along with a pass.
//
// Parameters:
//   - src: assembled shader source text
//
// Returns:
//   - bool: true when any noiseN( call appears in the source
func NoiseReferenced(src string) bool {
	for _, block := range noiseLibrary {
		if block.call.MatchString(src) {
			return true
		}
	}
	return false
}
