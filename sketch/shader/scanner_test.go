package shader

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glazegpu/glaze/common"
)

func TestExtractFunctionsAndBody(t *testing.T) {
	src := `
fn depth(a: f32) -> f32 {
	if (a > 0.0) {
		if (a > 1.0) {
			return { 1.0 }[0];
		}
	}
	return a;
}

fn tint(p: vec2<f32>) -> vec4<f32> {
	return vec4<f32>(p, 0.0, 1.0);
}

let uv = pos / 100.0;
textureStore(renderTxtr, pos, tint(uv));
`
	res := ExtractFunctionsAndBody(src)
	assert.False(t, res.Recovered)
	require.Len(t, res.Functions, 2)

	assert.True(t, strings.HasPrefix(res.Functions[0], "fn depth"))
	assert.True(t, strings.HasSuffix(res.Functions[0], "}"))
	assert.Equal(t, 4, strings.Count(res.Functions[0], "{"))

	assert.True(t, strings.HasPrefix(res.Functions[1], "fn tint"))
	assert.Contains(t, res.Functions[1], "-> vec4<f32>")

	assert.Equal(t, "let uv = pos / 100.0;\ntextureStore(renderTxtr, pos, tint(uv));", res.Body)
}

func TestExtractFunctionsAndBodyIdempotent(t *testing.T) {
	src := `fn wave(x: f32) -> f32 {
	return sin(x * 3.0);
}`
	first := ExtractFunctionsAndBody(src)
	require.Len(t, first.Functions, 1)
	assert.Empty(t, first.Body)

	again := ExtractFunctionsAndBody(first.Functions[0])
	assert.False(t, again.Recovered)
	require.Len(t, again.Functions, 1)
	assert.Equal(t, first.Functions[0], again.Functions[0])
	assert.Empty(t, again.Body)
}

func TestExtractFunctionsAndBodyEmptyInput(t *testing.T) {
	res := ExtractFunctionsAndBody("")
	assert.Empty(t, res.Functions)
	assert.Empty(t, res.Body)
	assert.False(t, res.Recovered)

	res = ExtractFunctionsAndBody("  \n\t\n")
	assert.Empty(t, res.Functions)
	assert.Empty(t, res.Body)
}

func TestExtractFunctionsAndBodyIgnoresBracesInComments(t *testing.T) {
	src := `fn weird() -> f32 {
	// a stray { in a line comment
	/* and one more {{ in a block
	   /* nested per the grammar */ still inside } */
	return 1.0; // }
}
let x = weird();
`
	res := ExtractFunctionsAndBody(src)
	assert.False(t, res.Recovered)
	require.Len(t, res.Functions, 1)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(res.Functions[0]), "}"))
	assert.Equal(t, "let x = weird();", res.Body)
}

func TestExtractFunctionsAndBodyIgnoresBracesInQuotes(t *testing.T) {
	src := `fn banner() -> f32 {
	let label = "brace } inside";
	return 0.0;
}`
	res := ExtractFunctionsAndBody(src)
	assert.False(t, res.Recovered)
	require.Len(t, res.Functions, 1)
	assert.Empty(t, res.Body)
}

func TestExtractFunctionsAndBodyLooseLinesOnly(t *testing.T) {
	src := "\nlet a = 1.0;\n\n   let b = a * 2.0;  \n"
	res := ExtractFunctionsAndBody(src)
	assert.Empty(t, res.Functions)
	assert.Equal(t, "let a = 1.0;\nlet b = a * 2.0;", res.Body)
}

func TestExtractFunctionsAndBodyDropsTopLevelComments(t *testing.T) {
	src := `// setup
/* multi
   line */
let a = 1.0;
`
	res := ExtractFunctionsAndBody(src)
	assert.False(t, res.Recovered)
	assert.Equal(t, "let a = 1.0;", res.Body)
}

func TestExtractFunctionsAndBodyKeywordBoundary(t *testing.T) {
	src := "let fnord = 1.0;\nlet infn = 2.0;"
	res := ExtractFunctionsAndBody(src)
	assert.Empty(t, res.Functions)
	assert.Equal(t, src, res.Body)
}

func TestExtractFunctionsAndBodyRecoversFromCorruptInput(t *testing.T) {
	var logged bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&logged, nil)))
	defer common.SetLogger(nil)

	src := "let a = 1.0;\nfn broken( x\n"
	res := ExtractFunctionsAndBody(src)
	assert.True(t, res.Recovered)
	assert.Equal(t, "let a = 1.0;", res.Body)
	require.Len(t, res.Functions, 1)
	assert.Contains(t, res.Functions[0], "fn broken")
	assert.Contains(t, logged.String(), "recovering")
}

func TestExtractFunctionsAndBodyRecoverySplitsBalancedLines(t *testing.T) {
	// An unterminated brace forces the fallback, which still pairs up the
	// well-formed function it can see.
	src := `fn ok() -> f32 {
	return 1.0;
}
fn bad() {
let tail = 1.0;
`
	res := ExtractFunctionsAndBody(src)
	assert.True(t, res.Recovered)
	require.Len(t, res.Functions, 2)
	assert.True(t, strings.HasPrefix(res.Functions[0], "fn ok"))
	assert.True(t, strings.HasPrefix(res.Functions[1], "fn bad"))
}
