package shader

import (
	"strings"
	"testing"

	"github.com/gogpu/naga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatef(t *testing.T) {
	got := Templatef("let count = %d;\nlet speed = %v;", 12, float32(1.5))
	assert.Equal(t, "let count = 12;\nlet speed = 1.5;", got)
}

func TestExpandSubstitutesCanvasSize(t *testing.T) {
	env := Env{Width: 800, Height: 450.5}
	got := Expand("let p = vec2<f32>(canvasWidth, canvasHeight);", env)
	assert.Equal(t, "let p = vec2<f32>(800.00, 450.50);", got)
}

func TestExpandLeavesLongerIdentifiersAlone(t *testing.T) {
	env := Env{Width: 100, Height: 100}
	src := "let a = canvasWidthHalf;\nlet b = myCanvasHeight;"
	assert.Equal(t, src, Expand(src, env))
}

func TestExpandInjectsNoiseOnce(t *testing.T) {
	calls := 0
	env := Env{Width: 10, Height: 10, EnsureNoise: func() { calls++ }}

	got := Expand("let n = noise2(vec2<f32>(1.0, 2.0));", env)
	assert.Equal(t, 1, strings.Count(got, "fn noise2("))
	assert.Equal(t, 1, calls)

	// The expanded source defines noise2, so expanding it again injects
	// nothing and leaves the support hook untouched.
	again := Expand(got, env)
	assert.Equal(t, 1, strings.Count(again, "fn noise2("))
	assert.Equal(t, 1, calls)
}

func TestExpandSkipsNoiseWhenUserDefinesIt(t *testing.T) {
	calls := 0
	env := Env{EnsureNoise: func() { calls++ }}
	src := "fn noise2(p: vec2<f32>) -> f32 {\n\treturn 0.5;\n}\nlet n = noise2(uv);"
	got := Expand(src, env)
	assert.Equal(t, 1, strings.Count(got, "fn noise2("))
	assert.Zero(t, calls)
}

func TestExpandInjectsEachReferencedDimension(t *testing.T) {
	env := Env{}
	got := Expand("let a = noise1(x) + noise3(p);", env)
	assert.Contains(t, got, "fn noise1(")
	assert.Contains(t, got, "fn noise3(")
	assert.NotContains(t, got, "fn noise2(")
}

func TestAssembleWrapsLooseBody(t *testing.T) {
	src := `fn brightness(c: vec4<f32>) -> f32 {
	return (c.r + c.g + c.b) / 3.0;
}
let pos = vec2<i32>(i32(id.x), i32(id.y));
let color = vec4<f32>(1.0, 0.0, 0.0, 1.0);`

	got := Assemble(src, Env{Width: 100, Height: 100})

	idx := strings.Index(got, "fn brightness")
	entry := strings.Index(got, "@compute @workgroup_size(1)")
	require.GreaterOrEqual(t, idx, 0)
	require.Greater(t, entry, idx)
	assert.Contains(t, got, "fn main(@builtin(global_invocation_id) id: vec3<u32>) {")
	assert.Contains(t, got, "\tlet pos = vec2<i32>(i32(id.x), i32(id.y));")
	assert.Contains(t, got, "\tlet color = vec4<f32>(1.0, 0.0, 0.0, 1.0);")

	mod, err := naga.Parse(got)
	require.NoError(t, err)
	require.Len(t, mod.Functions, 2)
	assert.Equal(t, "main", mod.Functions[1].Name)
}

func TestAssembleEmptyBody(t *testing.T) {
	got := Assemble("", Env{})
	assert.Contains(t, got, "fn main(")

	_, err := naga.Parse(got)
	assert.NoError(t, err)
}

func TestAssembleBypassesExistingMain(t *testing.T) {
	src := `@compute @workgroup_size(1)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
	let w = canvasWidth;
}`
	got := Assemble(src, Env{Width: 640, Height: 480})
	assert.Equal(t, 1, strings.Count(got, "fn main"))
	assert.Contains(t, got, "let w = 640.00;")
	// No wrapping applied: the source comes back with only the width substituted.
	assert.Equal(t, strings.ReplaceAll(src, "canvasWidth", "640.00"), got)
}

func TestAssembleIdempotent(t *testing.T) {
	env := Env{Width: 32, Height: 32}
	once := Assemble("let n = noise2(vec2<f32>(f32(id.x), f32(id.y)) / 32.0);", env)
	twice := Assemble(once, env)
	assert.Equal(t, once, twice)
}

func TestAssembleNoiseEndToEnd(t *testing.T) {
	env := Env{Width: 64, Height: 64}
	got := Assemble("let n = noise2(vec2<f32>(f32(id.x), f32(id.y)) / canvasWidth);", env)

	assert.Equal(t, 1, strings.Count(got, "fn noise2("))
	assert.Contains(t, got, "/ 64.00")
	assert.True(t, NoiseReferenced(got))

	// Syntax-check the whole synthesized program, noise helpers included.
	mod, err := naga.Parse(got)
	require.NoError(t, err)
	require.Len(t, mod.Functions, 3)
	assert.Equal(t, "main", mod.Functions[2].Name)
}

func TestNoiseReferenced(t *testing.T) {
	assert.True(t, NoiseReferenced("let a = noise1(x);"))
	assert.True(t, NoiseReferenced("textureStore(t, p, vec4<f32>(noise3(q)));"))
	assert.False(t, NoiseReferenced("let a = mynoise1(x);"))
	assert.False(t, NoiseReferenced("let a = noise2 ;"))
}
