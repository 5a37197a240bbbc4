package layout

import (
	"strings"
	"testing"

	"github.com/gogpu/naga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glazegpu/glaze/common"
)

func TestNewStructPadsToSixteenBytes(t *testing.T) {
	tests := []struct {
		name       string
		fields     []Field
		wantFloats int
	}{
		{
			name:       "single scalar pads to four floats",
			fields:     []Field{{Name: "mass", Type: Float}},
			wantFloats: 4,
		},
		{
			name:       "vec2 plus scalar pads to four floats",
			fields:     []Field{{Name: "pos", Type: Vec2}, {Name: "age", Type: Float}},
			wantFloats: 4,
		},
		{
			name:       "vec4 needs no padding",
			fields:     []Field{{Name: "tint", Type: Vec4}},
			wantFloats: 4,
		},
		{
			name:       "vec3 pads to four floats",
			fields:     []Field{{Name: "dir", Type: Vec3}},
			wantFloats: 4,
		},
		{
			name: "mixed fields pad to next multiple",
			fields: []Field{
				{Name: "pos", Type: Vec2},
				{Name: "vel", Type: Vec2},
				{Name: "tint", Type: Color},
				{Name: "age", Type: Float},
			},
			wantFloats: 12,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStruct("Particle", tt.fields...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFloats, s.SizeFloats())
			assert.Equal(t, tt.wantFloats*4, s.SizeBytes())
			assert.Zero(t, s.SizeBytes()%16)
		})
	}
}

func TestNewStructValidation(t *testing.T) {
	_, err := NewStruct("")
	assert.Error(t, err)

	_, err = NewStruct("Empty")
	assert.Error(t, err)

	_, err = NewStruct("Bad", Field{Name: "", Type: Float})
	assert.Error(t, err)

	_, err = NewStruct("Bad", Field{Name: "x", Type: nil})
	assert.Error(t, err)

	_, err = NewStruct("Bad", Field{Name: "x", Type: Float}, Field{Name: "x", Type: Float})
	assert.Error(t, err)

	_, err = NewStruct("Bad", Field{Name: "_pad_1", Type: Float})
	assert.ErrorIs(t, err, ErrReservedField)
}

func TestStructPackUnpackRoundTrip(t *testing.T) {
	s, err := NewStruct("Particle",
		Field{Name: "pos", Type: Vec2},
		Field{Name: "vel", Type: Vec2},
		Field{Name: "tint", Type: Color},
		Field{Name: "age", Type: Float},
	)
	require.NoError(t, err)

	in := []Record{
		{
			"pos":  common.Vec2{X: 10, Y: 20},
			"vel":  common.Vec2{X: -1, Y: 0.5},
			"tint": common.Color{R: 1, G: 0.5, B: 0.25, A: 1},
			"age":  float32(3),
		},
		{
			"pos":  common.Vec2{X: 0, Y: 0},
			"vel":  common.Vec2{X: 0, Y: 0},
			"tint": common.Color{A: 1},
			"age":  float32(0),
		},
	}

	flat, err := s.Pack(in...)
	require.NoError(t, err)
	require.Len(t, flat, s.SizeFloats()*len(in))

	out, err := s.Unpack(flat)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i], out[i], "record %d", i)
	}

	// Filler fields pack as zero and never surface in unpacked records.
	for name := range out[0] {
		assert.False(t, strings.HasPrefix(name, padPrefix))
	}
}

func TestStructPackMissingField(t *testing.T) {
	s, err := NewStruct("Dot", Field{Name: "pos", Type: Vec2}, Field{Name: "age", Type: Float})
	require.NoError(t, err)

	_, err = s.Pack(Record{"pos": common.Vec2{X: 1, Y: 2}})
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "age")
}

func TestStructPackBadValue(t *testing.T) {
	s, err := NewStruct("Dot", Field{Name: "age", Type: Float})
	require.NoError(t, err)

	_, err = s.Pack(Record{"age": "old"})
	assert.ErrorIs(t, err, ErrBadValue)
}

func TestStructPackRequiresRecords(t *testing.T) {
	s, err := NewStruct("Dot", Field{Name: "age", Type: Float})
	require.NoError(t, err)

	_, err = s.Pack()
	assert.Error(t, err)
}

func TestStructUnpackTruncated(t *testing.T) {
	s, err := NewStruct("Dot", Field{Name: "pos", Type: Vec2}, Field{Name: "age", Type: Float})
	require.NoError(t, err)
	require.Equal(t, 4, s.SizeFloats())

	_, err = s.Unpack(make([]float32, 6))
	assert.ErrorIs(t, err, ErrTruncatedData)

	out, err := s.Unpack(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStructAddAndFreeze(t *testing.T) {
	s, err := NewStruct("Dot", Field{Name: "age", Type: Float})
	require.NoError(t, err)
	require.Equal(t, 4, s.SizeFloats())

	// Adding strips the old padding and re-pads around the new field.
	require.NoError(t, s.Add("pos", Vec2))
	assert.Equal(t, 4, s.SizeFloats())
	require.NoError(t, s.Add("tint", Color))
	assert.Equal(t, 8, s.SizeFloats())

	rec := s.DefaultRecord()
	assert.Len(t, rec, 3)

	_, err = s.Pack(rec)
	require.NoError(t, err)

	err = s.Add("late", Float)
	assert.ErrorIs(t, err, ErrStructFrozen)
}

func TestStructAddValidationKeepsPadding(t *testing.T) {
	s, err := NewStruct("Dot", Field{Name: "age", Type: Float})
	require.NoError(t, err)

	err = s.Add("age", Float)
	assert.Error(t, err)
	assert.Equal(t, 4, s.SizeFloats())
	assert.Zero(t, s.SizeBytes()%16)
}

func TestStructDefaultRecord(t *testing.T) {
	s, err := NewStruct("Particle",
		Field{Name: "pos", Type: Vec2},
		Field{Name: "tint", Type: Color},
		Field{Name: "age", Type: Float},
	)
	require.NoError(t, err)

	rec := s.DefaultRecord()
	assert.Equal(t, common.Vec2{}, rec["pos"])
	assert.Equal(t, common.Color{}, rec["tint"])
	assert.Equal(t, float32(0), rec["age"])
	assert.Len(t, rec, 3)
}

func TestStructDeclarationIsValidWGSL(t *testing.T) {
	s, err := NewStruct("Particle",
		Field{Name: "pos", Type: Vec2},
		Field{Name: "vel", Type: Vec2},
		Field{Name: "age", Type: Float},
	)
	require.NoError(t, err)

	decl := s.Declaration()
	assert.True(t, strings.HasPrefix(decl, "struct Particle {"))
	assert.Contains(t, decl, "pos: vec2<f32>,")
	assert.Contains(t, decl, "_pad_")

	mod, err := naga.Parse(decl)
	require.NoError(t, err)
	require.Len(t, mod.Structs, 1)
	assert.Equal(t, "Particle", mod.Structs[0].Name)
	// Two user fields, one vec2 filler-free slot layout: 2+2+1 floats pad to 8.
	assert.Len(t, mod.Structs[0].Members, 6)
}

func TestStructFieldsListsEveryField(t *testing.T) {
	s, err := NewStruct("Dot", Field{Name: "age", Type: Float})
	require.NoError(t, err)

	fields := s.Fields()
	assert.Contains(t, fields, "age: f32,")
	assert.Equal(t, 4, strings.Count(fields, ","))
}
