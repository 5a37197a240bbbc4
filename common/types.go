// package common contains common types that are used throughout this library. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Vec2 is a 2-component float vector matching the WGSL vec2<f32> layout (8 bytes).
type Vec2 struct {
	X, Y float32
}

// Vec3 is a 3-component float vector matching the WGSL vec3<f32> layout (12 bytes packed).
// Note that WGSL aligns vec3<f32> to 16 bytes inside structs; the layout package accounts
// for that through struct padding, not here.
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 is a 4-component float vector matching the WGSL vec4<f32> layout (16 bytes).
type Vec4 struct {
	X, Y, Z, W float32
}

// Color is an RGBA color with components in the [0, 1] range.
// It packs identically to Vec4 and declares as vec4<f32> in generated shader code.
type Color struct {
	R, G, B, A float32
}

// PointerState is the live pointer-input record shared with shaders.
// It is updated by canvas event callbacks and read at pack time each frame.
type PointerState struct {
	// X is the pointer x position in framebuffer pixels.
	X float32
	// Y is the pointer y position in framebuffer pixels.
	Y float32
	// Button is 1 while the primary button is held, 0 otherwise.
	// Stored as a float so it uploads directly into the pointer uniform.
	Button float32
}
