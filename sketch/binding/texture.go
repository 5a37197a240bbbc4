package binding

import (
	"errors"
	"fmt"

	"github.com/glazegpu/glaze/sketch/gpu"

	"github.com/cogentcore/webgpu/wgpu"
)

const textureUsage = wgpu.TextureUsageStorageBinding |
	wgpu.TextureUsageTextureBinding |
	wgpu.TextureUsageRenderAttachment |
	wgpu.TextureUsageCopySrc |
	wgpu.TextureUsageCopyDst

// Texture is one 2D device texture usable as a copy target, a storage
// binding, a sampled source, and a render attachment. A Texture is not bound
// directly; Read and Write return the binding views that fix an access mode.
type Texture struct {
	name    string
	width   int
	height  int
	format  wgpu.TextureFormat
	texture *wgpu.Texture
	view    *wgpu.TextureView
	backend gpu.Backend
}

// NewTexture allocates a 2D texture and its default view.
//
// Parameters:
//   - backend: the GPU backend that owns the allocation
//   - name: the identifier shader code uses for the texture
//   - width: texture width in texels
//   - height: texture height in texels
//   - format: the pixel format; storage formats (rgba8unorm) bind as storage
//     textures, anything else binds as a sampled texture
//
// Returns:
//   - *Texture: the created texture
//   - error: a validation error before any device call or a wrapped device
//     error from texture creation
func NewTexture(backend gpu.Backend, name string, width, height int, format wgpu.TextureFormat) (*Texture, error) {
	if backend == nil {
		return nil, fmt.Errorf("failed to create texture %q: backend must not be nil", name)
	}
	if name == "" {
		return nil, errors.New("failed to create texture: name must not be empty")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("failed to create texture %q: dimensions %dx%d must be positive", name, width, height)
	}

	texture, view, err := backend.CreateTexture(name, width, height, format, textureUsage)
	if err != nil {
		return nil, err
	}

	return &Texture{
		name:    name,
		width:   width,
		height:  height,
		format:  format,
		texture: texture,
		view:    view,
		backend: backend,
	}, nil
}

// Name returns the identifier shader code uses for the texture.
func (t *Texture) Name() string { return t.name }

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// Format returns the texture's pixel format.
func (t *Texture) Format() wgpu.TextureFormat { return t.format }

// Handle returns the underlying device texture.
func (t *Texture) Handle() *wgpu.Texture { return t.texture }

// View returns the texture's default full view.
func (t *Texture) View() *wgpu.TextureView { return t.view }

// Read returns the read-mode binding view of the texture. The view references
// the same allocation; no device resources are created.
func (t *Texture) Read() *TextureView {
	return &TextureView{texture: t}
}

// Write returns the write-mode binding view of the texture. The view
// references the same allocation; no device resources are created.
func (t *Texture) Write() *TextureView {
	return &TextureView{texture: t, writable: true}
}

// Release releases the device texture and its view.
func (t *Texture) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

// TextureView fixes an access mode over a Texture for binding purposes. The
// declaration it emits depends on the mode and on whether the underlying
// format is a storage format: storage formats declare explicit read or write
// storage textures, anything else declares a sampled texture_2d<f32>.
type TextureView struct {
	texture  *Texture
	writable bool
}

var _ Binding = &TextureView{}

// Name returns the underlying texture's identifier.
func (v *TextureView) Name() string { return v.texture.name }

// Texture returns the underlying texture.
func (v *TextureView) Texture() *Texture { return v.texture }

// Writable reports whether this is the write-mode view.
func (v *TextureView) Writable() bool { return v.writable }

// BindingCode returns the view's binding declaration for the slot, chosen by
// access mode and format.
func (v *TextureView) BindingCode(group, slot int) string {
	token := storageFormatToken(v.texture.format)
	switch {
	case token == "":
		return fmt.Sprintf("@group(%d) @binding(%d) var %s: texture_2d<f32>;", group, slot, v.texture.name)
	case v.writable:
		return fmt.Sprintf("@group(%d) @binding(%d) var %s: texture_storage_2d<%s, write>;", group, slot, v.texture.name, token)
	default:
		return fmt.Sprintf("@group(%d) @binding(%d) var %s: texture_storage_2d<%s, read>;", group, slot, v.texture.name, token)
	}
}

// StructDeclaration returns an empty string; texture bindings reference no
// struct.
func (v *TextureView) StructDeclaration() string { return "" }

// Entry returns the bind group entry binding the texture view to the slot.
func (v *TextureView) Entry(slot uint32) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding:     slot,
		TextureView: v.texture.view,
	}
}

// storageFormatToken returns the WGSL storage texel format token for formats
// that can bind as storage textures, or an empty string for formats that can
// only be sampled.
func storageFormatToken(format wgpu.TextureFormat) string {
	switch format {
	case wgpu.TextureFormatRGBA8Unorm:
		return "rgba8unorm"
	default:
		return ""
	}
}
