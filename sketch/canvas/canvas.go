// Package canvas provides the window a sketch draws into, the WebGPU
// surface descriptor for it, and the pointer and key events the sketch
// reacts to. The underlying platform window is GLFW.
package canvas

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Canvas is the on-screen drawing target of a sketch.
type Canvas interface {
	// SetResizeCallback sets the function called when the framebuffer size
	// changes, for example when the window moves to a display with a
	// different scale factor.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetPointerMoveCallback sets the callback for pointer movement.
	//
	// Parameters:
	//   - callback: function receiving the pointer position in framebuffer pixels
	SetPointerMoveCallback(callback func(x, y float32))

	// SetPointerButtonCallback sets the callback for primary-button presses
	// and releases.
	//
	// Parameters:
	//   - callback: function receiving the button state and the pointer
	//     position in framebuffer pixels
	SetPointerButtonCallback(callback func(pressed bool, x, y float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating
	// a WebGPU surface. The descriptor is platform-appropriate (Windows HWND,
	// X11 Xlib, Wayland, macOS Metal, etc.) and is created by the wgpuglfw
	// bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if the canvas is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true while the canvas window is still open.
	//
	// Returns:
	//   - bool: true if the window is open, false once it has been closed
	IsRunning() bool

	// ProcessEvents pumps pending window and input events without blocking.
	// The sketch frame loop calls this once per frame.
	//
	// Returns:
	//   - bool: true if the canvas is still running after the pump
	ProcessEvents() bool

	// RequestClose asks the window to close. The frame loop observes the
	// request on its next iteration; platform resources are released by Close.
	RequestClose()

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the canvas was never initialized
	Close() error

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// sketchCanvas is the implementation of the Canvas interface.
// Holds canvas configuration, GLFW state, and event callbacks.
type sketchCanvas struct {
	// title is the window title displayed in the title bar.
	title string

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// resizable controls whether the user can resize the window. A sketch
	// draws a fixed pixel grid, so this defaults to false.
	resizable bool

	// internalCanvas holds the platform-specific window data (glfwCanvas).
	internalCanvas any

	// onResize is called when the framebuffer size changes.
	onResize func(width, height int)

	// onPointerMove is called when the pointer moves within the window.
	onPointerMove func(x, y float32)

	// onPointerButton is called when the primary button is pressed or released.
	onPointerButton func(pressed bool, x, y float32)

	// onKeyDown is called when a key is pressed.
	onKeyDown func(keyCode uint32)

	// onKeyUp is called when a key is released.
	onKeyUp func(keyCode uint32)
}

var _ Canvas = &sketchCanvas{}

// NewCanvas creates a new Canvas with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the canvas
//
// Returns:
//   - Canvas: the configured canvas with its window already open
//   - error: an error if the platform window cannot be created
func NewCanvas(options ...CanvasBuilderOption) (Canvas, error) {
	c := &sketchCanvas{
		title:  "Glaze Sketch",
		width:  640,
		height: 480,
	}
	for _, opt := range options {
		opt(c)
	}
	if err := newPlatformCanvas(c); err != nil {
		return nil, fmt.Errorf("failed to create canvas window: %w", err)
	}
	return c, nil
}

func (c *sketchCanvas) SetResizeCallback(callback func(width, height int)) {
	c.onResize = callback
}

func (c *sketchCanvas) SetPointerMoveCallback(callback func(x, y float32)) {
	c.onPointerMove = callback
}

func (c *sketchCanvas) SetPointerButtonCallback(callback func(pressed bool, x, y float32)) {
	c.onPointerButton = callback
}

func (c *sketchCanvas) SetKeyDownCallback(callback func(keyCode uint32)) {
	c.onKeyDown = callback
}

func (c *sketchCanvas) SetKeyUpCallback(callback func(keyCode uint32)) {
	c.onKeyUp = callback
}

func (c *sketchCanvas) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(c)
}

func (c *sketchCanvas) IsRunning() bool {
	return platformIsRunningCheck(c)
}

func (c *sketchCanvas) ProcessEvents() bool {
	return platformProcessEvents(c)
}

func (c *sketchCanvas) RequestClose() {
	platformRequestClose(c)
}

func (c *sketchCanvas) Close() error {
	return platformCloseCanvas(c)
}

func (c *sketchCanvas) Width() int {
	return c.width
}

func (c *sketchCanvas) Height() int {
	return c.height
}
