package canvas

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwCanvas holds the GLFW-specific window state.
type glfwCanvas struct {
	parent  *sketchCanvas
	window  *glfw.Window
	running bool

	// scaleX and scaleY convert window coordinates to framebuffer pixels.
	// GLFW reports the cursor in window coordinates, but the sketch
	// addresses pixels, so on high-DPI displays the two differ.
	scaleX float64
	scaleY float64
}

// newPlatformCanvas creates the GLFW window with input callbacks and stores it
// as the internal canvas.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformCanvas(c *sketchCanvas) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %v", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	if c.resizable {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	win, err := glfw.CreateWindow(c.width, c.height, c.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %v", err)
	}

	gc := &glfwCanvas{
		parent:  c,
		window:  win,
		running: true,
		scaleX:  1,
		scaleY:  1,
	}
	c.internalCanvas = gc

	// Register GLFW callbacks for input and window events.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gc.running = false
			win.SetShouldClose(true)
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			if c.onKeyDown != nil {
				c.onKeyDown(uint32(key))
			}
		case glfw.Release:
			if c.onKeyUp != nil {
				c.onKeyUp(uint32(key))
			}
		}
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetMouseButtonCallback
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft || c.onPointerButton == nil {
			return
		}
		xpos, ypos := win.GetCursorPos()
		switch action {
		case glfw.Press:
			c.onPointerButton(true, float32(xpos*gc.scaleX), float32(ypos*gc.scaleY))
		case glfw.Release:
			c.onPointerButton(false, float32(xpos*gc.scaleX), float32(ypos*gc.scaleY))
		}
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetCursorPosCallback
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if c.onPointerMove != nil {
			c.onPointerMove(float32(xpos*gc.scaleX), float32(ypos*gc.scaleY))
		}
	})

	// Use framebuffer size for resize events. On high-DPI displays (e.g.
	// macOS Retina), framebuffer size differs from window size and the
	// surface must be configured in pixels.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		c.width = width
		c.height = height
		gc.updateScale()
		if c.onResize != nil {
			c.onResize(width, height)
		}
	})

	// Update stored dimensions to reflect actual framebuffer size (may differ from requested on high-DPI).
	fbWidth, fbHeight := win.GetFramebufferSize()
	c.width = fbWidth
	c.height = fbHeight
	gc.updateScale()

	return nil
}

// updateScale recomputes the window-to-framebuffer coordinate scale.
func (gc *glfwCanvas) updateScale() {
	winWidth, winHeight := gc.window.GetSize()
	fbWidth, fbHeight := gc.window.GetFramebufferSize()
	if winWidth > 0 {
		gc.scaleX = float64(fbWidth) / float64(winWidth)
	}
	if winHeight > 0 {
		gc.scaleY = float64(fbHeight) / float64(winHeight)
	}
}

// platformGetSurfaceDescriptor creates a platform-appropriate
// wgpu.SurfaceDescriptor from the GLFW window. Uses the wgpuglfw bridge
// package which has per-platform implementations (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(c *sketchCanvas) *wgpu.SurfaceDescriptor {
	if c.internalCanvas == nil {
		return nil
	}
	gc := c.internalCanvas.(*glfwCanvas)
	return wgpuglfw.GetSurfaceDescriptor(gc.window)
}

// platformIsRunningCheck returns whether the GLFW window is still active.
// Returns false if the internal canvas is nil, the running flag is cleared, or
// GLFW reports ShouldClose.
//
// Parameters:
//   - c: the sketchCanvas to check
//
// Returns:
//   - bool: true if the window is still running
func platformIsRunningCheck(c *sketchCanvas) bool {
	if c.internalCanvas == nil {
		return false
	}
	gc := c.internalCanvas.(*glfwCanvas)
	return gc.running && !gc.window.ShouldClose()
}

// platformRequestClose flags the window for closing without destroying it.
// The event loop sees the flag on its next IsRunning check.
//
// Parameters:
//   - c: the sketchCanvas to flag
func platformRequestClose(c *sketchCanvas) {
	if c.internalCanvas == nil {
		return
	}
	gc := c.internalCanvas.(*glfwCanvas)
	gc.running = false
	gc.window.SetShouldClose(true)
}

// platformCloseCanvas destroys the GLFW window and terminates the GLFW library.
// Returns an error if the internal canvas has not been initialized.
//
// Parameters:
//   - c: the sketchCanvas to close
//
// Returns:
//   - error: error if the canvas is not initialized
func platformCloseCanvas(c *sketchCanvas) error {
	if c.internalCanvas == nil {
		return fmt.Errorf("canvas is not initialized")
	}
	gc := c.internalCanvas.(*glfwCanvas)
	gc.running = false
	gc.window.SetShouldClose(true)
	gc.window.Destroy()
	glfw.Terminate()
	return nil
}

// platformProcessEvents polls GLFW for pending events without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func platformProcessEvents(c *sketchCanvas) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(c)
}
