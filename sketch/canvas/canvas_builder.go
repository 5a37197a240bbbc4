package canvas

// CanvasBuilderOption is a functional option for configuring a sketchCanvas.
// Use the With* functions to create options.
type CanvasBuilderOption func(c *sketchCanvas)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - CanvasBuilderOption: option function to apply
func WithTitle(title string) CanvasBuilderOption {
	return func(c *sketchCanvas) {
		c.title = title
	}
}

// WithSize sets the initial canvas size.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - CanvasBuilderOption: option function to apply
func WithSize(width, height int) CanvasBuilderOption {
	return func(c *sketchCanvas) {
		c.width = width
		c.height = height
	}
}

// WithResizable allows the user to resize the canvas window. Sketches
// draw a fixed pixel grid, so windows are not resizable by default.
//
// Parameters:
//   - resizable: whether the window can be resized
//
// Returns:
//   - CanvasBuilderOption: option function to apply
func WithResizable(resizable bool) CanvasBuilderOption {
	return func(c *sketchCanvas) {
		c.resizable = resizable
	}
}
