package window

// WindowBuilderOption configures a window before it is shown.
type WindowBuilderOption func(w *glfwWindow)

// WithTitle sets the title bar text.
//
// Parameters:
//   - title: the title (default "oxy-scene")
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *glfwWindow) {
		w.title = title
	}
}

// WithSize sets the requested window size in screen coordinates.
//
// Parameters:
//   - width: requested width (default 1280)
//   - height: requested height (default 720)
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *glfwWindow) {
		w.width, w.height = width, height
	}
}

// WithMinSize bounds how far the user can shrink the window.
//
// Parameters:
//   - width: minimum width (default 200)
//   - height: minimum height (default 150)
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *glfwWindow) {
		w.minWidth, w.minHeight = width, height
	}
}
