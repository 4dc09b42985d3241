package common

// Key codes delivered to window key callbacks.
// Printable keys use their ASCII value, matching GLFW.
// Escape is consumed by the window and closes it.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32  // Spacebar (ASCII)
	KeyP     = 80  // P key (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)
)
