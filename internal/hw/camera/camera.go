package camera

// Camera is the high-level interface used by the rest of the application.
// It represents an abstract still camera, regardless of how frames are
// acquired (capture command, USB, network protocol, etc.).
type Camera interface {
	// Capture takes a single still frame at native resolution and returns
	// the encoded image bytes. Blocking and synchronous.
	Capture() ([]byte, error)
}
