// Package host provides the public interface definitions for applying
// presentation settings to an editor. External bridges (editor plugins,
// private adapters) implement Host; the built-in adapters live in
// internal/host.
package host

// Host is the editor-side collaborator the day/night controller drives.
type Host interface {
	// SetColorScheme activates the named content color scheme.
	SetColorScheme(name string) error

	// SetWindowTheme activates the named window (UI) theme.
	SetWindowTheme(name string) error
}

// Connector is an optional interface for hosts that hold a connection.
// Connect is called before the first tick and Disconnect on shutdown.
type Connector interface {
	Connect() error
	Disconnect() error
}
