package host

import (
	pkghost "suntheme/pkg/host"

	"go.uber.org/multierr"
)

// Multi fans every setter call out to all hosts. Every host is attempted;
// the returned error combines the failures.
type Multi []pkghost.Host

// SetColorScheme implements host.Host.
func (m Multi) SetColorScheme(name string) error {
	var errs error
	for _, h := range m {
		errs = multierr.Append(errs, h.SetColorScheme(name))
	}
	return errs
}

// SetWindowTheme implements host.Host.
func (m Multi) SetWindowTheme(name string) error {
	var errs error
	for _, h := range m {
		errs = multierr.Append(errs, h.SetWindowTheme(name))
	}
	return errs
}

// Connect connects every host that holds a connection.
func (m Multi) Connect() error {
	var errs error
	for _, h := range m {
		if c, ok := h.(pkghost.Connector); ok {
			errs = multierr.Append(errs, c.Connect())
		}
	}
	return errs
}

// Disconnect disconnects every host that holds a connection.
func (m Multi) Disconnect() error {
	var errs error
	for _, h := range m {
		if c, ok := h.(pkghost.Connector); ok {
			errs = multierr.Append(errs, c.Disconnect())
		}
	}
	return errs
}
