package host

import (
	"fmt"
	"strings"
)

// PrivilegeError reports that the session is neither root nor allowed to use
// non-interactive sudo.
type PrivilegeError struct {
	User string
	Err  error
}

func (e *PrivilegeError) Error() string {
	msg := "elevated privileges required"
	if e.User != "" {
		msg = fmt.Sprintf("elevated privileges required (running as %s)", e.User)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *PrivilegeError) Unwrap() error { return e.Err }

// PackageManagerError reports a failed package index refresh or install.
type PackageManagerError struct {
	Op       string
	Packages []string
	Err      error
}

func (e *PackageManagerError) Error() string {
	if len(e.Packages) == 0 {
		return fmt.Sprintf("package manager %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("package manager %s %s: %v", e.Op, strings.Join(e.Packages, " "), e.Err)
}

func (e *PackageManagerError) Unwrap() error { return e.Err }

// ConfigWriteError reports a file that could not be written.
type ConfigWriteError struct {
	Path string
	Err  error
}

func (e *ConfigWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *ConfigWriteError) Unwrap() error { return e.Err }

// ServiceNotFoundError reports a unit that is not installed on the host.
type ServiceNotFoundError struct {
	Service string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("service %s not found", e.Service)
}
