// Package host exposes the capabilities provisioning steps need from a
// target machine. Steps only talk to these handles, never to the machine
// directly, so tests can swap in fakes.
package host

import (
	"context"
	"io/fs"
)

// Host bundles the capability handles of one target machine.
type Host struct {
	ID        string
	Privilege PrivilegeChecker
	Packages  PackageManager
	Files     FileSystem
	Services  ServiceManager
	Clock     Clock
	Accounts  AccountDirectory
}

// PrivilegeChecker verifies the session may change system state.
type PrivilegeChecker interface {
	// Check returns a *PrivilegeError when elevation is not available.
	Check(ctx context.Context) error
}

// PackageManager installs system packages.
type PackageManager interface {
	// Missing returns the subset of names that are not installed, in input order.
	Missing(ctx context.Context, names ...string) ([]string, error)
	// Refresh updates the package index.
	Refresh(ctx context.Context) error
	// Install installs the given packages. Already installed packages are not an error.
	Install(ctx context.Context, names ...string) error
}

// FileSystem reads and writes files on the host.
type FileSystem interface {
	// ReadFile returns the file content and whether the file exists.
	ReadFile(ctx context.Context, path string) (string, bool, error)
	// WriteFile atomically replaces path with content.
	WriteFile(ctx context.Context, path, content string, mode fs.FileMode) error
	// AppendFile appends content to an existing file.
	AppendFile(ctx context.Context, path, content string) error
	// Truncate empties an existing file in place, keeping owner and mode.
	Truncate(ctx context.Context, path string) error
	// HasContent reports whether path is a regular file with a non-zero size.
	HasContent(ctx context.Context, path string) (bool, error)
}

// ServiceManager controls system services.
type ServiceManager interface {
	Exists(ctx context.Context, name string) (bool, error)
	// Restart returns a *ServiceNotFoundError for units that are not installed.
	Restart(ctx context.Context, name string) error
}

// Clock reads and sets the system timezone.
type Clock interface {
	Timezone(ctx context.Context) (string, error)
	SetTimezone(ctx context.Context, zone string) error
}

// AccountDirectory lists local accounts.
type AccountDirectory interface {
	// LoginAccounts returns root followed by every regular local user.
	LoginAccounts(ctx context.Context) ([]Account, error)
}

// Account is a local user with a home directory.
type Account struct {
	Name string
	UID  int
	Home string
}
