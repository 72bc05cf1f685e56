// Package hostfake provides an in-memory host for step tests.
package hostfake

import (
	"context"
	"errors"
	"io/fs"

	"github.com/tpodg/serverprep/internal/host"
)

type File struct {
	Content string
	Mode    fs.FileMode
}

// Fake implements every host capability against in-memory state. Failure
// fields inject errors into the matching operation.
type Fake struct {
	Privileged bool
	Files      map[string]*File
	Installed  map[string]bool
	Units      map[string]bool
	Zone       string
	Users      []host.Account

	Refreshes int
	Installs  [][]string
	Reads     []string
	Writes    []string
	Restarts  []string

	PrivilegeErr error
	RefreshErr   error
	InstallErr   error
	WriteErr     map[string]error
	RestartErr   map[string]error
	ZoneErr      error
}

func New() *Fake {
	return &Fake{
		Privileged: true,
		Files:      make(map[string]*File),
		Installed:  make(map[string]bool),
		Units:      make(map[string]bool),
		WriteErr:   make(map[string]error),
		RestartErr: make(map[string]error),
		Users:      []host.Account{{Name: "root", UID: 0, Home: "/root"}},
	}
}

// Host returns the capability bundle backed by f.
func (f *Fake) Host() *host.Host {
	return &host.Host{
		ID:        "fake",
		Privilege: f,
		Packages:  f,
		Files:     f,
		Services:  f,
		Clock:     f,
		Accounts:  f,
	}
}

// SetFile seeds a file.
func (f *Fake) SetFile(path, content string) {
	f.Files[path] = &File{Content: content, Mode: 0o644}
}

// Content returns the content of path, or "" when missing.
func (f *Fake) Content(path string) string {
	if file, ok := f.Files[path]; ok {
		return file.Content
	}
	return ""
}

func (f *Fake) Check(context.Context) error {
	if f.PrivilegeErr != nil {
		return f.PrivilegeErr
	}
	if !f.Privileged {
		return &host.PrivilegeError{User: "nobody", Err: errors.New("sudo: a password is required")}
	}
	return nil
}

func (f *Fake) Missing(_ context.Context, names ...string) ([]string, error) {
	var missing []string
	for _, name := range names {
		if !f.Installed[name] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func (f *Fake) Refresh(context.Context) error {
	if f.RefreshErr != nil {
		return &host.PackageManagerError{Op: "update", Err: f.RefreshErr}
	}
	f.Refreshes++
	return nil
}

func (f *Fake) Install(_ context.Context, names ...string) error {
	if f.InstallErr != nil {
		return &host.PackageManagerError{Op: "install", Packages: names, Err: f.InstallErr}
	}
	f.Installs = append(f.Installs, append([]string(nil), names...))
	for _, name := range names {
		f.Installed[name] = true
	}
	return nil
}

func (f *Fake) ReadFile(_ context.Context, path string) (string, bool, error) {
	f.Reads = append(f.Reads, path)
	file, ok := f.Files[path]
	if !ok {
		return "", false, nil
	}
	return file.Content, true, nil
}

func (f *Fake) WriteFile(_ context.Context, path, content string, mode fs.FileMode) error {
	if err := f.WriteErr[path]; err != nil {
		return &host.ConfigWriteError{Path: path, Err: err}
	}
	f.Files[path] = &File{Content: content, Mode: mode}
	f.Writes = append(f.Writes, path)
	return nil
}

func (f *Fake) AppendFile(_ context.Context, path, content string) error {
	if err := f.WriteErr[path]; err != nil {
		return &host.ConfigWriteError{Path: path, Err: err}
	}
	file, ok := f.Files[path]
	if !ok {
		return &host.ConfigWriteError{Path: path, Err: fs.ErrNotExist}
	}
	file.Content += content
	f.Writes = append(f.Writes, path)
	return nil
}

func (f *Fake) Truncate(_ context.Context, path string) error {
	if err := f.WriteErr[path]; err != nil {
		return &host.ConfigWriteError{Path: path, Err: err}
	}
	if file, ok := f.Files[path]; ok {
		file.Content = ""
		f.Writes = append(f.Writes, path)
	}
	return nil
}

func (f *Fake) HasContent(_ context.Context, path string) (bool, error) {
	file, ok := f.Files[path]
	return ok && file.Content != "", nil
}

func (f *Fake) Exists(_ context.Context, name string) (bool, error) {
	return f.Units[name], nil
}

func (f *Fake) Restart(_ context.Context, name string) error {
	if !f.Units[name] {
		return &host.ServiceNotFoundError{Service: name}
	}
	if err := f.RestartErr[name]; err != nil {
		return err
	}
	f.Restarts = append(f.Restarts, name)
	return nil
}

func (f *Fake) Timezone(context.Context) (string, error) {
	return f.Zone, nil
}

func (f *Fake) SetTimezone(_ context.Context, zone string) error {
	if f.ZoneErr != nil {
		return f.ZoneErr
	}
	f.Zone = zone
	return nil
}

func (f *Fake) LoginAccounts(context.Context) ([]host.Account, error) {
	return f.Users, nil
}
