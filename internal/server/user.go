package server

// User holds SSH credentials and an optional sudo password for remote execution.
type User struct {
	Name         string
	SSHKey       string
	SudoPassword string
}
