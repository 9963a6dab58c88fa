// Package privilege answers whether the process runs as an administrator and
// locates the home directory of the user who invoked it, which differs from
// the process owner under sudo.
package privilege

import (
	"os"
	"os/user"
	"path/filepath"
)

// OS is the production domain.Authorizer.
type OS struct {
	geteuid func() int
}

// NewOS returns an Authorizer backed by the effective user id.
func NewOS() *OS {
	return &OS{geteuid: geteuid}
}

// IsElevated reports whether the effective user id is 0.
func (o *OS) IsElevated() bool {
	return o.geteuid() == 0
}

// Env abstracts the lookups RealUserHome performs so tests can substitute
// them.
type Env struct {
	Getenv     func(string) string
	LookupUser func(string) (*user.User, error)
}

// SystemEnv reads the process environment and the user database.
func SystemEnv() Env {
	return Env{Getenv: os.Getenv, LookupUser: user.Lookup}
}

// RealUserHome returns the home directory of the user that started the
// process. Under sudo this is SUDO_USER's home rather than root's; when that
// user cannot be resolved it falls back to $HOME.
func RealUserHome(env Env) string {
	if name := env.Getenv("SUDO_USER"); name != "" && name != "root" {
		if u, err := env.LookupUser(name); err == nil && u.HomeDir != "" {
			return u.HomeDir
		}
	}
	return env.Getenv("HOME")
}

// CARoot returns the mkcert CA root directory owned by the invoking user, or
// "" when no home directory is known.
func CARoot(env Env) string {
	home := RealUserHome(env)
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".local", "share", "mkcert")
}
