package service

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// DefaultMachineIDPaths lists the files probed for a stable machine identifier.
var DefaultMachineIDPaths = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
}

// MachineIdentity reads host identity from the D-Bus machine id, falling back to
// the hostname when no machine id file is readable.
type MachineIdentity struct {
	paths    []string
	hostname func() (string, error)
}

// NewMachineIdentity creates a MachineIdentity probing DefaultMachineIDPaths.
func NewMachineIdentity() *MachineIdentity {
	return &MachineIdentity{
		paths:    DefaultMachineIDPaths,
		hostname: os.Hostname,
	}
}

// Identity returns the first non-empty machine id, or the hostname.
func (m *MachineIdentity) Identity() ([]byte, error) {
	for _, path := range m.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return []byte(id), nil
		}
	}

	host, err := m.hostname()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrHostIdentityUnavailable, err)
	}
	if host == "" {
		return nil, fmt.Errorf("%w: empty hostname", cryptoDomain.ErrHostIdentityUnavailable)
	}
	return []byte(host), nil
}

// StaticHostIdentity is a fixed identity, used by tests and by hosts that inject
// their own identity material.
type StaticHostIdentity []byte

// Identity returns a copy of the static identity bytes.
func (s StaticHostIdentity) Identity() ([]byte, error) {
	if len(s) == 0 {
		return nil, cryptoDomain.ErrHostIdentityUnavailable
	}
	return bytes.Clone(s), nil
}
