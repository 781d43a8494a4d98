package registry

import (
	"gastos/internal/core"
)

// Authenticate returns the member whose identifier and password match.
// Unknown identifiers and wrong passwords produce the same error.
func (r *Registry) Authenticate(identifier, password string) (*core.Member, error) {
	if identifier == "" || password == "" {
		return nil, core.ErrInvalidCredentials
	}
	m, err := r.Member(identifier)
	if err != nil {
		return nil, core.ErrInvalidCredentials
	}
	if !m.CheckPassword(password) {
		return nil, core.ErrInvalidCredentials
	}
	return m, nil
}
