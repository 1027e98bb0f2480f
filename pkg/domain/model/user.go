package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// User is a principal known to the service. Credentials are managed by the
// identity provider and never stored here.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      types.Role
	Active    bool
	CreatedAt time.Time
}

// Validate checks required user attributes
func (u *User) Validate() error {
	if u.ID == "" {
		return goerr.New("user ID is required")
	}
	if u.Name == "" {
		return goerr.New("user name is required", goerr.V("id", u.ID))
	}
	if !u.Role.IsValid() {
		return goerr.New("invalid user role", goerr.V("id", u.ID), goerr.V("role", u.Role))
	}
	return nil
}

// IsActiveWorker reports whether complaints can be assigned to the user
func (u *User) IsActiveWorker() bool {
	return u.Active && u.Role.CanWorkTasks()
}
