package access

import "github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"

//go:generate go run github.com/dmarkham/enumer -type Capability -trimprefix Capability -transform snake -output capability.gen.go

// Capability selects how much of the password store a user can see.
type Capability int

const (
	CapabilityOwnAccessOnly Capability = iota
	CapabilityAllAccess
)

// CapabilityFor resolves the capability granted by a role. Unknown roles
// get the narrowest capability.
func CapabilityFor(role model.Role) Capability {
	if role == model.RoleAdmin {
		return CapabilityAllAccess
	}
	return CapabilityOwnAccessOnly
}
