package model

//go:generate go run github.com/dmarkham/enumer -type Role -trimprefix Role -transform lower -json -sql -output role.gen.go

// Role is the single role a User holds. It is stored as its lowercase name.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)
