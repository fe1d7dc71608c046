package domain

type Role string

const (
	// RoleUser is assigned to every self-registered account.
	RoleUser Role = "user"
	// RoleAdmin is only granted out of band.
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}
