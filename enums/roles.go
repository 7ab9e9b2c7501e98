package enums

type Role string

const (
	RoleClient     Role = "client"
	RoleCashier    Role = "caissier"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)
