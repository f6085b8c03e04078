package enums

// UserRole is the marketplace role carried in identity tokens and profiles.
type UserRole string

const (
	UserRoleCustomer   UserRole = "customer"
	UserRoleShopkeeper UserRole = "shopkeeper"
	UserRoleAdmin      UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleShopkeeper,
	UserRoleAdmin,
}

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool { return contains(validUserRoles, r) }

func ParseUserRole(value string) (UserRole, error) {
	return parse("user role", value, validUserRoles)
}

func UserRoles() []UserRole {
	return append([]UserRole(nil), validUserRoles...)
}

// ProfileStatus tracks account standing.
type ProfileStatus string

const (
	ProfileStatusActive      ProfileStatus = "active"
	ProfileStatusSuspended   ProfileStatus = "suspended"
	ProfileStatusDeactivated ProfileStatus = "deactivated"
)

var validProfileStatuses = []ProfileStatus{
	ProfileStatusActive,
	ProfileStatusSuspended,
	ProfileStatusDeactivated,
}

func (s ProfileStatus) IsValid() bool { return contains(validProfileStatuses, s) }

func ParseProfileStatus(value string) (ProfileStatus, error) {
	return parse("profile status", value, validProfileStatuses)
}
