package domain

// Roles carried in storefront-issued JWTs. The admin channel of the local
// API is only visible to operators.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)
