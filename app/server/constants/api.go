package constants

const (
	APIPrefix = "/api/admin"

	PaginationDefaultLimit = 10
	PaginationMaxLimit     = 100

	AvatarDefaultMaxBytes = 1 << 20
)
