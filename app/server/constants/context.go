package constants

// echo.Context 中保存的键
const (
	ContextKeyClaims = "claims"
	ContextKeyAdmin  = "admin"
)
