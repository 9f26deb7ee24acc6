package utils

// P 取得值的指针，用于填充响应结构体
func P[T any](v T) *T {
	return &v
}
