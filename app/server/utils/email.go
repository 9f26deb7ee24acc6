package utils

import "net/mail"

// ValidEmail 只接受裸地址，不接受带显示名称的形式
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
