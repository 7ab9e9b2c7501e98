package utils

import (
	"fmt"
	"strings"
)

const bearerPrefix = "Bearer "

func BearerHeader(token string) string {
	return fmt.Sprintf("%s%s", bearerPrefix, token)
}

// TokenFromBearerHeader returns the token of an "Authorization: Bearer <token>"
// value, or "" when the header is absent or uses another scheme.
func TokenFromBearerHeader(header string) string {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
