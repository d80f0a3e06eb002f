package httputil

import (
	"regexp"
	"strings"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
)

// ValidatePrincipal checks if a string is a standard or contract principal
// with a valid c32check address.
func ValidatePrincipal(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := clarity.ParsePrincipal(s)
	return err == nil
}

// usernameRegex matches identity-contract usernames.
var usernameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,47}$`)

// ValidateUsername checks if a username is acceptable for lookup.
func ValidateUsername(name string) bool {
	return usernameRegex.MatchString(strings.TrimSpace(name))
}
