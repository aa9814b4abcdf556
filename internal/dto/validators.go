package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Usernames line up with what Keycloak accepts by default: letters, digits,
// and a small set of separators, no leading separator.
var usernameRE = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._@-]*$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("username", validUsername)
	}
}

func validUsername(fl validator.FieldLevel) bool {
	return usernameRE.MatchString(fl.Field().String())
}
