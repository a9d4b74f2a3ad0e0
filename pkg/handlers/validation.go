package handlers

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"videotube/pkg/apierror"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	fullNamePattern = regexp.MustCompile(`^[\p{L}][\p{L} ]+$`)

	registerOnce sync.Once
)

func validUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

func validFullName(fl validator.FieldLevel) bool {
	return fullNamePattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

func strongPassword(fl validator.FieldLevel) bool {
	return isStrongPassword(fl.Field().String())
}

// isStrongPassword needs eight characters with an upper, a lower, a digit
// and a symbol.
func isStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// jsonName reports fields by their JSON name in validation messages.
func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// RegisterValidators adds the custom tags to gin's validator engine.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("username", validUsername)
		_ = v.RegisterValidation("fullname", validFullName)
		_ = v.RegisterValidation("strongpassword", strongPassword)
	})
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "username":
		return field + " must be 3-20 letters, digits or underscores"
	case "fullname":
		return field + " must contain only letters and spaces"
	case "strongpassword":
		return field + " must be at least 8 characters with upper and lower case letters, a digit and a special character"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	}
	return field + " is invalid"
}

// bind decodes the body by content type and turns validation failures into
// a 400 listing every field.
func bind(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBind(obj)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldMessage(fe))
		}
		fail(c, apierror.Invalid("Validation failed", fields))
		return false
	}
	fail(c, apierror.BadRequest("Invalid request body"))
	return false
}
