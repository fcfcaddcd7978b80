package models

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	MsgInvalidEmail = "Email không hợp lệ!"
	MsgInvalidPhone = "Số điện thoại không hợp lệ! Vui lòng nhập số điện thoại Việt Nam hợp lệ (VD: 0912345678 hoặc +84912345678)"
	MsgMissingID    = "Mã sinh viên không được để trống!"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)
	phoneRegex = regexp.MustCompile(`^(0|\+84)(\d{9,10})$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("vnemail", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})
	v.RegisterValidation("vnphone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	return v
}

// ValidationError carries the message shown to the user for the first
// field that failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks email first, then phone. Only the first failure is
// reported.
func (s *Student) Validate() error {
	if err := validate.Var(s.Email, "vnemail"); err != nil {
		return &ValidationError{Field: "email", Message: MsgInvalidEmail}
	}
	if err := validate.Var(s.Phone, "vnphone"); err != nil {
		return &ValidationError{Field: "phone", Message: MsgInvalidPhone}
	}
	return nil
}

// ValidateForWrite additionally requires an identifier, which the server
// never generates on its own.
func (s *Student) ValidateForWrite() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "ID" {
			return &ValidationError{Field: "id", Message: MsgMissingID}
		}
		return fmt.Errorf("student validation failed: %w", err)
	}
	return nil
}
