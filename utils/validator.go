package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"projectdrive/models"

	"github.com/go-playground/validator/v10"
)

const (
	// Limits mirror the most restrictive remote providers so a name that
	// passes here is safe to send anywhere.
	MaxItemNameLength = 256
	MaxItemPathLength = 400

	forbiddenNameChars = `\/:*?"<>|`
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Register custom validations
	validate.RegisterValidation("drive_name", validateDriveName)
	validate.RegisterValidation("drive_path", validateDrivePath)
	validate.RegisterValidation("project_code", validateProjectCode)
	validate.RegisterValidation("template_id", validateTemplateID)

	// Register custom tag name function
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateStruct validates a struct using validator tags
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

// ValidateItemName checks a single folder or file name against the rules
// shared by the supported remote stores. Rules run in order and the first
// violation wins; no network call happens before a name passes here.
func ValidateItemName(name string) error {
	if strings.TrimSpace(name) == "" {
		return models.NewDomainError(models.KindInvalidName, "name is empty")
	}
	if utf8.RuneCountInString(name) > MaxItemNameLength {
		return models.NewDomainError(models.KindInvalidName,
			fmt.Sprintf("name exceeds %d characters", MaxItemNameLength))
	}
	if idx := strings.IndexAny(name, forbiddenNameChars); idx >= 0 {
		r, _ := utf8.DecodeRuneInString(name[idx:])
		return models.NewDomainError(models.KindInvalidName,
			fmt.Sprintf("name contains forbidden character %q", r))
	}
	if isReservedDeviceName(name) {
		return models.NewDomainError(models.KindInvalidName,
			fmt.Sprintf("name %q is a reserved device name", name))
	}
	if strings.HasSuffix(name, ".") || strings.HasSuffix(name, " ") {
		return models.NewDomainError(models.KindInvalidName, "name must not end with a dot or space")
	}
	if strings.HasPrefix(name, ".") {
		return models.NewDomainError(models.KindInvalidName, "name must not start with a dot")
	}
	return nil
}

// ValidateItemPath checks a slash-separated remote path. Empty segments
// from leading, trailing or doubled slashes are tolerated; every real
// segment must be a valid item name.
func ValidateItemPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return models.NewDomainError(models.KindInvalidName, "path is empty")
	}
	if utf8.RuneCountInString(path) > MaxItemPathLength {
		return models.NewDomainError(models.KindInvalidName,
			fmt.Sprintf("path exceeds %d characters", MaxItemPathLength))
	}

	segments := 0
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		segments++
		if err := ValidateItemName(seg); err != nil {
			if de, ok := models.AsDomainError(err); ok {
				return models.NewDomainError(models.KindInvalidName,
					fmt.Sprintf("path segment %q: %s", seg, de.Message))
			}
			return err
		}
	}
	if segments == 0 {
		return models.NewDomainError(models.KindInvalidName, "path has no segments")
	}
	return nil
}

// isReservedDeviceName reports whether the name, or its stem before the
// first dot, is one of the legacy device names remote stores refuse.
func isReservedDeviceName(name string) bool {
	stem := name
	if i := strings.Index(stem, "."); i >= 0 {
		stem = stem[:i]
	}
	upper := strings.ToUpper(stem)
	switch upper {
	case "CON", "PRN", "AUX", "NUL":
		return true
	}
	if len(upper) == 4 && (strings.HasPrefix(upper, "COM") || strings.HasPrefix(upper, "LPT")) {
		return upper[3] >= '1' && upper[3] <= '9'
	}
	return false
}

// formatValidationErrors formats validation errors for better readability
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			message := getValidationMessage(e)
			messages = append(messages, message)
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// getValidationMessage returns a user-friendly validation message
func getValidationMessage(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s items or characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s items or characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "drive_name":
		return fmt.Sprintf("%s is not a valid remote item name", field)
	case "drive_path":
		return fmt.Sprintf("%s is not a valid remote path", field)
	case "project_code":
		return fmt.Sprintf("%s must contain only letters, numbers, hyphens and underscores", field)
	case "template_id":
		return fmt.Sprintf("%s must be a known folder template", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Custom validation functions
func validateDriveName(fl validator.FieldLevel) bool {
	return ValidateItemName(fl.Field().String()) == nil
}

func validateDrivePath(fl validator.FieldLevel) bool {
	return ValidateItemPath(fl.Field().String()) == nil
}

func validateProjectCode(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString(`^[A-Za-z0-9_-]+$`, fl.Field().String())
	return matched
}

func validateTemplateID(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString(`^[a-z0-9_-]+$`, fl.Field().String())
	return matched
}
