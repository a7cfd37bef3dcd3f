package validator

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	maxFileNameLen    = 255
	asciiControlStart = 32
	asciiDelete       = 127
	jsonTagName       = "json"
	tagNotBlank       = "notblank"
	fallbackFileName  = "file"

	errFileNameEmptyFmt        = "file name cannot be empty"
	errFileNameMaxLengthFmt    = "file name must not exceed %d characters"
	errFileNamePathSepFmt      = "file name cannot contain path separators"
	errFileNameControlCharsFmt = "file name cannot contain control characters"

	errFieldRequiredFmt = "%s is required"
	errFieldMaxFmt      = "%s must be at most %s characters"
	errFieldMinFmt      = "%s must be at least %s characters"
	errFieldRangeMaxFmt = "%s must be at most %s"
	errFieldRangeMinFmt = "%s must be at least %s"
	errFieldOneOfFmt    = "%s must be one of: %s"
	errFieldFormatFmt   = "%s has an invalid format"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get(jsonTagName), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation(tagNotBlank, func(fl validator.FieldLevel) bool {
			field := fl.Field()
			if field.Kind() != reflect.String {
				return true
			}
			return strings.TrimSpace(field.String()) != ""
		})
		instance = v
	})
	return instance
}

// Struct validates v against its `validate` tags and returns the first
// failure as a readable message keyed by the JSON field name.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	return errors.New(message(fieldErrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required", tagNotBlank:
		return fmt.Sprintf(errFieldRequiredFmt, field)
	case "max":
		if isString {
			return fmt.Sprintf(errFieldMaxFmt, field, fe.Param())
		}
		return fmt.Sprintf(errFieldRangeMaxFmt, field, fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf(errFieldMinFmt, field, fe.Param())
		}
		return fmt.Sprintf(errFieldRangeMinFmt, field, fe.Param())
	case "oneof":
		return fmt.Sprintf(errFieldOneOfFmt, field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf(errFieldFormatFmt, field)
	}
}

func FileName(name string) error {
	if name == "" {
		return fmt.Errorf(errFileNameEmptyFmt)
	}

	if len(name) > maxFileNameLen {
		return fmt.Errorf(errFileNameMaxLengthFmt, maxFileNameLen)
	}

	if strings.Contains(name, "..") || strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf(errFileNamePathSepFmt)
	}

	for _, char := range name {
		if char < asciiControlStart || char == asciiDelete {
			return fmt.Errorf(errFileNameControlCharsFmt)
		}
	}

	return nil
}

// SafeFileName reduces a client-supplied name to a single path element
// that passes FileName, for use as a download or archive entry name.
func SafeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	var b strings.Builder
	for _, char := range name {
		if char < asciiControlStart || char == asciiDelete {
			continue
		}
		b.WriteRune(char)
	}
	name = b.String()
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	name = strings.TrimSpace(name)

	if name == "" || name == "." || name == "/" {
		return fallbackFileName
	}

	if len(name) > maxFileNameLen {
		ext := path.Ext(name)
		if len(ext) >= maxFileNameLen {
			ext = ""
		}
		name = name[:maxFileNameLen-len(ext)] + ext
	}

	return name
}
