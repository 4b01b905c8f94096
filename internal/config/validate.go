package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Extensions accepted for inventory source files; a bare name is allowed too
var validExtensions = []string{".yml", ".yaml", ".json"}

var (
	validateOnce    sync.Once
	structValidator *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		structValidator = validator.New()
		// report yaml field names
		structValidator.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return structValidator
}

// ValidationError lists every field that failed validation
type ValidationError struct {
	Fields []FieldError
}

// FieldError is a single failed field
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "invalid inventory source: " + strings.Join(msgs, "; ")
}

// Validate checks the config against its struct constraints and the keyed
// group option rules
func (c *Config) Validate() error {
	var result ValidationError

	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		for _, fe := range verrs {
			result.Fields = append(result.Fields, FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: describe(fe),
			})
		}
	}

	for i, kg := range c.KeyedGroups {
		if err := kg.Validate(); err != nil {
			result.Fields = append(result.Fields, FieldError{
				Field:   fmt.Sprintf("keyed_groups[%d]", i),
				Message: err.Error(),
			})
		}
	}

	if len(result.Fields) > 0 {
		return &result
	}
	return nil
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "ipv4":
		return fmt.Sprintf("%q is not an IPv4 address", fe.Value())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", fe.Value(), fe.Param())
	case "min", "max":
		return fmt.Sprintf("%v is out of range", fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// VerifyFile checks that path is a readable file with an accepted extension
func VerifyFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("inventory source %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("inventory source %s is a directory", path)
	}

	ext := filepath.Ext(path)
	if ext == "" {
		return nil
	}
	for _, valid := range validExtensions {
		if ext == valid {
			return nil
		}
	}
	return fmt.Errorf("inventory source %s: extension %q is not one of %v", path, ext, validExtensions)
}
