package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ValidationError points at a bad configuration source. Line is set for
// syntax errors, Field (the config key) for bad values.
type ValidationError struct {
	FilePath string
	Line     int
	Field    string
	Message  string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	}
	return e.FilePath + ": " + e.Message
}

var yamlLinePrefix = regexp.MustCompile(`^yaml: line (\d+): `)

// checkSyntax parses the file at path as YAML. Missing and blank files
// pass; defaults fill in for them.
func checkSyntax(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &ValidationError{FilePath: path, Message: err.Error()}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		verr := &ValidationError{FilePath: path, Message: err.Error()}
		if m := yamlLinePrefix.FindStringSubmatch(verr.Message); m != nil {
			verr.Line, _ = strconv.Atoi(m[1])
			verr.Message = strings.TrimPrefix(verr.Message, m[0])
		}
		return verr
	}
	return nil
}

// Field errors are reported under their koanf key.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("koanf")
	})
	return v
}()

// checkValues reports the first setting of the merged configuration that
// breaks its constraint.
func checkValues(cfg *Configuration) error {
	err := validate.Struct(cfg)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{FilePath: "config", Field: fe.Field(), Message: describeConstraint(fe)}
	}
	if err != nil {
		return err
	}

	// The header is matched as one whole line of the changelog.
	if strings.ContainsAny(cfg.Header, "\r\n") {
		return &ValidationError{FilePath: "config", Field: "header", Message: "must be a single line"}
	}
	return nil
}

func describeConstraint(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "hostname_rfc1123":
		return "must be a host name such as github.com"
	}
	return "fails the " + fe.Tag() + " check"
}
