// Package loader reads processor configuration files. Files are TOML with
// kebab-case keys; unknown keys are rejected and every file is validated
// before it can be used for a deployment.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/validator"
)

// ErrInvalidConfig is matched by every LoadError
var ErrInvalidConfig = errors.New("invalid processor configuration")

// LoadError is returned when a processor file cannot be decoded or fails
// validation
type LoadError struct {
	Path   string
	Result *validator.ValidationResult
}

// Error implements the error interface
func (e *LoadError) Error() string {
	name := e.Path
	if name == "" {
		name = "processor configuration"
	}
	if e.Result == nil || len(e.Result.Errors) == 0 {
		return fmt.Sprintf("%s: invalid", name)
	}
	first := e.Result.Errors[0]
	msg := first.Message
	if first.Field != "" {
		msg = first.Field + ": " + msg
	}
	if n := len(e.Result.Errors); n > 1 {
		return fmt.Sprintf("%s: %s (and %d more error(s))", name, msg, n-1)
	}
	return fmt.Sprintf("%s: %s", name, msg)
}

// Is reports whether target is ErrInvalidConfig
func (e *LoadError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// LoadFile reads and validates the processor file at path
func LoadFile(path string) (*model.ProcessorConfig, *validator.ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read processor file: %w", err)
	}
	config, result, err := Parse(data)
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		loadErr.Path = path
	}
	return config, result, err
}

// Parse decodes and validates a processor configuration. The returned result
// holds warnings even when the configuration is valid.
func Parse(data []byte) (*model.ProcessorConfig, *validator.ValidationResult, error) {
	result := validator.NewResult()

	var file fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		addDecodeErrors(result, err)
		return nil, result, &LoadError{Result: result}
	}

	conv := &converter{result: result}
	config := conv.processor(&file)
	result.Merge(validator.ValidateProcessor(config))
	if !result.Valid {
		return nil, result, &LoadError{Result: result}
	}
	return config, result, nil
}

func addDecodeErrors(result *validator.ValidationResult, err error) {
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		for i := range strict.Errors {
			derr := &strict.Errors[i]
			row, _ := derr.Position()
			key := strings.Join(derr.Key(), ".")
			result.Errors = append(result.Errors, validator.ValidationError{
				Field:   key,
				Message: fmt.Sprintf("Unknown key '%s'", key),
				Line:    row,
				Fix:     "Remove the key or check its spelling",
			})
		}
		result.Valid = false
		return
	}

	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		row, _ := derr.Position()
		result.Errors = append(result.Errors, validator.ValidationError{
			Field:   strings.Join(derr.Key(), "."),
			Message: derr.Error(),
			Line:    row,
			Fix:     "Fix the TOML syntax",
		})
		result.Valid = false
		return
	}

	result.AddError("", err.Error(), "")
}
