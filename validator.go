package fsharpstyle

import (
	"fmt"
	"regexp"
)

// Validator checks the text of a rule being loaded.
type Validator interface {
	// Validate returns nil if text is acceptable for tag.
	Validate(tag Tag, text string, pos Position) error
}

// RegexValidator validates text against a regular expression.
type RegexValidator struct {
	Pattern     *regexp.Regexp
	Description string // Human-readable description of what the pattern expects
}

// Validate implements the Validator interface.
func (v *RegexValidator) Validate(tag Tag, text string, pos Position) error {
	if !v.Pattern.MatchString(text) {
		return NewValidationError(pos, tag,
			fmt.Sprintf("text does not match expected pattern: %s", v.Description), "")
	}
	return nil
}

// FuncValidator uses a custom function to validate text.
type FuncValidator struct {
	ValidateFunc func(tag Tag, text string, pos Position) error
}

// Validate implements the Validator interface.
func (v *FuncValidator) Validate(tag Tag, text string, pos Position) error {
	return v.ValidateFunc(tag, text, pos)
}

// MaxLength rejects rule texts longer than n bytes.
func MaxLength(n int) Validator {
	return &FuncValidator{ValidateFunc: func(tag Tag, text string, pos Position) error {
		if len(text) > n {
			return NewValidationError(pos, tag,
				fmt.Sprintf("text is %d bytes, limit is %d", len(text), n), "")
		}
		return nil
	}}
}

// ValidatorRegistry holds validators per tag plus validators for every tag.
type ValidatorRegistry struct {
	all        []Validator
	validators map[Tag][]Validator
}

// NewValidatorRegistry creates a new validator registry.
func NewValidatorRegistry() *ValidatorRegistry {
	return &ValidatorRegistry{
		validators: make(map[Tag][]Validator),
	}
}

// Register adds a validator for one tag. Multiple validators can be
// registered for the same tag; they run in registration order.
func (r *ValidatorRegistry) Register(tag Tag, validator Validator) {
	if validator == nil {
		return
	}
	r.validators[tag] = append(r.validators[tag], validator)
}

// RegisterAll adds a validator that runs for every tag, before per-tag ones.
func (r *ValidatorRegistry) RegisterAll(validator Validator) {
	if validator == nil {
		return
	}
	r.all = append(r.all, validator)
}

// RegisterRegex creates and registers a RegexValidator.
func (r *ValidatorRegistry) RegisterRegex(tag Tag, pattern, description string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid regex pattern for tag %s: %w", tag, err)
	}

	r.Register(tag, &RegexValidator{
		Pattern:     re,
		Description: description,
	})
	return nil
}

// RegisterFunc creates and registers a FuncValidator.
func (r *ValidatorRegistry) RegisterFunc(tag Tag, validateFunc func(Tag, string, Position) error) {
	r.Register(tag, &FuncValidator{
		ValidateFunc: validateFunc,
	})
}

// ValidateRule runs the validators that apply to tag and returns the first
// failure.
func (r *ValidatorRegistry) ValidateRule(tag Tag, text string, pos Position) error {
	if r == nil {
		return nil
	}
	for _, v := range r.all {
		if err := v.Validate(tag, text, pos); err != nil {
			return err
		}
	}
	for _, v := range r.validators[tag] {
		if err := v.Validate(tag, text, pos); err != nil {
			return err
		}
	}
	return nil
}
