package nativelib

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ErrNotFound marks a module with no candidate file at a location
var ErrNotFound = errors.New("library not found")

// Attempt is one failed resolution step
type Attempt struct {
	Tier   Tier
	Module string
	Path   string
	Err    error
}

func (a Attempt) Error() string {
	if a.Path == "" {
		return fmt.Sprintf("%s: %s: %v", a.Tier, a.Module, a.Err)
	}
	return fmt.Sprintf("%s: %s (%s): %v", a.Tier, a.Module, a.Path, a.Err)
}

func (a Attempt) Unwrap() error {
	return a.Err
}

// LoadError is returned when every tier failed
type LoadError struct {
	Attempts []Attempt
}

func (e *LoadError) add(a Attempt) {
	e.Attempts = append(e.Attempts, a)
}

// Err combines the attempts into one multi-error
func (e *LoadError) Err() error {
	var err error
	for _, a := range e.Attempts {
		err = multierr.Append(err, a)
	}
	return err
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("native libraries not loaded after ")
	fmt.Fprintf(&b, "%d attempts", len(e.Attempts))
	for _, err := range multierr.Errors(e.Err()) {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes each attempt to errors.Is and errors.As
func (e *LoadError) Unwrap() []error {
	return multierr.Errors(e.Err())
}

// Tiers returns the distinct tiers that were attempted, in order
func (e *LoadError) Tiers() []Tier {
	var tiers []Tier
	for _, a := range e.Attempts {
		if len(tiers) == 0 || tiers[len(tiers)-1] != a.Tier {
			tiers = append(tiers, a.Tier)
		}
	}
	return tiers
}
