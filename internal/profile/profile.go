// Package profile selects the deployment profile of a processor.
package profile

import (
	"errors"
	"fmt"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
)

var (
	// ErrProfileNotFound is returned when the requested profile is not declared
	ErrProfileNotFound = errors.New("profile not found")
	// ErrNoProfilesDefined is returned when no profile is requested and none is declared
	ErrNoProfilesDefined = errors.New("no profiles defined")
	// ErrAmbiguousDefaultProfile is returned when no profile is requested and several are declared
	ErrAmbiguousDefaultProfile = errors.New("ambiguous default profile")
)

// Select returns the profile with the requested id. Without a requested id
// the only declared profile is returned.
func Select(profiles []model.ProfileConfig, requested *ids.ProfileID) (model.ProfileConfig, error) {
	if requested != nil {
		for _, p := range profiles {
			if p.ID == *requested {
				return p, nil
			}
		}
		return model.ProfileConfig{}, fmt.Errorf("%w: '%s'", ErrProfileNotFound, *requested)
	}

	switch len(profiles) {
	case 0:
		return model.ProfileConfig{}, ErrNoProfilesDefined
	case 1:
		return profiles[0], nil
	}
	return model.ProfileConfig{}, fmt.Errorf("%w: choose one of %v", ErrAmbiguousDefaultProfile, IDs(profiles))
}

// IDs returns the profile ids in declaration order
func IDs(profiles []model.ProfileConfig) []string {
	out := make([]string, len(profiles))
	for i, p := range profiles {
		out[i] = p.ID.String()
	}
	return out
}
