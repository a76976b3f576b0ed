package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-jobform/pkg/params"
)

var (
	errParameterNameMissing = errors.New("model builder: parameter name is required")
	errParameterDuplicate   = errors.New("model builder: duplicate parameter name")
	errParameterReserved    = errors.New("model builder: parameter name uses the reserved prefix")
)

func validateDescriptors(descriptors []params.Descriptor) error {
	seen := make(map[string]struct{}, len(descriptors))
	for idx, d := range descriptors {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return fmt.Errorf("%w (index %d)", errParameterNameMissing, idx)
		}
		if strings.HasPrefix(name, SyntheticPrefix) {
			return fmt.Errorf("%w: %q", errParameterReserved, name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q", errParameterDuplicate, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
