// Package spec decodes raw manifest blocks into the typed records the
// resource plugins work with.
package spec

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode fills out from raw and validates its struct tags. Unknown keys
// are rejected so manifest typos surface instead of being dropped.
func Decode(kind domain.ResourceKind, name string, raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "building spec decoder for %s/%s", kind, name)
	}
	if err := dec.Decode(raw); err != nil {
		return errors.Wrapf(err, errors.CodeSpecValidation, "resource '%s/%s': decoding spec", kind, name)
	}

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			details := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, fmt.Sprintf("Field '%s': Failed on '%s' validation (value: '%v')",
					fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.NewUserFacing(errors.CodeSpecValidation,
				fmt.Sprintf("resource '%s/%s' has an invalid spec: %s", kind, name, strings.Join(details, "; ")),
				"Fix the resource's spec block in the manifest.")
		}
		return errors.Wrapf(err, errors.CodeSpecValidation, "resource '%s/%s': validating spec", kind, name)
	}
	return nil
}

// Attributes copies raw into an attribute set, filling defaults for keys
// the manifest leaves unspecified. Explicitly null entries survive the
// copy and are not defaulted: a declared null asserts remote emptiness.
func Attributes(raw map[string]any, defaults map[string]any) domain.AttributeSet {
	attrs := make(domain.AttributeSet, len(raw)+len(defaults))
	for k, v := range raw {
		attrs[k] = v
	}
	for k, v := range defaults {
		if _, declared := attrs[k]; !declared {
			attrs[k] = v
		}
	}
	return attrs
}
