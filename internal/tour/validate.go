package tour

import (
	"fmt"
	"strings"

	"github.com/muurk/tourguide/internal/placement"
	"github.com/muurk/tourguide/internal/resolver"
)

// ValidateDefinition checks a definition. Returns a slice of validation
// errors (empty if valid).
func ValidateDefinition(def Definition) []error {
	var errs []error

	if strings.TrimSpace(def.StorageKey()) == "" {
		errs = append(errs, &DefinitionError{Type: ErrTypeEmpty, Step: -1, Message: "tour needs a name or key"})
	}
	if len(def.Steps) == 0 {
		errs = append(errs, &DefinitionError{Type: ErrTypeEmpty, Step: -1, Message: "tour has no steps"})
	}

	seen := make(map[string]int, len(def.Steps))
	for i, s := range def.Steps {
		if strings.TrimSpace(s.ID) == "" {
			errs = append(errs, &DefinitionError{Type: ErrTypeMissingID, Step: i, Message: "step id is required"})
		} else if first, dup := seen[s.ID]; dup {
			errs = append(errs, &DefinitionError{
				Type:    ErrTypeDuplicateID,
				Step:    i,
				StepID:  s.ID,
				Message: fmt.Sprintf("id already used by step %d", first+1),
			})
		} else {
			seen[s.ID] = i
		}

		if _, err := placement.ParseSide(string(s.Side)); err != nil {
			errs = append(errs, &DefinitionError{Type: ErrTypeInvalidSide, Step: i, StepID: s.ID, Message: "bad side", Err: err})
		}
		if _, err := ParseAnchorPolicy(string(s.Anchor)); err != nil {
			errs = append(errs, &DefinitionError{Type: ErrTypeInvalidAnchor, Step: i, StepID: s.ID, Message: "bad anchor", Err: err})
		}
		if strings.ContainsAny(s.Target, "\"'\\\n") {
			errs = append(errs, &DefinitionError{
				Type:    ErrTypeInvalidTarget,
				Step:    i,
				StepID:  s.ID,
				Message: "target key must not contain quotes, backslashes or newlines",
			})
		}
	}

	return errs
}

// Normalize fills defaults: bottom side, standard anchor, body target and the
// storage key. It assumes the definition is valid.
func Normalize(def Definition) Definition {
	out := def
	if out.Key == "" {
		out.Key = out.Name
	}
	out.Steps = make([]Step, len(def.Steps))
	for i, s := range def.Steps {
		side, _ := placement.ParseSide(string(s.Side))
		s.Side = side
		anchor, _ := ParseAnchorPolicy(string(s.Anchor))
		s.Anchor = anchor
		if strings.TrimSpace(s.Target) == "" {
			s.Target = resolver.BodyKey
		}
		out.Steps[i] = s
	}
	return out
}
