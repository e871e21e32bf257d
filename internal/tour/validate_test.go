package tour

import (
	"strings"
	"testing"

	"github.com/muurk/tourguide/internal/placement"
)

func TestValidateDefinition(t *testing.T) {
	tests := []struct {
		name  string
		def   Definition
		types []ErrorType
	}{
		{
			name: "valid",
			def:  Definition{Name: "t", Steps: []Step{{ID: "a"}, {ID: "b", Target: "nav", Side: placement.SideLeft, Anchor: AnchorFixedBottom}}},
		},
		{
			name:  "no name no steps",
			def:   Definition{},
			types: []ErrorType{ErrTypeEmpty, ErrTypeEmpty},
		},
		{
			name:  "missing and duplicate ids",
			def:   Definition{Name: "t", Steps: []Step{{ID: ""}, {ID: "x"}, {ID: "x"}}},
			types: []ErrorType{ErrTypeMissingID, ErrTypeDuplicateID},
		},
		{
			name:  "bad side and anchor",
			def:   Definition{Name: "t", Steps: []Step{{ID: "a", Side: "diagonal", Anchor: "floating"}}},
			types: []ErrorType{ErrTypeInvalidSide, ErrTypeInvalidAnchor},
		},
		{
			name:  "quoted target",
			def:   Definition{Name: "t", Steps: []Step{{ID: "a", Target: `x"]`}}},
			types: []ErrorType{ErrTypeInvalidTarget},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateDefinition(tt.def)
			if len(errs) != len(tt.types) {
				t.Fatalf("ValidateDefinition() = %v, want %d errors", errs, len(tt.types))
			}
			for i, err := range errs {
				if !IsDefinitionError(err, tt.types[i]) {
					t.Errorf("error %d = %v, want type %v", i, err, tt.types[i])
				}
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	def := Normalize(Definition{Name: "welcome", Steps: []Step{{ID: "a"}, {ID: "b", Target: "nav", Anchor: "FIXED-BOTTOM"}}})

	if def.Key != "welcome" {
		t.Errorf("Key = %q, want %q", def.Key, "welcome")
	}
	if def.Steps[0].Target != "body" || !def.Steps[0].IsBody() {
		t.Errorf("empty target normalized to %q, want body", def.Steps[0].Target)
	}
	if def.Steps[0].Side != placement.SideBottom || def.Steps[0].Anchor != AnchorStandard {
		t.Errorf("defaults = %q/%q, want bottom/standard", def.Steps[0].Side, def.Steps[0].Anchor)
	}
	if !def.Steps[1].FixedBottom() {
		t.Error("anchor policy parsing is not case-insensitive")
	}
}

func TestDefinitionErrorMessage(t *testing.T) {
	err := &DefinitionError{Type: ErrTypeDuplicateID, Step: 2, StepID: "x", Message: "id already used by step 2"}
	got := err.Error()
	for _, want := range []string{"Duplicate Step ID", "step 3 (x)", "already used"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
}
