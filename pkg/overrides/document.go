package overrides

import (
	"encoding/json"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Document is the on-disk form of an override rule set, as produced by the
// editing tools. Rule keys use the "<trip id>::<stop id>" form.
type Document struct {
	Version string `json:"version,omitempty"`

	Rules map[string]Restriction `json:"rules" validate:"required,dive"`

	// Per-stop editor defaults, carried through load/merge/save untouched.
	StopDefaults map[string]Mode `json:"stop_defaults,omitempty"`
}

func ParseDocument(reader io.Reader) (*Document, error) {
	var document Document

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&document); err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(&document); err != nil {
		return nil, err
	}

	return &document, nil
}

func (document *Document) Write(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(document)
}

// Merge overlays another document onto this one, the other side winning on
// key collisions. Matches what the editing tools do when combining projects.
func (document *Document) Merge(other *Document) {
	if document.Rules == nil {
		document.Rules = map[string]Restriction{}
	}
	for key, restriction := range other.Rules {
		document.Rules[key] = restriction
	}

	if other.StopDefaults != nil {
		if document.StopDefaults == nil {
			document.StopDefaults = map[string]Mode{}
		}
		for stopID, mode := range other.StopDefaults {
			document.StopDefaults[stopID] = mode
		}
	}

	if other.Version != "" {
		document.Version = other.Version
	}
}

// RuleSet converts the string keyed document form into the structurally keyed
// form the compiler consumes. Malformed keys are skipped, not fatal.
func (document *Document) RuleSet() RuleSet {
	rules := RuleSet{}

	for rawKey, restriction := range document.Rules {
		key, err := ParseRuleKey(rawKey)
		if err != nil {
			log.Warn().Str("key", rawKey).Msg("Skipping malformed rule key")
			continue
		}

		rules[key] = restriction
	}

	return rules
}
