package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Question types that render as an editable grid with totals.
const (
	QuestionTypeDataGrid = "datagridwithtotals"
	QuestionTypeGREGrid  = "gregridwithtotals"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Commit gating: ordinals (last segment of the answer entry) whose
	// edits are written back to the answer collection.
	CommitOrdinals []string `yaml:"commit_ordinals"`

	// Questions with this ordinal render as synthesized, read-only grids.
	SynthesizedOrdinal int `yaml:"synthesized_ordinal"`

	// Display precision
	DefaultPrecision int            `yaml:"default_precision"`
	FormPrecision    map[string]int `yaml:"form_precision"`

	// Label substitution
	LabelVariableToken string            `yaml:"label_variable_token"`
	AgeRangeLabels     map[string]string `yaml:"age_range_labels"`

	GridQuestionTypes []string `yaml:"grid_question_types"`

	// State forms containing this marker are ECI filings; the missing
	// answers scan also reports the list without them.
	ECIFormMarker string `yaml:"eci_form_marker"`

	// Feature flags
	EnableUncertifyNotification bool `yaml:"enable_uncertify_notification"`
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		CommitOrdinals:     []string{"01", "04"},
		SynthesizedOrdinal: 5,

		DefaultPrecision: 0,
		FormPrecision:    map[string]int{},

		LabelVariableToken: "&&&VARIABLE&&&",
		AgeRangeLabels: map[string]string{
			"0000": "Under Age 0",
			"0001": "between the ages of 0 and 1",
			"0105": "between the ages of 1 and 5",
			"0612": "between the ages of 6 and 12",
			"1318": "between the ages of 13 and 18",
		},

		GridQuestionTypes: []string{QuestionTypeDataGrid, QuestionTypeGREGrid},

		ECIFormMarker: "ECI",

		EnableUncertifyNotification: true,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	return DefaultDomainConfig()
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// No notification fan-out from local stacks
	config.EnableUncertifyNotification = false

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.SynthesizedOrdinal < 0 {
		return fmt.Errorf("synthesized_ordinal must not be negative")
	}
	if c.DefaultPrecision < 0 {
		return fmt.Errorf("default_precision must not be negative")
	}
	for form, p := range c.FormPrecision {
		if p < 0 {
			return fmt.Errorf("form_precision[%s] must not be negative", form)
		}
	}
	for _, o := range c.CommitOrdinals {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("commit_ordinals must not contain blank entries")
		}
	}
	if c.LabelVariableToken == "" {
		return fmt.Errorf("label_variable_token is required")
	}
	return nil
}

// CanCommit reports whether an answer with the given ordinal is written back
// to the answer collection.
func (c *DomainConfig) CanCommit(ordinal string) bool {
	for _, o := range c.CommitOrdinals {
		if o == ordinal {
			return true
		}
	}
	return false
}

// IsSynthesized reports whether a question ordinal such as "05" renders as a
// synthesized grid.
func (c *DomainConfig) IsSynthesized(ordinal string) bool {
	n, ok := parseOrdinal(ordinal)
	return ok && c.SynthesizedOrdinal > 0 && n == c.SynthesizedOrdinal
}

// IsGridType reports whether a question type renders as a grid with totals.
func (c *DomainConfig) IsGridType(questionType string) bool {
	for _, t := range c.GridQuestionTypes {
		if t == questionType {
			return true
		}
	}
	return false
}

// PrecisionFor returns the display precision for a form code.
func (c *DomainConfig) PrecisionFor(form string) int {
	if p, ok := c.FormPrecision[form]; ok {
		return p
	}
	return c.DefaultPrecision
}

// AgeRangeLabel returns the phrase substituted into question labels for a
// range id. Unknown ids yield the empty string.
func (c *DomainConfig) AgeRangeLabel(rangeID string) string {
	return c.AgeRangeLabels[rangeID]
}

// IsECIForm reports whether a state form key names an ECI filing.
func (c *DomainConfig) IsECIForm(stateForm string) bool {
	return c.ECIFormMarker != "" && strings.Contains(stateForm, c.ECIFormMarker)
}

func parseOrdinal(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Source supplies the current domain rules. Implementations may swap the
// rules at runtime; callers read Current on every use.
type Source interface {
	Current() *DomainConfig
}

// Static is a Source that never changes.
type Static struct {
	Config *DomainConfig
}

// Current implements Source
func (s Static) Current() *DomainConfig {
	if s.Config == nil {
		return DefaultDomainConfig()
	}
	return s.Config
}
