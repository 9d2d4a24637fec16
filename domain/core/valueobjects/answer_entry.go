package valueobjects

import (
	"strconv"
	"strings"

	pkgerrors "seds-backend/pkg/errors"
)

const segmentSeparator = "-"

// StateForm identifies one state's filing of one form for one quarter,
// e.g. "AL-2021-1-21E". The form code may itself contain dashes.
type StateForm struct {
	state   string
	year    int
	quarter int
	form    string
}

// NewStateForm builds a StateForm from its parts.
func NewStateForm(state string, year, quarter int, form string) (StateForm, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	form = strings.TrimSpace(form)

	if len(state) != 2 {
		return StateForm{}, pkgerrors.NewValidationError("state must be a two letter code")
	}
	if year < 1000 || year > 9999 {
		return StateForm{}, pkgerrors.NewValidationError("year must have four digits")
	}
	if quarter < 1 || quarter > 4 {
		return StateForm{}, pkgerrors.NewValidationError("quarter must be between 1 and 4")
	}
	if form == "" {
		return StateForm{}, pkgerrors.NewValidationError("form cannot be empty")
	}

	return StateForm{state: state, year: year, quarter: quarter, form: form}, nil
}

// ParseStateForm parses "ST-YYYY-Q-FORM".
func ParseStateForm(s string) (StateForm, error) {
	parts := strings.Split(strings.TrimSpace(s), segmentSeparator)
	if len(parts) < 4 {
		return StateForm{}, pkgerrors.NewValidationError("state form must look like ST-YYYY-Q-FORM")
	}
	return stateFormFromParts(parts)
}

func stateFormFromParts(parts []string) (StateForm, error) {
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return StateForm{}, pkgerrors.NewValidationError("year must be numeric")
	}
	quarter, err := strconv.Atoi(parts[2])
	if err != nil {
		return StateForm{}, pkgerrors.NewValidationError("quarter must be numeric")
	}
	return NewStateForm(parts[0], year, quarter, strings.Join(parts[3:], segmentSeparator))
}

func (s StateForm) State() string { return s.state }
func (s StateForm) Year() int     { return s.year }
func (s StateForm) Quarter() int  { return s.quarter }
func (s StateForm) Form() string  { return s.form }

// String returns the stored key form.
func (s StateForm) String() string {
	if s.IsZero() {
		return ""
	}
	return strings.Join([]string{
		s.state,
		strconv.Itoa(s.year),
		strconv.Itoa(s.quarter),
		s.form,
	}, segmentSeparator)
}

// IsZero checks if the StateForm is the zero value
func (s StateForm) IsZero() bool {
	return s.state == ""
}

// Equals checks if two StateForms are equal
func (s StateForm) Equals(other StateForm) bool {
	return s.String() == other.String()
}

// AnswerEntry is the composite key of one answer record:
// "ST-YYYY-Q-FORM-RANGE-NN", e.g. "AL-2021-1-21E-0000-01".
type AnswerEntry struct {
	stateForm StateForm
	rangeID   string
	ordinal   string
}

// ParseAnswerEntry splits an answer entry into its parts.
func ParseAnswerEntry(s string) (AnswerEntry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AnswerEntry{}, pkgerrors.NewValidationError("answer entry cannot be empty")
	}

	parts := strings.Split(s, segmentSeparator)
	if len(parts) < 6 {
		return AnswerEntry{}, pkgerrors.NewValidationError("answer entry must look like ST-YYYY-Q-FORM-RANGE-NN")
	}

	n := len(parts)
	stateForm, err := stateFormFromParts(parts[:n-2])
	if err != nil {
		return AnswerEntry{}, err
	}

	rangeID, ordinal := parts[n-2], parts[n-1]
	if rangeID == "" || ordinal == "" {
		return AnswerEntry{}, pkgerrors.NewValidationError("answer entry range and ordinal cannot be empty")
	}

	return AnswerEntry{stateForm: stateForm, rangeID: rangeID, ordinal: ordinal}, nil
}

// StateForm returns the form filing the entry belongs to.
func (a AnswerEntry) StateForm() StateForm { return a.stateForm }

// RangeID returns the age range code, e.g. "0105".
func (a AnswerEntry) RangeID() string { return a.rangeID }

// Ordinal returns the question ordinal, e.g. "01".
func (a AnswerEntry) Ordinal() string { return a.ordinal }

func (a AnswerEntry) String() string {
	if a.stateForm.IsZero() {
		return ""
	}
	return strings.Join([]string{a.stateForm.String(), a.rangeID, a.ordinal}, segmentSeparator)
}

// OrdinalOf returns the last dash-separated segment of a question code or
// answer entry. It does not validate the rest of the string.
func OrdinalOf(s string) string {
	if i := strings.LastIndex(s, segmentSeparator); i >= 0 {
		return s[i+1:]
	}
	return s
}
