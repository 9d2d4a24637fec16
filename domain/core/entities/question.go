package entities

import (
	"strconv"
	"strings"

	"seds-backend/domain/core/valueobjects"
)

// Question is the definition of one question on a form for one year.
type Question struct {
	Question string `json:"question" dynamodbav:"question"`
	Label    string `json:"label" dynamodbav:"label"`
	Type     string `json:"type" dynamodbav:"type"`
	Form     string `json:"form,omitempty" dynamodbav:"form,omitempty"`
	Year     int    `json:"year,omitempty" dynamodbav:"year,omitempty"`
}

// Ordinal returns the question number segment, e.g. "01" for "2021-21E-01".
func (q Question) Ordinal() string {
	return valueobjects.OrdinalOf(q.Question)
}

// Number returns the question number, or 0 when the ordinal is not numeric.
func (q Question) Number() int {
	n, err := strconv.Atoi(q.Ordinal())
	if err != nil {
		return 0
	}
	return n
}

// RenderLabel substitutes phrase for every occurrence of token in the label.
func (q Question) RenderLabel(token, phrase string) string {
	if token == "" {
		return q.Label
	}
	return strings.ReplaceAll(q.Label, token, phrase)
}
