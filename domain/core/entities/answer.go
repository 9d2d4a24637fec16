package entities

import (
	"seds-backend/domain/core/grid"
	"seds-backend/domain/core/valueobjects"
)

// AnswerRecord is one question's answer grid for one age range of a state
// form. Records are matched by AnswerEntry alone.
type AnswerRecord struct {
	AnswerEntry    string     `json:"answer_entry" dynamodbav:"answer_entry"`
	StateForm      string     `json:"state_form" dynamodbav:"state_form"`
	Question       string     `json:"question" dynamodbav:"question"`
	AgeRange       string     `json:"age_range,omitempty" dynamodbav:"age_range,omitempty"`
	RangeID        string     `json:"rangeId" dynamodbav:"rangeId"`
	Rows           []grid.Row `json:"rows" dynamodbav:"rows"`
	LastModified   string     `json:"last_modified,omitempty" dynamodbav:"last_modified,omitempty"`
	LastModifiedBy string     `json:"last_modified_by,omitempty" dynamodbav:"last_modified_by,omitempty"`
	CreatedDate    string     `json:"created_date,omitempty" dynamodbav:"created_date,omitempty"`
	CreatedBy      string     `json:"created_by,omitempty" dynamodbav:"created_by,omitempty"`
}

// QuestionOrdinal returns the ordinal segment of the answer entry, e.g. "01".
func (a AnswerRecord) QuestionOrdinal() string {
	return valueobjects.OrdinalOf(a.AnswerEntry)
}

// Matrix projects the record's rows onto a numeric matrix.
func (a AnswerRecord) Matrix() grid.Matrix {
	return grid.ToMatrix(a.Rows)
}

// WithRows returns a copy of the record carrying new rows and provenance.
// Identity fields are never touched.
func (a AnswerRecord) WithRows(rows []grid.Row, modifiedBy, modifiedAt string) AnswerRecord {
	a.Rows = rows
	a.LastModifiedBy = modifiedBy
	a.LastModified = modifiedAt
	return a
}

// Clone returns a copy whose rows can be mutated independently.
func (a AnswerRecord) Clone() AnswerRecord {
	if a.Rows != nil {
		rows := make([]grid.Row, len(a.Rows))
		for i, r := range a.Rows {
			rows[i] = r.Clone()
		}
		a.Rows = rows
	}
	return a
}
