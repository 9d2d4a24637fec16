// Package store holds the answers, questions and status of one open form and
// the pure reducer that applies actions to them.
package store

import (
	"time"

	"seds-backend/domain/core/entities"
	"seds-backend/pkg/utils"
)

// State is everything the store knows about the open form.
type State struct {
	Questions     []entities.Question     `json:"questions"`
	Answers       []entities.AnswerRecord `json:"answers"`
	StatusData    entities.FormStatus     `json:"statusData"`
	Tabs          []string                `json:"tabs"`
	NotApplicable bool                    `json:"not_applicable"`
}

// InitialState returns an empty state.
func InitialState() State {
	return State{
		Questions: []entities.Question{},
		Answers:   []entities.AnswerRecord{},
		Tabs:      []string{},
	}
}

// Reduce applies one action and returns the new state. The input state is
// never modified; unknown actions return it unchanged.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case LoadForm:
		return State{
			Questions:     append([]entities.Question{}, a.Questions...),
			Answers:       cloneAnswers(a.Answers),
			StatusData:    a.StatusData,
			Tabs:          append([]string{}, a.Tabs...),
			NotApplicable: a.StatusData.NotApplicable,
		}

	case UpdateAnswer:
		state.Answers = replaceAnswer(state.Answers, a)
		return state

	case UpdateFormStatus:
		state.NotApplicable = a.NotApplicable
		state.StatusData.NotApplicable = a.NotApplicable
		return state

	case CertifyFinal:
		state.StatusData = withStatus(state.StatusData, entities.StatusFinal, entities.StatusIDFinal, a.UserName, a.At)
		return state

	case CertifyProvisional:
		state.StatusData = withStatus(state.StatusData, entities.StatusProvisional, entities.StatusIDProvisional, a.UserName, a.At)
		return state

	case Uncertify:
		state.StatusData = withStatus(state.StatusData, entities.StatusInProgress, entities.StatusIDInProgress, a.UserName, a.At)
		return state

	case UpdateSummaryNotes:
		state.StatusData.StateComments = a.Comments
		return state

	default:
		return state
	}
}

// replaceAnswer returns a new slice in which the record matching the action's
// entry carries the new rows. When no record matches, the original slice is
// returned: an update never inserts.
func replaceAnswer(answers []entities.AnswerRecord, a UpdateAnswer) []entities.AnswerRecord {
	for i := range answers {
		if answers[i].AnswerEntry != a.AnswerEntry {
			continue
		}
		out := make([]entities.AnswerRecord, len(answers))
		copy(out, answers)
		out[i] = answers[i].WithRows(a.Rows, a.ModifiedBy, a.ModifiedAt)
		return out
	}
	return answers
}

func withStatus(status entities.FormStatus, name string, id int, userName string, at time.Time) entities.FormStatus {
	if at.IsZero() {
		at = time.Now()
	}
	date := utils.FormatDate(at)

	status.Status = name
	status.StatusID = id
	status.StatusDate = date
	status.StatusModifiedBy = userName
	status.LastModifiedBy = userName
	status.LastModified = date
	return status
}

func cloneAnswers(answers []entities.AnswerRecord) []entities.AnswerRecord {
	out := make([]entities.AnswerRecord, len(answers))
	for i, a := range answers {
		out[i] = a.Clone()
	}
	return out
}
