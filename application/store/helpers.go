package store

import (
	"sort"

	"seds-backend/domain/core/entities"
)

// SortQuestionsByNumber returns the questions ordered by the number in the
// last segment of their code. The input is not modified.
func SortQuestionsByNumber(questions []entities.Question) []entities.Question {
	out := append([]entities.Question{}, questions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Number() < out[j].Number()
	})
	return out
}

// ExtractAgeRanges returns the distinct range ids present in answers, sorted.
// These become the form's tabs.
func ExtractAgeRanges(answers []entities.AnswerRecord) []string {
	seen := make(map[string]struct{}, len(answers))
	ranges := make([]string, 0)
	for _, a := range answers {
		if _, ok := seen[a.RangeID]; ok {
			continue
		}
		seen[a.RangeID] = struct{}{}
		ranges = append(ranges, a.RangeID)
	}
	sort.Strings(ranges)
	return ranges
}

// NewLoadForm assembles a LoadForm action from loaded data, sorting the
// questions and deriving the tabs from the answers.
func NewLoadForm(questions []entities.Question, answers []entities.AnswerRecord, status entities.FormStatus) LoadForm {
	return LoadForm{
		Questions:  SortQuestionsByNumber(questions),
		Answers:    answers,
		StatusData: status,
		Tabs:       ExtractAgeRanges(answers),
	}
}
