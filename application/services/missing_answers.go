package services

import (
	"context"
	"fmt"
	"sort"

	"seds-backend/application/ports"
	"seds-backend/domain/config"

	"go.uber.org/zap"
)

// MissingAnswersReport lists the state forms that have no answer records.
// Each line reads "<state_form>, <created_by>".
type MissingAnswersReport struct {
	Scanned       int      `json:"scanned"`
	Missing       []string `json:"missing"`
	MissingNonECI []string `json:"missing_non_eci"`
}

// MissingAnswersScanner cross-checks state forms against stored answers.
type MissingAnswersScanner struct {
	forms   ports.StateFormRepository
	answers ports.AnswerRepository
	rules   config.Source
	logger  *zap.Logger
}

// NewMissingAnswersScanner creates a new scanner
func NewMissingAnswersScanner(forms ports.StateFormRepository, answers ports.AnswerRepository, rules config.Source, logger *zap.Logger) *MissingAnswersScanner {
	return &MissingAnswersScanner{forms: forms, answers: answers, rules: rules, logger: logger}
}

// Scan reads every state form and every answer and reports the forms with
// no answers, sorted.
func (s *MissingAnswersScanner) Scan(ctx context.Context) (*MissingAnswersReport, error) {
	statuses, err := s.forms.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan state forms: %w", err)
	}

	answered, err := s.answers.StateFormsWithAnswers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan answers: %w", err)
	}

	rules := s.rules.Current()
	report := &MissingAnswersReport{
		Scanned:       len(statuses),
		Missing:       []string{},
		MissingNonECI: []string{},
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].StateForm < statuses[j].StateForm })
	for _, status := range statuses {
		if _, ok := answered[status.StateForm]; ok {
			continue
		}
		line := status.StateForm + ", " + status.CreatedBy
		report.Missing = append(report.Missing, line)
		if !rules.IsECIForm(status.StateForm) {
			report.MissingNonECI = append(report.MissingNonECI, line)
		}
	}

	s.logger.Info("Missing answers scan complete",
		zap.Int("state_forms", report.Scanned),
		zap.Int("answered", len(answered)),
		zap.Int("missing", len(report.Missing)),
		zap.Int("missing_non_eci", len(report.MissingNonECI)),
	)
	return report, nil
}
