package sagas

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSagaCompletes(t *testing.T) {
	var order []string
	s := NewSaga("test", zap.NewNop()).
		AddStep(SagaStep{Name: "a", Execute: func(ctx context.Context) error { order = append(order, "a"); return nil }}).
		AddStep(SagaStep{Name: "b", Execute: func(ctx context.Context) error { order = append(order, "b"); return nil }})

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, SagaStateCompleted, s.GetState())
	assert.NotEmpty(t, s.GetID())
}

func TestSagaCompensatesInReverse(t *testing.T) {
	var undone []string
	boom := errors.New("boom")

	s := NewSaga("test", zap.NewNop()).
		AddStep(SagaStep{
			Name:       "a",
			Execute:    func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error { undone = append(undone, "a"); return nil },
		}).
		AddStep(SagaStep{
			Name:       "b",
			Execute:    func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error { undone = append(undone, "b"); return errors.New("ignored") },
		}).
		AddStep(SagaStep{
			Name:       "c",
			Execute:    func(ctx context.Context) error { return boom },
			Compensate: func(ctx context.Context) error { undone = append(undone, "c"); return nil },
		})

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"b", "a"}, undone)
	assert.Equal(t, SagaStateCompensated, s.GetState())
}

func TestSagaRetriesStep(t *testing.T) {
	calls := 0
	s := NewSaga("test", zap.NewNop()).AddStep(SagaStep{
		Name: "flaky",
		Execute: func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		},
		MaxRetries: 3,
	})

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, 3, calls)
}
