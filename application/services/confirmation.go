// Package services holds application workflows that span several commands
// or repositories.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"seds-backend/application/commands/bus"
	"seds-backend/application/ports"
	"seds-backend/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConfirmationRequest asks a user to approve an action before it runs.
type ConfirmationRequest struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfirmationResponse answers a ConfirmationRequest.
type ConfirmationResponse struct {
	ID        string `json:"id" validate:"required"`
	Confirmed bool   `json:"confirmed"`
}

// Confirmer asks a user synchronously, e.g. on a terminal.
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmationRequest) (ConfirmationResponse, error)
}

// CommandSender dispatches commands
type CommandSender interface {
	Send(ctx context.Context, cmd bus.Command) (interface{}, error)
}

// ActorCommand is a command that records the user who issued it.
type ActorCommand interface {
	bus.Command
	WithActor(actor auth.UserContext) bus.Command
}

// CommandDecoder rebuilds a parked command for the user resolving it.
type CommandDecoder func(payload []byte, actor auth.UserContext) (bus.Command, error)

// JSONDecoder decodes a payload into C. The actor is not part of the
// payload; the resolving user, who is always the requester, is attached.
func JSONDecoder[C ActorCommand]() CommandDecoder {
	return func(payload []byte, actor auth.UserContext) (bus.Command, error) {
		var cmd C
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return nil, fmt.Errorf("failed to decode parked command: %w", err)
		}
		return cmd.WithActor(actor), nil
	}
}

// ConfirmationService parks commands until the requesting user confirms
// them. Only actions with a registered decoder can be parked.
type ConfirmationService struct {
	store    ports.ConfirmationStore
	sender   CommandSender
	decoders map[string]CommandDecoder
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewConfirmationService creates a new confirmation service
func NewConfirmationService(store ports.ConfirmationStore, sender CommandSender, ttl time.Duration, logger *zap.Logger) *ConfirmationService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ConfirmationService{
		store:    store,
		sender:   sender,
		decoders: make(map[string]CommandDecoder),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle registers the decoder for action. Call it before serving requests.
func (s *ConfirmationService) Handle(action string, decode CommandDecoder) *ConfirmationService {
	s.decoders[action] = decode
	return s
}

// Request validates cmd and stores it pending confirmation by requestedBy.
func (s *ConfirmationService) Request(ctx context.Context, requestedBy, action, message string, cmd bus.Command) (*ConfirmationRequest, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if _, ok := s.decoders[action]; !ok {
		return nil, fmt.Errorf("no decoder registered for action %q", action)
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to encode command: %w", err)
	}

	req := ConfirmationRequest{
		ID:        uuid.New().String(),
		Action:    action,
		Message:   message,
		ExpiresAt: s.now().Add(s.ttl).UTC().Truncate(time.Second),
	}
	err = s.store.Put(ctx, ports.PendingConfirmation{
		ID:          req.ID,
		Action:      action,
		Message:     message,
		RequestedBy: requestedBy,
		Payload:     string(payload),
		ExpiresAt:   req.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store confirmation: %w", err)
	}

	s.logger.Debug("Confirmation requested",
		zap.String("confirmation_id", req.ID),
		zap.String("action", action),
		zap.String("requested_by", requestedBy),
	)
	return &req, nil
}

// Resolve claims the pending command and runs it when confirmed. A claimed
// entry is gone whatever the answer, so each confirmation resolves once.
// It returns the command result, or nil when the action was declined.
func (s *ConfirmationService) Resolve(ctx context.Context, actor auth.UserContext, resp ConfirmationResponse) (interface{}, error) {
	pending, err := s.store.Claim(ctx, resp.ID, actor.UserID, s.now())
	if err != nil {
		return nil, err
	}

	if !resp.Confirmed {
		s.logger.Info("Action declined",
			zap.String("confirmation_id", resp.ID),
			zap.String("action", pending.Action),
		)
		return nil, nil
	}

	decode, ok := s.decoders[pending.Action]
	if !ok {
		return nil, fmt.Errorf("no decoder registered for action %q", pending.Action)
	}
	cmd, err := decode([]byte(pending.Payload), actor)
	if err != nil {
		return nil, err
	}
	return s.sender.Send(ctx, cmd)
}

// Run asks confirmer and resolves the answer in one call.
func (s *ConfirmationService) Run(ctx context.Context, confirmer Confirmer, actor auth.UserContext, action, message string, cmd bus.Command) (interface{}, error) {
	req, err := s.Request(ctx, actor.UserID, action, message, cmd)
	if err != nil {
		return nil, err
	}

	resp, err := confirmer.Confirm(ctx, *req)
	if err != nil {
		if delErr := s.store.Delete(ctx, req.ID); delErr != nil {
			s.logger.Warn("Failed to drop confirmation", zap.String("confirmation_id", req.ID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("confirmation failed: %w", err)
	}
	resp.ID = req.ID
	return s.Resolve(ctx, actor, resp)
}
