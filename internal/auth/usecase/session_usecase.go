package usecase

import (
	"context"
	"fmt"

	"codbank/internal/auth/domain/model"
	"codbank/internal/auth/domain/repository"
	"codbank/internal/shared/eventbus"
	"codbank/internal/shared/logger"
	"codbank/internal/shared/metrics"
)

// Verification outcomes, also used as metric labels.
const (
	VerifyValid   = "valid"
	VerifyAbsent  = "absent"
	VerifyInvalid = "invalid"
	VerifyRevoked = "revoked"
)

const eventSource = "auth"

// SessionUsecaseInterface defines the contract for session use cases.
type SessionUsecaseInterface interface {
	CreateSession(ctx context.Context, req model.LoginRequest) (*model.IssuedSession, error)
	VerifySession(ctx context.Context, token string) (*repository.Claims, bool)
	DeleteSession(ctx context.Context, token string)
}

// SessionUsecase mints, verifies and ends sessions.
type SessionUsecase struct {
	tokenSvc    repository.TokenService
	revocations repository.RevocationStore
	events      eventbus.EventBusInterface
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewSessionUsecase wires the session use cases. revocations, events and m may be nil.
func NewSessionUsecase(
	tokenSvc repository.TokenService,
	revocations repository.RevocationStore,
	events eventbus.EventBusInterface,
	m *metrics.Metrics,
	log logger.Logger,
) *SessionUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SessionUsecase{
		tokenSvc:    tokenSvc,
		revocations: revocations,
		events:      events,
		metrics:     m,
		logger:      log.WithComponent("session_usecase"),
	}
}

// CreateSession mints a fresh token for the identity in req.
func (uc *SessionUsecase) CreateSession(ctx context.Context, req model.LoginRequest) (*model.IssuedSession, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	token, claims, err := uc.tokenSvc.GenerateToken(ctx, req.Identity)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	uc.metrics.SessionIssued()

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"user_id": req.UserID,
		"role":    req.Role,
	}).Info("Session created")

	uc.publish(ctx, eventbus.EventTypeSessionCreated, req.Identity)

	return &model.IssuedSession{
		Token:     token,
		TokenID:   claims.ID,
		ExpiresAt: claims.Expiry(),
		Identity:  req.Identity,
	}, nil
}

// VerifySession returns the claims carried by token, or false when there is no usable session.
// Absent, malformed, tampered, expired and revoked tokens are all reported the same way.
func (uc *SessionUsecase) VerifySession(ctx context.Context, token string) (*repository.Claims, bool) {
	if token == "" {
		uc.metrics.SessionVerified(VerifyAbsent)
		return nil, false
	}

	claims, err := uc.tokenSvc.ValidateToken(ctx, token)
	if err != nil {
		uc.metrics.SessionVerified(VerifyInvalid)
		uc.logger.WithContext(ctx).Debugf("Session rejected: %v", err)
		return nil, false
	}

	if uc.revocations != nil && claims.ID != "" {
		revoked, err := uc.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			uc.metrics.SessionVerified(VerifyInvalid)
			uc.logger.WithContext(ctx).Warnf("Revocation lookup failed, rejecting session: %v", err)
			return nil, false
		}
		if revoked {
			uc.metrics.SessionVerified(VerifyRevoked)
			uc.logger.WithContext(ctx).Debug("Session rejected: token revoked")
			return nil, false
		}
	}

	uc.metrics.SessionVerified(VerifyValid)
	return claims, true
}

// DeleteSession ends the session carried by token. It never fails: an empty or invalid
// token is simply nothing to revoke.
func (uc *SessionUsecase) DeleteSession(ctx context.Context, token string) {
	uc.metrics.SessionDeleted()
	if token == "" {
		return
	}

	claims, err := uc.tokenSvc.ValidateToken(ctx, token)
	if err != nil {
		uc.logger.WithContext(ctx).Debugf("Logout with unusable token: %v", err)
		return
	}

	if uc.revocations != nil && claims.ID != "" {
		if err := uc.revocations.Revoke(ctx, claims.ID, claims.Expiry()); err != nil {
			uc.logger.WithContext(ctx).Errorf("Failed to revoke session %s: %v", claims.ID, err)
		}
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"user_id": claims.UserID,
	}).Info("Session ended")

	uc.publish(ctx, eventbus.EventTypeSessionEnded, claims.Identity())
}

func (uc *SessionUsecase) publish(ctx context.Context, eventType string, identity model.Identity) {
	if uc.events == nil {
		return
	}
	event := eventbus.NewBasicEventWithSource(eventType, map[string]interface{}{
		"userId":   identity.UserID,
		"username": identity.Username,
		"role":     identity.Role,
	}, eventSource)
	if err := uc.events.Publish(ctx, event); err != nil {
		uc.logger.WithContext(ctx).Warnf("Failed to publish %s: %v", eventType, err)
	}
}
