package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

// codeAlphabet excludes ambiguous characters (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

type batchRepository interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	CodeStatus(ctx context.Context, id string) (*models.SignupCodeStatus, error)
	ReplaceSignupCode(ctx context.Context, id, previousCode, newCode string, reason *string, generatedAt time.Time) (bool, error)
	ToggleCodeStatus(ctx context.Context, id string) (bool, error)
	ConsumeCode(ctx context.Context, id, code string) (bool, error)
	FindByCode(ctx context.Context, code string) (*models.Batch, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	RecordCodeEvent(ctx context.Context, event *models.CodeEvent) error
	ListCodeEvents(ctx context.Context, batchID string, limit int) ([]models.CodeEvent, error)
}

type usageRecorder interface {
	Insert(ctx context.Context, entry *models.UsageLogEntry) error
	Finalize(ctx context.Context, id string, status models.RegistrationStatus, failureReason *string) (bool, error)
}

// SignupCodeService owns the signup-code lifecycle for batches: reset,
// activation toggling, status projection and redemption.
type SignupCodeService struct {
	batches    batchRepository
	usage      usageRecorder
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	codeLength int
	cacheTTL   time.Duration
}

// NewSignupCodeService constructs SignupCodeService.
func NewSignupCodeService(batches batchRepository, usage usageRecorder, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, codeLength int, cacheTTL time.Duration) *SignupCodeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if codeLength < 6 || codeLength > 32 {
		codeLength = 8
	}
	return &SignupCodeService{
		batches:    batches,
		usage:      usage,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		codeLength: codeLength,
		cacheTTL:   cacheTTL,
	}
}

func statusCacheKey(batchID string) string {
	return "signup-code:status:" + batchID
}

// Reset replaces the batch's signup code wholesale: new unique value, active,
// usage count zeroed. The previous value is permanently invalid the moment
// the swap commits.
func (s *SignupCodeService) Reset(ctx context.Context, batchID string, req dto.ResetCodeRequest, actorID string) (*dto.SignupCodeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reset payload")
	}
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}

	newCode, err := s.generateCode(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate signup code")
	}

	var reason *string
	if req.Reason != "" {
		reason = &req.Reason
	}
	generatedAt := time.Now().UTC()
	swapped, err := s.batches.ReplaceSignupCode(ctx, batchID, batch.SignupCode, newCode, reason, generatedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset signup code")
	}
	if !swapped {
		return nil, appErrors.Clone(appErrors.ErrConflict, "signup code was reset concurrently")
	}

	s.recordEvent(ctx, batchID, models.CodeEventReset, reason, actorID)
	s.cache.Invalidate(ctx, statusCacheKey(batchID))
	s.logger.Info("signup code reset",
		zap.String("batch_id", batchID),
		zap.String("actor_id", actorID),
	)

	return &dto.SignupCodeResponse{
		BatchID:     batchID,
		Code:        newCode,
		IsActive:    true,
		UsageCount:  0,
		GeneratedAt: generatedAt,
		ResetReason: reason,
	}, nil
}

// Toggle flips the active flag without changing the code value or usage
// count. The response always reflects the state after this flip.
func (s *SignupCodeService) Toggle(ctx context.Context, batchID string, req dto.ToggleCodeRequest, actorID string) (*dto.ToggleCodeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid toggle payload")
	}
	active, err := s.batches.ToggleCodeStatus(ctx, batchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle signup code")
	}

	event := models.CodeEventDeactivated
	if active {
		event = models.CodeEventActivated
	}
	var reason *string
	if req.Reason != "" {
		reason = &req.Reason
	}
	s.recordEvent(ctx, batchID, event, reason, actorID)
	s.cache.Invalidate(ctx, statusCacheKey(batchID))

	return &dto.ToggleCodeResponse{BatchID: batchID, IsActive: active}, nil
}

// Status returns the read-only code projection, served from cache when warm.
func (s *SignupCodeService) Status(ctx context.Context, batchID string) (*dto.CodeStatusResponse, error) {
	key := statusCacheKey(batchID)
	var cached dto.CodeStatusResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	status, err := s.batches.CodeStatus(ctx, batchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load signup code status")
	}
	resp := &dto.CodeStatusResponse{BatchID: status.BatchID, IsActive: status.IsActive, UsageCount: status.UsageCount}
	s.cache.Set(ctx, key, resp, s.cacheTTL)
	return resp, nil
}

// Redeem records a redemption attempt and settles it against the current
// code state. The ledger entry is written PENDING first so even attempts that
// race a reset leave a trace; the conditional consume decides the outcome.
func (s *SignupCodeService) Redeem(ctx context.Context, req dto.RedeemRequest) (*dto.RedeemResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid redemption payload")
	}

	batch, err := s.batches.FindByCode(ctx, req.Code)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve signup code")
	}

	entry := &models.UsageLogEntry{
		UserName:   req.Name,
		UserEmail:  req.Email,
		SignupCode: req.Code,
		Status:     models.RegistrationStatusPending,
	}
	if batch != nil {
		entry.BatchID = batch.ID
	}
	if err := s.usage.Insert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record redemption attempt")
	}

	resp := &dto.RedeemResponse{LogID: entry.ID, Status: models.RegistrationStatusFailed}
	if batch == nil {
		resp.FailureReason = s.failRedemption(ctx, entry.ID, "invalid signup code")
		return resp, nil
	}
	resp.BatchID = batch.ID
	resp.BatchName = batch.Name

	consumed, err := s.batches.ConsumeCode(ctx, batch.ID, req.Code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume signup code")
	}
	if !consumed {
		// The code was reset or deactivated between lookup and consume.
		resp.FailureReason = s.failRedemption(ctx, entry.ID, "signup code is no longer valid")
		return resp, nil
	}

	if _, err := s.usage.Finalize(ctx, entry.ID, models.RegistrationStatusSuccessful, nil); err != nil {
		s.logger.Warn("failed to finalize usage entry", zap.String("log_id", entry.ID), zap.Error(err))
	}
	s.cache.Invalidate(ctx, statusCacheKey(batch.ID))
	s.metrics.RecordRedemption(string(models.RegistrationStatusSuccessful))
	resp.Status = models.RegistrationStatusSuccessful
	return resp, nil
}

// Events returns the administrative audit trail for a batch's signup code.
func (s *SignupCodeService) Events(ctx context.Context, batchID string, limit int) ([]models.CodeEvent, error) {
	if _, err := s.batches.FindByID(ctx, batchID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	events, err := s.batches.ListCodeEvents(ctx, batchID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list code events")
	}
	return events, nil
}

func (s *SignupCodeService) failRedemption(ctx context.Context, logID, reason string) *string {
	if _, err := s.usage.Finalize(ctx, logID, models.RegistrationStatusFailed, &reason); err != nil {
		s.logger.Warn("failed to finalize usage entry", zap.String("log_id", logID), zap.Error(err))
	}
	s.metrics.RecordRedemption(string(models.RegistrationStatusFailed))
	return &reason
}

func (s *SignupCodeService) recordEvent(ctx context.Context, batchID string, event models.CodeEventType, reason *string, actorID string) {
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	if err := s.batches.RecordCodeEvent(ctx, &models.CodeEvent{BatchID: batchID, Event: event, Reason: reason, ActorID: actor}); err != nil {
		s.logger.Warn("failed to record code event", zap.String("batch_id", batchID), zap.Error(err))
	}
}

// generateCode draws a random code and retries on the unlikely collision with
// an existing batch code.
func (s *SignupCodeService) generateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, s.codeLength)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for i := range buf {
			buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
		}
		code := string(buf)
		exists, err := s.batches.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("exhausted signup code generation attempts")
}
