// Package kyc runs the identity verification lifecycle:
// LEVEL_1 -> PENDING -> LEVEL_2 | REJECTED, with REJECTED -> PENDING on
// resubmission.
package kyc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/cradoe/carvest/internal/validator"
	"github.com/jmoiron/sqlx"
)

type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event models.LedgerEvent) error
}

type Service struct {
	db       repository.Database
	uploader Uploader
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

func New(db repository.Database, uploader Uploader, events EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		db:       db,
		uploader: uploader,
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Status(ctx context.Context, userID string) (*models.User, error) {
	user, found, err := s.db.User().GetOne(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrNotFound
	}
	return user, nil
}

// ListByLevel backs the review queue, usually called with PENDING.
func (s *Service) ListByLevel(ctx context.Context, level models.KYCLevel, limit, offset int) ([]models.User, error) {
	return s.db.User().List(ctx, repository.UserFilter{KYCLevel: level, Limit: limit, Offset: offset})
}

// SubmitDocument stores the file with the evidence store and then records the
// submission. Nothing changes when the upload fails.
func (s *Service) SubmitDocument(ctx context.Context, userID, documentType, filename string, file io.Reader) (*models.User, error) {
	if _, err := models.ParseDocumentType(documentType); err != nil {
		return nil, models.NewValidationError("Document type must be one of passport, national_id or drivers_license")
	}

	user, err := s.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.KYCLevel.CanSubmit() {
		return nil, fmt.Errorf("kyc is %s: %w", user.KYCLevel, models.ErrInvalidState)
	}

	url, err := s.uploader.Upload(ctx, filename, file)
	if err != nil {
		s.logger.Error("kyc document upload failed", "user_id", userID, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}
	if !validator.IsHTTPSURL(url) {
		return nil, fmt.Errorf("%w: store returned %q", models.ErrUploadFailed, url)
	}

	return s.Submit(ctx, userID, documentType, url)
}

func (s *Service) Submit(ctx context.Context, userID, documentType, documentURL string) (*models.User, error) {
	var v validator.Validator

	docType, err := models.ParseDocumentType(documentType)
	v.Check(err == nil, "Document type must be one of passport, national_id or drivers_license")
	v.Check(validator.IsHTTPSURL(documentURL), "Document URL must be an https link")

	if v.HasErrors() {
		return nil, models.NewValidationError(v.Errors...)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, found, err := s.db.User().GetForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrNotFound
	}
	if !user.KYCLevel.CanSubmit() {
		return nil, fmt.Errorf("kyc is %s: %w", user.KYCLevel, models.ErrInvalidState)
	}

	now := s.now()
	if err := s.db.User().SubmitKYC(ctx, tx, userID, docType, documentURL, now); err != nil {
		return nil, err
	}

	prior := user.KYCLevel
	if err := s.audit(ctx, tx, userID, userID, models.AuditActionKYCSubmitted, map[string]any{
		"prior":         prior,
		"new":           models.KYCPending,
		"document_type": docType,
	}, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	user.KYCLevel = models.KYCPending
	user.DocumentType.String, user.DocumentType.Valid = string(docType), true
	user.DocumentURL.String, user.DocumentURL.Valid = documentURL, true
	user.SubmittedAt.Time, user.SubmittedAt.Valid = now, true

	return user, nil
}

// Decide approves (LEVEL_2) or rejects a pending submission. Rejection
// needs a reason; the submitted document is kept either way.
func (s *Service) Decide(ctx context.Context, actor models.Actor, userID, status, reason string) (*models.User, error) {
	var v validator.Validator

	level, err := models.ParseKYCLevel(status)
	v.Check(err == nil && (level == models.KYCLevel2 || level == models.KYCRejected), "Status must be LEVEL_2 or REJECTED")
	v.Check(level != models.KYCRejected || validator.NotBlank(reason), "A reason is required when rejecting")
	v.Check(validator.MaxRunes(reason, 500), "Reason must not be more than 500 characters")

	if v.HasErrors() {
		return nil, models.NewValidationError(v.Errors...)
	}

	if level == models.KYCLevel2 {
		reason = ""
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, found, err := s.db.User().GetForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrNotFound
	}
	if user.KYCLevel != models.KYCPending {
		s.logger.Warn("kyc decision on non-pending user", "admin_id", actor.ID, "user_id", userID, "kyc_level", user.KYCLevel)
		return nil, fmt.Errorf("kyc is %s: %w", user.KYCLevel, models.ErrInvalidState)
	}

	now := s.now()
	if err := s.db.User().DecideKYC(ctx, tx, userID, level, reason, now); err != nil {
		return nil, err
	}

	if err := s.audit(ctx, tx, actor.ID, userID, models.AuditActionKYCDecided, map[string]any{
		"prior":  user.KYCLevel,
		"new":    level,
		"reason": reason,
	}, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("kyc decided", "admin_id", actor.ID, "user_id", userID, "prior", user.KYCLevel, "new", level)

	user.KYCLevel = level
	user.RejectionReason.String, user.RejectionReason.Valid = reason, level == models.KYCRejected

	if s.events != nil {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		err := s.events.Publish(pubCtx, models.LedgerEvent{
			Kind:       models.EventKYCDecided,
			UserID:     userID,
			KYCLevel:   string(level),
			Reason:     reason,
			OccurredAt: now,
		})
		if err != nil {
			s.logger.Error("could not publish kyc event", "user_id", userID, "error", err.Error())
		}
	}

	return user, nil
}

func (s *Service) audit(ctx context.Context, tx *sqlx.Tx, actorID, userID, action string, metadata map[string]any, at time.Time) error {
	raw, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	entry := &models.AuditLog{
		UserID:    &userID,
		Entity:    models.AuditEntityUser,
		EntityID:  userID,
		Action:    action,
		Metadata:  raw,
		CreatedAt: at,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}

	return s.db.Audit().Insert(ctx, tx, entry)
}
