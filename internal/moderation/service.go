package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hivemart/hivemart/internal/authz"
	"github.com/hivemart/hivemart/internal/shared"
)

const approvalModule = "moderation"

// CatalogPort applies an approved request body to the live catalog. It
// is invoked inside the decision transaction so a failed apply rolls the
// decision back.
type CatalogPort interface {
	Apply(ctx context.Context, t RequestType, body json.RawMessage) error
}

// Notifier delivers decision notices to submitters after commit.
type Notifier interface {
	NotifyDecision(ctx context.Context, rec RequestRecord) error
}

// ApprovalSink records and reads workflow history.
// *shared.ApprovalRecorder satisfies it.
type ApprovalSink interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
	List(ctx context.Context, module string, ref uuid.UUID) ([]shared.ApprovalLog, error)
}

// AuditSink records audit trail entries. *shared.AuditLogger satisfies it.
type AuditSink interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

type Service struct {
	logger    *slog.Logger
	repo      Repository
	catalog   CatalogPort
	approvals ApprovalSink
	audit     AuditSink
	notifier  Notifier
}

// NewService constructs the moderation service. approvals, audit and
// notifier are optional side channels; decisions never fail on them.
func NewService(logger *slog.Logger, repo Repository, catalog CatalogPort, approvals ApprovalSink, audit AuditSink, notifier Notifier) *Service {
	return &Service{
		logger:    logger,
		repo:      repo,
		catalog:   catalog,
		approvals: approvals,
		audit:     audit,
		notifier:  notifier,
	}
}

// Submit files a new pending request on behalf of a supplier.
func (s *Service) Submit(ctx context.Context, principal *authz.Principal, rawType string, body json.RawMessage) (RequestRecord, error) {
	if principal == nil || principal.Role != authz.RoleSupplier {
		return RequestRecord{}, ErrForbidden
	}
	requestType, ok := ParseRequestType(rawType)
	if !ok {
		return RequestRecord{}, fmt.Errorf("%w: unknown request type %q", ErrValidation, rawType)
	}
	if err := validateBody(requestType, body); err != nil {
		return RequestRecord{}, err
	}

	rec := RequestRecord{
		ID:          uuid.New(),
		Type:        requestType,
		Body:        body,
		SubmittedBy: principal.ID,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return RequestRecord{}, err
	}

	s.recordApproval(ctx, rec.ID, principal.ID, shared.ApprovalSubmit, string(requestType))
	s.recordAudit(ctx, principal.ID, "request.submit", rec.ID, map[string]any{"type": string(requestType)})
	return rec, nil
}

// ListMine returns the submitter's own requests, newest first.
func (s *Service) ListMine(ctx context.Context, principal *authz.Principal) ([]RequestRecord, error) {
	if principal == nil {
		return nil, ErrForbidden
	}
	return s.repo.ListBySubmitter(ctx, principal.ID)
}

// ListPending returns the review queue, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]RequestRecord, error) {
	return s.repo.ListPending(ctx)
}

// Get returns a single request. Suppliers only see their own.
func (s *Service) Get(ctx context.Context, principal *authz.Principal, id uuid.UUID) (RequestRecord, error) {
	if principal == nil {
		return RequestRecord{}, ErrForbidden
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return RequestRecord{}, err
	}
	if principal.Role == authz.RoleSupplier && rec.SubmittedBy != principal.ID {
		return RequestRecord{}, ErrNotFound
	}
	return rec, nil
}

// Approve marks the request approved and applies its body to the live
// catalog atomically. A non-nil override replaces the stored body before
// the apply, letting moderators fix up a submission while approving it.
func (s *Service) Approve(ctx context.Context, principal *authz.Principal, id uuid.UUID, override json.RawMessage) (RequestRecord, error) {
	return s.decide(ctx, principal, id, StatusApproved, override)
}

// Reject marks the request rejected. The stored body is kept untouched
// and nothing reaches the catalog.
func (s *Service) Reject(ctx context.Context, principal *authz.Principal, id uuid.UUID) (RequestRecord, error) {
	return s.decide(ctx, principal, id, StatusRejected, nil)
}

func (s *Service) decide(ctx context.Context, principal *authz.Principal, id uuid.UUID, status Status, override json.RawMessage) (RequestRecord, error) {
	if principal == nil || (principal.Role != authz.RoleModer && principal.Role != authz.RoleAdmin) {
		return RequestRecord{}, ErrForbidden
	}

	var decided RequestRecord
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		rec, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if rec.Status != StatusPending {
			return ErrInvalidState
		}

		resolvedBody := rec.Body
		if status == StatusApproved && len(override) > 0 {
			if err := validateBody(rec.Type, override); err != nil {
				return err
			}
			resolvedBody = override
		}

		if err := tx.MarkDecided(ctx, id, status, principal.ID, resolvedBody); err != nil {
			return err
		}

		if status == StatusApproved {
			if err := s.catalog.Apply(ctx, rec.Type, resolvedBody); err != nil {
				return fmt.Errorf("apply %s: %w", rec.Type, err)
			}
		}

		now := time.Now()
		decided = rec
		decided.Status = status
		decided.Body = resolvedBody
		decided.DecidedBy = &principal.ID
		decided.DecidedAt = &now
		decided.UpdatedAt = now
		return nil
	})
	if err != nil {
		return RequestRecord{}, err
	}

	action := shared.ApprovalApprove
	if status == StatusRejected {
		action = shared.ApprovalReject
	}
	s.recordApproval(ctx, id, principal.ID, action, string(decided.Type))
	s.recordAudit(ctx, principal.ID, "request."+string(action), id, map[string]any{
		"type":      string(decided.Type),
		"submitter": decided.SubmittedBy,
	})
	if s.notifier != nil {
		if err := s.notifier.NotifyDecision(ctx, decided); err != nil {
			s.logger.Warn("enqueue decision notice", slog.String("request_id", id.String()), slog.Any("error", err))
		}
	}
	return decided, nil
}

// Withdraw deletes the caller's own request while it is still pending.
func (s *Service) Withdraw(ctx context.Context, principal *authz.Principal, id uuid.UUID) error {
	if principal == nil || principal.Role != authz.RoleSupplier {
		return ErrForbidden
	}
	if err := s.repo.DeletePending(ctx, id, principal.ID); err != nil {
		return err
	}
	s.recordApproval(ctx, id, principal.ID, shared.ApprovalWithdraw, "")
	s.recordAudit(ctx, principal.ID, "request.withdraw", id, nil)
	return nil
}

// History returns the approval trail for a request.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]shared.ApprovalLog, error) {
	if s.approvals == nil {
		return nil, nil
	}
	return s.approvals.List(ctx, approvalModule, id)
}

func (s *Service) recordApproval(ctx context.Context, ref uuid.UUID, actorID int64, action shared.ApprovalAction, note string) {
	if s.approvals == nil {
		return
	}
	// pgx sends a zero time.Time as year one, not NULL, so the COALESCE
	// in the insert never applies; stamp the entry here.
	err := s.approvals.Record(ctx, shared.ApprovalLog{
		Module:  approvalModule,
		RefID:   ref,
		ActorID: actorID,
		Action:  action,
		Note:    note,
		At:      time.Now(),
	})
	if err != nil {
		s.logger.Warn("record approval", slog.String("request_id", ref.String()), slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, ref uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "request",
		EntityID: ref.String(),
		Meta:     meta,
		At:       time.Now(),
	})
	if err != nil {
		s.logger.Warn("record audit", slog.String("request_id", ref.String()), slog.Any("error", err))
	}
}

// validateBody checks the body is a JSON object and that its id field
// matches the create/update contract for the request type.
func validateBody(t RequestType, body json.RawMessage) error {
	if len(body) == 0 {
		return fmt.Errorf("%w: body required", ErrValidation)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return fmt.Errorf("%w: body must be a json object", ErrValidation)
	}
	rawID, hasID := fields["id"]
	if t.IsUpdate() {
		if !hasID {
			return fmt.Errorf("%w: update request body requires target id", ErrValidation)
		}
		var id int64
		if err := json.Unmarshal(rawID, &id); err != nil || id <= 0 {
			return fmt.Errorf("%w: update request body requires positive numeric id", ErrValidation)
		}
		return nil
	}
	if hasID {
		return fmt.Errorf("%w: create request body must not carry an id", ErrValidation)
	}
	return nil
}
