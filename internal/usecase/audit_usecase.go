package usecase

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/rs/zerolog"
)

// 管理者操作を監査ログに残す。
// 書き込み失敗は本処理を失敗にしない（ログだけ）。
type auditTrail struct {
	repo repo.AuditLogRepository
	log  zerolog.Logger
}

func (a auditTrail) record(
	ctx context.Context,
	actorID int64,
	action model.AuditAction,
	resource model.AuditResourceType,
	resourceID int64,
	before interface{},
	after interface{},
) {
	if a.repo == nil {
		return
	}

	entry := model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
		CreatedAt:    time.Now(),
	}
	if err := a.repo.Create(ctx, entry); err != nil {
		a.log.Warn().
			Err(err).
			Str("action", string(action)).
			Int64("resource_id", resourceID).
			Msg("audit log write failed")
	}
}

func toJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// GET /admin/audit-logs
type AuditUsecase struct {
	auditRepo repo.AuditLogRepository
}

// DI
func NewAuditUsecase(auditRepo repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{auditRepo: auditRepo}
}

type ListAuditLogsInput struct {
	Action       string
	ActorUserID  int64  // 0なら絞り込まない
	ResourceType string // product / user
	From         string // RFC3339 か 2006-01-02
	Limit        int
	Offset       int
}

func (u *AuditUsecase) List(ctx context.Context, in ListAuditLogsInput) ([]model.AuditLog, error) {
	if in.Limit < 0 || in.Limit > 200 {
		return nil, NewAppError(KindValidation, "invalid limit")
	}
	if in.Offset < 0 {
		return nil, NewAppError(KindValidation, "invalid offset")
	}
	if in.ActorUserID < 0 {
		return nil, NewAppError(KindValidation, "invalid actor")
	}

	f := repo.AuditLogFilter{Limit: in.Limit, Offset: in.Offset}
	if in.Action != "" {
		action := model.AuditAction(in.Action)
		switch action {
		case model.AuditActionCreateUser, model.AuditActionUpdateUser, model.AuditActionDeleteUser,
			model.AuditActionCreateProduct, model.AuditActionUpdateProduct, model.AuditActionDeleteProduct:
		default:
			return nil, NewAppError(KindValidation, "invalid action")
		}
		f.Action = &action
	}
	if in.ActorUserID > 0 {
		actor := in.ActorUserID
		f.ActorUserID = &actor
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		if rt != model.AuditResourceProduct && rt != model.AuditResourceUser {
			return nil, NewAppError(KindValidation, "invalid resource")
		}
		f.ResourceType = &rt
	}
	if in.From != "" {
		from, err := parseFrom(in.From)
		if err != nil {
			return nil, NewAppError(KindValidation, "invalid from")
		}
		f.CreatedFrom = &from
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return nil, internalError("db error", err)
	}
	return logs, nil
}

// 日付だけならその日のUTC 0時から
func parseFrom(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, v)
}
