package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// numeric(10,2) の上限
var maxPrice = decimal.RequireFromString("99999999.99")

type ProductUsecase struct {
	productRepo repo.ProductRepository
	audit       auditTrail
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	auditRepo repo.AuditLogRepository,
	log zerolog.Logger,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		audit:       auditTrail{repo: auditRepo, log: log},
	}
}

// 管理画面の作成・編集フォーム
type ProductInput struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Stock       int64
	Image       string // 空なら変更しない
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewAppError(KindValidation, "name required")
	}
	if len(in.Name) > 255 {
		return NewAppError(KindValidation, "name too long")
	}
	if in.Price.IsNegative() {
		return NewAppError(KindValidation, "price must be >= 0")
	}
	//保存時の丸め後で比較する
	if in.Price.Round(2).GreaterThan(maxPrice) {
		return NewAppError(KindValidation, "price too large")
	}
	if in.Stock < 0 {
		return NewAppError(KindValidation, "stock must be >= 0")
	}
	return nil
}

// カタログ（名前順）
func (u *ProductUsecase) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := u.productRepo.List(ctx)
	if err != nil {
		return nil, internalError("db error", err)
	}
	return products, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewAppError(KindValidation, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewAppError(KindNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, internalError("db error", err)
	}
	return p, nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in ProductInput) (model.Product, error) {
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	p := model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price.Round(2),
		Stock:       in.Stock,
	}
	if img := strings.TrimSpace(in.Image); img != "" {
		p.Image = &img
	}

	created, err := u.productRepo.Create(ctx, p)
	if err != nil {
		return model.Product{}, internalError("db error", err)
	}

	u.audit.record(ctx, adminUserID, model.AuditActionCreateProduct, model.AuditResourceProduct, created.ID, nil, created)
	return created, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in ProductInput) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewAppError(KindValidation, "invalid product id")
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	//変更前（before）
	before, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewAppError(KindNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, internalError("db error", err)
	}

	after := before
	after.Name = strings.TrimSpace(in.Name)
	after.Description = in.Description
	after.Category = strings.TrimSpace(in.Category)
	after.Price = in.Price.Round(2)
	after.Stock = in.Stock
	if img := strings.TrimSpace(in.Image); img != "" {
		after.Image = &img
	}

	err = u.productRepo.Update(ctx, after)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewAppError(KindNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, internalError("db error", err)
	}

	u.audit.record(ctx, adminUserID, model.AuditActionUpdateProduct, model.AuditResourceProduct, productID, before, after)
	return after, nil
}

// カートに入っている明細はそのまま残る（カート表示で読み飛ばす）
func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if productID <= 0 {
		return NewAppError(KindValidation, "invalid product id")
	}

	before, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewAppError(KindNotFound, "product not found")
	}
	if err != nil {
		return internalError("db error", err)
	}

	err = u.productRepo.Delete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewAppError(KindNotFound, "product not found")
	}
	if err != nil {
		return internalError("db error", err)
	}

	u.audit.record(ctx, adminUserID, model.AuditActionDeleteProduct, model.AuditResourceProduct, productID, before, nil)
	return nil
}
