package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/pkg/db"
	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/enums"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/types"
)

type repository interface {
	WithTx(tx *gorm.DB) *Repository
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	List(ctx context.Context, activeOnly bool) ([]models.Coupon, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// Service validates coupon codes for carts and backs the admin coupon screens.
type Service interface {
	Resolve(ctx context.Context, code string, subtotalCents int) (*types.AppliedCoupon, error)
	ResolveTx(ctx context.Context, tx *gorm.DB, code string, subtotalCents int) (*types.AppliedCoupon, error)
	Create(ctx context.Context, input CreateInput) (*models.Coupon, error)
	List(ctx context.Context, activeOnly bool) ([]models.Coupon, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type CreateInput struct {
	Code             string
	Description      string
	Type             enums.CouponType
	Value            decimal.Decimal
	MinOrderCents    int
	MaxDiscountCents *int
	ExpiresAt        *time.Time
}

type service struct {
	repo repository
	now  func() time.Time
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// NormalizeCode upper-cases and trims a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Resolve looks up an active, unexpired coupon and checks the minimum order.
func (s *service) Resolve(ctx context.Context, code string, subtotalCents int) (*types.AppliedCoupon, error) {
	return s.resolve(ctx, s.repo, code, subtotalCents)
}

// ResolveTx is Resolve reading the coupon through tx, for callers that
// already hold a transaction.
func (s *service) ResolveTx(ctx context.Context, tx *gorm.DB, code string, subtotalCents int) (*types.AppliedCoupon, error) {
	if tx == nil {
		return s.Resolve(ctx, code, subtotalCents)
	}
	return s.resolve(ctx, s.repo.WithTx(tx), code, subtotalCents)
}

func (s *service) resolve(ctx context.Context, repo repository, code string, subtotalCents int) (*types.AppliedCoupon, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	coupon, err := repo.FindByCode(ctx, normalized)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
	}
	now := s.now()
	if !coupon.IsActive || (coupon.ExpiresAt != nil && !coupon.ExpiresAt.After(now)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")
	}
	if subtotalCents < coupon.MinOrderCents {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "minimum order of %d cents required for this coupon", coupon.MinOrderCents).
			WithDetails(map[string]any{
				"min_order_cents": coupon.MinOrderCents,
				"subtotal_cents":  subtotalCents,
			})
	}

	return &types.AppliedCoupon{
		Code:             coupon.Code,
		Type:             coupon.Type,
		Amount:           coupon.Value,
		MinOrderCents:    coupon.MinOrderCents,
		MaxDiscountCents: coupon.MaxDiscountCents,
		AppliedAt:        now.UTC(),
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Coupon, error) {
	code := NormalizeCode(input.Code)
	fields := map[string]string{}
	if code == "" {
		fields["code"] = "is required"
	}
	if !input.Type.IsValid() {
		fields["type"] = "must be percentage or fixed"
	}
	if !input.Value.IsPositive() {
		fields["value"] = "must be greater than zero"
	} else if input.Type == enums.CouponTypePercentage && input.Value.GreaterThan(hundred) {
		fields["value"] = "percentage cannot exceed 100"
	}
	if input.MinOrderCents < 0 {
		fields["min_order_cents"] = "cannot be negative"
	}
	if input.MaxDiscountCents != nil && *input.MaxDiscountCents < 0 {
		fields["max_discount_cents"] = "cannot be negative"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon").WithDetails(fields)
	}

	coupon := &models.Coupon{
		Code:             code,
		Description:      strings.TrimSpace(input.Description),
		Type:             input.Type,
		Value:            input.Value,
		MinOrderCents:    input.MinOrderCents,
		MaxDiscountCents: input.MaxDiscountCents,
		IsActive:         true,
		ExpiresAt:        input.ExpiresAt,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "ux_coupons_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create coupon")
	}
	return coupon, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Coupon, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list coupons")
	}
	return rows, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate coupon")
	}
	return nil
}
