package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/internal/catalog"
	"github.com/pepdine/pep-backend/pkg/db"
	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/enums"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/logger"
	"github.com/pepdine/pep-backend/pkg/outbox"
	"github.com/pepdine/pep-backend/pkg/outbox/payloads"
	"github.com/pepdine/pep-backend/pkg/pagination"
)

// Service exposes order history to customers and the order workflow to admins.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	CancelForUser(ctx context.Context, actor outbox.ActorRef, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*OrderList, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, actor outbox.ActorRef, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    Repository
	tx      txRunner
	stock   *catalog.Repository
	emitter outbox.Emitter
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, tx txRunner, stock *catalog.Repository, emitter outbox.Emitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stock == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, tx: tx, stock: stock, emitter: emitter, logg: logg, now: time.Now}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	return s.list(ctx, ListQuery{UserID: &userID, Limit: params.Limit}, params.Cursor)
}

func (s *service) List(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*OrderList, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", *status)
	}
	return s.list(ctx, ListQuery{Status: status, Limit: params.Limit}, params.Cursor)
}

func (s *service) list(ctx context.Context, query ListQuery, rawCursor string) (*OrderList, error) {
	if strings.TrimSpace(rawCursor) != "" {
		cursor, err := pagination.ParseCursor(rawCursor)
		if err == nil {
			_, err = cursor.Time()
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	page, next := pagination.Trim(rows, query.Limit, func(o models.Order) pagination.Cursor {
		return pagination.TimeCursor(o.CreatedAt, o.ID)
	})
	out := &OrderList{Orders: make([]OrderDTO, 0, len(page)), NextCursor: next}
	for _, order := range page {
		out.Orders = append(out.Orders, NewOrderDTO(order))
	}
	return out, nil
}

func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := NewOrderDTO(*order)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	dto := NewOrderDTO(*order)
	return &dto, nil
}

// CancelForUser lets a customer cancel an order the kitchen has not accepted yet.
func (s *service) CancelForUser(ctx context.Context, actor outbox.ActorRef, orderID uuid.UUID) (*OrderDTO, error) {
	return s.transition(ctx, actor, orderID, enums.OrderStatusCancelled, func(order *models.Order) error {
		if order.UserID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is %s and can no longer be cancelled", order.Status)
		}
		return nil
	})
}

func (s *service) UpdateStatus(ctx context.Context, actor outbox.ActorRef, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", next)
	}
	return s.transition(ctx, actor, orderID, next, nil)
}

// transition locks the order, applies next and emits the status change in
// one transaction. Cancelling returns every line's quantity to stock.
func (s *service) transition(ctx context.Context, actor outbox.ActorRef, orderID uuid.UUID, next enums.OrderStatus, check func(*models.Order) error) (*OrderDTO, error) {
	var from enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.LockByID(ctx, orderID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if check != nil {
			if err := check(order); err != nil {
				return err
			}
		}
		if !order.Status.CanTransitionTo(next) {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", order.Status, next).
				WithDetails(map[string]any{"from": order.Status, "to": next})
		}

		from = order.Status
		now := s.now().UTC()
		ok, err := repo.UpdateStatus(ctx, order.ID, from, next, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "order was updated concurrently; reload and retry")
		}

		if next == enums.OrderStatusCancelled {
			stock := s.stock.WithTx(tx)
			for _, item := range order.Items {
				if err := stock.IncrementStock(ctx, item.MenuItemID, item.Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore stock")
				}
			}
		}

		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &actor,
			OccurredAt:    now,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				UserID:        order.UserID,
				IsGuest:       order.IsGuest,
				CustomerName:  order.CustomerName,
				CustomerEmail: order.CustomerEmail,
				From:          from,
				To:            next,
				ChangedAt:     now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id": orderID.String(),
		"from":     from,
		"to":       next,
	})
	s.logg.Info(logCtx, "order status changed")
	return s.Get(ctx, orderID)
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}
