package production

import (
	"context"

	"github.com/emstack/backend/internal/domain/production"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderService manages production orders through the factory pipeline
type OrderService struct {
	txScope   TransactionScope
	orderRepo production.OrderRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(txScope TransactionScope, orderRepo production.OrderRepository) *OrderService {
	return &OrderService{
		txScope:   txScope,
		orderRepo: orderRepo,
	}
}

// CreateOrder enters a new order into the pipeline
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	order, err := production.NewOrder(req.OrderNumber, req.ProductID, req.CustomerID, req.Quantity, req.DueDate)
	if err != nil {
		return nil, err
	}
	order.Remark = req.Remark

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if existing, err := repos.OrderRepo().FindByNumber(ctx, req.OrderNumber); err == nil && existing != nil {
			return shared.NewDomainError(shared.CodeValidation, "Order number already exists")
		}
		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetOrder returns an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListOrders returns orders matching the filter
func (s *OrderService) ListOrders(ctx context.Context, page shared.Filter) (*shared.Paginated[OrderResponse], error) {
	orders, err := s.orderRepo.FindAll(ctx, page)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	result := shared.NewPaginated(items, total, page.Page, page.PageSize)
	return &result, nil
}

// Hold parks an order, remembering the stage it left
func (s *OrderService) Hold(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, id, production.LogActionHold, func(o *production.Order) error {
		return o.Hold()
	})
}

// Resume returns a held order to its prior stage
func (s *OrderService) Resume(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, id, production.LogActionResume, func(o *production.Order) error {
		return o.Resume()
	})
}

// Cancel terminates an order and releases its active reservations
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	var order *production.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.OrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := found.Cancel(); err != nil {
			return err
		}

		allocations, err := repos.AllocationRepo().FindActiveByOrder(ctx, id)
		if err != nil {
			return err
		}
		for i := range allocations {
			if err := allocations[i].Cancel(); err != nil {
				return err
			}
			if err := repos.AllocationRepo().SaveWithLock(ctx, &allocations[i]); err != nil {
				return err
			}
		}

		found.IncrementVersion()
		if err := repos.OrderRepo().SaveWithLock(ctx, found); err != nil {
			return err
		}
		order = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Ship closes out the order at the end of the pipeline
func (s *OrderService) Ship(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, id, production.LogActionStageMove, func(o *production.Order) error {
		remaining := o.RemainingQuantity()
		if err := o.AdvanceTo(production.OrderStatusShipped); err != nil {
			return err
		}
		if remaining.IsPositive() {
			return o.RecordCompletion(remaining)
		}
		return nil
	})
}

func (s *OrderService) mutate(ctx context.Context, id uuid.UUID, logAction string, fn func(*production.Order) error) (*OrderResponse, error) {
	var order *production.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.OrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(found); err != nil {
			return err
		}
		found.IncrementVersion()
		if err := repos.OrderRepo().SaveWithLock(ctx, found); err != nil {
			return err
		}
		log := production.NewProductionLog(found.ID, found.Status, logAction, found.RemainingQuantity())
		if err := repos.ProductionLogRepo().Append(ctx, log); err != nil {
			return err
		}
		order = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}
