package api

import (
	"context"

	"github.com/kbukum/bookstore/endpoint"
	"github.com/kbukum/bookstore/httpclient"
	"github.com/kbukum/bookstore/validation"
)

// GetAllOrders lists the authenticated user's orders.
func (s *Service) GetAllOrders(ctx context.Context, params OrderListParams) (*httpclient.APIResponse[OrderList], error) {
	if err := validation.New().Custom(params.Status == "" || params.Status.Valid(), "status", "unknown order status").Err(); err != nil {
		return nil, err
	}
	return httpclient.Get[OrderList](s.client, ctx, endpoint.Order.GetAll.String(), params.Values())
}

func (s *Service) GetOneOrder(ctx context.Context, id string) (*httpclient.APIResponse[Order], error) {
	if err := validation.Required("id", id); err != nil {
		return nil, err
	}
	return httpclient.Get[Order](s.client, ctx, endpoint.Order.GetOne.WithID(id), nil)
}

func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*httpclient.APIResponse[Order], error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	return httpclient.Post[Order](s.client, ctx, endpoint.Order.Create.String(), req)
}

func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) (*httpclient.APIResponse[Order], error) {
	if err := validation.Required("id", id); err != nil {
		return nil, err
	}
	req := UpdateOrderStatusRequest{Status: status}
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	return httpclient.Put[Order](s.client, ctx, endpoint.Order.UpdateStatus.WithID(id), req)
}
