package api

import (
	"context"

	"github.com/kbukum/bookstore/endpoint"
	"github.com/kbukum/bookstore/httpclient"
	"github.com/kbukum/bookstore/validation"
)

func (s *Service) GetAllCategories(ctx context.Context) (*httpclient.APIResponse[[]Category], error) {
	return httpclient.Get[[]Category](s.client, ctx, endpoint.Category.GetAll.String(), nil)
}

func (s *Service) GetOneCategory(ctx context.Context, id string) (*httpclient.APIResponse[Category], error) {
	if err := validation.Required("id", id); err != nil {
		return nil, err
	}
	return httpclient.Get[Category](s.client, ctx, endpoint.Category.GetOne.WithID(id), nil)
}
