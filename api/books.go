package api

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/kbukum/bookstore/endpoint"
	"github.com/kbukum/bookstore/httpclient"
	"github.com/kbukum/bookstore/validation"
)

func (s *Service) GetAllBooks(ctx context.Context, params BookListParams) (*httpclient.APIResponse[BookList], error) {
	if err := validation.Validate(params); err != nil {
		return nil, err
	}
	return httpclient.Get[BookList](s.client, ctx, endpoint.Book.GetAll.String(), params.Values())
}

func (s *Service) GetOneBook(ctx context.Context, id string) (*httpclient.APIResponse[Book], error) {
	if err := validation.Required("id", id); err != nil {
		return nil, err
	}
	return httpclient.Get[Book](s.client, ctx, endpoint.Book.GetOne.WithID(id), nil)
}

func (s *Service) CreateBook(ctx context.Context, req CreateBookRequest) (*httpclient.APIResponse[Book], error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	return httpclient.Post[Book](s.client, ctx, endpoint.Book.Create.String(), req)
}

func (s *Service) UpdateBook(ctx context.Context, id string, req UpdateBookRequest) (*httpclient.APIResponse[Book], error) {
	if err := validation.Required("id", id); err != nil {
		return nil, err
	}
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	return httpclient.Put[Book](s.client, ctx, endpoint.Book.Update.WithID(id), req)
}

func (s *Service) DeleteBook(ctx context.Context, id string) (*httpclient.APIResponse[json.RawMessage], error) {
	if err := validation.Required("id", id); err != nil {
		return nil, err
	}
	return httpclient.Delete[json.RawMessage](s.client, ctx, endpoint.Book.Delete.WithID(id))
}

// SearchBooks matches query against titles and authors.
func (s *Service) SearchBooks(ctx context.Context, query string) (*httpclient.APIResponse[[]Book], error) {
	return httpclient.Get[[]Book](s.client, ctx, endpoint.Book.Search.String(), url.Values{"q": {query}})
}
