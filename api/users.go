package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kbukum/bookstore/endpoint"
	"github.com/kbukum/bookstore/httpclient"
	"github.com/kbukum/bookstore/logger"
	"github.com/kbukum/bookstore/session"
	"github.com/kbukum/bookstore/validation"
)

// Login authenticates and, when the server returns a token, persists the
// token and user. Nothing is written on failure.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*httpclient.APIResponse[AuthResponse], error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	resp, err := httpclient.Post[AuthResponse](s.client, ctx, endpoint.User.Login.String(), req)
	if err != nil {
		return nil, err
	}
	if err := s.saveSession(ctx, resp.Data); err != nil {
		return nil, err
	}
	return resp, nil
}

// Register creates an account and persists the session like Login.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*httpclient.APIResponse[AuthResponse], error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	resp, err := httpclient.Post[AuthResponse](s.client, ctx, endpoint.User.Register.String(), req)
	if err != nil {
		return nil, err
	}
	if err := s.saveSession(ctx, resp.Data); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) saveSession(ctx context.Context, auth AuthResponse) error {
	if auth.Token == "" {
		return nil
	}
	if err := s.store.Set(ctx, session.KeyAuthToken, auth.Token); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}
	if err := session.SetJSON(ctx, s.store, session.KeyUser, auth.User); err != nil {
		// Do not leave a token without its user.
		_ = s.store.Delete(ctx, session.KeyAuthToken)
		return fmt.Errorf("save session user: %w", err)
	}
	s.log.WithContext(ctx).Info("session saved", logger.Fields(logger.FieldUserID, auth.User.ID))
	return nil
}

// Logout notifies the server and clears the local session. The server call
// is best effort: its failure is logged, not returned. Only a failure to
// clear the session store is returned.
func (s *Service) Logout(ctx context.Context) error {
	if _, err := httpclient.Post[json.RawMessage](s.client, ctx, endpoint.User.Logout.String(), nil); err != nil {
		s.log.WithContext(ctx).Warn("logout request failed, clearing local session anyway",
			logger.ErrorFields("logout", err))
	}
	if err := session.Clear(ctx, s.store, session.KeyAuthToken, session.KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CurrentUser returns the user saved at login. A missing or unreadable
// record yields nil without error; only a store failure is returned.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	raw, ok, err := s.store.Get(ctx, session.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("read session user: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.WithContext(ctx).Debug("ignoring corrupt session user", logger.ErrorFields("current_user", err))
		return nil, nil
	}
	return &u, nil
}

// IsAuthenticated reports whether a token is stored.
func (s *Service) IsAuthenticated(ctx context.Context) (bool, error) {
	token, ok, err := s.store.Get(ctx, session.KeyAuthToken)
	if err != nil {
		return false, fmt.Errorf("read session token: %w", err)
	}
	return ok && token != "", nil
}

func (s *Service) GetAllUsers(ctx context.Context, params UserListParams) (*httpclient.APIResponse[UserList], error) {
	return httpclient.Get[UserList](s.client, ctx, endpoint.User.GetAll.String(), params.Values())
}

func (s *Service) GetOneUser(ctx context.Context, id string) (*httpclient.APIResponse[User], error) {
	if err := validation.Required("id", id); err != nil {
		return nil, err
	}
	return httpclient.Get[User](s.client, ctx, endpoint.User.GetOne.WithID(id), nil)
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*httpclient.APIResponse[User], error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	return httpclient.Post[User](s.client, ctx, endpoint.User.Create.String(), req)
}

func (s *Service) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*httpclient.APIResponse[User], error) {
	if err := validation.Required("id", id); err != nil {
		return nil, err
	}
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	return httpclient.Put[User](s.client, ctx, endpoint.User.Update.WithID(id), req)
}

func (s *Service) DeleteUser(ctx context.Context, id string) (*httpclient.APIResponse[json.RawMessage], error) {
	if err := validation.Required("id", id); err != nil {
		return nil, err
	}
	return httpclient.Delete[json.RawMessage](s.client, ctx, endpoint.User.Delete.WithID(id))
}

// GetUserProfile returns the authenticated user.
func (s *Service) GetUserProfile(ctx context.Context) (*httpclient.APIResponse[User], error) {
	return httpclient.Get[User](s.client, ctx, endpoint.User.GetProfile.String(), nil)
}

// UpdateUserProfile updates the authenticated user.
func (s *Service) UpdateUserProfile(ctx context.Context, req UpdateUserRequest) (*httpclient.APIResponse[User], error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	return httpclient.Put[User](s.client, ctx, endpoint.User.UpdateProfile.String(), req)
}
