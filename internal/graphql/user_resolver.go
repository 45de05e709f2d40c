package graphql

import (
	"errors"

	"ai-shopping-assistant-be/internal/dto"
	"ai-shopping-assistant-be/internal/pkg/serverutils"
	"ai-shopping-assistant-be/internal/repository/contract"

	"github.com/graphql-go/graphql"
)

// User queries resolve to null on failure; only unexpected errors are logged.

func (r *Resolver) GetUserProfile(p graphql.ResolveParams) (interface{}, error) {
	userId := userFrom(p.Context, stringArg(p.Args, "userId"))
	res, err := r.user.GetProfile(p.Context, userId)
	if err != nil {
		r.quiet("get user profile", err)
		return nil, nil
	}
	return profileView(res), nil
}

func (r *Resolver) GetUserPreferences(p graphql.ResolveParams) (interface{}, error) {
	userId := userFrom(p.Context, stringArg(p.Args, "userId"))
	res, err := r.user.GetPreferences(p.Context, userId)
	if err != nil {
		r.quiet("get user preferences", err)
		return nil, nil
	}
	return preferencesView(res), nil
}

func (r *Resolver) UpdateUserPreferences(p graphql.ResolveParams) (interface{}, error) {
	var req dto.UpdateUserPreferencesRequest
	if err := decodeArg(p.Args, "input", &req); err != nil {
		return nil, r.fail("update user preferences", err)
	}
	req.UserId = userFrom(p.Context, req.UserId)
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	res, err := r.user.UpdatePreferences(p.Context, &req)
	if err != nil {
		return nil, r.fail("update user preferences", err)
	}
	return preferencesView(res), nil
}

// TrackUserActivity reports false instead of failing the request.
func (r *Resolver) TrackUserActivity(p graphql.ResolveParams) (interface{}, error) {
	var req dto.TrackUserActivityRequest
	err := decodeArg(p.Args, "input", &req)
	if err == nil {
		req.UserId = userFrom(p.Context, req.UserId)
		err = serverutils.ValidateRequest(req)
	}
	if err == nil {
		err = r.user.TrackActivity(p.Context, &req)
	}
	if err != nil {
		r.quiet("track user activity", err)
		return false, nil
	}
	return true, nil
}

func (r *Resolver) quiet(op string, err error) {
	if errors.Is(err, contract.ErrRecordNotFound) {
		return
	}
	r.logger.Warn(logModule, "Resolver returned empty result", map[string]interface{}{
		"operation": op,
		"error":     err.Error(),
	})
}
