package handler

import (
	"mediaflow/internal/access"
	"mediaflow/internal/domain/user"
	apperrors "mediaflow/pkg/errors"

	"github.com/labstack/echo/v4"
)

// sessionActor returns the authenticated session user. Routes reaching a
// handler that calls it are behind RequireAuth.
func sessionActor(c echo.Context) (access.Actor, *user.User, error) {
	actor, ok := access.ActorFrom(c)
	if !ok {
		return access.Actor{}, nil, apperrors.Unauthorized(msgAuthRequired)
	}
	u, ok := actor.User()
	if !ok {
		return access.Actor{}, nil, apperrors.Unauthorized(msgAuthRequired)
	}
	return actor, u, nil
}

func requestActor(c echo.Context) (access.Actor, error) {
	actor, ok := access.ActorFrom(c)
	if !ok {
		return access.Actor{}, apperrors.Unauthorized(msgAuthRequired)
	}
	return actor, nil
}
