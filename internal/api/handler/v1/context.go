package v1

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/rajsanitation/orio-rewards/internal/api/handler/v1/response"
	"github.com/rajsanitation/orio-rewards/internal/api/middleware"
	"github.com/rajsanitation/orio-rewards/internal/domain"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

func getUserFromContext(ctx *gin.Context, uSvc UserService) (domain.User, *response.Err) {
	val, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return domain.User{}, response.ErrPermissionDenied()
	}

	userID, ok := val.(uint)
	if !ok {
		return domain.User{}, response.ErrPermissionDenied()
	}

	user, err := uSvc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("getUserFromContext -> uSvc.GetUser -> %w", err)

		return domain.User{}, response.ErrInternalServerError(err)
	}

	return user, nil
}
