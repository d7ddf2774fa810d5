package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajsanitation/orio-rewards/internal/api/handler/v1/request"
	"github.com/rajsanitation/orio-rewards/internal/api/handler/v1/response"
	"github.com/rajsanitation/orio-rewards/internal/domain"
	"github.com/rajsanitation/orio-rewards/internal/service"
)

type PlumberService interface {
	GetPlumberByUserID(ctx context.Context, userID uint) (domain.Plumber, error)
	GetTransactions(ctx context.Context, plumberID uint) ([]domain.Transaction, error)
	GetRedemptions(ctx context.Context, plumberID uint) ([]domain.Redemption, error)
	Catalog(balance int) []domain.CatalogEntry
	Redeem(ctx context.Context, userID uint, rewardName, code string) (domain.Redemption, error)
}

type PlumberHandler struct {
	svc  PlumberService
	uSvc UserService
}

func NewPlumberHandler(svc PlumberService, uSvc UserService) *PlumberHandler {
	return &PlumberHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

func (h *PlumberHandler) plumberFromContext(ctx *gin.Context) (domain.Plumber, *response.Err) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		return domain.Plumber{}, respErr
	}

	plumber, err := h.svc.GetPlumberByUserID(ctx.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrPlumberNotFound) {
			return domain.Plumber{}, response.ErrNotFound("plumber", "userID", user.ID)
		}

		err = fmt.Errorf("v1.plumberFromContext -> h.svc.GetPlumberByUserID -> %w", err)

		return domain.Plumber{}, response.ErrInternalServerError(err)
	}

	return plumber, nil
}

// HandleGetProfile godoc
// @Summary      Get the authenticated plumber's profile
// @Tags         plumbers
// @Produce      json
// @Success      200  {object}  domain.Plumber
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /me [get]
// @Security BearerAuth
func (h *PlumberHandler) HandleGetProfile(ctx *gin.Context) {
	plumber, respErr := h.plumberFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	ctx.JSON(http.StatusOK, plumber)
}

// HandleGetTransactions godoc
// @Summary      Get the authenticated plumber's transaction history
// @Tags         plumbers
// @Produce      json
// @Success      200  {array}   domain.Transaction
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /me/transactions [get]
// @Security BearerAuth
func (h *PlumberHandler) HandleGetTransactions(ctx *gin.Context) {
	plumber, respErr := h.plumberFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	transactions, err := h.svc.GetTransactions(ctx.Request.Context(), plumber.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTransactions -> h.svc.GetTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, transactions)
}

// HandleGetRedemptions godoc
// @Summary      Get the authenticated plumber's redemption history
// @Tags         plumbers
// @Produce      json
// @Success      200  {array}   domain.Redemption
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /me/redemptions [get]
// @Security BearerAuth
func (h *PlumberHandler) HandleGetRedemptions(ctx *gin.Context) {
	plumber, respErr := h.plumberFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	redemptions, err := h.svc.GetRedemptions(ctx.Request.Context(), plumber.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetRedemptions -> h.svc.GetRedemptions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, redemptions)
}

// HandleGetRewards godoc
// @Summary      Get the reward catalog gated by the plumber's balance
// @Tags         plumbers
// @Produce      json
// @Success      200  {array}   domain.CatalogEntry
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /rewards [get]
// @Security BearerAuth
func (h *PlumberHandler) HandleGetRewards(ctx *gin.Context) {
	plumber, respErr := h.plumberFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	ctx.JSON(http.StatusOK, h.svc.Catalog(plumber.Tokens))
}

// HandleRedeem godoc
// @Summary      Redeem tokens for a reward
// @Description  Requires a valid one-time redemption code issued by the dealer.
// @Tags         plumbers
// @Accept       json
// @Produce      json
// @Param        request   body      request.RedeemRequest true "request body"
// @Success      201  {object}  domain.Redemption
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /me/redemptions [post]
// @Security BearerAuth
func (h *PlumberHandler) HandleRedeem(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.RedeemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	redemption, err := h.svc.Redeem(ctx.Request.Context(), user.ID, req.RewardName, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownReward):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrUnknownReward))
		case errors.Is(err, service.ErrInvalidRedemptionCode):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidRedemptionCode))
		case errors.Is(err, service.ErrInsufficientBalance):
			response.RenderErr(ctx, response.ErrConflict(service.ErrInsufficientBalance))
		case errors.Is(err, service.ErrPlumberNotFound):
			response.RenderErr(ctx, response.ErrNotFound("plumber", "userID", user.ID))
		default:
			err = fmt.Errorf("v1.HandleRedeem -> h.svc.Redeem -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, redemption)
}
