package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rajsanitation/orio-rewards/internal/api/handler/v1/request"
	"github.com/rajsanitation/orio-rewards/internal/api/handler/v1/response"
	"github.com/rajsanitation/orio-rewards/internal/domain"
	"github.com/rajsanitation/orio-rewards/internal/service"
)

type DealerService interface {
	ListPlumbers(ctx context.Context) ([]domain.Plumber, error)
	SearchPlumbers(ctx context.Context, query string) ([]domain.Plumber, error)
	GetAllTransactions(ctx context.Context) ([]domain.Transaction, error)
	GetAllRedemptions(ctx context.Context) ([]domain.Redemption, error)
	GetStats(ctx context.Context) (service.Stats, error)
	Credit(ctx context.Context, plumberID uint, amount int, description string) (domain.Plumber, error)
	AdvanceRedemptionStatus(ctx context.Context, id uint, newStatus string) (domain.Redemption, error)
	IssueRedemptionCode(ctx context.Context) (string, time.Time, error)
}

type DealerHandler struct {
	svc  DealerService
	uSvc UserService
}

func NewDealerHandler(svc DealerService, uSvc UserService) *DealerHandler {
	return &DealerHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

func (h *DealerHandler) requireDealer(ctx *gin.Context) *response.Err {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		return respErr
	}

	if !user.IsDealer() {
		return response.ErrPermissionDenied()
	}

	return nil
}

// HandleListPlumbers godoc
// @Summary      List all enrolled plumbers
// @Tags         dealer
// @Produce      json
// @Success      200  {array}   domain.Plumber
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /dealer/plumbers [get]
// @Security BearerAuth
func (h *DealerHandler) HandleListPlumbers(ctx *gin.Context) {
	if respErr := h.requireDealer(ctx); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	plumbers, err := h.svc.ListPlumbers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListPlumbers -> h.svc.ListPlumbers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, plumbers)
}

// HandleSearchPlumbers godoc
// @Summary      Fuzzy search plumbers by name, PID or email
// @Tags         dealer
// @Produce      json
// @Param        q query string false "search query"
// @Success      200  {array}   domain.Plumber
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /dealer/plumbers/search [get]
// @Security BearerAuth
func (h *DealerHandler) HandleSearchPlumbers(ctx *gin.Context) {
	if respErr := h.requireDealer(ctx); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	plumbers, err := h.svc.SearchPlumbers(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		err = fmt.Errorf("v1.HandleSearchPlumbers -> h.svc.SearchPlumbers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, plumbers)
}

// HandleGetAllTransactions godoc
// @Summary      List every token transaction across all plumbers
// @Tags         dealer
// @Produce      json
// @Success      200  {array}   domain.Transaction
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /dealer/transactions [get]
// @Security BearerAuth
func (h *DealerHandler) HandleGetAllTransactions(ctx *gin.Context) {
	if respErr := h.requireDealer(ctx); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	transactions, err := h.svc.GetAllTransactions(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetAllTransactions -> h.svc.GetAllTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, transactions)
}

// HandleGetAllRedemptions godoc
// @Summary      List every redemption across all plumbers
// @Tags         dealer
// @Produce      json
// @Success      200  {array}   domain.Redemption
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /dealer/redemptions [get]
// @Security BearerAuth
func (h *DealerHandler) HandleGetAllRedemptions(ctx *gin.Context) {
	if respErr := h.requireDealer(ctx); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	redemptions, err := h.svc.GetAllRedemptions(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetAllRedemptions -> h.svc.GetAllRedemptions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, redemptions)
}

// HandleGetStats godoc
// @Summary      Get program-wide statistics
// @Tags         dealer
// @Produce      json
// @Success      200  {object}  service.Stats
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /dealer/stats [get]
// @Security BearerAuth
func (h *DealerHandler) HandleGetStats(ctx *gin.Context) {
	if respErr := h.requireDealer(ctx); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	stats, err := h.svc.GetStats(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetStats -> h.svc.GetStats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// HandleTransfer godoc
// @Summary      Credit tokens to a plumber
// @Tags         dealer
// @Accept       json
// @Produce      json
// @Param        request   body      request.TransferRequest true "request body"
// @Success      200  {object}  response.TransferResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /dealer/transfers [post]
// @Security BearerAuth
func (h *DealerHandler) HandleTransfer(ctx *gin.Context) {
	if respErr := h.requireDealer(ctx); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.TransferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	plumber, err := h.svc.Credit(ctx.Request.Context(), req.PlumberID, req.Tokens, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidAmount))
		case errors.Is(err, service.ErrPlumberNotFound):
			response.RenderErr(ctx, response.ErrNotFound("plumber", "ID", req.PlumberID))
		default:
			err = fmt.Errorf("v1.HandleTransfer -> h.svc.Credit -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, response.TransferResponse{
		Message: fmt.Sprintf("%d tokens transferred to %v", req.Tokens, plumber.Name),
		Plumber: plumber,
	})
}

// HandleAdvanceRedemption godoc
// @Summary      Advance a redemption's delivery status
// @Description  Moves a redemption from pending to approved or delivered.
// @Tags         dealer
// @Accept       json
// @Produce      json
// @Param        id        path      int true "redemption ID"
// @Param        request   body      request.AdvanceRedemptionRequest true "request body"
// @Success      200  {object}  domain.Redemption
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /dealer/redemptions/{id} [patch]
// @Security BearerAuth
func (h *DealerHandler) HandleAdvanceRedemption(ctx *gin.Context) {
	if respErr := h.requireDealer(ctx); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid redemption ID")))

		return
	}

	var req request.AdvanceRedemptionRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	redemption, err := h.svc.AdvanceRedemptionStatus(ctx.Request.Context(), uint(id), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRedemptionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("redemption", "ID", id))
		case errors.Is(err, service.ErrInvalidStatusTransition):
			response.RenderErr(ctx, response.ErrUnprocessable(service.ErrInvalidStatusTransition))
		case errors.Is(err, service.ErrConcurrentModification):
			response.RenderErr(ctx, response.ErrConflict(service.ErrConcurrentModification))
		default:
			err = fmt.Errorf("v1.HandleAdvanceRedemption -> h.svc.AdvanceRedemptionStatus -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, redemption)
}

// HandleIssueRedemptionCode godoc
// @Summary      Issue a one-time redemption code
// @Description  The dealer hands the code to a plumber, who uses it once to redeem a reward.
// @Tags         dealer
// @Produce      json
// @Success      201  {object}  response.RedemptionCodeResponse
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /dealer/redemption-codes [post]
// @Security BearerAuth
func (h *DealerHandler) HandleIssueRedemptionCode(ctx *gin.Context) {
	if respErr := h.requireDealer(ctx); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	code, expiresAt, err := h.svc.IssueRedemptionCode(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleIssueRedemptionCode -> h.svc.IssueRedemptionCode -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, response.RedemptionCodeResponse{
		Code:      code,
		ExpiresAt: expiresAt,
	})
}
