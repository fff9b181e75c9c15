package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urcet/yourfest-api/internal/api/handler/v1/response"
	"github.com/urcet/yourfest-api/internal/domain"
	"github.com/urcet/yourfest-api/internal/service"
)

type CatalogService interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id string) (domain.Event, error)
	ListStalls(ctx context.Context) ([]domain.Stall, error)
	GetStall(ctx context.Context, id string) (domain.Stall, error)
}

type CatalogHandler struct {
	svc CatalogService
}

func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{
		svc: svc,
	}
}

// HandleListEvents godoc
// @Summary      List events
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      500  {object}  response.Err
// @Router       /events [get]
func (h *CatalogHandler) HandleListEvents(ctx *gin.Context) {
	events, err := h.svc.ListEvents(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListEvents -> h.svc.ListEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  domain.Event
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{id} [get]
func (h *CatalogHandler) HandleGetEvent(ctx *gin.Context) {
	id := ctx.Param("id")

	event, err := h.svc.GetEvent(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "id", id))
			return
		}

		err = fmt.Errorf("HandleGetEvent -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleListStalls godoc
// @Summary      List stalls
// @Tags         stalls
// @Produce      json
// @Success      200  {array}   domain.Stall
// @Failure      500  {object}  response.Err
// @Router       /stalls [get]
func (h *CatalogHandler) HandleListStalls(ctx *gin.Context) {
	stalls, err := h.svc.ListStalls(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListStalls -> h.svc.ListStalls -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stalls)
}

// HandleGetStall godoc
// @Summary      Get a stall
// @Tags         stalls
// @Produce      json
// @Param        id   path      string  true  "Stall ID"
// @Success      200  {object}  domain.Stall
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /stalls/{id} [get]
func (h *CatalogHandler) HandleGetStall(ctx *gin.Context) {
	id := ctx.Param("id")

	stall, err := h.svc.GetStall(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrStallNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("stall", "id", id))
			return
		}

		err = fmt.Errorf("HandleGetStall -> h.svc.GetStall -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stall)
}
