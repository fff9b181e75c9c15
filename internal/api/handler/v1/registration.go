package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urcet/yourfest-api/internal/api/handler/v1/request"
	"github.com/urcet/yourfest-api/internal/api/handler/v1/response"
	"github.com/urcet/yourfest-api/internal/domain"
	"github.com/urcet/yourfest-api/internal/service"
)

var errInvalidBody = errors.New("Invalid request body")

type RegistrationService interface {
	Register(ctx context.Context, input domain.RegistrationInput) (domain.Registration, error)
	GetTicket(ctx context.Context, ticketID string) (domain.Ticket, error)
	Quote(ctx context.Context, eventIDs []string) (domain.Pricing, error)
}

type RegistrationHandler struct {
	svc RegistrationService
}

func NewRegistrationHandler(svc RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		svc: svc,
	}
}

// HandleCreateRegistration godoc
// @Summary      Register for events
// @Description  Validates the submission, issues a ticket and queues the confirmation email.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateRegistrationRequest  true  "request body"
// @Success      201      {object}  response.RegistrationCreated
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /registrations [post]
func (h *RegistrationHandler) HandleCreateRegistration(ctx *gin.Context) {
	var req request.CreateRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errInvalidBody))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrValidation(err))
		return
	}

	reg, err := h.svc.Register(ctx.Request.Context(), req.ToDomain())
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			response.RenderErr(ctx, response.ErrValidation(err))
			return
		}

		err = fmt.Errorf("HandleCreateRegistration -> h.svc.Register -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.RegistrationCreated{
		Message:  "Registration successful",
		ID:       reg.ID,
		TicketID: reg.TicketID,
		QRCode:   reg.QRCode,
		Pricing:  reg.Pricing,
	})
}

// HandleGetTicket godoc
// @Summary      Verify a ticket
// @Tags         tickets
// @Produce      json
// @Param        ticketId  path      string  true  "Ticket ID, e.g. YF26-00001"
// @Success      200       {object}  domain.Ticket
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /ticket/{ticketId} [get]
func (h *RegistrationHandler) HandleGetTicket(ctx *gin.Context) {
	ticketID := ctx.Param("ticketId")

	ticket, err := h.svc.GetTicket(ctx.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "id", ticketID))
			return
		}

		err = fmt.Errorf("HandleGetTicket -> h.svc.GetTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, ticket)
}

// HandleQuote godoc
// @Summary      Price a selection of events
// @Description  Applies the same pricing the registration endpoint uses, without registering.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request  body      request.QuoteRequest  true  "request body"
// @Success      200      {object}  domain.Pricing
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /pricing/quote [post]
func (h *RegistrationHandler) HandleQuote(ctx *gin.Context) {
	var req request.QuoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errInvalidBody))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrValidation(err))
		return
	}

	pricing, err := h.svc.Quote(ctx.Request.Context(), req.EventIDs)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			response.RenderErr(ctx, response.ErrValidation(err))
			return
		}

		err = fmt.Errorf("HandleQuote -> h.svc.Quote -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, pricing)
}
