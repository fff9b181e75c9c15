package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/urcet/yourfest-api/internal/api/handler/v1/request"
	"github.com/urcet/yourfest-api/internal/api/handler/v1/response"
	"github.com/urcet/yourfest-api/internal/api/middleware"
	"github.com/urcet/yourfest-api/internal/domain"
	"github.com/urcet/yourfest-api/internal/pkg/jwthelper"
	"github.com/urcet/yourfest-api/internal/service"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (service.Admin, error)
}

type AdminRegistrationService interface {
	List(ctx context.Context) ([]domain.Registration, error)
	Clear(ctx context.Context) (int64, error)
}

type AdminCatalogService interface {
	Seed(ctx context.Context) (service.SeedResult, error)
	Clear(ctx context.Context) error
}

type AdminHandler struct {
	signingKey []byte
	tokenTTL   time.Duration
	auth       AuthService
	regs       AdminRegistrationService
	catalog    AdminCatalogService
}

func NewAdminHandler(signingKey string, tokenTTL time.Duration, auth AuthService, regs AdminRegistrationService, catalog AdminCatalogService) *AdminHandler {
	return &AdminHandler{
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
		auth:       auth,
		regs:       regs,
		catalog:    catalog,
	}
}

// HandleLogin godoc
// @Summary      Admin login
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.LoginRequest  true  "request body"
// @Success      200      {object}  response.LoginResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      503      {object}  response.Err
// @Router       /admin/login [post]
func (h *AdminHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	admin, err := h.auth.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrWrongCredentials) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))
			return
		}
		if errors.Is(err, service.ErrAdminDisabled) {
			response.RenderErr(ctx, response.ErrServiceUnavailable(err))
			return
		}

		err = fmt.Errorf("HandleLogin -> h.auth.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	token, err := jwthelper.GenerateToken(h.signingKey, admin.Username, middleware.RoleAdmin, h.tokenTTL)
	if err != nil {
		err = fmt.Errorf("HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.tokenTTL.Seconds()),
	})
}

// HandleListRegistrations godoc
// @Summary      List registrations
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.Registration
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/registrations [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListRegistrations(ctx *gin.Context) {
	registrations, err := h.regs.List(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListRegistrations -> h.regs.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, registrations)
}

// HandleClearRegistrations godoc
// @Summary      Delete every registration
// @Description  Catalog data and ticket numbering are left untouched.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.ClearedResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/registrations [delete]
// @Security BearerAuth
func (h *AdminHandler) HandleClearRegistrations(ctx *gin.Context) {
	n, err := h.regs.Clear(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleClearRegistrations -> h.regs.Clear -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.ClearedResponse{Message: "Registrations cleared", Deleted: n})
}

// HandleClearCatalog godoc
// @Summary      Delete every event and stall
// @Description  Registrations are left untouched.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.ClearedResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/catalog [delete]
// @Security BearerAuth
func (h *AdminHandler) HandleClearCatalog(ctx *gin.Context) {
	if err := h.catalog.Clear(ctx.Request.Context()); err != nil {
		err = fmt.Errorf("HandleClearCatalog -> h.catalog.Clear -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.ClearedResponse{Message: "Catalog cleared"})
}

// HandleSeedCatalog godoc
// @Summary      Reload the default catalog
// @Tags         admin
// @Produce      json
// @Success      200  {object}  service.SeedResult
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/catalog/seed [post]
// @Security BearerAuth
func (h *AdminHandler) HandleSeedCatalog(ctx *gin.Context) {
	result, err := h.catalog.Seed(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleSeedCatalog -> h.catalog.Seed -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}
