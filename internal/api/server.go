package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/urcet/yourfest-api/docs"
	v1 "github.com/urcet/yourfest-api/internal/api/handler/v1"
	"github.com/urcet/yourfest-api/internal/api/middleware"
	"github.com/urcet/yourfest-api/internal/config"
	"github.com/urcet/yourfest-api/internal/repository"
	"github.com/urcet/yourfest-api/internal/service"
)

// Deps are the storage backends and collaborators the server is built on.
// Hooks and Feed may be left empty.
type Deps struct {
	CatalogDAO      repository.CatalogDAO
	RegistrationDAO repository.RegistrationDAO
	Encoder         service.TicketEncoder
	Hooks           service.IssueHooks
	Feed            v1.TicketFeed
}

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	CatalogService      *service.CatalogService
	RegistrationService *service.RegistrationService
}

func NewServer(conf *config.AppConfig, deps Deps) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	catalogRepo := repository.NewCatalogRepository(deps.CatalogDAO)
	s.CatalogService = service.NewCatalogService(catalogRepo)
	s.RegistrationService = service.NewRegistrationService(
		repository.NewRegistrationRepository(deps.RegistrationDAO),
		catalogRepo,
		deps.Encoder,
		conf.Ticket.Prefix,
		deps.Hooks,
	)

	catalogHandler := s.initCatalogHandler()
	registrationHandler := s.initRegistrationHandler()
	adminHandler := s.initAdminHandler()
	var feedHandler *v1.FeedHandler
	if deps.Feed != nil {
		feedHandler = v1.NewFeedHandler(deps.Feed, conf.API.AllowedCORSDomains)
	}
	s.MountHandlers(catalogHandler, registrationHandler, adminHandler, feedHandler)

	return s
}

func (s *Server) initCatalogHandler() *v1.CatalogHandler {
	return v1.NewCatalogHandler(s.CatalogService)
}

func (s *Server) initRegistrationHandler() *v1.RegistrationHandler {
	return v1.NewRegistrationHandler(s.RegistrationService)
}

func (s *Server) initAdminHandler() *v1.AdminHandler {
	svc := service.NewAuthService(s.Config.Admin)
	handler := v1.NewAdminHandler(
		s.Config.API.JWTSigningKey,
		s.Config.Admin.TokenTTL,
		svc,
		s.RegistrationService,
		s.CatalogService,
	)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	catalogHandler *v1.CatalogHandler,
	registrationHandler *v1.RegistrationHandler,
	adminHandler *v1.AdminHandler,
	feedHandler *v1.FeedHandler,
) {
	const basePath = "/api"

	public := s.Router.Group(basePath)
	{
		public.GET("/events", catalogHandler.HandleListEvents)
		public.GET("/events/:id", catalogHandler.HandleGetEvent)
		public.GET("/stalls", catalogHandler.HandleListStalls)
		public.GET("/stalls/:id", catalogHandler.HandleGetStall)

		public.POST("/registrations", registrationHandler.HandleCreateRegistration)
		public.POST("/pricing/quote", registrationHandler.HandleQuote)
		public.GET("/ticket/:ticketId", registrationHandler.HandleGetTicket)

		public.POST("/admin/login", adminHandler.HandleLogin)
	}

	admin := s.Router.Group(basePath+"/admin", middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		admin.GET("/registrations", adminHandler.HandleListRegistrations)
		admin.DELETE("/registrations", adminHandler.HandleClearRegistrations)
		admin.DELETE("/catalog", adminHandler.HandleClearCatalog)
		admin.POST("/catalog/seed", adminHandler.HandleSeedCatalog)
		if feedHandler != nil {
			admin.GET("/feed", feedHandler.HandleFeed)
		}
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "yoUR Fest API"
	docs.SwaggerInfo.Description = "Event catalog, registration and ticket verification for yoUR Fest."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
