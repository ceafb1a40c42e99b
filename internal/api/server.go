package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/restokit/resto-erp/docs"
	v1 "github.com/restokit/resto-erp/internal/api/handler/v1"
	"github.com/restokit/resto-erp/internal/api/middleware"
	"github.com/restokit/resto-erp/internal/config"
	"github.com/restokit/resto-erp/internal/repository"
	"github.com/restokit/resto-erp/internal/repository/dao"
	"github.com/restokit/resto-erp/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	inventoryHandler := s.initInventoryHandler(db)
	notificationHandler := s.initNotificationHandler(db)
	s.MountHandlers(authHandler, userHandler, inventoryHandler, notificationHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initInventoryHandler(db *gorm.DB) *v1.InventoryHandler {
	itemDAO := dao.NewItemDAO(db)
	repo := repository.NewInventoryRepository(itemDAO)
	alertRepo := repository.NewNotificationRepository(dao.NewNotificationDAO(db))
	svc := service.NewInventoryService(repo, alertRepo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewInventoryHandler(svc, uSvc)

	return handler
}

func (s *Server) initNotificationHandler(db *gorm.DB) *v1.NotificationHandler {
	notificationDAO := dao.NewNotificationDAO(db)
	repo := repository.NewNotificationRepository(notificationDAO)
	svc := service.NewNotificationService(repo)
	handler := v1.NewNotificationHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, userHandler *v1.UserHandler, inventoryHandler *v1.InventoryHandler, notificationHandler *v1.NotificationHandler) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	users := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		users.GET("/users/:userID", userHandler.HandleGetUser)
	}

	inventory := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		inventory.GET("/items", inventoryHandler.HandleListItems)
		inventory.POST("/items", inventoryHandler.HandleCreateItem)
		inventory.GET("/items/:itemID", inventoryHandler.HandleGetItem)
		inventory.GET("/items/:itemID/entries", inventoryHandler.HandleListItemEntries)
		inventory.POST("/items/:itemID/stock/adjust", inventoryHandler.HandleAdjustStock)
		inventory.POST("/items/:itemID/stock/usage", inventoryHandler.HandleRecordUsage)
		inventory.POST("/items/:itemID/stock/sale", inventoryHandler.HandleRecordSale)
		inventory.POST("/items/:itemID/stock/check", inventoryHandler.HandleCheckLowStock)
		inventory.POST("/stock/usage/bulk", inventoryHandler.HandleBulkUsage)
		inventory.POST("/stock/sale/bulk", inventoryHandler.HandleBulkSale)
		inventory.POST("/stock/check", inventoryHandler.HandleCheckAllLowStock)
		inventory.GET("/dashboard/summary", inventoryHandler.HandleDashboardSummary)

		inventory.GET("/notifications", notificationHandler.HandleListNotifications)
		inventory.PATCH("/notifications/:notificationID/read", notificationHandler.HandleMarkNotificationRead)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Resto ERP API"
	docs.SwaggerInfo.Description = "Restaurant inventory, stock ledger and low-stock alerting API."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
