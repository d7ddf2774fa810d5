package api

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/rajsanitation/orio-rewards/docs"
	v1 "github.com/rajsanitation/orio-rewards/internal/api/handler/v1"
	"github.com/rajsanitation/orio-rewards/internal/api/middleware"
	"github.com/rajsanitation/orio-rewards/internal/config"
	"github.com/rajsanitation/orio-rewards/internal/repository"
	"github.com/rajsanitation/orio-rewards/internal/repository/cache"
	"github.com/rajsanitation/orio-rewards/internal/repository/dao"
	"github.com/rajsanitation/orio-rewards/internal/service"
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
	plumberHandler := s.initPlumberHandler(db)
	dealerHandler := s.initDealerHandler(db)
	s.MountHandlers(authHandler, plumberHandler, dealerHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initPlumberHandler(db *gorm.DB) *v1.PlumberHandler {
	svc := s.initLoyaltyService(db)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewPlumberHandler(svc, uSvc)

	return handler
}

func (s *Server) initDealerHandler(db *gorm.DB) *v1.DealerHandler {
	svc := s.initLoyaltyService(db)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewDealerHandler(svc, uSvc)

	return handler
}

func (s *Server) initLoyaltyService(db *gorm.DB) *service.LoyaltyService {
	plumberDAO := dao.NewPlumberDAO(db)
	redemptionDAO := dao.NewRedemptionDAO(db)
	repo := repository.NewLoyaltyRepository(plumberDAO, redemptionDAO)
	rosterCache := cache.NewRosterCache(s.Config.Redis)
	codeTTL := time.Duration(s.Config.Rewards.RedemptionCodeTTLMinutes) * time.Minute

	return service.NewLoyaltyService(repo, rosterCache, codeTTL)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, plumberHandler *v1.PlumberHandler, dealerHandler *v1.DealerHandler) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	authenticator := middleware.NewAuthenticator([]byte(s.Config.API.JWTSigningKey))

	plumbers := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		plumbers.GET("/me", plumberHandler.HandleGetProfile)
		plumbers.GET("/me/transactions", plumberHandler.HandleGetTransactions)
		plumbers.GET("/me/redemptions", plumberHandler.HandleGetRedemptions)
		plumbers.POST("/me/redemptions", plumberHandler.HandleRedeem)
		plumbers.GET("/rewards", plumberHandler.HandleGetRewards)
	}

	dealer := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		dealer.GET("/dealer/plumbers", dealerHandler.HandleListPlumbers)
		dealer.GET("/dealer/plumbers/search", dealerHandler.HandleSearchPlumbers)
		dealer.GET("/dealer/transactions", dealerHandler.HandleGetAllTransactions)
		dealer.GET("/dealer/redemptions", dealerHandler.HandleGetAllRedemptions)
		dealer.GET("/dealer/stats", dealerHandler.HandleGetStats)
		dealer.POST("/dealer/transfers", dealerHandler.HandleTransfer)
		dealer.PATCH("/dealer/redemptions/:id", dealerHandler.HandleAdvanceRedemption)
		dealer.POST("/dealer/redemption-codes", dealerHandler.HandleIssueRedemptionCode)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Orio Rewards API"
	docs.SwaggerInfo.Description = "Loyalty rewards API for Orio bath fittings dealers and plumbers."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
