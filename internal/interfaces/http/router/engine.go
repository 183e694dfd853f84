package router

import (
	_ "github.com/erp/backoffice/docs"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers served by the engine
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Address    *handler.AddressHandler
	Company    *handler.CompanyHandler
	Store      *handler.StoreHandler
	User       *handler.UserHandler
	Role       *handler.RoleHandler
	Permission *handler.PermissionHandler
}

// Config holds what the engine needs besides the handlers
type Config struct {
	Production bool
	HTTP       config.HTTPConfig
	Tracing    middleware.TracingConfig
	// Metrics is optional HTTP metrics middleware
	Metrics gin.HandlerFunc
	JWT     middleware.JWTConfig
	// Swagger guards the API documentation under /swagger
	Swagger config.SwaggerConfig
	// LoginLimiter defaults to the HTTP config's login rate limit
	LoginLimiter *middleware.RateLimiter
	Logger       *zap.Logger
}

// NewEngine builds the gin engine with global middleware and every route.
//
// Middleware order matters: the request id is needed by the span and the
// request logger, and the logger must be in the request context before the
// JWT middleware attaches the acting user to it.
func NewEngine(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.Tracing)...)
	engine.Use(logger.GinMiddleware(log), logger.Recovery(log))
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics)
	}
	engine.Use(
		middleware.Secure(middleware.DefaultSecurityConfig(cfg.Production)),
		middleware.CORS(middleware.CORSConfigFrom(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	engine.GET("/health", h.Health.Health)

	limiter := cfg.LoginLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
	}
	jwtConfig := cfg.JWT
	if jwtConfig.Logger == nil {
		jwtConfig.Logger = log
	}
	authenticated := middleware.JWTAuth(jwtConfig)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, authenticated),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := NewRouter(engine)
	r.Register(publicRoutes(h, limiter))
	r.Register(authRoutes(h, authenticated))
	r.Register(addressRoutes(h, authenticated))
	r.Register(companyRoutes(h, authenticated))
	r.Register(identityRoutes(h, authenticated))
	r.Setup()

	return engine, nil
}

func publicRoutes(h Handlers, limiter *middleware.RateLimiter) *DomainGroup {
	g := NewDomainGroup("public", "")
	g.POST("/auth/login", middleware.RateLimit(limiter), h.Auth.Login)
	return g
}

func authRoutes(h Handlers, authenticated gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("auth", "/auth").Use(authenticated)
	g.POST("/logout", h.Auth.Logout)
	g.GET("/me", h.Auth.Me)
	return g
}

func addressRoutes(h Handlers, authenticated gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("address", "").Use(authenticated)
	g.GET("/cep/:cep", h.Address.LookupCEP)
	g.GET("/estados", h.Address.ListEstados)
	g.GET("/estados/:id", h.Address.GetEstado)
	g.GET("/municipios", h.Address.ListMunicipios)
	g.GET("/municipios/:id", h.Address.GetMunicipio)
	return g
}

func companyRoutes(h Handlers, authenticated gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("empresas", "/empresas").Use(authenticated)
	g.GET("", h.Company.List)
	g.POST("", h.Company.Create)
	g.GET("/:id", h.Company.Get)
	g.PUT("/:id", h.Company.Update)
	g.DELETE("/:id", h.Company.Delete)
	g.POST("/:id/restore", h.Company.Restore)

	lojas := g.Group("lojas", "/:id/lojas")
	lojas.GET("", h.Store.List)
	lojas.POST("", h.Store.Create)
	lojas.GET("/ativas", h.Store.Active)
	lojas.GET("/:lojaId", h.Store.Get)
	lojas.PUT("/:lojaId", h.Store.Update)
	lojas.DELETE("/:lojaId", h.Store.Delete)
	return g
}

func identityRoutes(h Handlers, authenticated gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("identity", "").Use(authenticated)

	users := g.Group("users", "/users")
	users.GET("", h.User.List)
	users.POST("", h.User.Create)
	users.GET("/:id", h.User.Get)
	users.PUT("/:id", h.User.Update)
	users.DELETE("/:id", h.User.Delete)

	roles := g.Group("roles", "/roles")
	roles.GET("", h.Role.List)
	roles.POST("", h.Role.Create)
	roles.GET("/:id", h.Role.Get)
	roles.PUT("/:id", h.Role.Update)
	roles.DELETE("/:id", h.Role.Delete)
	roles.PUT("/:id/permissions", h.Role.SyncPermissions)

	permissions := g.Group("permissions", "/permissions")
	permissions.GET("", h.Permission.List)
	permissions.POST("", h.Permission.Create)
	permissions.GET("/:id", h.Permission.Get)
	permissions.PUT("/:id", h.Permission.Update)
	permissions.DELETE("/:id", h.Permission.Delete)
	return g
}
