package provider

import (
	"github.com/storefront-next/internal/authz"
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo      repository.AdminRepository
	UserRepo       repository.UserRepository
	CatalogRepo    repository.CatalogRepository
	CartRepo       repository.CartRepository
	DiscountRepo   repository.DiscountRepository
	RedemptionRepo repository.DiscountRedemptionRepository
	TaxProfileRepo repository.TaxProfileRepository
	ShippingRepo   repository.ShippingRepository

	// Resolvers
	DiscountResolver *service.DiscountResolver
	TaxResolver      *service.TaxResolver
	ShippingResolver *service.ShippingResolver

	// Services
	AuthzService         *authz.Service
	AuthService          *service.AuthService
	UserTokenService     *service.UserTokenService
	CartPricingService   *service.CartPricingService
	CartService          *service.CartService
	QuoteService         *service.QuoteService
	DiscountAdminService *service.DiscountAdminService
	PricingConfigService *service.PricingConfigService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		// 降级为禁用状态，事件投递变为空操作
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.CatalogRepo = repository.NewCatalogRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.DiscountRepo = repository.NewDiscountRepository(db)
	c.RedemptionRepo = repository.NewDiscountRedemptionRepository(db)
	c.TaxProfileRepo = repository.NewTaxProfileRepository(db)
	c.ShippingRepo = repository.NewShippingRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserTokenService = service.NewUserTokenService(c.Config, c.UserRepo)

	c.DiscountResolver = service.NewDiscountResolver(c.DiscountRepo, c.RedemptionRepo, c.CatalogRepo)
	c.TaxResolver = service.NewTaxResolver(c.TaxProfileRepo)
	c.ShippingResolver = service.NewShippingResolver(c.ShippingRepo)

	c.CartPricingService = service.NewCartPricingService(c.CartRepo, c.DiscountResolver, c.TaxResolver)
	c.CartService = service.NewCartService(
		c.Config,
		c.CartRepo,
		c.CatalogRepo,
		c.CartPricingService,
		c.ShippingResolver,
		c.TaxResolver,
		c.QueueClient,
	)
	c.QuoteService = service.NewQuoteService(c.Config, c.TaxResolver, c.ShippingResolver)
	c.DiscountAdminService = service.NewDiscountAdminService(c.DiscountRepo, c.RedemptionRepo)
	c.PricingConfigService = service.NewPricingConfigService(c.TaxProfileRepo, c.ShippingRepo, c.QuoteService)
}
