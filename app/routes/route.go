package routes

import (
	"net/http"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/handlers"
	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/middlewares"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/renderer"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the process-wide resources the router is built from. A nil Gateway leaves
// the payment routes unregistered.
type Dependencies struct {
	Config   *configs.Config
	DB       *gorm.DB
	Logger   *zap.Logger
	Sessions sessions.SessionStore
	CSRFKey  []byte
	Gateway  services.PaymentGateway
	Notifier services.OrderNotifier
}

const (
	idPattern   = "{id:[0-9]+}"
	uuidPattern = "{id:[0-9a-fA-F-]{36}}"
)

func NewRouter(deps Dependencies) (*mux.Router, error) {
	cfg := deps.Config
	logger := deps.Logger
	rnd := renderer.New(cfg.IsDevelopment())
	validate := helpers.NewValidator()

	notifier := deps.Notifier
	if notifier == nil {
		notifier = services.NewAsyncNotifier(services.NewOrderNotifier(cfg.Email, logger))
	}

	userRepo := repositories.NewUserRepository(deps.DB)
	customerRepo := repositories.NewCustomerRepository(deps.DB)
	addressRepo := repositories.NewAddressRepository(deps.DB)
	categoryRepo := repositories.NewCategoryRepository(deps.DB)
	statsRepo, err := repositories.NewCategoryStatsRepository(deps.DB)
	if err != nil {
		return nil, err
	}
	promotionRepo := repositories.NewPromotionRepository(deps.DB)
	productRepo := repositories.NewProductRepository(deps.DB)
	imageRepo := repositories.NewProductImageRepository(deps.DB)
	reviewRepo := repositories.NewReviewRepository(deps.DB)
	cartRepo := repositories.NewCartRepository(deps.DB)
	cartItemRepo := repositories.NewCartItemRepository(deps.DB)
	orderRepo := repositories.NewOrderRepository(deps.DB)
	orderItemRepo := repositories.NewOrderItemRepository(deps.DB)

	authService := services.NewAuthService(deps.DB, userRepo, customerRepo, []byte(cfg.Auth.JWTSecret), cfg.Auth.JWTTTL, logger)
	categoryService := services.NewCategoryService(categoryRepo, statsRepo, logger)
	promotionService := services.NewPromotionService(promotionRepo)
	productService := services.NewProductService(productRepo, categoryRepo, promotionRepo, cfg.Catalog.ProductMinPrice, logger)
	imageService := services.NewProductImageService(imageRepo, productRepo, cfg.Media.Root, cfg.Media.URL, cfg.Media.MaxUploadKB, logger)
	reviewService := services.NewReviewService(reviewRepo, productRepo)
	cartService := services.NewCartService(cartRepo, cartItemRepo, productRepo, logger)
	customerService := services.NewCustomerService(deps.DB, customerRepo, addressRepo, userRepo, logger)
	orderService := services.NewOrderService(deps.DB, cartRepo, cartItemRepo, customerRepo, orderRepo, orderItemRepo, notifier, logger)

	authHandler := handlers.NewAuthHandler(authService, deps.Sessions, rnd, validate, logger)
	categoryHandler := handlers.NewCategoryHandler(categoryService, rnd, validate, logger)
	promotionHandler := handlers.NewPromotionHandler(promotionService, rnd, validate, logger)
	productHandler := handlers.NewProductHandler(productService, imageService, cfg.Catalog, rnd, validate, logger)
	imageHandler := handlers.NewProductImageHandler(imageService, rnd, logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, imageService, rnd, validate, logger)
	cartHandler := handlers.NewCartHandler(cartService, deps.Sessions, rnd, validate, logger)
	customerHandler := handlers.NewCustomerHandler(customerService, rnd, validate, logger)
	orderHandler := handlers.NewOrderHandler(orderService, deps.Sessions, rnd, validate, logger)
	healthHandler := handlers.NewHealthHandler(deps.DB, rnd, logger)

	requireAuth := middlewares.RequireAuth(rnd, logger)
	requireStaff := middlewares.RequireStaff(rnd, logger)
	authed := func(h http.HandlerFunc) http.Handler { return requireAuth(h) }
	staff := func(h http.HandlerFunc) http.Handler { return requireStaff(h) }

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rnd.JSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rnd.JSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method \"" + r.Method + "\" not allowed."})
	})

	router.Use(
		middlewares.Recovery(rnd, logger),
		middlewares.RequestLogger(logger),
		middlewares.Authenticate(authService, deps.Sessions, rnd, logger),
	)
	if cfg.Auth.CSRFEnabled {
		router.Use(middlewares.CSRF(deps.CSRFKey, cfg.Auth.CookieSecure, deps.Sessions, rnd))
		router.HandleFunc("/auth/csrf", authHandler.CSRFToken).Methods(http.MethodGet)
	}

	router.HandleFunc("/healthz", healthHandler.Healthz).Methods(http.MethodGet)

	router.HandleFunc("/auth/users", authHandler.Register).Methods(http.MethodPost)
	router.Handle("/auth/users/me", authed(authHandler.Me)).Methods(http.MethodGet)
	router.HandleFunc("/auth/jwt/create", authHandler.Login).Methods(http.MethodPost)
	router.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	router.HandleFunc("/categories", categoryHandler.List).Methods(http.MethodGet)
	router.Handle("/categories", staff(categoryHandler.Create)).Methods(http.MethodPost)
	router.HandleFunc("/categories/"+idPattern, categoryHandler.Get).Methods(http.MethodGet)
	router.Handle("/categories/"+idPattern, staff(categoryHandler.Update)).Methods(http.MethodPut, http.MethodPatch)
	router.Handle("/categories/"+idPattern, staff(categoryHandler.Delete)).Methods(http.MethodDelete)

	router.HandleFunc("/promotions", promotionHandler.List).Methods(http.MethodGet)
	router.Handle("/promotions", staff(promotionHandler.Create)).Methods(http.MethodPost)
	router.HandleFunc("/promotions/"+idPattern, promotionHandler.Get).Methods(http.MethodGet)
	router.Handle("/promotions/"+idPattern, staff(promotionHandler.Update)).Methods(http.MethodPut, http.MethodPatch)
	router.Handle("/promotions/"+idPattern, staff(promotionHandler.Delete)).Methods(http.MethodDelete)

	router.HandleFunc("/products", productHandler.List).Methods(http.MethodGet)
	router.Handle("/products", staff(productHandler.Create)).Methods(http.MethodPost)
	router.HandleFunc("/products/"+idPattern, productHandler.Get).Methods(http.MethodGet)
	router.Handle("/products/"+idPattern, staff(productHandler.Update)).Methods(http.MethodPut, http.MethodPatch)
	// The protected product is refused before the privilege check, so no staff guard here.
	router.HandleFunc("/products/"+idPattern, productHandler.Delete).Methods(http.MethodDelete)

	images := "/products/{product_id:[0-9]+}/images"
	router.HandleFunc(images, imageHandler.List).Methods(http.MethodGet)
	router.Handle(images, staff(imageHandler.Upload)).Methods(http.MethodPost)
	router.HandleFunc(images+"/"+idPattern, imageHandler.Get).Methods(http.MethodGet)
	router.Handle(images+"/"+idPattern, staff(imageHandler.Delete)).Methods(http.MethodDelete)

	reviews := "/products/{product_id:[0-9]+}/reviews"
	router.HandleFunc(reviews, reviewHandler.List).Methods(http.MethodGet)
	router.HandleFunc(reviews, reviewHandler.Create).Methods(http.MethodPost)
	router.HandleFunc(reviews+"/"+idPattern, reviewHandler.Get).Methods(http.MethodGet)
	router.Handle(reviews+"/"+idPattern, staff(reviewHandler.Update)).Methods(http.MethodPut, http.MethodPatch)
	router.Handle(reviews+"/"+idPattern, staff(reviewHandler.Delete)).Methods(http.MethodDelete)

	router.HandleFunc("/carts", cartHandler.Create).Methods(http.MethodPost)
	router.HandleFunc("/carts/"+uuidPattern, cartHandler.Get).Methods(http.MethodGet)
	router.HandleFunc("/carts/"+uuidPattern, cartHandler.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/carts/"+uuidPattern+"/items", cartHandler.ListItems).Methods(http.MethodGet)
	router.HandleFunc("/carts/"+uuidPattern+"/items", cartHandler.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/carts/"+uuidPattern+"/items/{item_id:[0-9]+}", cartHandler.GetItem).Methods(http.MethodGet)
	router.HandleFunc("/carts/"+uuidPattern+"/items/{item_id:[0-9]+}", cartHandler.UpdateItem).Methods(http.MethodPatch)
	router.HandleFunc("/carts/"+uuidPattern+"/items/{item_id:[0-9]+}", cartHandler.RemoveItem).Methods(http.MethodDelete)

	router.Handle("/customers/me", authed(customerHandler.Me)).Methods(http.MethodGet)
	router.Handle("/customers/me", authed(customerHandler.UpdateMe)).Methods(http.MethodPut, http.MethodPatch)
	router.Handle("/customers/me/addresses", authed(customerHandler.Addresses)).Methods(http.MethodGet)
	router.Handle("/customers/me/addresses", authed(customerHandler.AddAddress)).Methods(http.MethodPost)
	router.Handle("/customers/me/addresses/"+idPattern, authed(customerHandler.DeleteAddress)).Methods(http.MethodDelete)
	router.Handle("/customers", staff(customerHandler.List)).Methods(http.MethodGet)
	router.Handle("/customers", staff(customerHandler.Create)).Methods(http.MethodPost)
	router.Handle("/customers/"+idPattern, staff(customerHandler.Get)).Methods(http.MethodGet)
	router.Handle("/customers/"+idPattern, staff(customerHandler.Update)).Methods(http.MethodPut, http.MethodPatch)
	router.Handle("/customers/"+idPattern, staff(customerHandler.Delete)).Methods(http.MethodDelete)

	router.Handle("/orders", authed(orderHandler.Place)).Methods(http.MethodPost)
	router.Handle("/orders", authed(orderHandler.List)).Methods(http.MethodGet)
	router.Handle("/orders/"+idPattern, authed(orderHandler.Get)).Methods(http.MethodGet)
	router.Handle("/orders/"+idPattern, staff(orderHandler.UpdateStatus)).Methods(http.MethodPatch)
	router.Handle("/orders/"+idPattern, staff(orderHandler.Delete)).Methods(http.MethodDelete)

	if deps.Gateway != nil {
		paymentService := services.NewPaymentService(orderRepo, customerRepo, deps.Gateway, cfg.App.URL, logger)
		paymentHandler := handlers.NewPaymentHandler(paymentService, rnd, logger)
		router.Handle("/orders/"+idPattern+"/payment", authed(paymentHandler.Initiate)).Methods(http.MethodPost)
		router.HandleFunc("/payments/notification", paymentHandler.Notification).Methods(http.MethodPost)
	}

	mediaPrefix := "/" + strings.Trim(cfg.Media.URL, "/") + "/"
	router.PathPrefix(mediaPrefix).Handler(http.StripPrefix(mediaPrefix, mediaFiles(cfg.Media.Root))).Methods(http.MethodGet, http.MethodHead)

	return router, nil
}

// mediaFiles serves uploaded files without directory listings.
func mediaFiles(root string) http.Handler {
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
