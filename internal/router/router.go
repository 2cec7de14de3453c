package router

import (
	"net/http"

	"leisuretimez/config"
	"leisuretimez/internal/handler"
	"leisuretimez/internal/middleware"
	"leisuretimez/internal/repository"
	"leisuretimez/internal/service"
	"leisuretimez/internal/ws"
	"leisuretimez/pkg/cache"
	"leisuretimez/pkg/cloudinary"
	"leisuretimez/pkg/mailer"
	"leisuretimez/pkg/payment"
	"leisuretimez/pkg/pdfshift"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the outside systems the API talks to. Images may be nil when Cloudinary is
// not configured.
type Deps struct {
	Counter cache.Counter
	Gateway payment.Gateway
	Mailer  mailer.Sender
	PDF     pdfshift.Renderer
	Images  cloudinary.Client
	Hub     *ws.Hub
}

func Setup(cfg *config.Config, db *gorm.DB, d Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.OptionalAuth(&cfg.JWT))
	r.Use(middleware.Throttle(d.Counter, cfg.Throttle.AnonPerMinute, cfg.Throttle.UserPerMinute))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	savedRepo := repository.NewSavedPackageRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	personalisedRepo := repository.NewPersonalisedBookingRepository(db)
	contactRepo := repository.NewContactRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	promoRepo := repository.NewPromoRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	supportRepo := repository.NewSupportRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	eventRepo := repository.NewStripeEventRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Services
	var push service.Pusher
	if d.Hub != nil {
		push = d.Hub
	}
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, push)
	mailSvc := service.NewMailService(cfg, d.Mailer)
	walletSvc := service.NewWalletService(cfg, db, walletRepo, txnRepo, d.Gateway)
	authSvc := service.NewAuthService(cfg, db, userRepo, profileRepo, auditRepo, walletSvc, mailSvc, d.Counter)
	invoiceSvc := service.NewInvoiceService(cfg, db, invoiceRepo, bookingRepo, packageRepo, notifSvc, mailSvc, d.PDF)
	bookingSvc := service.NewBookingService(cfg, db, bookingRepo, packageRepo, promoRepo, txnRepo, walletSvc, invoiceSvc, notifSvc, d.Gateway)
	webhookSvc := service.NewWebhookService(eventRepo, txnRepo, walletRepo, walletSvc, bookingRepo, bookingSvc, d.Gateway)
	catalogSvc := service.NewCatalogService(packageRepo, savedRepo, catalogRepo)
	profileSvc := service.NewProfileService(profileRepo, bookingRepo, d.Images)
	reviewSvc := service.NewReviewService(reviewRepo, packageRepo, bookingRepo)
	supportSvc := service.NewSupportService(supportRepo)
	contactSvc := service.NewContactService(contactRepo, mailSvc)
	blogSvc := service.NewBlogService(blogRepo, notifSvc, d.Images)
	adminSvc := service.NewAdminService(adminRepo, promoRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, authSvc)
	invoiceHandler := handler.NewInvoiceHandler(invoiceSvc)
	walletHandler := handler.NewWalletHandler(walletSvc, authSvc)
	paymentWebhookHandler := handler.NewPaymentWebhookHandler(webhookSvc)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	reviewHandler := handler.NewReviewHandler(reviewSvc)
	supportHandler := handler.NewSupportHandler(supportSvc, contactSvc)
	blogHandler := handler.NewBlogHandler(blogSvc, authSvc)
	personalisedHandler := handler.NewPersonalisedHandler(service.NewPersonalisedService(personalisedRepo))
	cruiseHandler := handler.NewPersonalisedHandler(service.NewCruiseService(personalisedRepo))
	adminHandler := handler.NewAdminHandler(adminSvc, bookingSvc, authSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	staffMw := middleware.StaffRequired()

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/invoice/:invoice_id/print", invoiceHandler.Print)
	r.POST("/paynotifier", paymentWebhookHandler.Handle)
	if d.Hub != nil {
		r.GET("/ws/notifications", ws.UpgradeNotificationsWS(&cfg.JWT, d.Hub))
	}

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authMw, authHandler.Logout)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}
		api.GET("/activate/:uid/:token", authHandler.Activate)
		api.POST("/change-password", authMw, authHandler.ChangePassword)
		api.POST("/reset-password", authHandler.ResetPassword)
		api.POST("/resend-activation-email", authHandler.ResendActivation)
		api.POST("/reset-password-confirm/:uid/:token", authHandler.ResetPasswordConfirm)
		api.POST("/delete-account", authMw, authHandler.DeleteAccount)

		// Catalog
		api.GET("/index", catalogHandler.Index)
		api.GET("/packages", catalogHandler.Packages)
		api.GET("/packages/:pid", catalogHandler.Package)
		api.POST("/packages/save/:pid", authMw, catalogHandler.Save)
		api.POST("/packages/unsave/:pid", authMw, catalogHandler.Unsave)
		api.GET("/saved-packages", authMw, catalogHandler.Saved)
		api.GET("/search-locations", catalogHandler.SearchLocations)
		api.GET("/search-countries-locations", catalogHandler.SearchCountryLocations)
		api.GET("/events", catalogHandler.Events)
		api.GET("/events/:id", catalogHandler.Event)
		api.GET("/destinations", catalogHandler.Destinations)
		api.GET("/carousel", catalogHandler.Carousel)
		api.GET("/check-offer/:pid", bookingHandler.CheckOffer)

		// Reviews
		api.GET("/packages/:pid/reviews", reviewHandler.List)
		api.POST("/packages/:pid/reviews", authMw, reviewHandler.Create)
		api.PUT("/reviews/:id", authMw, reviewHandler.Update)
		api.DELETE("/reviews/:id", authMw, reviewHandler.Delete)

		// Profile
		me := api.Group("")
		me.Use(authMw)
		{
			me.GET("/profile", profileHandler.Get)
			me.PUT("/profile", profileHandler.Update)
			me.PATCH("/profile", profileHandler.Update)
			me.POST("/profile/image", profileHandler.UploadImage)
			me.POST("/update_display_picture", profileHandler.UploadImage)
			me.GET("/personal-booking", profileHandler.PersonalBooking)
			me.GET("/booking-history", profileHandler.BookingHistory)
			me.GET("/account-settings", profileHandler.AccountSettings)
		}

		// Bookings and payments
		bk := api.Group("")
		bk.Use(authMw)
		{
			bk.POST("/book-package/:pid", bookingHandler.BookPackage)
			bk.POST("/bookings", bookingHandler.BookPackage)
			bk.GET("/bookings", bookingHandler.List)
			bk.GET("/bookings/:booking_id", bookingHandler.Get)
			bk.GET("/bookings/complete/:booking_id", bookingHandler.Complete)
			bk.POST("/bookings/:booking_id/cancel", bookingHandler.Cancel)
			bk.POST("/bookings/:booking_id/modify", bookingHandler.Modify)
			bk.POST("/bookings/:booking_id/apply-promo", bookingHandler.ApplyPromo)
			bk.POST("/bookings/:booking_id/remove-promo", bookingHandler.RemovePromo)
			bk.GET("/booking-payment/:booking_id/:mode", bookingHandler.Pay)
			bk.POST("/booking-confirm", bookingHandler.Confirm)

			bk.GET("/preview-invoice/:inv", invoiceHandler.Preview)
			bk.POST("/make-payment/:inv", invoiceHandler.MakePayment)
			bk.GET("/invoices/:invoice_id/download", invoiceHandler.Download)
		}

		// Wallet
		wl := api.Group("")
		wl.Use(authMw)
		{
			wl.GET("/wallets", walletHandler.Get)
			wl.POST("/wallets", walletHandler.Create)
			wl.POST("/wallets/deposit", walletHandler.Deposit)
			wl.POST("/wallets/:id/withdraw", walletHandler.Withdraw)
			wl.POST("/wallets/:id/transfer", walletHandler.Transfer)
			wl.GET("/wallets/:id/transactions", walletHandler.Transactions)
			wl.GET("/transactions", walletHandler.History)
			wl.GET("/transactions/wallettransactions", walletHandler.AllTransactions)
			wl.GET("/verify-payment/:session_id", walletHandler.VerifyPayment)
		}
		api.POST("/paynotifier", paymentWebhookHandler.Handle)

		notifications := api.Group("/notifications")
		notifications.Use(authMw)
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread_count", notificationHandler.UnreadCount)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/mark-all-read", notificationHandler.MarkAllRead)
		}

		support := api.Group("/support")
		support.Use(authMw)
		{
			support.GET("", supportHandler.List)
			support.POST("", supportHandler.Create)
			support.GET("/:id", supportHandler.Get)
			support.POST("/:id/reply", supportHandler.Reply)
			support.POST("/:id/close", supportHandler.Close)
		}
		api.POST("/contact", supportHandler.Contact)

		blog := api.Group("/blog")
		{
			blog.GET("", blogHandler.List)
			blog.GET("/:slug", blogHandler.Get)
			blog.GET("/:slug/comments", blogHandler.Comments)
			blog.GET("/:slug/reactions", blogHandler.Reactions)
			blog.POST("/:slug/comments", authMw, blogHandler.AddComment)
			blog.POST("/:slug/react", authMw, blogHandler.React)
			blog.PUT("/comments/:id", authMw, blogHandler.UpdateComment)
			blog.DELETE("/comments/:id", authMw, blogHandler.DeleteComment)
			blog.POST("", authMw, staffMw, blogHandler.Create)
			blog.POST("/upload-cover", authMw, staffMw, blogHandler.UploadCover)
			blog.PUT("/:slug", authMw, staffMw, blogHandler.Update)
			blog.PATCH("/:slug", authMw, staffMw, blogHandler.Update)
			blog.DELETE("/:slug", authMw, staffMw, blogHandler.Delete)
		}

		for path, h := range map[string]*handler.PersonalisedHandler{
			"/personalised-bookings": personalisedHandler,
			"/cruise-bookings":       cruiseHandler,
		} {
			g := api.Group(path)
			g.Use(authMw)
			g.GET("", h.List)
			g.POST("", h.Create)
			g.GET("/:id", h.Get)
			g.PUT("/:id", h.Update)
			g.PATCH("/:id", h.Update)
			g.DELETE("/:id", h.Delete)
		}

		api.POST("/admin/login", adminHandler.AdminLogin)
		admin := api.Group("/admin")
		admin.Use(authMw, staffMw)
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/bookings", adminHandler.Bookings)
			admin.GET("/users", adminHandler.Users)
			admin.GET("/promo-codes", adminHandler.Promos)
			admin.POST("/promo-codes", adminHandler.CreatePromo)
		}
	}

	return r
}
