package routes

import (
	"net/http"

	"tiffin/auth"
	"tiffin/cart"
	"tiffin/chat"
	"tiffin/checkout"
	"tiffin/favorites"
	"tiffin/menus"
	"tiffin/middleware"
	"tiffin/payments"
	"tiffin/profile"
	"tiffin/ratelim"

	"github.com/julienschmidt/httprouter"
)

// RoutesWrapper mounts every route group on the router.
func RoutesWrapper(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, hub *chat.Hub) {
	AddAuthRoutes(router, rateLimiter)
	AddProfileRoutes(router, rateLimiter)
	AddMenuRoutes(router, rateLimiter)
	AddFavoriteRoutes(router, rateLimiter)
	AddCartRoutes(router, rateLimiter)
	AddCheckoutRoutes(router, rateLimiter)
	AddPaymentRoutes(router, rateLimiter)
	AddChatRoutes(router, rateLimiter, hub)
	AddStaticRoutes(router)
}

func AddAuthRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/v1/auth/register", rateLimiter.Limit(auth.Register))
	router.POST("/api/v1/auth/login", rateLimiter.Limit(auth.Login))
	router.POST("/api/v1/auth/logout", middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(auth.LogoutUser))
	router.POST("/api/v1/auth/token/refresh", rateLimiter.Limit(auth.RefreshToken))
	router.POST("/api/v1/auth/request-reset", rateLimiter.Limit(auth.RequestPasswordReset))
	router.POST("/api/v1/auth/reset-password", rateLimiter.Limit(auth.ResetPassword))
}

func AddProfileRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/v1/profile",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(profile.GetProfile))
	router.PUT("/api/v1/profile",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(profile.UpdateProfile))
	router.GET("/api/v1/users/:userid", rateLimiter.Limit(profile.GetPublicProfile))
	router.POST("/api/v1/profile/push-token",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(profile.RegisterPushToken))
}

func AddMenuRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/v1/menus", rateLimiter.Limit(menus.GetMenus))
	router.GET("/api/v1/menus/:menuid", rateLimiter.Limit(menus.GetMenu))

	chefOnly := middleware.Chain(rateLimiter.Limit, middleware.Authenticate, middleware.RequireRoles("chef"))
	router.POST("/api/v1/menus", chefOnly(menus.CreateMenu))
	router.PUT("/api/v1/menus/:menuid", chefOnly(menus.EditMenu))
	router.DELETE("/api/v1/menus/:menuid", chefOnly(menus.DeleteMenu))
	router.POST("/api/v1/menus/:menuid/photos", chefOnly(menus.UploadMenuPhoto))

	router.GET("/api/v1/pending-menus", chefOnly(menus.GetPendingMenus))
	router.POST("/api/v1/pending-menus/:menuid/approve", chefOnly(menus.ApproveMenu))
	router.POST("/api/v1/pending-menus/:menuid/reject", chefOnly(menus.RejectMenu))
}

func AddFavoriteRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	authed := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)
	router.GET("/api/v1/favorites", authed(favorites.GetFavorites))
	router.POST("/api/v1/favorites/:menuid", authed(favorites.AddFavorite))
	router.DELETE("/api/v1/favorites/:menuid", authed(favorites.RemoveFavorite))
}

func AddCartRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	studentOnly := middleware.Chain(rateLimiter.Limit, middleware.Authenticate, middleware.RequireRoles("student"))
	router.GET("/api/v1/cart", studentOnly(cart.GetCart))
	router.POST("/api/v1/cart", studentOnly(cart.AddToCart))
	router.PUT("/api/v1/cart/:menuid/:plan", studentOnly(cart.UpdateCartItem))
	router.DELETE("/api/v1/cart/:menuid/:plan", studentOnly(cart.RemoveFromCart))
}

func AddCheckoutRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	handler := checkout.NewHandler(checkout.NewManager())
	studentOnly := middleware.Chain(rateLimiter.Limit, middleware.Authenticate, middleware.RequireRoles("student"))
	authed := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.POST("/api/v1/checkout", studentOnly(handler.InitiateCheckout))
	router.POST("/api/v1/checkout/failure", studentOnly(handler.RecordPaymentFailure))
	router.POST("/api/v1/checkout/confirm", studentOnly(handler.ConfirmOrder))

	router.GET("/api/v1/orders", authed(checkout.GetOrders))
	router.GET("/api/v1/orders/:orderid", authed(checkout.GetOrder))
	router.GET("/api/v1/orders/:orderid/receipt", authed(checkout.PrintReceipt))
	router.POST("/api/v1/orders/:orderid/review", studentOnly(handler.SubmitReview))
	router.POST("/api/v1/orders/:orderid/skip-review", studentOnly(handler.SkipReview))
}

func AddPaymentRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	payService := payments.NewPaymentService()
	authed := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.POST("/api/v1/payments/create-payment-intent", authed(payService.CreatePaymentIntent))
	router.POST("/api/v1/payments/checkout", authed(payService.Checkout))
	router.POST("/api/v1/payments/payment-sheet", authed(payService.PaymentSheet))
	router.GET("/api/v1/payments/transactions", authed(payService.GetTransactions))
}

func AddChatRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, hub *chat.Hub) {
	authed := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.POST("/api/v1/chats", authed(chat.StartConversation))
	router.GET("/api/v1/chats", authed(chat.ListConversations))
	router.GET("/api/v1/chats/:room/messages", authed(chat.GetMessages))
	router.POST("/api/v1/chats/:room/messages", authed(chat.SendMessage(hub)))
	router.DELETE("/api/v1/chats/:room/messages/:messageid", authed(chat.DeleteMessage(hub)))

	router.GET("/ws/chat/:room", middleware.Authenticate(chat.WebSocketHandler(hub)))
}

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/*filepath", http.Dir("static"))
}
