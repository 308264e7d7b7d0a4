package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gopinathcollection/order-coupon-service/internal/api/handlers"
	"github.com/gopinathcollection/order-coupon-service/internal/cache"
	"github.com/gopinathcollection/order-coupon-service/internal/repository"
	"github.com/gopinathcollection/order-coupon-service/internal/service"
)

const couponCacheTTL = 30 * time.Second

// NewRouter wires repos, services and handlers onto the HTTP router.
func NewRouter(db *sql.DB, shipping service.ShippingConfig) http.Handler {
	couponRepo := repository.NewCouponRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	redemptionRepo := repository.NewRedemptionRepo(db)
	txRunner := repository.NewTxRunner(db)

	couponCache := cache.NewCouponCache(couponCacheTTL)
	couponSvc := service.NewCouponService(couponRepo, redemptionRepo, couponCache)
	checkoutSvc := service.NewCheckoutService(txRunner, couponRepo, orderRepo, redemptionRepo, shipping)
	orderSvc := service.NewOrderService(orderRepo)

	couponHandler := handlers.NewCouponHandler(couponSvc)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutSvc)
	orderHandler := handlers.NewOrderHandler(orderSvc)

	r := chi.NewRouter()

	// Storefront endpoints
	r.Route("/coupons", func(r chi.Router) {
		r.Post("/validate", couponHandler.ValidateCoupon)
		r.Get("/applicable", couponHandler.ApplicableCoupons)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/quote", checkoutHandler.Quote)
		r.Post("/orders", checkoutHandler.PlaceOrder)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/{id}", orderHandler.GetOrder)
		r.Get("/{id}/tax-breakdown", orderHandler.TaxBreakdown)
		r.Post("/{id}/cancel-request", orderHandler.RequestCancel)
		r.Post("/{id}/return-request", orderHandler.RequestReturn)
	})

	// Admin console endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Route("/coupons", func(r chi.Router) {
			r.Post("/", couponHandler.CreateCoupon)
			r.Get("/", couponHandler.ListCoupons)
			r.Get("/{id}", couponHandler.GetCoupon)
			r.Put("/{id}", couponHandler.UpdateCoupon)
			r.Delete("/{id}", couponHandler.DeleteCoupon)
			r.Get("/{id}/redemptions", couponHandler.ListRedemptions)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.ListOrders)
			r.Put("/{id}/status", orderHandler.SetStatus)
			r.Post("/{id}/approve", orderHandler.ApproveRequest)
			r.Put("/{id}/logistics", orderHandler.SetLogistics)
			r.Post("/{id}/invoice", orderHandler.MarkInvoiced)
			r.Put("/{id}/payment", orderHandler.RecordPayment)
		})
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
