package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verakoster/atelier-backend/api/controllers"
	webhookcontrollers "github.com/verakoster/atelier-backend/api/controllers/webhooks"
	"github.com/verakoster/atelier-backend/api/middleware"
	"github.com/verakoster/atelier-backend/internal/notifications"
	"github.com/verakoster/atelier-backend/internal/orders"
	"github.com/verakoster/atelier-backend/internal/reconcile"
	stripewebhook "github.com/verakoster/atelier-backend/internal/webhooks/stripe"
	"github.com/verakoster/atelier-backend/pkg/config"
	"github.com/verakoster/atelier-backend/pkg/logger"
	"github.com/verakoster/atelier-backend/pkg/redis"
	stripeclient "github.com/verakoster/atelier-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient *redis.Client,
	reconcileService reconcile.Service,
	ordersRepo orders.Repository,
	notificationsService notifications.Service,
	stripeClient *stripeclient.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
	metricsRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, redisClient))
	})

	if metricsRegistry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/payments/verify", controllers.VerifyPayment(reconcileService, logg))

		r.Post("/orders/{orderId}/ship", controllers.MarkOrderShipped(ordersRepo, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
