package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/verakoster/atelier-backend/api/responses"
	"github.com/verakoster/atelier-backend/api/validators"
	"github.com/verakoster/atelier-backend/pkg/db/models"
	"github.com/verakoster/atelier-backend/pkg/enums"
	pkgerrors "github.com/verakoster/atelier-backend/pkg/errors"
	"github.com/verakoster/atelier-backend/pkg/logger"
)

type ordersLedger interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateShipment(ctx context.Context, orderID uuid.UUID, carrier, trackingCode string) (bool, error)
}

type markShippedRequest struct {
	Carrier      string `json:"carrier" validate:"required,min=2,max=64"`
	TrackingCode string `json:"tracking_code" validate:"required,min=4,max=128"`
}

type markShippedResponse struct {
	OrderID      string     `json:"order_id"`
	Status       string     `json:"status"`
	Carrier      string     `json:"carrier"`
	TrackingCode string     `json:"tracking_code"`
	Deadline     *time.Time `json:"shipping_deadline,omitempty"`
}

// MarkOrderShipped records carrier and tracking details on a paid order. Only
// the order's seller may call it, and only while the order is paid.
func MarkOrderShipped(repo ordersLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if repo == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		actor, err := recipientID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var req markShippedRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if order.SellerID != actor {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can mark an order shipped"))
			return
		}

		applied, err := repo.UpdateShipment(ctx, orderID, req.Carrier, req.TrackingCode)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !applied {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting shipment"))
			return
		}

		responses.WriteSuccess(w, markShippedResponse{
			OrderID:      orderID.String(),
			Status:       string(enums.OrderStatusShipped),
			Carrier:      req.Carrier,
			TrackingCode: req.TrackingCode,
			Deadline:     order.ShippingDeadline,
		})
	}
}
