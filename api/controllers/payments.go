package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/verakoster/atelier-backend/api/responses"
	"github.com/verakoster/atelier-backend/api/validators"
	"github.com/verakoster/atelier-backend/internal/reconcile"
	pkgerrors "github.com/verakoster/atelier-backend/pkg/errors"
	"github.com/verakoster/atelier-backend/pkg/logger"
)

type reconcileService interface {
	Reconcile(ctx context.Context, orderID uuid.UUID, sessionRef string) (*reconcile.Result, error)
}

type verifyPaymentRequest struct {
	OrderID    string `json:"order_id" validate:"required,uuid"`
	SessionRef string `json:"session_ref,omitempty"`
}

type verifyPaymentResponse struct {
	Paid   bool   `json:"paid"`
	Status string `json:"status"`
}

// VerifyPayment is the client-initiated re-check: the buyer returned from the
// gateway (or is polling) and wants the order reconciled now.
func VerifyPayment(svc reconcileService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconcile service unavailable"))
			return
		}

		var req verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		result, err := svc.Reconcile(ctx, orderID, req.SessionRef)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, verifyPaymentResponse{
			Paid:   result.Paid,
			Status: string(result.Status),
		})
	}
}
