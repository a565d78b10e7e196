package controllers

import (
	"net/http"

	"github.com/bloomhaus/bloomhaus-backend/api/middleware"
	"github.com/bloomhaus/bloomhaus-backend/api/responses"
	"github.com/bloomhaus/bloomhaus-backend/api/validators"
	"github.com/bloomhaus/bloomhaus-backend/internal/orders"
	pkgerrors "github.com/bloomhaus/bloomhaus-backend/pkg/errors"
	"github.com/bloomhaus/bloomhaus-backend/pkg/logger"
)

type createOrderRequest struct {
	Items   []createOrderItemRequest  `json:"items" validate:"required,min=1,dive"`
	Address createOrderAddressRequest `json:"address" validate:"required"`
}

type createOrderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type createOrderAddressRequest struct {
	FullName      string  `json:"full_name" validate:"required,max=160"`
	StreetAddress string  `json:"street_address" validate:"required,max=240"`
	City          string  `json:"city" validate:"required,max=120"`
	Commune       *string `json:"commune,omitempty" validate:"omitempty,max=120"`
	State         *string `json:"state,omitempty" validate:"omitempty,max=120"`
	PostalCode    string  `json:"postal_code" validate:"required,max=24"`
	Country       string  `json:"country" validate:"required,max=80"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=40"`
}

// OrderCreate places a new order for the authenticated customer.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orders.CreateOrderItemInput, 0, len(body.Items))
		for _, item := range body.Items {
			items = append(items, orders.CreateOrderItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		order, err := svc.Create(r.Context(), orders.CreateOrderInput{
			UserID: userID,
			Items:  items,
			Address: orders.AddressInput{
				FullName:      body.Address.FullName,
				StreetAddress: body.Address.StreetAddress,
				City:          body.Address.City,
				Commune:       body.Address.Commune,
				State:         body.Address.State,
				PostalCode:    body.Address.PostalCode,
				Country:       body.Address.Country,
				Phone:         body.Address.Phone,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderListMine returns the authenticated customer's order history.
func OrderListMine(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMine(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrderDetailMine returns one of the customer's own orders.
func OrderDetailMine(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetMine(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
