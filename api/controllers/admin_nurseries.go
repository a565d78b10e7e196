package controllers

import (
	"net/http"

	"github.com/bloomhaus/bloomhaus-backend/api/responses"
	"github.com/bloomhaus/bloomhaus-backend/api/validators"
	"github.com/bloomhaus/bloomhaus-backend/internal/nurseries"
	pkgerrors "github.com/bloomhaus/bloomhaus-backend/pkg/errors"
	"github.com/bloomhaus/bloomhaus-backend/pkg/logger"
)

type createNurseryRequest struct {
	InternalName string   `json:"internal_name" validate:"required,max=160"`
	City         string   `json:"city" validate:"required,max=120"`
	Commune      *string  `json:"commune,omitempty" validate:"omitempty,max=120"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

type updateNurseryRequest struct {
	InternalName *string  `json:"internal_name,omitempty" validate:"omitempty,max=160"`
	City         *string  `json:"city,omitempty" validate:"omitempty,max=120"`
	Commune      *string  `json:"commune,omitempty" validate:"omitempty,max=120"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

type upsertStockRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// AdminNurseryList returns a page of nurseries.
func AdminNurseryList(svc nurseries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "nursery service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminNurseryDetail returns one nursery with its stock lines.
func AdminNurseryDetail(svc nurseries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "nursery service unavailable"))
			return
		}

		nurseryID, err := validators.ParseIDParam(r, "nurseryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), nurseryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// AdminNurseryCreate registers a new nursery.
func AdminNurseryCreate(svc nurseries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "nursery service unavailable"))
			return
		}

		var body createNurseryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		nursery, err := svc.Create(r.Context(), nurseries.CreateNurseryInput{
			InternalName: body.InternalName,
			City:         body.City,
			Commune:      body.Commune,
			Latitude:     body.Latitude,
			Longitude:    body.Longitude,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, nursery)
	}
}

// AdminNurseryUpdate patches nursery fields.
func AdminNurseryUpdate(svc nurseries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "nursery service unavailable"))
			return
		}

		nurseryID, err := validators.ParseIDParam(r, "nurseryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateNurseryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		nursery, err := svc.Update(r.Context(), nurseryID, nurseries.UpdateNurseryInput{
			InternalName: body.InternalName,
			City:         body.City,
			Commune:      body.Commune,
			Latitude:     body.Latitude,
			Longitude:    body.Longitude,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nursery)
	}
}

// AdminNurseryDelete removes a nursery and recomputes affected global stock.
func AdminNurseryDelete(svc nurseries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "nursery service unavailable"))
			return
		}

		nurseryID, err := validators.ParseIDParam(r, "nurseryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), nurseryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminNurseryStock lists the nursery's per-product stock.
func AdminNurseryStock(svc nurseries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "nursery service unavailable"))
			return
		}

		nurseryID, err := validators.ParseIDParam(r, "nurseryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), nurseryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail.Inventory)
	}
}

// AdminNurseryUpsertStock sets the absolute quantity of one product at one nursery.
func AdminNurseryUpsertStock(svc nurseries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "nursery service unavailable"))
			return
		}

		nurseryID, err := validators.ParseIDParam(r, "nurseryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body upsertStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.UpsertStock(r.Context(), nurseries.UpsertStockInput{
			NurseryID: nurseryID,
			ProductID: productID,
			Quantity:  *body.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
