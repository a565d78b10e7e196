package controllers

import (
	"net/http"
	"strings"

	"github.com/bloomhaus/bloomhaus-backend/api/responses"
	"github.com/bloomhaus/bloomhaus-backend/api/validators"
	"github.com/bloomhaus/bloomhaus-backend/internal/products"
	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
	pkgerrors "github.com/bloomhaus/bloomhaus-backend/pkg/errors"
	"github.com/bloomhaus/bloomhaus-backend/pkg/logger"
)

type createProductRequest struct {
	Slug        string                  `json:"slug" validate:"required,max=160"`
	Name        string                  `json:"name" validate:"required,max=200"`
	Description *string                 `json:"description,omitempty" validate:"omitempty,max=2000"`
	PriceCents  int                     `json:"price_cents" validate:"required,gt=0"`
	Currency    string                  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Kind        string                  `json:"kind" validate:"required"`
	Active      *bool                   `json:"active,omitempty"`
	Attributes  *products.AttributesDTO `json:"attributes,omitempty"`
}

type updateProductRequest struct {
	Name        *string                 `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string                 `json:"description,omitempty" validate:"omitempty,max=2000"`
	PriceCents  *int                    `json:"price_cents,omitempty" validate:"omitempty,gt=0"`
	Active      *bool                   `json:"active,omitempty"`
	Attributes  *products.AttributesDTO `json:"attributes,omitempty"`
}

// AdminProductList returns the full catalog including inactive products.
func AdminProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind, err := products.KindFilter(r.URL.Query().Get("kind"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := products.ListFilters{
			Kind:            kind,
			Query:           validators.SanitizeString(r.URL.Query().Get("q"), 120),
			IncludeInactive: true,
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminProductCreate adds a catalog product with an empty global inventory row.
func AdminProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseProductKind(strings.TrimSpace(body.Kind))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product kind"))
			return
		}

		product, err := svc.Create(r.Context(), products.CreateProductInput{
			Slug:        body.Slug,
			Name:        body.Name,
			Description: body.Description,
			PriceCents:  body.PriceCents,
			Currency:    body.Currency,
			Kind:        kind,
			Active:      body.Active,
			Attributes:  body.Attributes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminProductUpdate patches product fields including activation.
func AdminProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), productID, products.UpdateProductInput{
			Name:        body.Name,
			Description: body.Description,
			PriceCents:  body.PriceCents,
			Active:      body.Active,
			Attributes:  body.Attributes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
