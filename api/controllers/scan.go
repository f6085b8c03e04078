package controllers

import (
	"net/http"

	"github.com/shelflife/shelflife-backend/api/responses"
	"github.com/shelflife/shelflife-backend/api/validators"
	"github.com/shelflife/shelflife-backend/internal/scan"
	"github.com/shelflife/shelflife-backend/pkg/logger"
)

type scanRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
}

// ShopkeeperScan turns a label photo into a prefilled batch draft.
func ShopkeeperScan(svc scan.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "scan")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var payload scanRequest
		if err := validators.DecodeJSONBody(r, &payload, validators.WithMaxBytes(scan.MaxImageBytes*2)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Scan(r.Context(), actor, payload.ImageBase64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
