package headerimage

import (
	"encoding/json"
	"net/http"

	"widget-canvas/core"
	"widget-canvas/handlers/api"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	SaveRequest struct {
		ImageData string `json:"imageData"`
	}

	// Response carries a nil ImageData when no header image is stored.
	Response struct {
		ImageData *string `json:"imageData"`
	}
)

func HandleGet(store core.HeaderImageStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dataURL, ok, err := store.LoadHeaderImage(r.Context())
		if err != nil {
			logrus.WithError(err).Error("Failed to load header image")
			api.RenderStoreError(w, r, err)
			return
		}

		resp := Response{}
		if ok {
			resp.ImageData = &dataURL
		}
		render.JSON(w, r, resp)
	}
}

func HandleSave(store core.HeaderImageStore, notifier core.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := api.ReadBody(w, r)
		if !ok {
			return
		}

		var req SaveRequest
		if err := json.Unmarshal(body, &req); err != nil {
			logrus.WithError(err).Warn("Rejected header image request")
			api.RenderError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := store.SaveHeaderImage(r.Context(), req.ImageData); err != nil {
			logrus.WithFields(logrus.Fields{
				"error":       err,
				"data_length": len(req.ImageData),
			}).Warn("Failed to save header image")
			api.RenderStoreError(w, r, err)
			return
		}

		core.Notify(notifier, core.EventHeaderImageChanged)
		render.NoContent(w, r)
	}
}

func HandleDelete(store core.HeaderImageStore, notifier core.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteHeaderImage(r.Context()); err != nil {
			logrus.WithError(err).Error("Failed to delete header image")
			api.RenderStoreError(w, r, err)
			return
		}

		core.Notify(notifier, core.EventHeaderImageChanged)
		render.NoContent(w, r)
	}
}
