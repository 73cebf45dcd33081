package canvas

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"widget-canvas/core"
	"widget-canvas/handlers/api"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// Widget size assumed by next-position when the query omits it.
const defaultWidgetSize = 4

func HandleGetCanvas(store core.CanvasStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := store.LoadCanvas(r.Context())
		if err != nil {
			logrus.WithError(err).Error("Failed to load canvas")
			api.RenderStoreError(w, r, err)
			return
		}

		render.JSON(w, r, doc)
	}
}

func HandleSaveCanvas(store core.CanvasStore, notifier core.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := api.ReadBody(w, r)
		if !ok {
			return
		}

		doc, err := core.DecodeCanvas(body)
		if err != nil {
			logrus.WithError(err).Warn("Rejected canvas payload")
			api.RenderError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		if err := store.SaveCanvas(r.Context(), doc); err != nil {
			logrus.WithFields(logrus.Fields{
				"error":   err,
				"widgets": len(doc.Widgets),
			}).Error("Failed to save canvas")
			api.RenderStoreError(w, r, err)
			return
		}

		core.Notify(notifier, core.EventCanvasChanged)
		render.NoContent(w, r)
	}
}

// HandleNextPosition suggests a grid position for a new widget of the queried size.
func HandleNextPosition(store core.CanvasStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		width, err := sizeParam(r, "width", core.GridColumns)
		if err != nil {
			api.RenderError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		height, err := sizeParam(r, "height", math.MaxFloat64)
		if err != nil {
			api.RenderError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		doc, err := store.LoadCanvas(r.Context())
		if err != nil {
			logrus.WithError(err).Error("Failed to load canvas")
			api.RenderStoreError(w, r, err)
			return
		}

		showHeader := doc.Settings.ShowHeaderImage != nil && *doc.Settings.ShowHeaderImage
		render.JSON(w, r, core.NextPosition(doc.Widgets, showHeader, width, height))
	}
}

func sizeParam(r *http.Request, name string, limit float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultWidgetSize, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v <= 0 || v > limit {
		return 0, fmt.Errorf("Invalid %s: %q", name, raw)
	}
	return v, nil
}
