// Package commands serves the invoke-style endpoint the canvas UI calls by
// command name, with arguments passed as a JSON object keyed by camelCase name.
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"widget-canvas/core"
	"widget-canvas/handlers/api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// Store is what the commands need from a backend.
type Store interface {
	core.CanvasStore
	core.HeaderImageStore
}

type (
	args    map[string]json.RawMessage
	command func(ctx context.Context, a args) (any, error)
)

// badArgsError marks a request whose arguments could not be decoded.
type badArgsError struct {
	msg string
}

func (e *badArgsError) Error() string { return e.msg }

func invalidArgs(cmd, key string, err error) error {
	return &badArgsError{msg: fmt.Sprintf("invalid args `%s` for command `%s`: %v", key, cmd, err)}
}

func (a args) required(cmd, key string) (json.RawMessage, error) {
	raw, ok := a[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, invalidArgs(cmd, key, fmt.Errorf("command %s missing required key %s", cmd, key))
	}
	return raw, nil
}

func registry(store Store, notifier core.Notifier) map[string]command {
	return map[string]command{
		"save_canvas_state": func(ctx context.Context, a args) (any, error) {
			raw, err := a.required("save_canvas_state", "canvasData")
			if err != nil {
				return nil, err
			}
			doc, err := core.DecodeCanvas(raw)
			if err != nil {
				return nil, invalidArgs("save_canvas_state", "canvasData", err)
			}
			if err := store.SaveCanvas(ctx, doc); err != nil {
				return nil, err
			}
			core.Notify(notifier, core.EventCanvasChanged)
			return nil, nil
		},
		"load_canvas_state": func(ctx context.Context, _ args) (any, error) {
			return store.LoadCanvas(ctx)
		},
		"save_header_image": func(ctx context.Context, a args) (any, error) {
			raw, err := a.required("save_header_image", "imageData")
			if err != nil {
				return nil, err
			}
			var dataURL string
			if err := json.Unmarshal(raw, &dataURL); err != nil {
				return nil, invalidArgs("save_header_image", "imageData", err)
			}
			if err := store.SaveHeaderImage(ctx, dataURL); err != nil {
				return nil, err
			}
			core.Notify(notifier, core.EventHeaderImageChanged)
			return nil, nil
		},
		"load_header_image": func(ctx context.Context, _ args) (any, error) {
			dataURL, ok, err := store.LoadHeaderImage(ctx)
			if err != nil || !ok {
				return nil, err
			}
			return dataURL, nil
		},
		"delete_header_image": func(ctx context.Context, _ args) (any, error) {
			if err := store.DeleteHeaderImage(ctx); err != nil {
				return nil, err
			}
			core.Notify(notifier, core.EventHeaderImageChanged)
			return nil, nil
		},
	}
}

// HandleInvoke runs the command named in the URL. A unit result is rendered as null.
func HandleInvoke(store Store, notifier core.Notifier) http.HandlerFunc {
	commands := registry(store, notifier)

	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "command")
		log := logrus.WithField("command", name)

		cmd, ok := commands[name]
		if !ok {
			log.Warn("Unknown command")
			api.RenderError(w, r, http.StatusNotFound, fmt.Sprintf("command %s not found", name))
			return
		}

		body, ok := api.ReadBody(w, r)
		if !ok {
			return
		}

		a := args{}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &a); err != nil {
				log.WithError(err).Warn("Rejected command arguments")
				api.RenderError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid args for command `%s`: %v", name, err))
				return
			}
		}

		result, err := cmd(r.Context(), a)
		if err != nil {
			var badArgs *badArgsError
			if errors.As(err, &badArgs) {
				log.WithError(err).Warn("Rejected command arguments")
				api.RenderError(w, r, http.StatusBadRequest, err.Error())
				return
			}
			log.WithError(err).Error("Command failed")
			api.RenderStoreError(w, r, err)
			return
		}

		log.Debug("Command completed")
		render.JSON(w, r, result)
	}
}
