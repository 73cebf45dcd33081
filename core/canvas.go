package core

import "context"

type (
	// CanvasDocument is the whole persisted state of the widget canvas.
	// It is replaced wholesale on every save.
	CanvasDocument struct {
		Theme      string         `json:"theme"`
		Settings   CanvasSettings `json:"settings"`
		Widgets    []Widget       `json:"widgets"`
		CanvasSize CanvasSize     `json:"canvas_size"`
	}

	CanvasSettings struct {
		BackgroundColor string  `json:"background_color"`
		GridEnabled     bool    `json:"grid_enabled"`
		GridSize        int     `json:"grid_size"`
		SnapToGrid      bool    `json:"snap_to_grid"`
		ZoomLevel       float64 `json:"zoom_level"`

		// Set by the UI when a header image is shown. Carried through, never interpreted.
		HeaderImage     *string `json:"header_image,omitempty"`
		ShowHeaderImage *bool   `json:"show_header_image,omitempty"`
	}

	CanvasSize struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}

	// Widget is one positioned element on the canvas. WidgetType is an open tag.
	Widget struct {
		ID         string      `json:"id"`
		WidgetType string      `json:"widget_type"`
		Content    string      `json:"content"`
		Position   Position    `json:"position"`
		Size       Size        `json:"size"`
		Style      WidgetStyle `json:"style"`
		Created    string      `json:"created,omitempty"`
	}

	Position struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	Size struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	// WidgetStyle fields are all optional; unset fields are written as null.
	WidgetStyle struct {
		BackgroundColor *string  `json:"background_color"`
		BorderColor     *string  `json:"border_color"`
		TextColor       *string  `json:"text_color"`
		FontSize        *int     `json:"font_size"`
		FontFamily      *string  `json:"font_family"`
		Rotation        *float64 `json:"rotation"`
		Opacity         *float64 `json:"opacity"`
	}

	// CanvasStore persists the single canvas document.
	CanvasStore interface {
		// SaveCanvas overwrites the stored document.
		SaveCanvas(ctx context.Context, doc *CanvasDocument) error

		// LoadCanvas returns the stored document, or DefaultDocument when nothing
		// has been saved yet.
		LoadCanvas(ctx context.Context) (*CanvasDocument, error)
	}

	// HeaderImageStore persists the single header image.
	HeaderImageStore interface {
		// SaveHeaderImage decodes a "<prefix>,<base64>" data URL and stores the bytes.
		// The MIME type in the prefix is discarded.
		SaveHeaderImage(ctx context.Context, dataURL string) error

		// LoadHeaderImage returns the stored bytes as a PNG data URL. ok is false
		// when no image has been stored.
		LoadHeaderImage(ctx context.Context) (dataURL string, ok bool, err error)

		// DeleteHeaderImage removes the stored image. Deleting nothing succeeds.
		DeleteHeaderImage(ctx context.Context) error
	}
)

// DefaultDocument is what LoadCanvas returns before the first save.
func DefaultDocument() *CanvasDocument {
	return &CanvasDocument{
		Theme: "light",
		Settings: CanvasSettings{
			BackgroundColor: "#ffffff",
			GridEnabled:     true,
			GridSize:        20,
			SnapToGrid:      false,
			ZoomLevel:       1.0,
		},
		Widgets: []Widget{},
		CanvasSize: CanvasSize{
			Width:  1920,
			Height: 1080,
		},
	}
}
