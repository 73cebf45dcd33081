package core

import (
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Absolute so validation messages do not carry the working directory.
const canvasSchemaURL = "https://widget-canvas.local/canvas_state.schema.json"

const canvasSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["theme", "settings", "widgets", "canvas_size"],
	"properties": {
		"theme": {"type": "string"},
		"settings": {
			"type": "object",
			"required": ["background_color", "grid_enabled", "grid_size", "snap_to_grid", "zoom_level"],
			"properties": {
				"background_color": {"type": "string"},
				"grid_enabled": {"type": "boolean"},
				"grid_size": {"type": "integer"},
				"snap_to_grid": {"type": "boolean"},
				"zoom_level": {"type": "number"},
				"header_image": {"type": ["string", "null"]},
				"show_header_image": {"type": ["boolean", "null"]}
			}
		},
		"widgets": {
			"type": "array",
			"items": {"$ref": "#/definitions/widget"}
		},
		"canvas_size": {
			"type": "object",
			"required": ["width", "height"],
			"properties": {
				"width": {"type": "integer"},
				"height": {"type": "integer"}
			}
		}
	},
	"definitions": {
		"widget": {
			"type": "object",
			"required": ["id", "widget_type", "content", "position", "size", "style"],
			"properties": {
				"id": {"type": "string"},
				"widget_type": {"type": "string"},
				"content": {"type": "string"},
				"position": {
					"type": "object",
					"required": ["x", "y"],
					"properties": {"x": {"type": "number"}, "y": {"type": "number"}}
				},
				"size": {
					"type": "object",
					"required": ["width", "height"],
					"properties": {"width": {"type": "number"}, "height": {"type": "number"}}
				},
				"style": {
					"type": "object",
					"properties": {
						"background_color": {"type": ["string", "null"]},
						"border_color": {"type": ["string", "null"]},
						"text_color": {"type": ["string", "null"]},
						"font_size": {"type": ["integer", "null"]},
						"font_family": {"type": ["string", "null"]},
						"rotation": {"type": ["number", "null"]},
						"opacity": {"type": ["number", "null"]}
					}
				},
				"created": {"type": ["string", "null"]}
			}
		}
	}
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString(canvasSchemaURL, canvasSchema)
	})
	return compiledSchema, schemaErr
}

// EncodeCanvas renders doc as indented JSON, the on-disk format of the canvas file.
func EncodeCanvas(doc *CanvasDocument) ([]byte, error) {
	if doc == nil {
		return nil, SerializationError("Failed to serialize canvas data", errNilDocument)
	}

	out := *doc
	if out.Widgets == nil {
		out.Widgets = []Widget{}
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, SerializationError("Failed to serialize canvas data", err)
	}
	return data, nil
}

// DecodeCanvas parses a stored canvas file. Missing required fields and wrong
// types are rejected; unknown fields are ignored. No semantic checks are made.
func DecodeCanvas(data []byte) (*CanvasDocument, error) {
	schema, err := documentSchema()
	if err != nil {
		return nil, DeserializationError("Failed to deserialize canvas data", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, DeserializationError("Failed to deserialize canvas data", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, DeserializationError("Failed to deserialize canvas data", err)
	}

	var doc CanvasDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, DeserializationError("Failed to deserialize canvas data", err)
	}
	return &doc, nil
}
