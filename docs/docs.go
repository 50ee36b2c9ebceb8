// Package docs holds the swagger template served under /docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/tools": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tools"],
                "summary": "List tools",
                "description": "List every registered tool with its input and output schema",
                "responses": {
                    "200": {"description": "Tool descriptors"}
                }
            }
        },
        "/tools/{name}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tools"],
                "summary": "Call a tool",
                "description": "Invoke a tool by name. The request body is the tool's arguments object.",
                "parameters": [
                    {"type": "string", "description": "Tool name", "name": "name", "in": "path", "required": true},
                    {"description": "Tool arguments", "name": "args", "in": "body", "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ToolResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/components": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["components"],
                "summary": "List components",
                "description": "List every registered component with its props schema and actions",
                "responses": {
                    "200": {"description": "Component descriptors"}
                }
            }
        },
        "/components/{name}/render": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["components"],
                "summary": "Render a component",
                "description": "Validate props and render the component tree. The request body is the props object.",
                "parameters": [
                    {"type": "string", "description": "Component name", "name": "name", "in": "path", "required": true},
                    {"description": "Component props", "name": "props", "in": "body", "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.RenderResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/components/{name}/actions/{action}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["components"],
                "summary": "Run a component action",
                "description": "Run a named action and return the refreshed render",
                "parameters": [
                    {"type": "string", "description": "Component name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Action name", "name": "action", "in": "path", "required": true},
                    {"description": "Props and action arguments", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.ActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.RenderResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/context": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["context"],
                "summary": "Get context summary",
                "description": "Compute the key/value facts describing the current store",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/summary.Entry"}}}
                }
            }
        },
        "/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Stream store changes",
                "description": "Upgrade to a websocket that receives one JSON change event per store mutation",
                "responses": {
                    "101": {"description": "Switching Protocols", "schema": {"$ref": "#/definitions/ports.ChangeEvent"}}
                }
            }
        }
    },
    "definitions": {
        "http.ActionRequest": {
            "type": "object",
            "properties": {
                "props": {"type": "object"},
                "args": {"type": "object"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "http.RenderResult": {
            "type": "object",
            "properties": {
                "component": {"type": "string"},
                "action": {"type": "string"},
                "node": {"type": "object"}
            }
        },
        "http.ToolResult": {
            "type": "object",
            "properties": {
                "tool": {"type": "string"},
                "result": {}
            }
        },
        "ports.ChangeEvent": {
            "type": "object",
            "properties": {
                "collection": {"type": "string"},
                "op": {"type": "string"},
                "id": {"type": "string"},
                "at": {"type": "string"}
            }
        },
        "summary.Entry": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "value": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the dispatch token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Productivity Brain API",
	Description:      "Tools and components served to the dispatch host",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
