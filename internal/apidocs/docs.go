//go:build swagger

// Package apidocs registers the OpenAPI document served by the swagger UI.
// Regenerate with `swag init -g cmd/modelhub/docs.go -o internal/apidocs`.
package apidocs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/catalog": {"get": {"tags": ["catalog"], "summary": "List catalog", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/models": {"get": {"tags": ["models"], "summary": "List installed models", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/models/current": {"get": {"tags": ["models"], "summary": "Current model", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/models/load": {"post": {"tags": ["models"], "summary": "Load a model", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "503": {"description": "Service Unavailable"}}}},
        "/models/unload": {"post": {"tags": ["models"], "summary": "Unload a model", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/downloads": {"get": {"tags": ["downloads"], "summary": "List downloads", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/downloads/{id}": {
            "get": {"tags": ["downloads"], "summary": "Download status", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["downloads"], "summary": "Start a download", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "202": {"description": "Accepted"}, "404": {"description": "Not Found"}}}
        },
        "/downloads/{id}/cancel": {"post": {"tags": ["downloads"], "summary": "Cancel a download", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/artifacts/{id}": {"delete": {"tags": ["downloads"], "summary": "Delete an installed artifact", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "modelhub API",
	Description:      "HTTP API for model artifact downloads and the model loading cache.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
