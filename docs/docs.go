// Package docs is generated by swag from the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/documents": {
            "post": {
                "description": "Classifies the UBL document, stores it and schedules its delivery to SUNAT",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Schedule document delivery",
                "parameters": [
                    {"type": "file", "description": "UBL XML file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Caller correlation id", "name": "customId", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Delivery"}},
                    "400": {"description": "Empty file, malformed XML or unknown series", "schema": {"$ref": "#/definitions/response.Error"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/response.Error"}},
                    "415": {"description": "Unsupported extension", "schema": {"$ref": "#/definitions/response.Error"}},
                    "422": {"description": "Unsupported document type", "schema": {"$ref": "#/definitions/response.Error"}},
                    "500": {"description": "Internal", "schema": {"$ref": "#/definitions/response.Error"}},
                    "502": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/response.Error"}}
                }
            }
        },
        "/v1/documents/{id}": {
            "get": {
                "description": "Returns the delivery record and its current status",
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Get delivery",
                "parameters": [
                    {"type": "string", "description": "Delivery ID(uuid)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Delivery"}},
                    "400": {"description": "Invalid ID", "schema": {"$ref": "#/definitions/response.Error"}},
                    "404": {"description": "Delivery not found", "schema": {"$ref": "#/definitions/response.Error"}},
                    "500": {"description": "Internal", "schema": {"$ref": "#/definitions/response.Error"}}
                }
            }
        }
    },
    "definitions": {
        "response.Delivery": {
            "type": "object",
            "properties": {
                "attempts": {"type": "integer"},
                "created_at": {"type": "string"},
                "custom_id": {"type": "string"},
                "delivered_at": {"type": "string"},
                "delivery_error": {"type": "string"},
                "delivery_status": {"type": "string", "example": "scheduled_to_deliver"},
                "document_id": {"type": "string", "example": "F123-45678"},
                "document_type": {"type": "string", "example": "Invoice"},
                "file_id": {"type": "string", "example": "20123456789-01-F123-45678.xml"},
                "filename": {"type": "string", "example": "20123456789-01-F123-45678.xml"},
                "id": {"type": "string", "example": "6f1c2a3e-8e0b-4d43-9c51-0d0a3c0b9e11"},
                "server_url": {"type": "string"},
                "taxpayer_id": {"type": "string", "example": "20123456789"},
                "ticket": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "response.Error": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "message"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "UBL sender",
	Description:      "Schedules UBL documents for delivery to SUNAT",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
