// Package docs registers the OpenAPI description of the identity API with
// swag so echo-swagger can serve it. It follows the layout of `swag init`
// output; keep it in step with the handler annotations when routes change.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        },
        "/v1/api/users": {
            "get": {
                "security": [{"BasicAuth": []}, {"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List accounts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}}
                }
            }
        },
        "/v1/api/users/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Register an account",
                "parameters": [
                    {"description": "Account details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}}
                }
            }
        },
        "/v1/api/users/{username}": {
            "get": {
                "security": [{"BasicAuth": []}, {"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get an account",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}}
                }
            },
            "delete": {
                "security": [{"BasicAuth": []}, {"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Remove an account",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.OutcomeResponse"}}
                }
            }
        },
        "/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "API version",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.versionResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.PublicView": {
            "type": "object",
            "properties": {
                "emailId": {"type": "string"},
                "phoneNumber": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "USER"]},
                "username": {"type": "string"}
            }
        },
        "handler.ListResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 5004},
                "message": {"type": "string", "example": "Record found"},
                "status": {"type": "string", "example": "FOUND"},
                "users": {"type": "array", "items": {"$ref": "#/definitions/domain.PublicView"}}
            }
        },
        "handler.OutcomeResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 5001},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "message": {"type": "string", "example": "Record created successfully"},
                "status": {"type": "string", "example": "CREATED"},
                "user": {"$ref": "#/definitions/domain.PublicView"}
            }
        },
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}},
                "status": {"type": "string"}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["password", "role", "username"],
            "properties": {
                "emailId": {"type": "string", "example": "alice@example.com"},
                "password": {"type": "string", "maxLength": 72, "example": "secret1"},
                "phoneNumber": {"type": "string", "maxLength": 32, "example": "8293738321"},
                "role": {"type": "string", "enum": ["ADMIN", "USER"], "example": "USER"},
                "username": {"type": "string", "maxLength": 64, "example": "alice"}
            }
        },
        "handler.versionResponse": {
            "type": "object",
            "properties": {
                "version": {"type": "string", "example": "v1"}
            }
        }
    },
    "securityDefinitions": {
        "BasicAuth": {"type": "basic"},
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Identity API",
	Description:      "Identity record service with role-based access control.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
