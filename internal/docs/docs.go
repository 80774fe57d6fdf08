// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o internal/docs
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
        "/notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "List notifications",
                "parameters": [
                    {"type": "boolean", "description": "Filter by read state", "name": "is_read", "in": "query"},
                    {"type": "string", "description": "Filter by notification type", "name": "type", "in": "query"},
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Notifications"},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/notifications/unread-count": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Unread notification count",
                "responses": {
                    "200": {"description": "Unread count"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "put": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Mark a notification as read",
                "parameters": [
                    {"type": "string", "description": "Notification ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Notification"},
                    "404": {"description": "Notification not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/notifications/read-all": {
            "put": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Mark all notifications as read",
                "responses": {
                    "200": {"description": "Number of notifications updated"}
                }
            }
        },
        "/preferences": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["preferences"],
                "summary": "Get notification preferences",
                "responses": {
                    "200": {"description": "Preferences"},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["preferences"],
                "summary": "Update notification preferences",
                "parameters": [
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdatePreferencesRequest"}}
                ],
                "responses": {
                    "200": {"description": "Preferences"},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/recurring-expenses/{id}/payments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["recurring-expenses"],
                "summary": "Record a recurring expense payment",
                "parameters": [
                    {"type": "string", "description": "Recurring expense ID", "name": "id", "in": "path", "required": true},
                    {"description": "Payment details", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/handlers.RecordPaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Payment recorded"},
                    "404": {"description": "Recurring expense not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Recurring expense inactive or already advanced", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/reminders/run": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Run reminder checks now",
                "responses": {
                    "200": {"description": "Run summary"},
                    "401": {"description": "Invalid API key", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Run already in progress", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Run could not load its candidates", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handlers.ErrorDetail"}
            }
        },
        "handlers.RecordPaymentRequest": {
            "type": "object",
            "properties": {
                "paid_at": {"type": "string"}
            }
        },
        "handlers.UpdatePreferencesRequest": {
            "type": "object",
            "properties": {
                "email_budget": {"type": "boolean"},
                "push_budget": {"type": "boolean"},
                "email_loan": {"type": "boolean"},
                "push_loan": {"type": "boolean"},
                "email_recurring": {"type": "boolean"},
                "push_recurring": {"type": "boolean"},
                "email_goal": {"type": "boolean"},
                "push_goal": {"type": "boolean"},
                "budget_threshold": {"type": "integer", "minimum": 1, "maximum": 100},
                "reminder_days_before": {"type": "integer", "minimum": 0, "maximum": 30},
                "goal_milestones": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"},
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and JWT token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "BudgetBell API",
	Description:      "BudgetBell evaluates budgets, loans, recurring expenses and savings goals and keeps an in-app notification inbox.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
