// Package docs is generated by swag from the handler annotations (swag init -g cmd/api/main.go).
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
        "/healthz": {
            "get": {"tags": ["System"], "summary": "Health check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/stripe/checkout": {
            "post": {"tags": ["Stripe"], "summary": "Create Stripe Checkout session", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/billing.CheckoutRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "500": {"description": "Internal Server Error"}}}
        },
        "/api/stripe/webhook": {
            "post": {"tags": ["Stripe"], "summary": "Stripe webhook", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "in": "header", "name": "Stripe-Signature", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "500": {"description": "Internal Server Error"}}}
        },
        "/api/chat": {
            "post": {"tags": ["Chat"], "summary": "Chat completion", "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}, "503": {"description": "Service Unavailable"}}}
        },
        "/api/v1/personalities": {
            "get": {"tags": ["Personality"], "summary": "List personalities", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/me/subscription": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Current subscription", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/me/personality": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Select personality", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/me/chat/{mode}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Chat history", "parameters": [{"type": "string", "in": "path", "name": "mode"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Send chat message", "parameters": [{"type": "string", "in": "path", "name": "mode"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Delete chat history", "parameters": [{"type": "string", "in": "path", "name": "mode"}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/me/diary": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "RotBot diary", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/me/decay_log": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "List decay log", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Add decay log entry", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/me/decay_log/latest": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Latest decay log entry", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/me/decay_log/{id}/remark": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Snide remark", "parameters": [{"type": "integer", "in": "path", "name": "id", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/admin/list_subscriptions": {
            "post": {"security": [{"BasicAuth": []}], "tags": ["Admin"], "summary": "List Subscriptions (Admin)", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/admin/subscription_statistic": {
            "get": {"security": [{"BasicAuth": []}], "tags": ["Admin"], "summary": "Subscription Statistics (Admin)", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "billing.CheckoutRequest": {
            "type": "object",
            "properties": {"userId": {"type": "string"}, "personalityName": {"type": "string"}}
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
	Host:             "localhost:8888",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "RotBot API",
	Description:      "Stripe subscription reconciliation, checkout and RotBot chat backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
