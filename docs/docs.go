// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}",
        "contact": {"name": "Le Tatche Bois", "email": "contact@letatchebois.ma"}
    },
    "servers": [{"url": "{{.BasePath}}"}],
    "components": {
        "securitySchemes": {
            "BearerAuth": {"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}
        },
        "schemas": {
            "Envelope": {
                "type": "object",
                "properties": {
                    "success": {"type": "boolean"},
                    "data": {},
                    "meta": {"$ref": "#/components/schemas/Meta"}
                }
            },
            "Meta": {
                "type": "object",
                "properties": {
                    "total": {"type": "integer"},
                    "page": {"type": "integer"},
                    "pageSize": {"type": "integer"},
                    "totalPages": {"type": "integer"}
                }
            },
            "Error": {
                "type": "object",
                "properties": {
                    "success": {"type": "boolean", "const": false},
                    "error": {
                        "type": "object",
                        "properties": {
                            "code": {"type": "string"},
                            "message": {"type": "string"},
                            "request_id": {"type": "string"},
                            "details": {
                                "type": "array",
                                "items": {
                                    "type": "object",
                                    "properties": {"field": {"type": "string"}, "message": {"type": "string"}}
                                }
                            }
                        }
                    }
                }
            }
        },
        "responses": {
            "Ok": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Envelope"}}}},
            "Problem": {"description": "Error", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Error"}}}}
        }
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "auth"}, {"name": "documents"}, {"name": "crm"}, {"name": "catalog"},
        {"name": "shop"}, {"name": "quotes"}, {"name": "messages"}, {"name": "notifications"},
        {"name": "currencies"}, {"name": "users"}, {"name": "reports"}, {"name": "settings"},
        {"name": "cms"}, {"name": "uploads"}, {"name": "public"}
    ],
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in with email and password", "security": [], "responses": {"200": {"$ref": "#/components/responses/Ok"}, "401": {"$ref": "#/components/responses/Problem"}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Exchange a refresh token", "security": [], "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Revoke the current token", "responses": {"204": {"description": "No Content"}}}},
        "/auth/me": {"get": {"tags": ["auth"], "summary": "Current user and permissions", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/crm/documents": {
            "get": {"tags": ["documents"], "summary": "List devis, BC, BL, PV, factures and avoirs", "responses": {"200": {"$ref": "#/components/responses/Ok"}}},
            "post": {"tags": ["documents"], "summary": "Create a draft document", "responses": {"201": {"$ref": "#/components/responses/Ok"}, "422": {"$ref": "#/components/responses/Problem"}}}
        },
        "/crm/documents/{id}": {
            "get": {"tags": ["documents"], "summary": "Get a document with its lines", "responses": {"200": {"$ref": "#/components/responses/Ok"}, "404": {"$ref": "#/components/responses/Problem"}}},
            "put": {"tags": ["documents"], "summary": "Edit a draft", "responses": {"200": {"$ref": "#/components/responses/Ok"}, "409": {"$ref": "#/components/responses/Problem"}}},
            "delete": {"tags": ["documents"], "summary": "Delete a draft", "responses": {"204": {"description": "No Content"}}}
        },
        "/crm/documents/{id}/issue": {"post": {"tags": ["documents"], "summary": "Give the document its definitive number", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/crm/documents/{id}/convert": {"post": {"tags": ["documents"], "summary": "Convert along the devis, BC, BL, facture chain", "responses": {"201": {"$ref": "#/components/responses/Ok"}}}},
        "/crm/documents/{id}/pdf": {"get": {"tags": ["documents"], "summary": "Render the document as PDF", "responses": {"200": {"description": "PDF", "content": {"application/pdf": {}}}}}},
        "/crm/documents/{id}/payments": {"post": {"tags": ["documents"], "summary": "Record a payment on an invoice", "responses": {"201": {"$ref": "#/components/responses/Ok"}}}},
        "/crm/leads": {"get": {"tags": ["crm"], "summary": "List leads", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/crm/clients": {"get": {"tags": ["crm"], "summary": "List clients", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/crm/projects": {"get": {"tags": ["crm"], "summary": "List projects", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/crm/appointments": {"get": {"tags": ["crm"], "summary": "List appointments", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/catalog/items": {"get": {"tags": ["catalog"], "summary": "List catalog items", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/orders": {"get": {"tags": ["shop"], "summary": "List storefront orders", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/quote-requests": {"get": {"tags": ["quotes"], "summary": "List web quote requests", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/messages": {"get": {"tags": ["messages"], "summary": "List contact messages", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/notifications": {"get": {"tags": ["notifications"], "summary": "List notifications of the current user", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/currencies": {"get": {"tags": ["currencies"], "summary": "List currencies and rates", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/users": {"get": {"tags": ["users"], "summary": "List back office users", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/reports/dashboard": {"get": {"tags": ["reports"], "summary": "Dashboard figures", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/settings": {"get": {"tags": ["settings"], "summary": "All settings groups", "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/uploads": {"post": {"tags": ["uploads"], "summary": "Upload an image or document", "responses": {"201": {"$ref": "#/components/responses/Ok"}}}},
        "/public/catalog/items": {"get": {"tags": ["public"], "summary": "Storefront catalog", "security": [], "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/public/orders": {"post": {"tags": ["public"], "summary": "Place an order", "security": [], "responses": {"201": {"$ref": "#/components/responses/Ok"}}}},
        "/public/orders/track": {"get": {"tags": ["public"], "summary": "Track an order by number and email", "security": [], "responses": {"200": {"$ref": "#/components/responses/Ok"}}}},
        "/public/webhooks/stripe": {"post": {"tags": ["public"], "summary": "Stripe webhook", "security": [], "responses": {"200": {"description": "OK"}}}},
        "/public/quote-requests": {"post": {"tags": ["public"], "summary": "Submit a quote request", "security": [], "responses": {"201": {"$ref": "#/components/responses/Ok"}, "429": {"$ref": "#/components/responses/Problem"}}}},
        "/public/contact": {"post": {"tags": ["public"], "summary": "Send a contact message", "security": [], "responses": {"201": {"$ref": "#/components/responses/Ok"}, "429": {"$ref": "#/components/responses/Problem"}}}},
        "/public/currencies/convert": {"get": {"tags": ["public"], "summary": "Convert a MAD amount", "security": [], "responses": {"200": {"$ref": "#/components/responses/Ok"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Le Tatche Bois API",
	Description:      "Back office et boutique de Le Tatche Bois: documents commerciaux, CRM, catalogue, commandes et contenu du site.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
