// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with `swag init -g cmd/server/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "API Support"},
        "license": {"name": "MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/account": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get the caller's account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "404": {"description": "User does not have a bank account", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            },
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Create a new account",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/account.CreateAccountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Account created", "schema": {"$ref": "#/definitions/common.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "403": {"description": "User not confirmed", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "409": {"description": "User already has a bank account", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "422": {"description": "Invalid currency code", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        },
        "/account/deposit": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Deposit funds",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/account.BalanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "Deposit successful", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Value must be greater than zero", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        },
        "/account/withdraw": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Withdraw funds",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/account.BalanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "Withdrawal successful", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Insufficient funds", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        },
        "/account/id": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Find account id by email",
                "parameters": [
                    {"type": "string", "name": "email", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "Bank account email not found", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        },
        "/accounts": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "List accounts",
                "parameters": [
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/transfer": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transfers"],
                "summary": "Transfer funds",
                "parameters": [
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/transfer.TransferRequest"}}
                ],
                "responses": {
                    "200": {"description": "Transfer successful", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Insufficient funds", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "403": {"description": "Transfer not allowed", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "404": {"description": "Account or receiver email not found", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "502": {"description": "Conversion service error", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "504": {"description": "Conversion service timeout", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        },
        "/transfers": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["transfers"],
                "summary": "Transfer history",
                "parameters": [
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/convert-currencies/{symbols}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "Convert currencies",
                "parameters": [
                    {"type": "string", "name": "symbols", "in": "path", "required": true},
                    {"type": "number", "name": "amount", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/currency.Conversion"}},
                    "404": {"description": "Currency pair not found", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "422": {"description": "Invalid amount or pair syntax", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "502": {"description": "External service error", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "504": {"description": "External service timeout", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        }
    },
    "definitions": {
        "account.BalanceRequest": {
            "type": "object",
            "properties": {"value": {"type": "number", "example": 100.5}}
        },
        "account.CreateAccountRequest": {
            "type": "object",
            "properties": {"currency_code": {"type": "string", "example": "BRL"}}
        },
        "transfer.TransferRequest": {
            "type": "object",
            "required": ["receiver_account_email"],
            "properties": {
                "receiver_account_email": {"type": "string", "example": "johndoe@gmail.com"},
                "value": {"type": "number", "example": 25}
            }
        },
        "currency.Conversion": {
            "type": "object",
            "properties": {
                "symbols": {"type": "string"},
                "exchange_rate": {"type": "number"},
                "amount": {"type": "number"},
                "converted_amount": {"type": "number"},
                "timestamp": {"type": "string"}
            }
        },
        "common.Response": {
            "type": "object",
            "properties": {
                "status": {"type": "integer"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "common.ProblemDetails": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "integer"},
                "detail": {"type": "string"},
                "instance": {"type": "string"},
                "code": {"type": "string"},
                "timestamp": {"type": "string"},
                "errors": {}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "description": "Enter your Bearer token in the format: ` + "`Bearer {token}`" + `",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Bank API",
	Description:      "Accounts, balances and cross-currency transfers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
