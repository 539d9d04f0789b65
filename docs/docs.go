// Package docs registers the OpenAPI document served under /swagger.
// Keep it in step with the handler annotations (swag init -g cmd/server/main.go).
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "description": "Get overall service health including the serial link, event bus and MQTT checks",
                "responses": {
                    "200": {"description": "Service is healthy", "schema": {"$ref": "#/definitions/handler.HealthResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Service is ready"},
                    "503": {"description": "Service is not ready"}
                }
            }
        },
        "/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "Service is alive"}
                }
            }
        },
        "/ws/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["WebSocket"],
                "summary": "WebSocket clients",
                "responses": {
                    "200": {"description": "Stats retrieved", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/ws/events": {
            "get": {
                "tags": ["WebSocket"],
                "summary": "Event stream",
                "description": "WebSocket stream of bridge events; accepts command, ping, status, subscribe and unsubscribe messages",
                "responses": {
                    "101": {"description": "Switching protocols"}
                }
            }
        },
        "/api/v1/connection": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Connection"],
                "summary": "Connection status",
                "responses": {
                    "200": {"description": "Status retrieved", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Connection"],
                "summary": "Open serial port",
                "parameters": [
                    {"description": "Port and baud rate", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/handler.ConnectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Connected", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Invalid baud rate", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "404": {"description": "Port not found", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "409": {"description": "Already connected or port busy", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Connection"],
                "summary": "Close serial port",
                "responses": {
                    "200": {"description": "Disconnected", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/v1/connection/ping": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Connection"],
                "summary": "Ping the board",
                "parameters": [
                    {"description": "Transport mode", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/handler.PingRequest"}}
                ],
                "responses": {
                    "202": {"description": "Ping sent", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "503": {"description": "Not connected", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/v1/indicators": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Connection"],
                "summary": "Response indicators",
                "responses": {
                    "200": {"description": "Indicators retrieved", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/v1/commands": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Commands"],
                "summary": "Send a command",
                "parameters": [
                    {"description": "Command", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CommandRequest"}}
                ],
                "responses": {
                    "202": {"description": "Command sent", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Invalid request body", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "422": {"description": "Invalid command", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "502": {"description": "Write failed", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "503": {"description": "Not connected", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/v1/commands/responses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Commands"],
                "summary": "Known responses",
                "responses": {
                    "200": {"description": "Responses retrieved", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/v1/ports": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Ports"],
                "summary": "List serial ports",
                "responses": {
                    "200": {"description": "Ports retrieved", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "500": {"description": "Enumeration failed", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "service": {"type": "string"},
                "version": {"type": "string"},
                "uptime": {"type": "string"},
                "checks": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.CheckResult"}}
            }
        },
        "handler.CheckResult": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "data": {"type": "object"}
            }
        },
        "handler.ConnectRequest": {
            "type": "object",
            "properties": {
                "port": {"type": "string", "example": "/dev/ttyUSB0"},
                "baud_rate": {"type": "integer", "example": 115200}
            }
        },
        "handler.PingRequest": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "enum": ["master", "slave"]}
            }
        },
        "handler.CommandRequest": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "type": {"type": "string", "example": "motor"},
                "mode": {"type": "string", "enum": ["master", "slave"]},
                "motor": {"type": "integer"},
                "value": {"type": "integer"},
                "angle": {"type": "integer"},
                "pin_id": {"type": "integer"},
                "terminal": {"type": "integer"},
                "code": {"type": "integer"},
                "color": {"type": "string"},
                "payload": {"type": "string"}
            }
        },
        "utils.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {"$ref": "#/definitions/utils.APIError"},
                "timestamp": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "utils.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8084",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Board Bridge API",
	Description:      "Serial bridge between a microcontroller board and HTTP/WebSocket clients",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
