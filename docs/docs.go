// Package docs registers the OpenAPI description served under /swagger.
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
        "/reservations": {
            "post": {
                "tags": [
                    "admission"
                ],
                "summary": "Request a reservation; 201 when admitted, 202 when waitlisted",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "get": {
                "tags": [
                    "reservations"
                ],
                "summary": "List the caller's reservations",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/reservations/{id}": {
            "get": {
                "tags": [
                    "reservations"
                ],
                "summary": "Get one reservation",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/reservations/{id}/audit": {
            "get": {
                "tags": [
                    "reservations"
                ],
                "summary": "Audit trail of a reservation",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/reservations/{id}/cancel": {
            "post": {
                "tags": [
                    "cancellation"
                ],
                "summary": "Cancel a reservation",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/reservations/{id}/modifications": {
            "post": {
                "tags": [
                    "cancellation"
                ],
                "summary": "Request a modification",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "get": {
                "tags": [
                    "cancellation"
                ],
                "summary": "List modification requests",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/venue/reservations/{id}/accept": {
            "post": {
                "tags": [
                    "reservations"
                ],
                "summary": "Venue accepts a pending reservation",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/venue/reservations/{id}/decline": {
            "post": {
                "tags": [
                    "reservations"
                ],
                "summary": "Venue declines a pending reservation",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/venue/reservations/{id}/no-show": {
            "post": {
                "tags": [
                    "reservations"
                ],
                "summary": "Record a no-show",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/venue/reservations/{id}/cancel": {
            "post": {
                "tags": [
                    "cancellation"
                ],
                "summary": "Venue cancels a reservation",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/venue/reservations/{id}/payment": {
            "put": {
                "tags": [
                    "reservations"
                ],
                "summary": "Update payment status",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/venue/modifications/{id}/decide": {
            "post": {
                "tags": [
                    "cancellation"
                ],
                "summary": "Accept or reject a modification",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/venue/slots/{id}/reservations": {
            "get": {
                "tags": [
                    "reservations"
                ],
                "summary": "Reservations on a slot",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/venue/slots/{id}/waitlist": {
            "get": {
                "tags": [
                    "waitlist"
                ],
                "summary": "Live queue of a slot",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/waitlist/me": {
            "get": {
                "tags": [
                    "waitlist"
                ],
                "summary": "The caller's waitlist entries",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/waitlist/{id}": {
            "get": {
                "tags": [
                    "waitlist"
                ],
                "summary": "Get one waitlist entry",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "delete": {
                "tags": [
                    "waitlist"
                ],
                "summary": "Leave the waitlist",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/waitlist/{id}/accept": {
            "post": {
                "tags": [
                    "waitlist"
                ],
                "summary": "Accept a waitlist offer",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/waitlist/{id}/refuse": {
            "post": {
                "tags": [
                    "waitlist"
                ],
                "summary": "Refuse a waitlist offer",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/venues/{id}": {
            "get": {
                "tags": [
                    "venues"
                ],
                "summary": "Get a venue",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/venues/{id}/slots": {
            "get": {
                "tags": [
                    "slots"
                ],
                "summary": "List a venue's slots",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/venues/{id}/cancellation-policy": {
            "get": {
                "tags": [
                    "cancellation"
                ],
                "summary": "Effective cancellation policy",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/slots/{id}": {
            "get": {
                "tags": [
                    "slots"
                ],
                "summary": "Get a slot",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/slots/{id}/availability": {
            "get": {
                "tags": [
                    "slots"
                ],
                "summary": "Capacity usage of a slot",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/admin/venues": {
            "post": {
                "tags": [
                    "venues"
                ],
                "summary": "Create a venue",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "get": {
                "tags": [
                    "venues"
                ],
                "summary": "List venues",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/admin/venues/{id}": {
            "put": {
                "tags": [
                    "venues"
                ],
                "summary": "Update a venue",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/admin/venues/{id}/slots": {
            "post": {
                "tags": [
                    "slots"
                ],
                "summary": "Create a slot",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/admin/venues/{id}/cancellation-policy": {
            "put": {
                "tags": [
                    "cancellation"
                ],
                "summary": "Store a cancellation policy",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/admin/slots/{id}/capacity": {
            "put": {
                "tags": [
                    "slots"
                ],
                "summary": "Change slot capacity",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/admin/slots/{id}/deactivate": {
            "post": {
                "tags": [
                    "slots"
                ],
                "summary": "Deactivate a slot",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/admin/slots/{id}/promote": {
            "post": {
                "tags": [
                    "waitlist"
                ],
                "summary": "Run a promotion pass now",
                "responses": {
                    "default": {
                        "description": "standard response envelope",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        }
    },
    "definitions": {
        "response.StandardApiResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "status_code": {
                    "type": "integer"
                },
                "message": {
                    "type": "string"
                },
                "data": {},
                "errors": {}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Venuebook API",
	Description:      "Reservation admission, waitlist promotion and cancellation engine.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
