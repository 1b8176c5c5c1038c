package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Venue Specials API",
        "description": "Discover venue specials running right now near a location",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Specials", "description": "Specials search and lifecycle"},
        {"name": "Venues", "description": "Venue management and schedule exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/api/v1/specials": {
            "get": {
                "tags": ["Specials"],
                "summary": "Search specials near an address",
                "parameters": [
                    {"name": "address", "in": "query", "type": "string"},
                    {"name": "radius", "in": "query", "type": "number", "description": "Radius in miles"},
                    {"name": "searchDateTime", "in": "query", "type": "string", "description": "RFC3339 UTC reference instant"},
                    {"name": "searchTerm", "in": "query", "type": "string"},
                    {"name": "venueId", "in": "query", "type": "string"},
                    {"name": "specialTypeId", "in": "query", "type": "string"},
                    {"name": "isCurrentlyRunning", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Paged specials with availability", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid searchDateTime or filters"},
                    "422": {"description": "Address could not be geocoded"}
                }
            },
            "post": {
                "tags": ["Specials"],
                "summary": "Create a special",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/api/v1/specials/{id}": {
            "get": {
                "tags": ["Specials"],
                "summary": "Get a special with current availability",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Special detail", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Specials"],
                "summary": "Update a special",
                "responses": {
                    "200": {"description": "Updated"}
                }
            },
            "delete": {
                "tags": ["Specials"],
                "summary": "Delete a special",
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/api/v1/venues/{id}": {
            "get": {
                "tags": ["Venues"],
                "summary": "Get a venue",
                "responses": {
                    "200": {"description": "Venue detail"}
                }
            },
            "put": {
                "tags": ["Venues"],
                "summary": "Update a venue",
                "responses": {
                    "200": {"description": "Updated"}
                }
            }
        },
        "/api/v1/venues": {
            "post": {
                "tags": ["Venues"],
                "summary": "Create a venue",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/api/v1/venues/{id}/specials": {
            "get": {
                "tags": ["Venues"],
                "summary": "List a venue's specials",
                "responses": {
                    "200": {"description": "Specials list"}
                }
            }
        },
        "/api/v1/venues/{id}/specials/export": {
            "get": {
                "tags": ["Venues"],
                "summary": "Export a venue's specials schedule as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered document"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_previous": {"type": "boolean"},
                "has_next": {"type": "boolean"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object", "description": "Includes count_strategy and total_is_exact for search responses"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
