// Package swagger registers the OpenAPI document served under /docs.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LMS Instructor API",
        "description": "Instructor profiles, class sessions, schedules, student ratings and account flows.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [{"name": "Authentication"}, {"name": "Instructors"}, {"name": "Assignments"}, {"name": "Sessions"}, {"name": "Schedules"}, {"name": "Ratings"}, {"name": "Online Sessions"}, {"name": "Analytics"}, {"name": "Admin"}, {"name": "Operations"}],
    "paths": {
        "/api/v1/auth/signup": {
            "post": {"tags": ["Authentication"], "summary": "Create account", "produces": ["application/json"], "consumes": ["application/json"], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/auth/login": {
            "post": {"tags": ["Authentication"], "summary": "Authenticate user", "produces": ["application/json"], "consumes": ["application/json"], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/auth/logout": {
            "post": {"tags": ["Authentication"], "summary": "Logout current session", "produces": ["application/json"], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/auth/me": {
            "get": {"tags": ["Authentication"], "summary": "Current user", "produces": ["application/json"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/auth/password/forgot": {
            "post": {"tags": ["Authentication"], "summary": "Request password reset", "produces": ["application/json"], "consumes": ["application/json"], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"202": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/auth/password/reset": {
            "post": {"tags": ["Authentication"], "summary": "Complete password reset", "produces": ["application/json"], "consumes": ["application/json"], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"204": {"description": "No Content"}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/instructors": {
            "get": {"tags": ["Instructors"], "summary": "List instructor profiles", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "status", "in": "query", "required": false, "type": "string"}, {"name": "user_id", "in": "query", "required": false, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Instructors"], "summary": "Create instructor profile", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/instructors/me": {
            "get": {"tags": ["Instructors"], "summary": "Instructor profile of the caller", "produces": ["application/json"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/instructors/{id}": {
            "get": {"tags": ["Instructors"], "summary": "Get instructor profile", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "patch": {"tags": ["Instructors"], "summary": "Update instructor profile", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/instructors/{id}/assignments": {
            "get": {"tags": ["Assignments"], "summary": "Class assignments of an instructor", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "status", "in": "query", "required": false, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/instructors/{id}/sessions": {
            "get": {"tags": ["Sessions"], "summary": "Sessions of an instructor", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "date", "in": "query", "required": false, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/instructors/{id}/schedules": {
            "get": {"tags": ["Schedules"], "summary": "List schedules in a range", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "from", "in": "query", "required": false, "type": "string"}, {"name": "to", "in": "query", "required": false, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/instructors/{id}/schedules/{date}": {
            "get": {"tags": ["Schedules"], "summary": "Schedule of a day", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "date", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "put": {"tags": ["Schedules"], "summary": "Replace the slots of a day", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "date", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/instructors/{id}/analytics": {
            "get": {"tags": ["Analytics"], "summary": "Instructor analytics", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/instructors/{id}/calendar": {
            "get": {"tags": ["Analytics"], "summary": "Calendar overview of a day", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "date", "in": "query", "required": false, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/assignments": {
            "post": {"tags": ["Assignments"], "summary": "Assign instructor to class", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/assignments/{id}": {
            "patch": {"tags": ["Assignments"], "summary": "Update class assignment", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/sessions": {
            "post": {"tags": ["Sessions"], "summary": "Schedule a class session", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/sessions/{id}": {
            "get": {"tags": ["Sessions"], "summary": "Get class session", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "patch": {"tags": ["Sessions"], "summary": "Update class session", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/sessions/{id}/start": {
            "post": {"tags": ["Sessions"], "summary": "Start session", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/sessions/{id}/end": {
            "post": {"tags": ["Sessions"], "summary": "End session", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": false, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/sessions/{id}/cancel": {
            "post": {"tags": ["Sessions"], "summary": "Cancel session", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/sessions/{id}/ratings": {
            "get": {"tags": ["Ratings"], "summary": "Ratings of a session", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/sessions/{id}/ratings/export": {
            "get": {"tags": ["Ratings"], "summary": "Export session ratings", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "format", "in": "query", "required": false, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/sessions/{id}/online": {
            "get": {"tags": ["Online Sessions"], "summary": "Online metadata of a session", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/ratings": {
            "post": {"tags": ["Ratings"], "summary": "Rate a student", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/ratings/{id}": {
            "patch": {"tags": ["Ratings"], "summary": "Update a rating", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/students/{id}/ratings": {
            "get": {"tags": ["Ratings"], "summary": "Ratings of a student", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/online-sessions": {
            "post": {"tags": ["Online Sessions"], "summary": "Attach online meeting", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/online-sessions/{id}": {
            "patch": {"tags": ["Online Sessions"], "summary": "Update online meeting", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/users": {
            "get": {"tags": ["Admin"], "summary": "List users", "produces": ["application/json"], "security": [{"BearerAuth": []}], "parameters": [{"name": "role", "in": "query", "required": false, "type": "string"}, {"name": "search", "in": "query", "required": false, "type": "string"}, {"name": "page", "in": "query", "required": false, "type": "integer"}, {"name": "page_size", "in": "query", "required": false, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/users/{id}/role": {
            "patch": {"tags": ["Admin"], "summary": "Change a user's role", "produces": ["application/json"], "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/admin/system-metrics": {
            "get": {"tags": ["Admin"], "summary": "Process metrics snapshot", "produces": ["application/json"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/health": {
            "get": {"tags": ["Operations"], "summary": "Liveness check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {"tags": ["Operations"], "summary": "Readiness check", "responses": {"200": {"description": "OK"}}}
        },
        "/metrics": {
            "get": {"tags": ["Operations"], "summary": "Prometheus metrics", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "Pagination": {"type": "object", "properties": {"page": {"type": "integer"}, "page_size": {"type": "integer"}, "total_count": {"type": "integer"}}},
        "APIError": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}, "status": {"type": "integer"}}},
        "ResponseEnvelope": {"type": "object", "properties": {"data": {"type": "object"}, "error": {"$ref": "#/definitions/APIError"}, "pagination": {"$ref": "#/definitions/Pagination"}, "meta": {"type": "object"}}}
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
