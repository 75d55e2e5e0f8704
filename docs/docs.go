// Package docs registers the OpenAPI document served at /swagger/*any.
// Mirrors the layout `swag init` produces from the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/health": {"get": {"tags": ["system"], "summary": "Health check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/auth/sign-up": {"post": {"tags": ["auth"], "summary": "Register an athlete", "consumes": ["application/json"], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SignUpRequest"}}], "responses": {"200": {"description": "id"}, "400": {"description": "Bad Request"}}}},
        "/auth/sign-in": {"post": {"tags": ["auth"], "summary": "Sign in", "consumes": ["application/json"], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SignInRequest"}}], "responses": {"200": {"description": "token"}, "401": {"description": "Unauthorized"}}}},
        "/api/v1/session/start": {"post": {"tags": ["session"], "summary": "Start session", "security": [{"BearerAuth": []}], "consumes": ["application/json"], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/StartSessionRequest"}}], "responses": {"200": {"description": "status, state"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/api/v1/session/stop": {"post": {"tags": ["session"], "summary": "Stop session", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "status, completion"}, "409": {"description": "Conflict"}, "500": {"description": "error, completion"}}}},
        "/api/v1/session/state": {"get": {"tags": ["session"], "summary": "Get session state", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "StatusUpdate"}}}},
        "/api/v1/curves": {"get": {"tags": ["curves"], "summary": "List speed curves", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "level to speeds"}}}},
        "/api/v1/curves/{level}": {"get": {"tags": ["curves"], "summary": "Get one speed curve", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "level", "type": "integer", "required": true}], "responses": {"200": {"description": "level, speeds"}, "400": {"description": "Bad Request"}}}},
        "/api/v1/heart-rate": {
            "get": {"tags": ["heart-rate"], "summary": "Heart-rate snapshot", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "HeartRateSnapshot"}}},
            "post": {"tags": ["heart-rate"], "summary": "Push a heart-rate sample", "security": [{"BearerAuth": []}], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/HeartRateRequest"}}], "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/heart-rate/range": {"put": {"tags": ["heart-rate"], "summary": "Retarget the simulated heart-rate source", "security": [{"BearerAuth": []}], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/HeartRateRangeRequest"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/api/v1/history": {"get": {"tags": ["history"], "summary": "List finished sessions", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "count, sessions"}}}},
        "/api/v1/history/{id}": {"get": {"tags": ["history"], "summary": "Get a finished session", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "SessionRecord"}, "404": {"description": "Not Found"}}}},
        "/api/v1/history/{id}/csv": {"get": {"tags": ["history"], "summary": "Export a session's heart-rate log", "produces": ["text/csv"], "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "CSV file"}, "404": {"description": "Not Found"}}}},
        "/api/v1/history/{id}/feedback": {"put": {"tags": ["history"], "summary": "Record session feedback", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/FeedbackRequest"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/api/v1/logs": {"get": {"tags": ["logs"], "summary": "List logs", "security": [{"BearerAuth": []}], "parameters": [
            {"in": "query", "name": "from", "type": "string"},
            {"in": "query", "name": "to", "type": "string"},
            {"in": "query", "name": "type", "type": "string", "enum": ["START", "LAP", "DECELERATE", "COMPLETE", "ERROR"]},
            {"in": "query", "name": "session_id", "type": "string"}
        ], "responses": {"200": {"description": "count, events"}, "400": {"description": "Bad Request"}}}}
    },
    "definitions": {
        "SignUpRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "age": {"type": "integer", "example": 30}}},
        "SignInRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "StartSessionRequest": {"type": "object", "properties": {"level": {"type": "integer", "example": 5}, "lap_distance": {"type": "number", "example": 400}, "age": {"type": "integer", "example": 30}}},
        "HeartRateRequest": {"type": "object", "properties": {"bpm": {"type": "integer", "example": 120}}},
        "HeartRateRangeRequest": {"type": "object", "properties": {"low": {"type": "integer", "example": 130}, "high": {"type": "integer", "example": 150}}},
        "FeedbackRequest": {"type": "object", "properties": {"feedback": {"type": "string", "enum": ["too_easy", "comfortable", "moderate", "uncomfortable", "unbearable"]}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Treadmill Pacer API",
	Description:      "Heart-rate driven treadmill pace control, session history and live status.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
