// Package docs registers the OpenAPI document served at /swagger/index.html.
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
    "security": [{"BearerAuth": []}],
    "paths": {
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Exchange id and password for a JWT", "security": [],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "token"}, "401": {"description": "invalid credentials"}}}
        },
        "/accounts": {
            "post": {"tags": ["auth"], "summary": "Create an account (admin)", "responses": {"201": {"description": "created"}, "409": {"description": "exists"}}}
        },
        "/accounts/{id}": {
            "patch": {"tags": ["auth"], "summary": "Rename an account (admin)",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"204": {"description": "updated"}}},
            "delete": {"tags": ["auth"], "summary": "Delete an account (admin)",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"204": {"description": "deleted"}}}
        },
        "/coach/me": {
            "get": {"tags": ["roster"], "summary": "Staff record of the caller", "responses": {"200": {"description": "staff"}}}
        },
        "/coach/teams": {
            "get": {"tags": ["roster"], "summary": "Active teams the caller coaches", "responses": {"200": {"description": "teams"}}}
        },
        "/coach/occurrences": {
            "get": {"tags": ["schedule"], "summary": "Upcoming dated sessions of the caller's teams",
                "parameters": [
                    {"in": "query", "name": "from", "type": "string", "format": "date"},
                    {"in": "query", "name": "to", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "occurrences"}, "400": {"description": "bad window"}}}
        },
        "/coach/occurrences/{occurrence_id}/attendance": {
            "get": {"tags": ["attendance"], "summary": "Roster merged with marks and counts",
                "parameters": [{"in": "path", "name": "occurrence_id", "type": "string", "required": true}],
                "responses": {"200": {"description": "sheet"}, "400": {"description": "malformed occurrence id"}, "403": {"description": "not a coach of the team"}, "404": {"description": "unknown session"}}}
        },
        "/coach/occurrences/{occurrence_id}/marks": {
            "get": {"tags": ["attendance"], "summary": "Raw marks of an occurrence",
                "parameters": [{"in": "path", "name": "occurrence_id", "type": "string", "required": true}],
                "responses": {"200": {"description": "marks"}, "403": {"description": "not a coach of the team"}}}
        },
        "/coach/occurrences/{occurrence_id}/attendance/{student_id}": {
            "put": {"tags": ["attendance"], "summary": "Set a present/absent mark",
                "parameters": [
                    {"in": "path", "name": "occurrence_id", "type": "string", "required": true},
                    {"in": "path", "name": "student_id", "type": "string", "required": true},
                    {"in": "header", "name": "Idempotency-Key", "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SetMarkRequest"}}
                ],
                "responses": {"200": {"description": "updated"}, "201": {"description": "created"}, "403": {"description": "not a coach of the team"}, "422": {"description": "Idempotency-Key reused with another body"}}}
        },
        "/teams/{team_id}": {
            "get": {"tags": ["roster"], "summary": "Team with school",
                "parameters": [{"in": "path", "name": "team_id", "type": "string", "required": true}],
                "responses": {"200": {"description": "team"}, "403": {"description": "not a coach of the team"}, "404": {"description": "not found"}}}
        },
        "/teams/{team_id}/roster": {
            "get": {"tags": ["roster"], "summary": "Active roster of a team",
                "parameters": [{"in": "path", "name": "team_id", "type": "string", "required": true}],
                "responses": {"200": {"description": "students"}, "403": {"description": "not a coach of the team"}}}
        },
        "/students/{student_id}": {
            "get": {"tags": ["roster"], "summary": "Student detail",
                "parameters": [{"in": "path", "name": "student_id", "type": "string", "required": true}],
                "responses": {"200": {"description": "student"}, "403": {"description": "not on the caller's teams"}, "404": {"description": "not found"}}}
        },
        "/admin/staff": {
            "get": {"tags": ["roster"], "summary": "All staff (admin)", "responses": {"200": {"description": "staff"}}}
        },
        "/admin/teams": {
            "get": {"tags": ["roster"], "summary": "All active teams (admin)", "responses": {"200": {"description": "teams"}}}
        },
        "/admin/teams/{team_id}/sessions": {
            "get": {"tags": ["schedule"], "summary": "Session definitions of a team, newest first (admin)",
                "parameters": [{"in": "path", "name": "team_id", "type": "string", "required": true}],
                "responses": {"200": {"description": "sessions"}}}
        },
        "/admin/attendance": {
            "get": {"tags": ["attendance"], "summary": "Marks joined with student and session, paged (admin)",
                "parameters": [
                    {"in": "query", "name": "team_id", "type": "string"},
                    {"in": "query", "name": "session_id", "type": "string"},
                    {"in": "query", "name": "student_id", "type": "string"},
                    {"in": "query", "name": "from", "type": "string", "format": "date"},
                    {"in": "query", "name": "to", "type": "string", "format": "date"},
                    {"in": "query", "name": "sort", "type": "string", "enum": ["date_desc", "date_asc"]},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "offset", "type": "integer"}
                ],
                "responses": {"200": {"description": "page"}, "400": {"description": "bad filter"}}}
        },
        "/admin/attendance/stats": {
            "get": {"tags": ["attendance"], "summary": "Present/absent totals per date (admin)",
                "parameters": [
                    {"in": "query", "name": "team_id", "type": "string"},
                    {"in": "query", "name": "from", "type": "string", "format": "date"},
                    {"in": "query", "name": "to", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "stats"}, "400": {"description": "bad filter"}}}
        },
        "/admin/reports/weekly": {
            "post": {"tags": ["report"], "summary": "Mail last week's attendance report (admin)",
                "parameters": [{"in": "query", "name": "staff_id", "type": "string"}],
                "responses": {"200": {"description": "run result"}}}
        },
        "/admin/reports/weekly/preview": {
            "get": {"tags": ["report"], "summary": "Render last week's report as HTML (admin)", "produces": ["text/html"],
                "parameters": [{"in": "query", "name": "staff_id", "type": "string", "required": true}],
                "responses": {"200": {"description": "html"}}}
        },
        "/admin/campaigns/variables": {
            "get": {"tags": ["campaign"], "summary": "Merge variables a campaign may use", "responses": {"200": {"description": "variables"}}}
        },
        "/admin/campaigns/preview": {
            "post": {"tags": ["campaign"], "summary": "Merge a campaign for one coach (admin)",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CampaignRequest"}}],
                "responses": {"200": {"description": "preview"}, "404": {"description": "no coaches"}}}
        },
        "/admin/campaigns/send": {
            "post": {"tags": ["campaign"], "summary": "Mail a campaign to the coaches of the selected teams (admin)",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CampaignRequest"}}],
                "responses": {"200": {"description": "send result"}, "404": {"description": "no coaches"}}}
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "password": {"type": "string"}}
        },
        "SetMarkRequest": {
            "type": "object",
            "required": ["assisted"],
            "properties": {"assisted": {"type": "boolean"}}
        },
        "CampaignRequest": {
            "type": "object",
            "properties": {
                "team_ids": {"type": "array", "items": {"type": "string"}},
                "subject": {"type": "string"},
                "content": {"type": "string"},
                "is_html": {"type": "boolean"},
                "coach_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "2.0",
	Host:             "",
	BasePath:         "/api/v2",
	Schemes:          []string{},
	Title:            "coachdesk API",
	Description:      "Coach attendance dashboard backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
