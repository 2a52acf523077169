package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CampusHQ Timetable API",
        "description": "Automated academic timetable generation with conflict detection",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetable", "description": "Schedule generation and placement validation"},
        {"name": "Conflicts", "description": "Conflict listing and resolution"},
        {"name": "Metrics", "description": "Generation strategy performance"}
    ],
    "paths": {
        "/timetable/generate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Generate a full timetable for one term",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Generation already running for the term"},
                    "412": {"description": "Required resources missing"}
                }
            }
        },
        "/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List the committed timetable for one term",
                "parameters": [
                    {"name": "year", "in": "query", "type": "string", "required": true},
                    {"name": "semester", "in": "query", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/{id}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get a single timetable entry",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/timetable/check": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Check one placement against the persisted schedule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckEntryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/validate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Validate an administrative assignment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "List conflicts for one term",
                "parameters": [
                    {"name": "year", "in": "query", "type": "string", "required": true},
                    {"name": "semester", "in": "query", "type": "integer", "required": true},
                    {"name": "unresolved", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/{id}/resolve": {
            "put": {
                "tags": ["Conflicts"],
                "summary": "Mark a conflict as resolved",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/metrics/generation": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Compare generation strategies",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateTimetableRequest": {
            "type": "object",
            "required": ["academicYear", "semester"],
            "properties": {
                "academicYear": {"type": "string", "example": "2026/2027"},
                "semester": {"type": "integer", "enum": [1, 2, 3]}
            }
        },
        "CheckEntryRequest": {
            "type": "object",
            "required": ["courseId", "roomId", "lecturerId", "day", "timeSlotId", "academicYear", "semester"],
            "properties": {
                "entryId": {"type": "string"},
                "courseId": {"type": "string"},
                "roomId": {"type": "string"},
                "lecturerId": {"type": "string"},
                "day": {"type": "string", "enum": ["MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"]},
                "timeSlotId": {"type": "string"},
                "academicYear": {"type": "string"},
                "semester": {"type": "integer"}
            }
        },
        "ValidateAssignmentRequest": {
            "type": "object",
            "required": ["courseId", "roomId", "lecturerId", "day", "timeSlotId", "academicYear", "semester"],
            "properties": {
                "courseId": {"type": "string"},
                "roomId": {"type": "string"},
                "lecturerId": {"type": "string"},
                "day": {"type": "string"},
                "timeSlotId": {"type": "string"},
                "academicYear": {"type": "string"},
                "semester": {"type": "integer"}
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
