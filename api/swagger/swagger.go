package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "GradeUp API",
        "description": "NIL brand-athlete matching and availability platform",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and session management"},
        {"name": "Matches", "description": "Brand-athlete match scoring and discovery"},
        {"name": "Availability", "description": "Athlete scheduling preferences and calendar checks"},
        {"name": "Taxonomy", "description": "Major category and industry reference data"},
        {"name": "Calendar", "description": "School academic calendar administration"},
        {"name": "Reports", "description": "Asynchronous match report generation"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/matches/calculate": {
            "post": {
                "tags": ["Matches"],
                "summary": "Calculate match score for one athlete/brand pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CalculateMatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/matches/athletes-by-industry": {
            "get": {
                "tags": ["Matches"],
                "summary": "Find athletes whose majors feed the given industries",
                "parameters": [
                    {"name": "industries", "in": "query", "type": "string", "required": true},
                    {"name": "minGpa", "in": "query", "type": "number"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/athletes/{id}/matches/top": {
            "get": {
                "tags": ["Matches"],
                "summary": "Top brand matches for an athlete",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "minScore", "in": "query", "type": "integer"},
                    {"name": "industries", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/athletes/{id}/matches/stats": {
            "get": {
                "tags": ["Matches"],
                "summary": "Match score statistics for an athlete",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/brands/{id}/matching-athletes": {
            "get": {
                "tags": ["Matches"],
                "summary": "Candidate athletes for a brand",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "minGpa", "in": "query", "type": "number"},
                    {"name": "sports", "in": "query", "type": "string"},
                    {"name": "schools", "in": "query", "type": "string"},
                    {"name": "divisions", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/athletes/{id}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Get athlete availability preferences",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Availability"],
                "summary": "Replace athlete availability preferences",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/athletes/{id}/availability/check": {
            "get": {
                "tags": ["Availability"],
                "summary": "Check whether the athlete can take a deal on a date",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "date", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/athletes/{id}/availability/blocked-periods": {
            "get": {
                "tags": ["Availability"],
                "summary": "List merged blocked periods for a window",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "startDate", "in": "query", "type": "string"},
                    {"name": "endDate", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Availability"],
                "summary": "Add a custom blocked period",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddBlockedPeriodRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/athletes/{id}/availability/suggest-timing": {
            "get": {
                "tags": ["Availability"],
                "summary": "Suggest deal dates ranked by availability",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "withinDays", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/athletes/{id}/availability/summary": {
            "get": {
                "tags": ["Availability"],
                "summary": "Combined availability view",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/taxonomy/major-categories": {
            "get": {
                "tags": ["Taxonomy"],
                "summary": "List major categories with their industry tags",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/brands/{id}/industries": {
            "get": {
                "tags": ["Taxonomy"],
                "summary": "List a brand's industries, primary first",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Taxonomy"],
                "summary": "Replace a brand's industry set",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/BrandIndustryInput"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schools/{id}/calendar": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List a school's academic events",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "startDate", "in": "query", "type": "string"},
                    {"name": "endDate", "in": "query", "type": "string"},
                    {"name": "eventTypes", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Calendar"],
                "summary": "Create an academic event",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AcademicEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/generate": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report generation job",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "CalculateMatchRequest": {
            "type": "object",
            "properties": {
                "athlete_id": {"type": "string"},
                "brand_id": {"type": "string"}
            },
            "required": ["athlete_id", "brand_id"]
        },
        "UpdateAvailabilityRequest": {
            "type": "object",
            "properties": {
                "max_deals_per_month": {"type": "integer"},
                "no_finals_deals": {"type": "boolean"},
                "no_midterms_deals": {"type": "boolean"},
                "preferred_deal_days": {"type": "array", "items": {"type": "string"}},
                "min_notice_days": {"type": "integer"},
                "max_hours_per_week": {"type": "integer"},
                "study_hours": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["max_deals_per_month", "preferred_deal_days", "max_hours_per_week"]
        },
        "AddBlockedPeriodRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"}
            },
            "required": ["name", "start_date", "end_date"]
        },
        "BrandIndustryInput": {
            "type": "object",
            "properties": {
                "industry": {"type": "string"},
                "is_primary": {"type": "boolean"}
            },
            "required": ["industry"]
        },
        "AcademicEventRequest": {
            "type": "object",
            "properties": {
                "event_type": {"type": "string"},
                "name": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "no_nil_activity": {"type": "boolean"},
                "academic_year": {"type": "string"},
                "semester": {"type": "string"}
            },
            "required": ["event_type", "name", "start_date", "end_date", "academic_year", "semester"]
        },
        "ReportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "athleteId": {"type": "string"},
                "brandId": {"type": "string"},
                "format": {"type": "string"},
                "limit": {"type": "integer"}
            },
            "required": ["type", "format"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
