package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academy Admin API",
        "description": "Signup-code and class-join admission engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Signup Codes", "description": "Batch signup-code lifecycle"},
        {"name": "Activity Logs", "description": "Signup-code usage ledger"},
        {"name": "Join Requests", "description": "Class-join admission"}
    ],
    "paths": {
        "/signup/redeem": {
            "post": {
                "tags": ["Signup Codes"],
                "summary": "Redeem a signup code",
                "responses": {
                    "200": {"description": "Redemption recorded"},
                    "400": {"description": "Invalid payload"},
                    "404": {"description": "Unknown code"},
                    "409": {"description": "Code inactive"}
                }
            }
        },
        "/batches/{id}/signup-code": {
            "get": {
                "tags": ["Signup Codes"],
                "summary": "Signup code status",
                "responses": {
                    "200": {"description": "Current status"},
                    "404": {"description": "Batch not found"}
                }
            }
        },
        "/batches/{id}/signup-code/reset": {
            "post": {
                "tags": ["Signup Codes"],
                "summary": "Reset a batch signup code",
                "responses": {
                    "200": {"description": "New code issued"},
                    "404": {"description": "Batch not found"},
                    "409": {"description": "Concurrent reset detected"}
                }
            }
        },
        "/batches/{id}/signup-code/toggle": {
            "patch": {
                "tags": ["Signup Codes"],
                "summary": "Toggle signup code active state",
                "responses": {
                    "200": {"description": "New active state"},
                    "404": {"description": "Batch not found"}
                }
            }
        },
        "/batches/{id}/signup-code/events": {
            "get": {
                "tags": ["Signup Codes"],
                "summary": "Signup code audit trail",
                "responses": {
                    "200": {"description": "Recent events"},
                    "404": {"description": "Batch not found"}
                }
            }
        },
        "/activity-logs": {
            "get": {
                "tags": ["Activity Logs"],
                "summary": "Query signup activity logs",
                "responses": {
                    "200": {"description": "Filtered entries with stats"},
                    "400": {"description": "Invalid filter"}
                }
            }
        },
        "/activity-logs/export": {
            "get": {
                "tags": ["Activity Logs"],
                "summary": "Export signup activity logs",
                "responses": {
                    "200": {"description": "CSV or PDF document"},
                    "400": {"description": "Unsupported format"}
                }
            }
        },
        "/classes/{id}/join-requests": {
            "get": {
                "tags": ["Join Requests"],
                "summary": "List pending join requests",
                "responses": {
                    "200": {"description": "Pending requests, oldest first"},
                    "404": {"description": "Class not found"}
                }
            }
        },
        "/classes/{id}/join-requests/history": {
            "get": {
                "tags": ["Join Requests"],
                "summary": "List reviewed join requests",
                "responses": {
                    "200": {"description": "Reviewed requests, newest first"}
                }
            }
        },
        "/join-requests/{id}/approve": {
            "post": {
                "tags": ["Join Requests"],
                "summary": "Approve a join request",
                "responses": {
                    "200": {"description": "Request approved"},
                    "404": {"description": "Request not found"},
                    "409": {"description": "Already resolved or class full"}
                }
            }
        },
        "/join-requests/{id}/reject": {
            "post": {
                "tags": ["Join Requests"],
                "summary": "Reject a join request",
                "responses": {
                    "200": {"description": "Request rejected"},
                    "400": {"description": "Missing rejection reason"},
                    "404": {"description": "Request not found"},
                    "409": {"description": "Already resolved"}
                }
            }
        },
        "/join-requests/bulk-approve": {
            "post": {
                "tags": ["Join Requests"],
                "summary": "Approve join requests in bulk",
                "responses": {
                    "200": {"description": "Per-item outcomes with capacity snapshots"},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/join-requests/bulk-reject": {
            "post": {
                "tags": ["Join Requests"],
                "summary": "Reject join requests in bulk",
                "responses": {
                    "200": {"description": "Per-item outcomes"},
                    "400": {"description": "Invalid payload"}
                }
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
