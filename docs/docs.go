// Package docs registers the swagger document served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/users/register": {
            "post": {
                "tags": ["users"],
                "summary": "Register a new user",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "User registered", "schema": {"$ref": "#/definitions/dto.StructuredResponse"}},
                    "400": {"description": "Validation failed or user already exists", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/users/login": {
            "post": {
                "tags": ["users"],
                "summary": "User login",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}],
                "responses": {
                    "200": {"description": "Login successful", "schema": {"$ref": "#/definitions/dto.StructuredResponse"}},
                    "400": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/users/logout": {
            "post": {
                "tags": ["users"],
                "summary": "Log out",
                "responses": {"200": {"description": "Logged out successfully", "schema": {"$ref": "#/definitions/dto.SuccessResponse"}}}
            }
        },
        "/users/profile": {
            "get": {
                "security": [{"CookieAuth": []}],
                "tags": ["users"],
                "summary": "Get current user profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StructuredResponse"}},
                    "401": {"description": "Not authorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"CookieAuth": []}],
                "tags": ["users"],
                "summary": "Update current user profile",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateProfileRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StructuredResponse"}},
                    "400": {"description": "Validation failed or email already in use", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/users/change-password": {
            "put": {
                "security": [{"CookieAuth": []}],
                "tags": ["users"],
                "summary": "Change password",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.ChangePasswordRequest"}}],
                "responses": {
                    "200": {"description": "Password changed", "schema": {"$ref": "#/definitions/dto.SuccessResponse"}},
                    "400": {"description": "Current password is incorrect", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/users/devices": {
            "get": {
                "security": [{"CookieAuth": []}],
                "tags": ["users"],
                "summary": "List signed-in devices",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StructuredResponse"}}}
            },
            "delete": {
                "security": [{"CookieAuth": []}],
                "tags": ["users"],
                "summary": "Sign out everywhere",
                "responses": {"200": {"description": "All devices signed out", "schema": {"$ref": "#/definitions/dto.SuccessResponse"}}}
            }
        },
        "/users/devices/{deviceId}": {
            "delete": {
                "security": [{"CookieAuth": []}],
                "tags": ["users"],
                "summary": "Remove a signed-in device",
                "parameters": [{"type": "string", "name": "deviceId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Device removed", "schema": {"$ref": "#/definitions/dto.SuccessResponse"}},
                    "400": {"description": "Cannot remove current device", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Device not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "security": [{"CookieAuth": []}],
                "tags": ["users"],
                "summary": "List users",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StructuredResponse"}},
                    "403": {"description": "Admin only", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "delete": {
                "security": [{"CookieAuth": []}],
                "tags": ["users"],
                "summary": "Delete a user",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "User deleted", "schema": {"$ref": "#/definitions/dto.SuccessResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/files/get-files": {
            "get": {
                "security": [{"CookieAuth": []}],
                "tags": ["files"],
                "summary": "List result files",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StructuredResponse"}}}
            }
        },
        "/files/upload": {
            "post": {
                "security": [{"CookieAuth": []}],
                "consumes": ["multipart/form-data"],
                "tags": ["files"],
                "summary": "Upload a result spreadsheet",
                "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.StructuredResponse"}},
                    "400": {"description": "Missing or non-Excel file", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/files/check-file": {
            "post": {
                "security": [{"CookieAuth": []}],
                "tags": ["files"],
                "summary": "Check upload availability",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.FileTupleRequest"}}],
                "responses": {
                    "200": {"description": "You can upload the file", "schema": {"$ref": "#/definitions/dto.SuccessResponse"}},
                    "400": {"description": "File already uploaded and analyzed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/files/save-file": {
            "post": {
                "security": [{"CookieAuth": []}],
                "tags": ["files"],
                "summary": "Save a file record",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.SaveFileRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StructuredResponse"}}}
            }
        },
        "/files/analyze": {
            "post": {
                "security": [{"CookieAuth": []}],
                "tags": ["files"],
                "summary": "Analyze a staged spreadsheet",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.AnalyzeRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StructuredResponse"}},
                    "502": {"description": "Analysis service unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/files/download/{key}": {
            "get": {
                "security": [{"CookieAuth": []}],
                "produces": ["application/octet-stream"],
                "tags": ["files"],
                "summary": "Download a result file",
                "parameters": [{"type": "string", "name": "key", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "File not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/files/delete/{key}": {
            "delete": {
                "security": [{"CookieAuth": []}],
                "tags": ["files"],
                "summary": "Delete a result file",
                "parameters": [{"type": "string", "name": "key", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "File deleted successfully", "schema": {"$ref": "#/definitions/dto.SuccessResponse"}},
                    "404": {"description": "File not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/files/synchronize": {
            "post": {
                "security": [{"CookieAuth": []}],
                "tags": ["files"],
                "summary": "Synchronize registry with storage",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StructuredResponse"}}}
            }
        },
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Dependency health",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}
            }
        }
    },
    "definitions": {
        "dto.RegisterRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Asha Patel"},
                "email": {"type": "string", "example": "a@x.com"},
                "password": {"type": "string", "example": "secret1"},
                "role": {"type": "string", "enum": ["admin", "faculty", "student"]},
                "admissionYear": {"type": "integer", "example": 2021},
                "program": {"type": "string", "example": "BCA"}
            }
        },
        "dto.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "example": "a@x.com"},
                "password": {"type": "string", "example": "secret1"}
            }
        },
        "dto.ChangePasswordRequest": {
            "type": "object",
            "required": ["currentPassword", "newPassword"],
            "properties": {
                "currentPassword": {"type": "string"},
                "newPassword": {"type": "string"}
            }
        },
        "dto.UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "admissionYear": {"type": "integer"},
                "program": {"type": "string"}
            }
        },
        "dto.FileTupleRequest": {
            "type": "object",
            "properties": {
                "collegeName": {"type": "string"},
                "program": {"type": "string"},
                "batch": {"type": "string"},
                "semester": {"type": "string"},
                "session": {"type": "string"}
            }
        },
        "dto.SaveFileRequest": {
            "type": "object",
            "properties": {
                "collegeName": {"type": "string"},
                "program": {"type": "string"},
                "batch": {"type": "string"},
                "semester": {"type": "string"},
                "session": {"type": "string"},
                "result_path": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.AnalyzeRequest": {
            "type": "object",
            "properties": {
                "file_path": {"type": "string"},
                "report_details": {"$ref": "#/definitions/dto.FileTupleRequest"}
            }
        },
        "dto.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "AUTH_001"},
                "message": {"type": "string", "example": "Invalid credentials"},
                "field": {"type": "string"},
                "severity": {"type": "string", "example": "ERROR"},
                "details": {}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {"$ref": "#/definitions/dto.ErrorDetail"},
                "timestamp": {"type": "string"}
            }
        },
        "dto.StructuredResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "message": {"type": "string"},
                "data": {},
                "timestamp": {"type": "string"}
            }
        },
        "dto.SuccessResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "CookieAuth": {
            "type": "apiKey",
            "name": "token",
            "in": "cookie"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Results Portal API",
	Description:      "Student results portal: accounts, sessions and the report registry",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
