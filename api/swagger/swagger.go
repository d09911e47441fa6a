package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Perda LPJ API",
        "description": "Compiles Raperda/Perda and Raperbup/Perbup accountability reports into one PDF",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Documents", "description": "Report documents and their body PDF"},
        {"name": "Attachments", "description": "Lampiran utama, stamped and compiled"},
        {"name": "Supporting Attachments", "description": "Lampiran pendukung, stored only"},
        {"name": "Compile", "description": "Report compilation and downloads"},
        {"name": "System", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Runtime metrics snapshot",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents",
                "parameters": [
                    {"name": "kind", "in": "query", "type": "string", "enum": ["RAPERDA", "PERDA", "RAPERBUP", "PERBUP"]},
                    {"name": "tahun", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Create document",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DocumentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/{id}": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "get": {
                "tags": ["Documents"],
                "summary": "Get document with its attachments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Documents"],
                "summary": "Update document",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DocumentRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Documents"],
                "summary": "Delete document and its files",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/documents/{id}/body": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "put": {
                "tags": ["Documents"],
                "summary": "Upload or replace the body PDF",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large"},
                    "415": {"description": "Not a PDF"},
                    "422": {"description": "Unreadable PDF"}
                }
            },
            "delete": {
                "tags": ["Documents"],
                "summary": "Remove the body PDF",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/documents/{id}/attachments": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "get": {
                "tags": ["Attachments"],
                "summary": "List main attachments in order",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Attachments"],
                "summary": "Upload a main attachment",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "romawiLampiran", "in": "formData", "required": true, "type": "string"},
                    {"name": "judulPembatas", "in": "formData", "required": true, "type": "string"},
                    {"name": "footerText", "in": "formData", "type": "string"},
                    {"name": "footerWidth", "in": "formData", "type": "number"},
                    {"name": "footerX", "in": "formData", "type": "number"},
                    {"name": "footerY", "in": "formData", "type": "number"},
                    {"name": "footerHeight", "in": "formData", "type": "number"},
                    {"name": "footerFontSize", "in": "formData", "type": "number"},
                    {"name": "jumlahHalaman", "in": "formData", "type": "integer"},
                    {"name": "isCalk", "in": "formData", "type": "boolean"},
                    {"name": "calkBab", "in": "formData", "type": "string", "description": "JSON array of CALK chapters"}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/documents/{id}/attachments/order": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "put": {
                "tags": ["Attachments"],
                "summary": "Reorder main attachments",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReorderRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/documents/{id}/attachments/{attachmentId}": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "type": "string"},
                {"name": "attachmentId", "in": "path", "required": true, "type": "string"}
            ],
            "put": {
                "tags": ["Attachments"],
                "summary": "Update a main attachment, optionally replacing its PDF",
                "consumes": ["multipart/form-data"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Attachments"],
                "summary": "Delete a main attachment",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/documents/{id}/attachments/{attachmentId}/move": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "type": "string"},
                {"name": "attachmentId", "in": "path", "required": true, "type": "string"}
            ],
            "post": {
                "tags": ["Attachments"],
                "summary": "Move a main attachment up or down",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/documents/{id}/attachments/{attachmentId}/preview": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "type": "string"},
                {"name": "attachmentId", "in": "path", "required": true, "type": "string"}
            ],
            "get": {
                "tags": ["Attachments"],
                "summary": "Preview the stamped attachment",
                "produces": ["application/pdf"],
                "responses": {"200": {"description": "PDF"}}
            }
        },
        "/documents/{id}/attachments/{attachmentId}/file": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "type": "string"},
                {"name": "attachmentId", "in": "path", "required": true, "type": "string"}
            ],
            "get": {
                "tags": ["Attachments"],
                "summary": "Download the uploaded attachment",
                "produces": ["application/pdf"],
                "responses": {"200": {"description": "PDF"}}
            }
        },
        "/documents/{id}/supporting-attachments": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "get": {
                "tags": ["Supporting Attachments"],
                "summary": "List supporting attachments",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Supporting Attachments"],
                "summary": "Upload a supporting attachment",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "title", "in": "formData", "required": true, "type": "string"}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/documents/{id}/supporting-attachments/order": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "put": {
                "tags": ["Supporting Attachments"],
                "summary": "Reorder supporting attachments",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReorderRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/documents/{id}/supporting-attachments/{attachmentId}": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "type": "string"},
                {"name": "attachmentId", "in": "path", "required": true, "type": "string"}
            ],
            "put": {
                "tags": ["Supporting Attachments"],
                "summary": "Update a supporting attachment",
                "consumes": ["multipart/form-data"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Supporting Attachments"],
                "summary": "Delete a supporting attachment",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/documents/{id}/supporting-attachments/{attachmentId}/move": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "type": "string"},
                {"name": "attachmentId", "in": "path", "required": true, "type": "string"}
            ],
            "post": {
                "tags": ["Supporting Attachments"],
                "summary": "Move a supporting attachment up or down",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/documents/{id}/supporting-attachments/{attachmentId}/file": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "type": "string"},
                {"name": "attachmentId", "in": "path", "required": true, "type": "string"}
            ],
            "get": {
                "tags": ["Supporting Attachments"],
                "summary": "Download a supporting attachment",
                "produces": ["application/pdf"],
                "responses": {"200": {"description": "PDF"}}
            }
        },
        "/documents/{id}/compile": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "post": {
                "tags": ["Compile"],
                "summary": "Queue compilation of the document",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Queue unavailable"}
                }
            }
        },
        "/documents/{id}/preview": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "get": {
                "tags": ["Compile"],
                "summary": "Compile synchronously and stream the PDF inline",
                "produces": ["application/pdf"],
                "responses": {"200": {"description": "PDF"}, "422": {"description": "Unreadable source PDF"}}
            }
        },
        "/compile-jobs/{jobId}": {
            "parameters": [{"name": "jobId", "in": "path", "required": true, "type": "string"}],
            "get": {
                "tags": ["Compile"],
                "summary": "Compile job status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/export/{token}": {
            "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
            "get": {
                "tags": ["Compile"],
                "summary": "Download a compiled report via signed token",
                "produces": ["application/pdf"],
                "responses": {"200": {"description": "PDF"}, "403": {"description": "Invalid or expired token"}}
            }
        }
    },
    "definitions": {
        "DocumentRequest": {
            "type": "object",
            "required": ["kind", "tahun"],
            "properties": {
                "kind": {"type": "string", "enum": ["RAPERDA", "PERDA", "RAPERBUP", "PERBUP"]},
                "tahun": {"type": "integer"},
                "title": {"type": "string"}
            }
        },
        "MoveRequest": {
            "type": "object",
            "required": ["direction"],
            "properties": {
                "direction": {"type": "string", "enum": ["up", "down"]}
            }
        },
        "ReorderRequest": {
            "type": "object",
            "required": ["ids"],
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}}
            }
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
