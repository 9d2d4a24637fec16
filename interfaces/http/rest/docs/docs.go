// Package docs registers the Swagger document of the v2 API with swag and
// serves it.
package docs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

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
        "/forms/{state}/{year}/{quarter}/{form}": {
            "get": {
                "summary": "Load a state form: sorted questions, answers, status and age range tabs",
                "tags": ["forms"],
                "parameters": [
                    {"name": "state", "in": "path", "required": true, "type": "string"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "quarter", "in": "path", "required": true, "type": "integer", "minimum": 1, "maximum": 4},
                    {"name": "form", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "form state"}, "400": {"description": "bad year or quarter"}, "403": {"description": "state not assigned to user"}}
            }
        },
        "/forms/{state}/{year}/{quarter}/{form}/answers/{answerEntry}": {
            "put": {
                "summary": "Commit an edited grid; entries outside the commit ordinals are not written",
                "tags": ["forms"],
                "parameters": [
                    {"name": "answerEntry", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveAnswerRequest"}}
                ],
                "responses": {"200": {"description": "commit result"}, "409": {"description": "form certified"}}
            }
        },
        "/forms/{state}/{year}/{quarter}/{form}/grids/{answerEntry}": {
            "get": {
                "summary": "Render a stored grid with totals",
                "tags": ["grids"],
                "parameters": [{"name": "answerEntry", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "grid view"}, "404": {"description": "unknown answer entry"}}
            }
        },
        "/forms/{state}/{year}/{quarter}/{form}/certify": {
            "post": {"summary": "Certify final or provisional", "tags": ["status"], "responses": {"200": {"description": "new status"}}}
        },
        "/forms/{state}/{year}/{quarter}/{form}/uncertify": {
            "post": {"summary": "Return a certified form to in progress", "tags": ["status"], "responses": {"200": {"description": "new status"}}}
        },
        "/forms/{state}/{year}/{quarter}/{form}/notes": {
            "put": {"summary": "Replace the summary notes", "tags": ["status"], "responses": {"200": {"description": "new status"}}}
        },
        "/forms/{state}/{year}/{quarter}/{form}/not-applicable": {
            "put": {"summary": "Set the not applicable flag", "tags": ["status"], "responses": {"200": {"description": "new status"}}}
        },
        "/states/{state}/{year}/{quarter}": {
            "get": {"summary": "List the forms of a state for a quarter", "tags": ["forms"], "responses": {"200": {"description": "form statuses"}}}
        },
        "/grids/render": {
            "post": {"summary": "Render caller supplied rows with optional external totals", "tags": ["grids"], "responses": {"200": {"description": "grid view"}}}
        },
        "/form-types": {
            "get": {"summary": "List form types in sort order", "tags": ["catalog"], "responses": {"200": {"description": "form types"}}}
        },
        "/form-templates": {
            "post": {"summary": "Get the form templates of a year (admin)", "tags": ["catalog"], "responses": {"200": {"description": "templates"}, "404": {"description": "no template for year"}}}
        },
        "/users": {
            "get": {"summary": "List users (admin), paginated", "tags": ["users"], "responses": {"200": {"description": "users"}}},
            "post": {"summary": "Create a user (admin)", "tags": ["users"], "responses": {"201": {"description": "created"}}}
        },
        "/users/{id}": {
            "get": {"summary": "Get a user", "tags": ["users"], "responses": {"200": {"description": "user"}}}
        },
        "/users/by-sub": {
            "post": {"summary": "Get a user by identity provider subject", "tags": ["users"], "responses": {"200": {"description": "user"}}}
        },
        "/users/{id}/activation": {
            "post": {"summary": "Request activation or deactivation; returns a pending confirmation", "tags": ["users"], "responses": {"202": {"description": "confirmation request"}}}
        },
        "/confirmations/{id}": {
            "post": {
                "summary": "Confirm or decline a pending action; only the requester may resolve it, once",
                "tags": ["users"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConfirmationResponse"}}],
                "responses": {"200": {"description": "resolved"}, "403": {"description": "not the requester"}, "404": {"description": "unknown or expired"}}
            }
        }
    },
    "definitions": {
        "SaveAnswerRequest": {
            "type": "object",
            "required": ["values"],
            "properties": {
                "values": {"type": "array", "items": {"type": "array", "items": {"type": "number"}}}
            }
        },
        "ConfirmationResponse": {
            "type": "object",
            "properties": {"confirmed": {"type": "boolean"}}
        }
    }
}`

// SwaggerInfo holds the exported Swagger info
var SwaggerInfo = &swag.Spec{
	Version:          "2.0",
	BasePath:         "/api/v2",
	Schemes:          []string{"https"},
	Title:            "SEDS Reporting API",
	Description:      "Quarterly enrollment data: form answers, grid totals and certification.",
	InfoInstanceName: swag.Name,
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InfoInstanceName, SwaggerInfo)
}

// Handler serves the registered document as JSON, or as YAML when the
// client asks for it.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, "swagger document not registered", http.StatusInternalServerError)
			return
		}

		if !wantsYAML(r) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(doc))
			return
		}

		out, err := toYAML([]byte(doc))
		if err != nil {
			http.Error(w, "failed to convert swagger document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(out)
	}
}

func wantsYAML(r *http.Request) bool {
	return r.URL.Query().Get("format") == "yaml" || strings.Contains(r.Header.Get("Accept"), "yaml")
}

func toYAML(doc []byte) ([]byte, error) {
	var v interface{}
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("invalid swagger document: %w", err)
	}
	return yaml.Marshal(v)
}
