package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the site.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json; charset=utf-8")
		c.String(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>resources - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "resources", "version": "v0.1.0" },
  "paths": {
    "/api/search": {
      "get": {
        "summary": "List posts, or search them by title, tag or body text",
        "parameters": [{ "name": "q", "in": "query", "required": false, "schema": { "type": "string" } }],
        "responses": {
          "200": { "description": "post summaries", "content": { "application/json": { "schema": { "type": "array", "items": { "$ref": "#/components/schemas/Summary" } } } } },
          "500": { "description": "content store unavailable", "content": { "application/json": { "schema": { "type": "object", "properties": { "error": { "type": "string" } } } } } }
        }
      }
    },
    "/": { "get": { "summary": "Listing page", "parameters": [{ "name": "q", "in": "query", "required": false, "schema": { "type": "string" } }], "responses": { "200": { "description": "HTML" }, "500": { "description": "error page" } } } },
    "/{slug}": { "get": { "summary": "Post detail page", "parameters": [{ "name": "slug", "in": "path", "required": true, "schema": { "type": "string" } }], "responses": { "200": { "description": "HTML" }, "404": { "description": "not found page" }, "500": { "description": "error page" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  },
  "components": {
    "schemas": {
      "Summary": {
        "type": "object",
        "properties": {
          "id": { "type": "string" },
          "title": { "type": "string" },
          "slug": { "type": "string" },
          "publishedAt": { "type": "string", "format": "date-time", "nullable": true },
          "tags": { "type": "array", "items": { "type": "string" } }
        }
      }
    }
  }
}`
