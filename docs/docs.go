// Package docs documentación OpenAPI de la API, servida en /docs.
package docs

import _ "embed"

// SwaggerJSON especificación Swagger 2.0 de las rutas de /api.
//
//go:embed swagger.json
var SwaggerJSON []byte
