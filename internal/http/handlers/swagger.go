package handlers

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

const swaggerUIVersion = "5.17.14"

const docsPage = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <title>mealmood API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@` + swaggerUIVersion + `/swagger-ui.css" />
  <style>body { margin: 0; } #ui { max-width: 1100px; margin: 0 auto; }</style>
</head>
<body>
  <div id="ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@` + swaggerUIVersion + `/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({ url: "/docs/openapi.yaml", dom_id: "#ui", deepLinking: true, persistAuthorization: true });
  </script>
</body>
</html>`

//go:embed docs/openapi.yaml
var openAPISpec []byte

var openAPIETag = contentETag(openAPISpec)

// SwaggerUI serves the interactive docs page for /docs/openapi.yaml.
func SwaggerUI(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(docsPage))
}

func OpenAPISpec(ctx *gin.Context) {
	ctx.Header("ETag", openAPIETag)
	ctx.Header("Cache-Control", "public, max-age=300")

	if etagMatches(ctx.GetHeader("If-None-Match"), openAPIETag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(http.StatusOK, "application/yaml; charset=utf-8", openAPISpec)
}
