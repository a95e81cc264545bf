package handlers

import (
	"html/template"
	"net/http"

	"github.com/ltst/latest-block/block"
	"github.com/ltst/latest-block/logging"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Latest Block</title>
  <link rel="stylesheet" href="/static/app.css">
</head>
<body>
  <div id="block">
{{.Block}}
  </div>
  <script src="/static/app.js" defer></script>
</body>
</html>
`

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

// CreatePageHandler serves the page wrapping the server-rendered block.
// The embedded script upgrades it to the websocket-driven live version.
func CreatePageHandler(b *block.Block, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		blockHTML, err := b.RenderHTML()
		if err != nil {
			logger.Error("Failed to render block", map[string]interface{}{"error": err.Error()})
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := pageTmpl.Execute(w, struct{ Block template.HTML }{Block: template.HTML(blockHTML)}); err != nil {
			logger.Error("Failed to render page", map[string]interface{}{"error": err.Error()})
		}
	}
}

// CreateSubmitHandler handles the form POST fallback when no websocket
// session is active. The submit runs synchronously and the browser is
// redirected back to the page.
func CreateSubmitHandler(b *block.Block) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		b.Submit(r.Context(), r.FormValue("channelId"))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// CreateResetHandler handles the reset fallback link
func CreateResetHandler(b *block.Block) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		b.Reset()
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
