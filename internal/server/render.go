package server

import (
	"html/template"
	"net/http"
)

// The submitted code is the point of the page, so it is inserted
// unescaped.
var page = template.Must(template.New("fiddle").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{- if .Library}}
<meta name="shellpad-library" content="{{.Library}}">
{{- end}}
<style>
{{.CSS}}
</style>
</head>
<body>
{{.HTML}}
<script>
{{.JS}}
</script>
</body>
</html>
`))

type pageData struct {
	Title   string
	Library string
	HTML    template.HTML
	CSS     template.CSS
	JS      template.JS
}

func (s *Server) render(w http.ResponseWriter, f Fiddle) {
	data := pageData{
		Title:   f.Title,
		Library: f.Library,
		HTML:    template.HTML(f.HTML),
		CSS:     template.CSS(f.CSS),
		JS:      template.JS(f.JS),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, data); err != nil {
		s.logger.Warn("render %s: %v", f.Slug, err)
	}
}
