package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/matzehuels/chartdeck/pkg/buildinfo"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
	"github.com/matzehuels/chartdeck/pkg/session"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="nl">
<head>
<meta charset="utf-8">
<title>Grafieken</title>
{{- if .Running}}
<meta http-equiv="refresh" content="1">
{{- end}}
<style>
body { font-family: sans-serif; margin: 2rem; }
#notice { background: #fde7e9; border: 1px solid #c4314b; padding: .75rem; margin-bottom: 1rem; }
#indicator mark { background: #1d5fbf; color: white; }
#charts img { display: block; margin: 1rem 0; }
footer { color: #888; font-size: .8rem; }
</style>
</head>
<body>
{{- if .Notice}}
<div id="notice" role="alert">{{.Notice}}</div>
{{- end}}
<form method="post" action="/generate">
  <input id="graph-count" name="amount" type="number" min="{{.Min}}" max="{{.Max}}" value="{{.Amount}}"
    placeholder="Aantal grafieken (max. {{.Max}})"
    onchange="if (+this.value > {{.Max}}) this.value = {{.Max}}; if (+this.value < {{.Min}}) this.value = {{.Min}};">
  <button id="confirm" type="submit"{{if .Running}} disabled{{end}}>Genereer</button>
</form>
<form method="post" action="/export">
  <button id="export" type="submit"{{if not .CanExport}} disabled{{end}}>Exporteer naar Word</button>
</form>
<div id="indicator">{{if .Running}}<span>{{.Progress}}</span>{{end}}</div>
<div id="charts">
{{- range .Charts}}
  <img id="{{.}}" src="/charts/{{.}}.svg" alt="{{.}}">
{{- end}}
</div>
<footer>{{.Version}}</footer>
</body>
</html>
`))

type pageData struct {
	Min, Max  int
	Amount    string
	Notice    string
	Running   bool
	Progress  string
	CanExport bool
	Charts    []string
	Version   string
}

func (s *Server) renderPage(w http.ResponseWriter, ctrl *session.Controller, status int, notice, amount string) {
	st := statusOf(ctrl)
	data := pageData{
		Min:       pipeline.MinAmount,
		Max:       pipeline.MaxAmount,
		Amount:    amount,
		Notice:    notice,
		Running:   ctrl.Status().Running(),
		Progress:  st.Message,
		CanExport: st.CanExport,
		Charts:    st.Charts,
		Version:   buildinfo.Application(),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("render page", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
