package agent

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

var responseTemplates = template.Must(template.New("responses").Funcs(sprig.FuncMap()).Parse(`
{{- define "calculate" -}}
I calculated {{ .A }} + {{ .B }} = {{ .Result }}
{{- end -}}
{{- define "remember" -}}
Here's what I remember:
{{ .Digest }}
{{- end -}}
{{- define "actions" -}}
I can perform these actions: {{ join ", " .Actions }}
{{- end -}}
{{- define "introduce" -}}
I'm {{ .Name }}, a {{ .Personality }}. I heard you say: '{{ .Prompt }}'. I have {{ .RecentCount }} recent memories and can perform these actions: {{ join ", " .Actions }}
{{- end -}}
`))

func renderResponse(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := responseTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
