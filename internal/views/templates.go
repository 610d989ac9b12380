package views

import (
	"bytes"
	"html/template"
)

var popupTemplate = template.Must(template.New("popup").Parse(
	`<div class="vehicle-popup"><strong>{{.ID}}</strong><br>` +
		`<span class="status status-{{.Status}}">{{.StatusLabel}}</span><br>` +
		`{{.Speed}} · {{.Heading}}<br>` +
		`<time>{{.ObservedAt}}</time></div>`))

var sidebarTemplate = template.Must(template.New("sidebar").Parse(`<div class="fleet-summary">
  <span class="count total">{{.Counts.Total}}</span>
  <span class="count available">{{.Counts.Available}}</span>
  <span class="count busy">{{.Counts.Busy}}</span>
  <span class="count offline">{{.Counts.Offline}}</span>
</div>
<ul class="vehicle-list">
{{- range .Entries}}
  <li class="vehicle-item status-{{.Status}}{{if .Selected}} selected{{end}}" data-vehicle-id="{{.ID}}">
    <strong>{{.ID}}</strong>
    <span class="status">{{.StatusLabel}}</span>
    <span class="speed">{{.Speed}}</span>
    <span class="heading">{{.Heading}}</span>
    <time>{{.ObservedAt}}</time>
  </li>
{{- end}}
</ul>`))

func render(tmpl *template.Template, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	// Output of html/template is already escaped.
	return template.HTML(buf.String()), nil
}
