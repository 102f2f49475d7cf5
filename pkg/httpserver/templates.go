package httpserver

import (
	"html/template"
	"net/http"
)

type indexData struct {
	Error             string
	SessionID         string
	ChangedPages      int
	RemovedPages      []int
	DownloadAnnotated string
	DownloadSBS       string
	DownloadSummary   string
	DownloadBundle    string
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>AIP PDF Compare</title>
    <style>
        body { font-family: -apple-system, Segoe UI, Helvetica, Arial, sans-serif; max-width: 720px; margin: 40px auto; color: #222; }
        h1 { font-size: 1.5em; }
        fieldset { border: 1px solid #ddd; border-radius: 6px; margin: 16px 0; padding: 12px 16px; }
        label { display: block; margin: 6px 0; }
        button { background: #c00; color: #fff; border: 0; border-radius: 4px; padding: 8px 18px; font-size: 1em; cursor: pointer; }
        .error { background: #fee; border: 1px solid #c00; padding: 8px 12px; border-radius: 4px; }
        .result { background: #f4fbf4; border: 1px solid #090; padding: 8px 12px; border-radius: 4px; }
        .result a { display: block; margin: 4px 0; }
    </style>
</head>
<body>
    <h1>AIP PDF Compare</h1>
    {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
    {{if .SessionID}}
    <div class="result">
        <p>Session <code>{{.SessionID}}</code>: {{.ChangedPages}} page(s) changed{{if .RemovedPages}}, old-only pages {{range $i, $p := .RemovedPages}}{{if $i}}, {{end}}{{$p}}{{end}}{{end}}.</p>
        {{if .DownloadAnnotated}}<a href="{{.DownloadAnnotated}}">Annotated latest (PDF)</a>{{end}}
        {{if .DownloadSBS}}<a href="{{.DownloadSBS}}">Side by side (PDF)</a>{{end}}
        {{if .DownloadSummary}}<a href="{{.DownloadSummary}}">Summary (JSON)</a>{{end}}
        {{if .DownloadBundle}}<a href="{{.DownloadBundle}}">Summary &amp; artifacts (tar.lz4)</a>{{end}}
    </div>
    {{end}}
    <form action="/compare" method="post" enctype="multipart/form-data">
        <fieldset>
            <legend>Documents</legend>
            <label>Old edition <input type="file" name="old_pdf" accept="application/pdf" required></label>
            <label>New edition <input type="file" name="new_pdf" accept="application/pdf" required></label>
        </fieldset>
        <fieldset>
            <legend>Options</legend>
            <label><input type="checkbox" name="add_front_summary" checked> Front summary page</label>
            <label><input type="checkbox" name="add_minima_panels" checked> Minima panels</label>
            <label><input type="checkbox" name="detect_courses" checked> Courses</label>
            <label><input type="checkbox" name="detect_dme" checked> DME distances</label>
            <label><input type="checkbox" name="detect_notes" checked> Notes and remarks</label>
        </fieldset>
        <button type="submit">Compare</button>
    </form>
</body>
</html>
`))

func renderIndex(w http.ResponseWriter, status int, data indexData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
