package compose

import "html/template"

const layoutHead = `<html>
<body style="font-family: Arial, sans-serif; background-color: #f0f8ff; padding: 20px;">
<div style="background-color: white; padding: 30px; border-radius: 10px; box-shadow: 0 4px 6px rgba(0,0,0,0.1);">
<h1 style="color: #2E8B57; text-align: center;">{{.Heading}}</h1>
<p style="font-size: 18px; color: #333; line-height: 1.6;">{{.Body}}</p>
`

const layoutTail = `</div>
</body>
</html>
`

var layouts = map[Layout]*template.Template{
	LayoutMorning: template.Must(template.New("morning").Parse(layoutHead + `<div style="background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
<h3 style="color: #2E8B57;">Today's {{.Project}} Focus Areas:</h3>
<ul style="color: #555;">
{{range .FocusAreas}}<li>{{.}}</li>
{{end}}</ul>
</div>
<div style="text-align: center; margin-top: 30px;">
<p style="color: #666; font-style: italic;">Every great company started with a single idea and determination.</p>
<p style="color: #2E8B57; font-weight: bold;">You've got this!</p>
</div>
` + layoutTail)),

	LayoutEvening: template.Must(template.New("evening").Parse(layoutHead + `<div style="background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
<h3 style="color: #2E8B57;">Today's Progress Summary for {{.Date}}:</h3>
{{if .VideoAttached}}{{if .VideoDegraded}}<p style="color: #555;">Your daily reminder video is attached. Narration could not be added today, so it plays without sound.</p>
{{else}}<p style="color: #555;">I've created a daily video reminder for you. Check the attachment for your {{.Project}} motivation video.</p>
{{end}}{{else}}<p style="color: #555;">No video today, but the reminder still stands.</p>
{{end}}</div>
<div style="text-align: center; margin-top: 30px;">
<p style="color: #666; font-style: italic;">Tomorrow is another opportunity to make {{.Project}} even better!</p>
<p style="color: #2E8B57; font-weight: bold;">Keep shining!</p>
</div>
` + layoutTail)),

	LayoutTest: template.Must(template.New("test").Parse(layoutHead + `<div style="text-align: center; margin-top: 30px;">
<p style="color: #2E8B57; font-weight: bold;">Your {{.Project}} reminder system is ready.</p>
</div>
` + layoutTail)),
}
