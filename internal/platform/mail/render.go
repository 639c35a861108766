// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/taibuivan/authd/internal/platform/constants"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type layout struct {
	subject  string
	template string
}

var layouts = map[Kind]layout{
	KindVerification:  {subject: "Email Verification", template: "verification.html"},
	KindPasswordReset: {subject: "Password Reset", template: "password_reset.html"},
}

// Render turns a job into a message. Name is HTML-escaped by the template.
func Render(job Job) (Message, error) {
	chosen, ok := layouts[job.Kind]
	if !ok {
		return Message{}, fmt.Errorf("mail: unknown job kind %q", job.Kind)
	}

	var body bytes.Buffer
	err := templates.ExecuteTemplate(&body, chosen.template, map[string]string{
		"App":  constants.AppName,
		"Name": job.Name,
		"Code": job.Code,
	})
	if err != nil {
		return Message{}, fmt.Errorf("mail: failed to render %s: %w", job.Kind, err)
	}

	return Message{To: job.To, Subject: chosen.subject, HTML: body.String()}, nil
}
