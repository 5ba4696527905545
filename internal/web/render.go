// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/samber/oops"
)

//go:embed templates/*.html
var templatesFS embed.FS

// templates holds the parsed page templates, one named after each file.
var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// render executes a template into a buffer first so a template fault
// yields a clean 500 instead of a half-written page.
func render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return oops.Code("RENDER_FAILED").
			With("template", name).
			Wrap(err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w) //nolint:errcheck // client gone, nothing to do
	return nil
}
