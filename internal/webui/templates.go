package webui

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/elleandro/studio-admin/internal/format"
	"github.com/elleandro/studio-admin/internal/progress"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

func loadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"fmtDate":     fmtDate,
		"fmtDateTime": fmtDateTime,
		"fmtNum":      fmtNum,
		"fmtNumInput": fmtNumInput,
		"fmtSigned":   fmtSigned,
		"maskPhone":   format.MaskPhone,
		"maskCPF":     format.MaskCPF,
		"capName":     format.CapitalizeName,
		"yesNo":       yesNo,
		"isTrue":      func(v *bool) bool { return v != nil && *v },
		"isFalse":     func(v *bool) bool { return v != nil && !*v },
		"points":      progress.Points,
	}

	t, err := template.New("webui").Funcs(funcs).ParseFS(templatesFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

func fmtDate(raw string) string {
	t := progress.ParseDate(raw)
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

func fmtDateTime(raw string) string {
	t := progress.ParseDate(raw)
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006 15:04")
}

// fmtNum renders an optional numeric value, "-" when absent.
func fmtNum(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// fmtNumInput renders an optional numeric value for a form input,
// empty when absent.
func fmtNumInput(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// fmtSigned renders an optional delta with an explicit sign, so gains
// and losses read apart at a glance in the report tables.
func fmtSigned(v *float64) string {
	if v == nil {
		return "-"
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if *v > 0 && !strings.HasPrefix(s, "+") {
		s = "+" + s
	}
	return s
}

func yesNo(v *bool) string {
	switch {
	case v == nil:
		return "—"
	case *v:
		return "Sim"
	default:
		return "Não"
	}
}

// datetimeLocalValue formats a raw upstream timestamp for a
// datetime-local form input.
func datetimeLocalValue(raw string) string {
	t := progress.ParseDate(raw)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02T15:04")
}

func nowDatetimeLocal() string {
	return time.Now().Format("2006-01-02T15:04")
}
