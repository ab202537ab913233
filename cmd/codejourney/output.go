package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/khoahotran/codejourney/adapters/terminal"
	"github.com/khoahotran/codejourney/internal/domain/session"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"

	lastUpdatedLayout = "1/2/2006, 3:04:05 PM"
)

func writeView(w io.Writer, format string, v *session.View) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprint(w, terminal.NewRenderer(v.Theme).RenderView(*v, formatLastUpdated(v.LastUpdated)))
		return err
	}
}

func formatLastUpdated(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(lastUpdatedLayout)
}
