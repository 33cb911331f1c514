package burger

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lvillar/pdfburger"
	"github.com/lvillar/pdfburger/history"
)

// Format selects how dry-run listings, reports and history are written.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatYAML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (available: text, yaml, json)", s)
	}
}

type dryRunDoc struct {
	Output   string   `json:"output" yaml:"output"`
	Files    []string `json:"files" yaml:"files"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}

type reportDoc struct {
	pdfburger.Report `yaml:",inline"`
	Warnings         []string `json:"warnings" yaml:"warnings"`
}

// encode writes v to w as YAML or indented JSON.
func encode(w io.Writer, f Format, v any) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatYAML:
		data, err = yaml.Marshal(v)
	default:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encoding %s output: %w", f, err)
	}
	_, err = w.Write(data)
	return err
}

// writeRuns prints recorded runs as a table.
func writeRuns(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no runs recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tFILES\tPAGES\tDURATION\tOUTPUT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Status,
			r.FileCount,
			r.PageCount,
			r.Duration.Round(time.Millisecond),
			r.Output,
		)
	}
	return tw.Flush()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
