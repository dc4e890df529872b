// Package output provides formatters for command output.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	md "github.com/nao1215/markdown"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Format types for output.
type Format string

const (
	// FormatTable represents table output format.
	FormatTable Format = "table"
	// FormatJSON represents JSON output format.
	FormatJSON Format = "json"
	// FormatYAML represents YAML output format.
	FormatYAML Format = "yaml"
	// FormatMarkdown represents GitHub flavored markdown output.
	FormatMarkdown Format = "markdown"
	// FormatCSV represents comma separated output.
	FormatCSV Format = "csv"
)

// Structured reports whether the format serializes domain values as is,
// rather than their tabular view.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatYAML
}

// Formatter interface for all output types.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// FormatterFunc allows functions to implement Formatter.
type FormatterFunc func(io.Writer, any) error

// Format implements the Formatter interface.
func (f FormatterFunc) Format(w io.Writer, data any) error {
	return f(w, data)
}

// NewFormatter creates appropriate formatter based on format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TableFormatter{}
	}
}

// Render writes raw with structured formats and view with the others.
func Render(w io.Writer, format Format, raw any, view any) error {
	formatter := NewFormatter(format)
	if format.Structured() {
		return formatter.Format(w, raw)
	}
	return formatter.Format(w, view)
}

// JSONFormatter outputs JSON format.
type JSONFormatter struct {
	Indent string
}

// Format implements the Formatter interface for JSON output.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(data)
}

// YAMLFormatter outputs YAML format.
type YAMLFormatter struct{}

// Format outputs data in YAML format.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	yamlData, err := yaml.MarshalWithOptions(data,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(yamlData)
	return err
}

// TableFormatter outputs table format.
type TableFormatter struct{}

// Format outputs data in table format.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return f.formatTable(w, v)
	case *Document:
		for i, s := range v.Sections {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if s.Heading != "" {
				fmt.Fprintf(w, "%s\n\n", s.Heading)
			}
			for _, line := range s.Text {
				fmt.Fprintln(w, line)
			}
			for _, item := range s.Bullets {
				fmt.Fprintf(w, "  - %s\n", item)
			}
			if s.Table != nil {
				if err := f.formatTable(w, *s.Table); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		// Fall back to JSON for non-table data
		jsonFormatter := &JSONFormatter{Indent: "  "}
		return jsonFormatter.Format(w, data)
	}
}

func (f *TableFormatter) formatTable(w io.Writer, data Data) error {
	config := tablewriter.Config{}

	if len(data.ColumnAlignment) > 0 {
		twAlign := make([]tw.Align, len(data.ColumnAlignment))
		for i, align := range data.ColumnAlignment {
			switch align {
			case AlignLeft:
				twAlign[i] = tw.AlignLeft
			case AlignCenter:
				twAlign[i] = tw.AlignCenter
			case AlignRight:
				twAlign[i] = tw.AlignRight
			default:
				twAlign[i] = tw.Skip
			}
		}

		config.Header.Alignment = tw.CellAlignment{PerColumn: twAlign}
		config.Row.Alignment = tw.CellAlignment{PerColumn: twAlign}
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))

	if len(data.Headers) > 0 {
		headers := make([]any, len(data.Headers))
		for i, h := range data.Headers {
			headers[i] = h
		}
		table.Header(headers...)
	}

	for _, row := range data.Rows {
		rowData := make([]any, len(row))
		for i, cell := range row {
			rowData[i] = cell
		}
		if err := table.Append(rowData...); err != nil {
			return err
		}
	}

	return table.Render()
}

// MarkdownFormatter outputs markdown tables and documents.
type MarkdownFormatter struct{}

// Format outputs data as markdown.
func (f *MarkdownFormatter) Format(w io.Writer, data any) error {
	doc := md.NewMarkdown(w)

	switch v := data.(type) {
	case Data:
		doc.Table(tableSet(v))
	case *Document:
		if v.Title != "" {
			doc.H1(v.Title).LF()
		}
		for _, s := range v.Sections {
			if s.Heading != "" {
				doc.H2(s.Heading).LF()
			}
			for _, line := range s.Text {
				doc.PlainText(line).LF()
			}
			if len(s.Bullets) > 0 {
				doc.BulletList(s.Bullets...).LF()
			}
			if s.Table != nil {
				doc.Table(tableSet(*s.Table)).LF()
			}
		}
	default:
		doc.CodeBlocks(md.SyntaxHighlight("json"), jsonString(data))
	}

	return doc.Build()
}

func tableSet(d Data) md.TableSet {
	rows := d.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return md.TableSet{Header: d.Headers, Rows: rows}
}

func jsonString(data any) string {
	var b strings.Builder
	if err := (&JSONFormatter{Indent: "  "}).Format(&b, data); err != nil {
		return fmt.Sprintf("%v", data)
	}
	return strings.TrimSpace(b.String())
}

// CSVFormatter outputs comma separated values. Documents are written as
// consecutive tables separated by a blank line.
type CSVFormatter struct{}

// Format outputs data as CSV.
func (f *CSVFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return f.write(w, v)
	case *Document:
		first := true
		for _, s := range v.Sections {
			if s.Table == nil {
				continue
			}
			if !first {
				fmt.Fprintln(w)
			}
			first = false
			if err := f.write(w, *s.Table); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("csv output needs tabular data, got %T", data)
	}
}

func (f *CSVFormatter) write(w io.Writer, d Data) error {
	cw := csv.NewWriter(w)
	if len(d.Headers) > 0 {
		if err := cw.Write(d.Headers); err != nil {
			return err
		}
	}
	if err := cw.WriteAll(d.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents data formatted for table output.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// Document is a titled sequence of sections, each holding text, a
// bullet list or a table.
type Document struct {
	Title    string
	Sections []Section
}

// Section is one part of a Document.
type Section struct {
	Heading string
	Text    []string
	Bullets []string
	Table   *Data
}

// DetectFormat auto-detects format based on terminal and environment.
func DetectFormat(explicitFormat string) Format {
	// Use explicit format if provided
	if explicitFormat != "" {
		return Format(strings.ToLower(explicitFormat))
	}

	// Check if output is a terminal
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}

	// Default to JSON for pipes/redirects
	return FormatJSON
}

// ParseFormat converts string to Format with validation.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, FormatMarkdown, FormatCSV, "":
		return format, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, json, yaml, markdown, csv", s)
	}
}

// Resolve validates an explicit format, or detects one from the terminal
// when none is given.
func Resolve(explicitFormat string) (Format, error) {
	if explicitFormat == "" {
		return DetectFormat(""), nil
	}
	return ParseFormat(explicitFormat)
}
