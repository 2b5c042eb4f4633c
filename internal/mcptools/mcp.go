// Package mcptools exposes the slide engine as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dgallion1/slidedit/internal/document"
	"github.com/dgallion1/slidedit/internal/extract"
	"github.com/dgallion1/slidedit/internal/schema"
	"github.com/dgallion1/slidedit/internal/synth"
)

// Register adds the slide tools to srv. defaultVariant applies when a call
// names no variant.
func Register(srv *mcp.Server, defaultVariant schema.Variant) {
	t := &tools{variant: defaultVariant}
	t.registerExtract(srv)
	t.registerHeadings(srv)
	t.registerApply(srv)
}

type tools struct {
	variant schema.Variant
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var (
	htmlProp    = map[string]any{"type": "string", "description": "Slide HTML document"}
	variantProp = map[string]any{"type": "string", "enum": []string{"footer", "notes"}, "description": "Template variant"}
)

// addTool registers a tool whose handler decodes arguments into a fresh
// request and returns a JSON-encoded response as text content.
func addTool[Req any](srv *mcp.Server, tool *mcp.Tool, fn func(context.Context, *Req) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r Req
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				var res mcp.CallToolResult
				res.SetError(fmt.Errorf("invalid arguments: %w", err))
				return &res, nil
			}
		}

		resp, err := fn(ctx, &r)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(err)
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func (t *tools) schemaFor(name string) (*schema.Schema, error) {
	if name == "" {
		return schema.For(t.variant), nil
	}
	v, err := schema.ParseVariant(name)
	if err != nil {
		return nil, err
	}
	return schema.For(v), nil
}

// --- slide_extract ---

type extractReq struct {
	HTML    string `json:"html"`
	Variant string `json:"variant"`
}

func (t *tools) registerExtract(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "slide_extract",
		Description: "Read the editable fields (title, side labels, sections, notes or footer) from an AS-IS / TO-BE slide.",
		InputSchema: inputSchema(map[string]any{
			"html":    htmlProp,
			"variant": variantProp,
		}, []string{"html"}),
	}
	addTool(srv, tool, func(_ context.Context, r *extractReq) (any, error) {
		s, err := t.schemaFor(r.Variant)
		if err != nil {
			return nil, err
		}
		doc := document.ParseString(r.HTML)
		return map[string]any{
			"variant": s.Variant,
			"fields":  extract.Extract(doc, s),
		}, nil
	})
}

// --- slide_headings ---

type headingsReq struct {
	HTML string `json:"html"`
}

func (t *tools) registerHeadings(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "slide_headings",
		Description: "Detect the section headings, notes heading and declared language of a slide.",
		InputSchema: inputSchema(map[string]any{
			"html": htmlProp,
		}, []string{"html"}),
	}
	addTool(srv, tool, func(_ context.Context, r *headingsReq) (any, error) {
		return extract.DetectHeadings(document.ParseString(r.HTML)), nil
	})
}

// --- slide_apply ---

type applyReq struct {
	HTML    string            `json:"html"`
	Fields  map[string]string `json:"fields"`
	Variant string            `json:"variant"`
	Lang    string            `json:"lang"`
}

func (t *tools) registerApply(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "slide_apply",
		Description: "Write field values into a slide and return the edited HTML. Missing fields take their defaults; an empty html uses the built-in skeleton. lang (sl or en) relabels the section headings.",
		InputSchema: inputSchema(map[string]any{
			"html":    htmlProp,
			"fields":  map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "string"}, "description": "Field values by name"},
			"variant": variantProp,
			"lang":    map[string]any{"type": "string", "enum": []string{"sl", "en"}, "description": "Heading language"},
		}, nil),
	}
	addTool(srv, tool, func(_ context.Context, r *applyReq) (any, error) {
		s, err := t.schemaFor(r.Variant)
		if err != nil {
			return nil, err
		}
		lang := schema.ParseLang(r.Lang)
		if r.Lang != "" && !lang.Valid() {
			return nil, fmt.Errorf("unsupported lang %q", r.Lang)
		}

		var base *document.Document
		if r.HTML != "" {
			base = document.ParseString(r.HTML)
		}
		out := synth.Synthesize(base, s, schema.FieldMap(r.Fields), lang)

		var ignored []string
		for name := range r.Fields {
			if !s.Has(name) {
				ignored = append(ignored, name)
			}
		}
		sort.Strings(ignored)
		return map[string]any{
			"html":    out.String(),
			"ignored": ignored,
		}, nil
	})
}
