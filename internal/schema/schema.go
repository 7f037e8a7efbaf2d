// Package schema compares the backend's OpenAPI document with the
// endpoints the client calls.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/pscapp/psc/internal/api"
)

// Finding codes.
const (
	CodeMissingPath   = "MISSING_API_PATH"
	CodeMissingMethod = "MISSING_API_METHOD"
)

// Finding is one catalog endpoint the document does not describe.
type Finding struct {
	Code     string       `json:"code"`
	Endpoint api.Endpoint `json:"endpoint"`
	Message  string       `json:"message"`
}

// Report is the outcome of a schema check.
type Report struct {
	Title           string    `json:"title"`
	Version         string    `json:"version"`
	Paths           int       `json:"paths"`
	Checked         int       `json:"checked"`
	Findings        []Finding `json:"findings"`
	ValidationError string    `json:"validation_error,omitempty"`
}

// OK reports whether every checked endpoint was found.
func (r *Report) OK() bool {
	return len(r.Findings) == 0
}

// Document is a loaded OpenAPI document.
type Document struct {
	doc *openapi3.T
}

// Load parses an OpenAPI document from JSON or YAML.
func Load(data []byte) (*Document, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Fetch downloads the backend document through d.
func Fetch(ctx context.Context, d api.Doer) (*Document, error) {
	var raw json.RawMessage
	if err := d.Do(ctx, api.Get(api.PathSchema), &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("backend returned an empty schema")
	}
	return Load(raw)
}

// Check fetches the document and checks catalog against it.
func Check(ctx context.Context, d api.Doer, catalog []api.Endpoint) (*Report, error) {
	doc, err := Fetch(ctx, d)
	if err != nil {
		return nil, err
	}
	return doc.Report(ctx, catalog), nil
}

// Report checks catalog against the document. Structural problems in the
// document are recorded, not returned, so a sloppy schema still yields
// endpoint findings.
func (d *Document) Report(ctx context.Context, catalog []api.Endpoint) *Report {
	r := &Report{
		Checked:  len(catalog),
		Findings: d.Missing(catalog),
	}
	if d.doc.Info != nil {
		r.Title = d.doc.Info.Title
		r.Version = d.doc.Info.Version
	}
	if d.doc.Paths != nil {
		r.Paths = d.doc.Paths.Len()
	}
	if err := d.doc.Validate(ctx); err != nil {
		r.ValidationError = err.Error()
	}
	return r
}

// Missing returns a finding for every endpoint whose path or method is not
// in the document, in catalog order.
func (d *Document) Missing(catalog []api.Endpoint) []Finding {
	var findings []Finding
	for _, ep := range catalog {
		path := normalizePath(ep.Path)
		method := strings.ToUpper(ep.Method)

		items := d.find(path)
		if len(items) == 0 {
			findings = append(findings, Finding{
				Code:     CodeMissingPath,
				Endpoint: ep,
				Message:  fmt.Sprintf("path not found in schema: %s %s", method, path),
			})
			continue
		}
		if !hasOperation(items, method) {
			findings = append(findings, Finding{
				Code:     CodeMissingMethod,
				Endpoint: ep,
				Message:  fmt.Sprintf("method not found in schema: %s %s", method, path),
			})
		}
	}
	return findings
}

func hasOperation(items []*openapi3.PathItem, method string) bool {
	for _, item := range items {
		if item.GetOperation(method) != nil {
			return true
		}
	}
	return false
}

// Operations lists "METHOD path" for every operation in the document, sorted.
func (d *Document) Operations() []string {
	var ops []string
	if d.doc.Paths == nil {
		return ops
	}
	for path, item := range d.doc.Paths.Map() {
		for method := range item.Operations() {
			ops = append(ops, method+" "+path)
		}
	}
	sort.Strings(ops)
	return ops
}

// find returns the document paths that match path best, ignoring
// parameter names and a trailing slash. A path whose segments line up
// exactly (literal with literal, parameter with parameter) beats one that
// only matches through a parameter wildcard, so /mock-tests/{id}/ and
// /mock-tests/generate/ never stand in for each other.
func (d *Document) find(path string) []*openapi3.PathItem {
	if d.doc.Paths == nil {
		return nil
	}
	want := segments(path)

	var best []*openapi3.PathItem
	bestScore := -1
	for specPath, item := range d.doc.Paths.Map() {
		score, ok := matchSegments(want, segments(normalizePath(specPath)))
		switch {
		case !ok || score < bestScore:
		case score > bestScore:
			best, bestScore = []*openapi3.PathItem{item}, score
		default:
			best = append(best, item)
		}
	}
	return best
}

func segments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// matchSegments reports whether a and b match and how many segments line
// up exactly.
func matchSegments(a, b []string) (int, bool) {
	if len(a) != len(b) {
		return 0, false
	}
	score := 0
	for i := range a {
		pa, pb := isParam(a[i]), isParam(b[i])
		switch {
		case pa && pb, !pa && !pb && a[i] == b[i]:
			score++
		case pa || pb:
		default:
			return 0, false
		}
	}
	return score, true
}

func isParam(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}

// normalizePath drops the query and ensures a leading slash.
func normalizePath(path string) string {
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
