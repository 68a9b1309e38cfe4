package render

import (
	"testing"

	"github.com/sambeau/expando/pkg/expando/ast"
	perrors "github.com/sambeau/expando/pkg/expando/errors"
	"github.com/sambeau/expando/pkg/expando/parser"
)

// testItem is the data context used by render tests.
type testItem struct {
	name  string
	size  int64
	fresh bool
}

const testDomain = 2

const (
	uidName = iota + 1
	uidSize
	uidFresh
)

var testDefs = []parser.Definition{
	{Token: "n", Description: "name", Did: testDomain, Uid: uidName, Type: parser.TypeString},
	{Token: "s", Description: "size", Did: testDomain, Uid: uidSize, Type: parser.TypeNumber},
	{Token: "F", Description: "fresh flag", Did: testDomain, Uid: uidFresh, Type: parser.TypeNumber},
}

func testRegistry() *Registry {
	reg := NewRegistry()
	reg.AddString(testDomain, uidName, func(_ ast.Node, data any, _ RenderFlags) string {
		return data.(*testItem).name
	})
	reg.AddNumber(testDomain, uidSize, func(_ ast.Node, data any, _ RenderFlags) int64 {
		return data.(*testItem).size
	})
	reg.AddNumber(testDomain, uidFresh, func(_ ast.Node, data any, _ RenderFlags) int64 {
		if data.(*testItem).fresh {
			return 1
		}
		return 0
	})
	return reg
}

// renderString parses and renders source in one step.
func renderString(t *testing.T, source string, item *testItem, maxCols int) string {
	t.Helper()
	root, err := parser.Parse(source, testDefs)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return Render(root, testRegistry(), item, maxCols)
}

func TestRenderFields(t *testing.T) {
	item := &testItem{name: "inbox", size: 4096, fresh: true}

	tests := []struct {
		source   string
		expected string
	}{
		{"plain", "plain"},
		{"%n", "inbox"},
		{"%s", "4096"}, // number formatted as decimal
		{"name: %-8n|", "name: inbox   |"},
		{"%8s", "    4096"},
		{"%08s", "00004096"},
		{"%.3n", "inb"},
		{"%8.8n", "   inbox"},
		{"%=9n", "  inbox  "},
		{"a %n b %s", "a inbox b 4096"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := renderString(t, tt.source, item, 80)
			if got != tt.expected {
				t.Errorf("render = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRenderConditionals(t *testing.T) {
	fresh := &testItem{name: "inbox", size: 10, fresh: true}
	stale := &testItem{name: "", size: 0, fresh: false}

	tests := []struct {
		source   string
		item     *testItem
		expected string
	}{
		{"%<F?new&old>", fresh, "new"},
		{"%<F?new&old>", stale, "old"},
		{"%<F?new>", stale, ""},             // absent false branch renders nothing
		{"%<F?&old>", fresh, ""},            // absent true branch renders nothing
		{"%<n?named&anon>", fresh, "named"}, // string truthiness
		{"%<n?named&anon>", stale, "anon"},
		{"%<s?%s&none>", stale, "none"},
		{"[%<F?%<s?both&size only>&neither>]", fresh, "[both]"},
		{"[%<F?%<s?both&size only>&neither>]", stale, "[neither]"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := renderString(t, tt.source, tt.item, 80)
			if got != tt.expected {
				t.Errorf("render = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRenderBudget(t *testing.T) {
	item := &testItem{name: "elderberry", size: 123456}

	tests := []struct {
		source   string
		maxCols  int
		expected string
	}{
		{"abcdef", 3, "abc"},
		{"%n", 4, "elde"},
		{"%n %s", 12, "elderberry 1"},
		{"%n", 0, ""},
		{"wide 日本語", 7, "wide 日"}, // a half-covered wide rune is dropped
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := renderString(t, tt.source, item, tt.maxCols)
			if got != tt.expected {
				t.Errorf("render = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRenderPadding(t *testing.T) {
	item := &testItem{name: "inbox", size: 7}

	tests := []struct {
		source   string
		maxCols  int
		expected string
	}{
		// Fill: left half then filler to the end; right half discarded.
		{"%n%|-", 10, "inbox-----"},
		{"%n%|-discarded", 10, "inbox-----"},
		// Hard: right half flush to the margin.
		{"%n%>.%s", 10, "inbox....7"},
		{"%n%> %s", 12, "inbox      7"},
		// Soft: right half wins the budget, left is squeezed.
		{"%n%*.end", 10, "inbox..end"},
		{"%n%*.irresistible", 12, "irresistible"},
		// Fill with no left half.
		{"%|=", 4, "===="},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := renderString(t, tt.source, item, tt.maxCols)
			if got != tt.expected {
				t.Errorf("render = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMissingProviderPanics(t *testing.T) {
	root, err := parser.Parse("%n", testDefs)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic for the missing provider")
		}
		ee, ok := r.(*perrors.ExpandoError)
		if !ok {
			t.Fatalf("panicked with %T, want *ExpandoError", r)
		}
		if ee.Code != "CONTRACT-0001" {
			t.Errorf("code = %s, want CONTRACT-0001", ee.Code)
		}
	}()

	Render(root, NewRegistry(), &testItem{}, 80)
}

func TestRegistryValidate(t *testing.T) {
	full := testRegistry()
	if err := full.Validate(testDefs); err != nil {
		t.Errorf("complete registry failed validation: %v", err)
	}

	missing := NewRegistry()
	missing.AddString(testDomain, uidName, func(_ ast.Node, _ any, _ RenderFlags) string { return "" })
	err := missing.Validate(testDefs)
	if err == nil {
		t.Fatal("expected validation to fail for missing providers")
	}
	ee, ok := err.(*perrors.ExpandoError)
	if !ok {
		t.Fatalf("error is %T, want *ExpandoError", err)
	}
	if ee.Code != "CONTRACT-0001" {
		t.Errorf("code = %s, want CONTRACT-0001", ee.Code)
	}

	// A number-typed token whose provider only produces strings.
	stringOnly := testRegistry()
	stringOnly.AddString(testDomain, uidSize, func(_ ast.Node, _ any, _ RenderFlags) string { return "big" })
	err = stringOnly.Validate(testDefs)
	if err == nil {
		t.Fatal("expected validation to fail for the string-only number provider")
	}
	if err.(*perrors.ExpandoError).Code != "CONTRACT-0003" {
		t.Errorf("code = %s, want CONTRACT-0003", err.(*perrors.ExpandoError).Code)
	}
}

func TestConcurrentRenders(t *testing.T) {
	root, err := parser.Parse("%-8n %s %<F?+&->", testDefs)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	reg := testRegistry()

	items := []*testItem{
		{name: "one", size: 1, fresh: true},
		{name: "two", size: 2},
		{name: "three", size: 3, fresh: true},
	}
	want := []string{
		"one      1 +",
		"two      2 -",
		"three    3 +",
	}

	done := make(chan int, len(items))
	for i := range items {
		go func(i int) {
			got := Render(root, reg, items[i], 80)
			if got != want[i] {
				t.Errorf("item %d: render = %q, want %q", i, got, want[i])
			}
			done <- i
		}(i)
	}
	for range items {
		<-done
	}
}
