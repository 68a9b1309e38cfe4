package ast

import "testing"

func TestNewFormatSpecDefaults(t *testing.T) {
	spec := NewFormatSpec()

	if spec.Min != 0 {
		t.Errorf("Min = %d, want 0", spec.Min)
	}
	if spec.Bounded() {
		t.Error("new spec should be unbounded")
	}
	if spec.Justify != JustifyRight {
		t.Errorf("Justify = %v, want right", spec.Justify)
	}
	if spec.Leader != ' ' {
		t.Errorf("Leader = %q, want ' '", spec.Leader)
	}
}

func TestFormatSpecString(t *testing.T) {
	tests := []struct {
		spec     FormatSpec
		expected string
	}{
		{FormatSpec{Max: MaxUnbounded, Leader: ' '}, ""},
		{FormatSpec{Min: 8, Max: MaxUnbounded, Leader: ' '}, "8"},
		{FormatSpec{Min: 8, Max: MaxUnbounded, Justify: JustifyLeft, Leader: ' '}, "-8"},
		{FormatSpec{Min: 8, Max: MaxUnbounded, Justify: JustifyCenter, Leader: ' '}, "=8"},
		{FormatSpec{Min: 8, Max: MaxUnbounded, Leader: '0'}, "08"},
		{FormatSpec{Min: 8, Max: 8, Leader: ' '}, "8.8"},
		{FormatSpec{Max: 4, Leader: ' '}, ".4"},
	}

	for _, tt := range tests {
		if got := tt.spec.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestNodeString(t *testing.T) {
	field := func(token string) *FieldNode {
		return &FieldNode{Token: token, Format: NewFormatSpec()}
	}
	branch := func(nodes ...Node) *ContainerNode {
		return &ContainerNode{Children: nodes}
	}

	tests := []struct {
		name     string
		node     Node
		expected string
	}{
		{"text", &TextNode{Value: "if: "}, "if: "},
		{"bare field", field("a"), "%a"},
		{
			"field with spec",
			&FieldNode{Token: "n", Format: &FormatSpec{Min: 10, Max: MaxUnbounded, Justify: JustifyLeft, Leader: ' '}},
			"%-10n",
		},
		{
			"conditional",
			&ConditionalNode{
				Condition: &FieldNode{Token: "a"},
				IfTrue:    branch(field("b")),
				IfFalse:   branch(field("c")),
			},
			"%<a?%b&%c>",
		},
		{
			"conditional with absent false branch",
			&ConditionalNode{
				Condition: &FieldNode{Token: "a"},
				IfTrue:    branch(field("b")),
			},
			"%<a?%b>",
		},
		{
			"conddate condition",
			&ConditionalNode{
				Condition: &CondDateNode{Count: 3, Period: PeriodDay},
				IfTrue:    branch(&TextNode{Value: "new"}),
			},
			"%<3d?new>",
		},
		{
			"count-zero conddate condition",
			&ConditionalNode{
				Condition: &CondDateNode{Count: 0, Period: PeriodWeek},
				IfTrue:    branch(&TextNode{Value: "this week"}),
			},
			"%<w?this week>",
		},
		{
			"padding",
			&PaddingNode{
				Style: PadHard,
				Char:  ".",
				Left:  branch(field("a")),
				Right: branch(field("b")),
			},
			"%a%>.%b",
		},
		{
			"sequence",
			branch(&TextNode{Value: "x "}, field("a")),
			"x %a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestValidPeriod(t *testing.T) {
	for _, c := range []byte("ymwdHM") {
		if !ValidPeriod(c) {
			t.Errorf("ValidPeriod(%c) = false, want true", c)
		}
	}
	for _, c := range []byte("xYhD0 ?") {
		if ValidPeriod(c) {
			t.Errorf("ValidPeriod(%c) = true, want false", c)
		}
	}
}
