package core

import (
	"reflect"
	"testing"
)

func TestSplitLogicalLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: "  \n\t\n  ",
			want: nil,
		},
		{
			name: "plain lines",
			text: "a,b\nc,d\ne,f",
			want: []string{"a,b", "c,d", "e,f"},
		},
		{
			name: "newline inside quotes stays in the line",
			text: "h\n1,\"two\nlines\",3\n4,5,6",
			want: []string{"h", "1,\"two\nlines\",3", "4,5,6"},
		},
		{
			name: "surrounding whitespace ignored",
			text: "\n\n h1\nrow \n\n",
			want: []string{"h1", "row"},
		},
		{
			name: "blank line between rows is kept as an empty line",
			text: "h\na\n\nb",
			want: []string{"h", "a", "", "b"},
		},
		{
			name: "unbalanced quote swallows the rest",
			text: "h\n\"open\nstill open\nend",
			want: []string{"h", "\"open\nstill open\nend"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLogicalLines(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLogicalLines(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSplitColumns(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "empty line",
			line: "",
			want: []string{""},
		},
		{
			name: "simple split with trimming",
			line: " a , b ,c ",
			want: []string{"a", "b", "c"},
		},
		{
			name: "comma inside quotes",
			line: `x,"fake, urgent",y`,
			want: []string{"x", "fake, urgent", "y"},
		},
		{
			name: "quotes are dropped",
			line: `"a","b"`,
			want: []string{"a", "b"},
		},
		{
			name: "trailing comma yields empty column",
			line: "a,b,",
			want: []string{"a", "b", ""},
		},
		{
			name: "newline inside quotes kept",
			line: "1,\"two\nlines\"",
			want: []string{"1", "two\nlines"},
		},
		{
			name: "unbalanced quote keeps commas",
			line: `a,"b,c`,
			want: []string{"a", "b,c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitColumns(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitColumns(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
