package chat

import (
	"reflect"
	"testing"
)

func TestIsTabular(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "csv", in: "a,b\nc,d", want: true},
		{name: "markdown bold", in: "**hello**", want: false},
		{name: "single line with comma", in: "one, two", want: false},
		{name: "multiline without comma", in: "one\ntwo", want: false},
		{name: "prose with comma across lines", in: "well, yes\nindeed", want: true},
		{name: "empty", in: "", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTabular(tc.in); got != tc.want {
				t.Fatalf("IsTabular(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	got := ParseCSV("a,b\nc,d")
	want := [][]string{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseCSV = %v, want %v", got, want)
	}
}

func TestParseCSV_RaggedRows(t *testing.T) {
	got := ParseCSV("h1,h2,h3\nv1,v2")
	want := [][]string{{"h1", "h2", "h3"}, {"v1", "v2"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseCSV = %v, want %v", got, want)
	}
}
