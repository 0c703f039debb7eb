package main

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mitchellh/colorstring"

	orchestrators "github.com/ochairo/pyprobe/internal/domain-orchestrators"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"3.11,3.12", []string{"3.11", "3.12"}},
		{" 2.7 , 3.14 ,", []string{"2.7", "3.14"}},
		{"", nil},
		{",,", nil},
	}

	for _, tt := range tests {
		if got := splitTags(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitTags(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatOutcome(t *testing.T) {
	plain := colorstring.Colorize{Colors: colorstring.DefaultColors, Disable: true}
	colored := colorstring.Colorize{Colors: colorstring.DefaultColors, Reset: true}

	tests := []struct {
		name    string
		outcome orchestrators.SmokeOutcome
		color   colorstring.Colorize
		want    string
	}{
		{
			name:    "success",
			outcome: orchestrators.SmokeOutcome{Image: "python:3.12-slim"},
			color:   plain,
			want:    "✓ python:3.12-slim",
		},
		{
			name:    "non-zero exit",
			outcome: orchestrators.SmokeOutcome{Image: "python:2.7-slim", ExitCode: 1},
			color:   plain,
			want:    "✗ python:2.7-slim: exit 1",
		},
		{
			name:    "brackets in image and error kept verbatim",
			outcome: orchestrators.SmokeOutcome{Image: "python:[bold]3.9", Error: errors.New("no such [red] binary")},
			color:   colored,
			want:    "\033[31m✗\033[0m python:[bold]3.9: no such [red] binary",
		},
		{
			name:    "brackets in image on success",
			outcome: orchestrators.SmokeOutcome{Image: "python:[reset]3.11"},
			color:   plain,
			want:    "✓ python:[reset]3.11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatOutcome(tt.outcome, tt.color); got != tt.want {
				t.Errorf("formatOutcome() = %q, want %q", got, tt.want)
			}
		})
	}
}
