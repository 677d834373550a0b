package main

import (
	"reflect"
	"testing"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name      string
		raw       []string
		wantArgs  []string
		wantFlags []string
	}{
		{
			name:     "positionalOnly",
			raw:      []string{"week"},
			wantArgs: []string{"week"},
		},
		{
			name:      "equalsForm",
			raw:       []string{"week", "--api.url=http://x"},
			wantArgs:  []string{"week"},
			wantFlags: []string{"--api.url=http://x"},
		},
		{
			name:      "spaceForm",
			raw:       []string{"--api.url", "http://x", "week"},
			wantArgs:  []string{"week"},
			wantFlags: []string{"--api.url=http://x"},
		},
		{
			name:      "boolFlagKeepsNextArg",
			raw:       []string{"--watch", "extra"},
			wantArgs:  []string{"extra"},
			wantFlags: []string{"--watch"},
		},
		{
			name:      "flagFollowedByFlag",
			raw:       []string{"--log.level", "--watch"},
			wantFlags: []string{"--log.level", "--watch"},
		},
		{
			name:      "trailingFlag",
			raw:       []string{"--log.level"},
			wantFlags: []string{"--log.level"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, flags := splitArgs(tt.raw)
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("splitArgs() args = %v, want %v", args, tt.wantArgs)
			}
			if !reflect.DeepEqual(flags, tt.wantFlags) {
				t.Errorf("splitArgs() flags = %v, want %v", flags, tt.wantFlags)
			}
		})
	}
}

func TestWithoutFlag(t *testing.T) {
	got := withoutFlag([]string{"--watch", "--api.url=http://x"}, "--watch")
	want := []string{"--api.url=http://x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("withoutFlag() = %v, want %v", got, want)
	}
}
