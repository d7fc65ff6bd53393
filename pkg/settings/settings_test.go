package settings

import (
	"testing"
)

func TestNewCliParams(t *testing.T) {
	tests := []struct {
		name string
		want *Run
	}{
		{
			name: "default CLI params",
			want: &Run{
				MinLogLevel: 0,
				Source:      Source{Kind: SourceFile},
				IsQuiet:     false,
				NoColor:     false,
				ExitOnError: true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewCliParams()
			if *got != *tt.want {
				t.Errorf("NewCliParams() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSourceName(t *testing.T) {
	tests := []struct {
		src  Source
		want string
	}{
		{Source{Kind: SourceFile, Path: "data.json"}, "data.json"},
		{Source{Kind: SourceStdin}, "stdin"},
		{Source{Kind: SourceHTTP, Path: "upload.yaml"}, "upload.yaml"},
	}
	for _, tt := range tests {
		if got := tt.src.Name(); got != tt.want {
			t.Errorf("Source.Name() = %q, want %q", got, tt.want)
		}
	}
}
