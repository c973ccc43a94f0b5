package cli

import (
	"context"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bondctl/pkg/serializer"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    serializer.Format
		wantErr bool
	}{
		{name: "default json", args: []string{"test"}, want: serializer.FormatJSON},
		{name: "yaml", args: []string{"test", "--format", "yaml"}, want: serializer.FormatYAML},
		{name: "table", args: []string{"test", "-t", "table"}, want: serializer.FormatTable},
		{name: "unknown", args: []string{"test", "--format", "xml"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got serializer.Format
			var gotErr error

			cmd := &cli.Command{
				Name:  "test",
				Flags: []cli.Flag{formatFlag},
				Action: func(_ context.Context, c *cli.Command) error {
					got, gotErr = parseOutputFormat(c)
					return nil
				},
			}

			if err := cmd.Run(context.Background(), tc.args); err != nil {
				t.Fatalf("command failed: %v", err)
			}
			if tc.wantErr {
				if gotErr == nil {
					t.Error("expected error for unknown format")
				}
				return
			}
			if gotErr != nil {
				t.Fatalf("unexpected error: %v", gotErr)
			}
			if got != tc.want {
				t.Errorf("expected format %s, got %s", tc.want, got)
			}
		})
	}
}

func TestRootCommandStructure(t *testing.T) {
	root := rootCmd()

	if root.Name != "bondctl" {
		t.Errorf("unexpected root name: %q", root.Name)
	}

	names := make(map[string]bool, len(root.Commands))
	for _, c := range root.Commands {
		names[c.Name] = true
		if c.Action == nil {
			t.Errorf("command %s has no action", c.Name)
		}
	}
	if !names["collect"] || !names["report"] {
		t.Errorf("expected collect and report commands, got %v", names)
	}
}
