package cli

import (
	"slices"
	"strings"
	"testing"
)

// completions splits the output of cobra's hidden completion command into
// candidates and the trailing directive line.
func completions(t *testing.T, args ...string) ([]string, string) {
	t.Helper()
	out, err := execute(t, append([]string{"__completeNoDesc"}, args...)...)
	if err != nil {
		t.Fatalf("complete %v: %v", args, err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[len(lines)-1], ":") {
		t.Fatalf("no directive in %q", out)
	}
	return lines[:len(lines)-1], lines[len(lines)-1]
}

func TestCompletions(t *testing.T) {
	isolate(t)
	tests := []struct {
		name      string
		args      []string
		want      []string
		absent    []string
		directive string
	}{
		{"layout prefix", []string{"inspect", "--layout", "ne"}, []string{"neato"}, []string{"dot", "static"}, ":4"},
		{"all layouts", []string{"view", "--layout", ""}, []string{"static", "dot", "neato", "fdp", "graphviz"}, nil, ":4"},
		{"edge modes", []string{"inspect", "--edge-mode", ""}, []string{"bbox", "midpoint"}, nil, ":4"},
		{"graph file", []string{"inspect", ""}, []string{"json"}, nil, ":8"},
		{"shells", []string{"completion", ""}, shells, nil, ":4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, directive := completions(t, tt.args...)
			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("completions %v lack %q", got, w)
				}
			}
			for _, a := range tt.absent {
				if slices.Contains(got, a) {
					t.Errorf("completions %v contain %q", got, a)
				}
			}
			if directive != tt.directive {
				t.Errorf("directive = %s, want %s", directive, tt.directive)
			}
		})
	}
}

func TestCompletionScripts(t *testing.T) {
	isolate(t)
	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "completion", shell)
			if err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out, "graphscope") {
				t.Errorf("%s script does not mention graphscope", shell)
			}
		})
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell accepted")
	}
}
