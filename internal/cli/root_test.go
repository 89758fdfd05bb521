package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	root := NewRoot(nil)
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != version {
		t.Errorf("output = %q, want %q", got, version)
	}
}

func TestRootListsServe(t *testing.T) {
	root := NewRoot(nil)
	if _, _, err := root.Find([]string{"serve"}); err != nil {
		t.Fatalf("serve command missing: %v", err)
	}
}
