package ops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestImportJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"not json", `[1, 0`, "invalid JSON"},
		{"other program", `{"format":1,"program":"ncdu","root":"/r"}`, "not a voidfinder export"},
		{"future format", `{"format":99,"program":"voidfinder","root":"/r"}`, "unsupported export format 99"},
		{"no root", `{"format":1,"program":"voidfinder"}`, "no root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := ImportJSON(path)
			if err == nil {
				t.Fatal("expected import to fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestImportJSON_MissingFile(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "cannot open import file") {
		t.Fatalf("unexpected error: %v", err)
	}
}
