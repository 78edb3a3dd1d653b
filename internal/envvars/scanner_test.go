package envvars

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		fullPath := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", name, err)
		}
	}
}

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"start.sh":                "FOO=$SE_BROWSER SE_HOST=bar\n",
		"Node/entry_point.sh":     "if [ \"${SE_NODE_MAX_SESSIONS}\" ]; then\n  echo $SE_HOST\nfi\n",
		"Video/.hidden/record.sh": "export SE_VIDEO_FOLDER=/videos\n",
		"Hub/README.md":           "SE_NOT_A_SCRIPT\n",
		"Hub/configs.sh.bak":      "SE_BACKUP\n",
		"vendor/lib.sh":           "SE_VENDORED\n",
		"Base/check-grid.sh":      "XSE_PREFIXED se_lower SE_ SE_OPTS_1\n",
	})

	t.Run("collects sorted distinct names", func(t *testing.T) {
		names, err := NewScanner(nil).Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{
			"SE_BROWSER",
			"SE_HOST",
			"SE_NODE_MAX_SESSIONS",
			"SE_OPTS_1",
			"SE_VENDORED",
			"SE_VIDEO_FOLDER",
		}
		if !reflect.DeepEqual(names, want) {
			t.Errorf("expected %v, got %v", want, names)
		}
	})

	t.Run("skips configured directories", func(t *testing.T) {
		names, err := NewScanner([]string{"vendor"}).Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, name := range names {
			if name == "SE_VENDORED" {
				t.Error("expected vendor directory to be skipped")
			}
		}
	})
}

func TestScanner_Scan_Errors(t *testing.T) {
	scanner := NewScanner(nil)

	t.Run("missing directory", func(t *testing.T) {
		if _, err := scanner.Scan(filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Error("expected error for missing directory")
		}
	})

	t.Run("file instead of directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "start.sh")
		if err := os.WriteFile(file, []byte("SE_HOST"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := scanner.Scan(file); err == nil {
			t.Error("expected error for a file path")
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		names, err := scanner.Scan(t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(names) != 0 {
			t.Errorf("expected no names, got %v", names)
		}
	})
}

func TestVariablePattern(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{input: "FOO=$SE_BROWSER SE_HOST=bar", want: []string{"SE_BROWSER", "SE_HOST"}},
		{input: "${SE_EVENT_BUS_HOST}:${SE_EVENT_BUS_PUBLISH_PORT}", want: []string{"SE_EVENT_BUS_HOST", "SE_EVENT_BUS_PUBLISH_PORT"}},
		{input: "MY_SE_VAR", want: nil},
		{input: "SE_lowercase", want: nil},
		{input: "SE_OPTS-x", want: []string{"SE_OPTS"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := VariablePattern.FindAllString(tt.input, -1)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
