package policy

import (
	"reflect"
	"testing"
)

func TestExtractPaths(t *testing.T) {
	cases := []struct {
		command string
		want    []string
	}{
		{"cat /etc/passwd", []string{"/etc/passwd"}},
		{"cp ./a.txt ../b.txt", []string{"./a.txt", "../b.txt"}},
		{"ls ~/projects", []string{"~/projects"}},
		{"grep -r foo src/main.go", []string{"src/main.go"}},
		{"git status", nil},
		{"curl https://example.com/path", nil},
		{"make BUILD_DIR=out/bin", nil},
		{"rm --force /tmp/x", []string{"/tmp/x"}},
	}

	for _, c := range cases {
		got := ExtractPaths(c.command)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("ExtractPaths(%q): expected %v, got %v", c.command, c.want, got)
		}
	}
}

func TestExtractPathsQuoting(t *testing.T) {
	got := ExtractPaths(`cat "/path/with space/file.txt"`)
	if len(got) != 1 || got[0] != "/path/with space/file.txt" {
		t.Errorf("expected quoted path preserved, got %v", got)
	}
}

func TestExtractPathsMetacharacters(t *testing.T) {
	got := ExtractPaths("cat /etc/passwd|grep root>/tmp/out")
	want := []string{"/etc/passwd", "/tmp/out"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
