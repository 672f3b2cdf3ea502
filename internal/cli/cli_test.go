package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil || out != "textopsd version dev\n" {
		t.Errorf("version = %q, %v", out, err)
	}
}

func TestDiff(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.txt", "1 < 2")
	newPath := writeFile(t, dir, "new.txt", "1 <= 2")

	out, err := execute(t, "diff", oldPath, newPath)
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}
	want := `<span>1 &lt;</span><ins style="background:#e6ffe6;">=</ins><span> 2</span>` + "\n"
	if out != want {
		t.Errorf("diff = %q, want %q", out, want)
	}

	out, err = execute(t, "diff", "--format", "stats", oldPath, newPath)
	if err != nil || out != "equal=5 inserted=1 deleted=0 edits=3\n" {
		t.Errorf("diff stats = %q, %v", out, err)
	}

	out, err = execute(t, "diff", "-f", "json", oldPath, newPath)
	if err != nil || !strings.Contains(out, `"op": "insert"`) {
		t.Errorf("diff json = %q, %v", out, err)
	}
}

func TestDiff_UsesConfiguredOptions(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.txt", "one two\n")
	newPath := writeFile(t, dir, "new.txt", "one-two-x\n")
	cfgPath := writeFile(t, dir, "textopsd.yaml", "diff:\n  granularity: lines\n")

	out, err := execute(t, "--config", cfgPath, "diff", "-f", "stats", oldPath, newPath)
	if err != nil || out != "equal=4 inserted=6 deleted=4 edits=4\n" {
		t.Errorf("configured lines diff = %q, %v", out, err)
	}

	out, err = execute(t, "--config", cfgPath, "diff", "-g", "runes", "-f", "stats", oldPath, newPath)
	if err != nil || !strings.HasPrefix(out, "equal=7 inserted=3 deleted=1 ") {
		t.Errorf("flag override diff = %q, %v", out, err)
	}
}

func TestDiff_UsageErrors(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.txt", "a")

	for _, args := range [][]string{
		{"diff", p},
		{"diff", "--format", "xml", p, p},
		{"diff", "--granularity", "words", p, p},
		{"diff", "--no-such-flag", p, p},
	} {
		if _, err := execute(t, args...); !isUsage(err) {
			t.Errorf("%v error = %v, want usage error", args, err)
		}
	}

	if _, err := execute(t, "diff", p, filepath.Join(dir, "missing")); err == nil || isUsage(err) {
		t.Errorf("missing file error = %v, want runtime error", err)
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "doc.txt", "one\n\ntwo & three")

	out, err := execute(t, "render", "--data", p)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	want := "<p>one</p>\n<p>two &amp; three</p>\n" + `{"paragraphs":2,"words":4}` + "\n"
	if out != want {
		t.Errorf("render = %q, want %q", out, want)
	}
}

func TestToken(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "jwt_key", "file-secret\n")
	cfgPath := writeFile(t, dir, "textopsd.yaml", "auth:\n  enabled: true\n  secret: secretref:file:jwt_key\n  issuer: textops\n")

	out, err := execute(t, "--config", cfgPath, "token", "--subject", "ci", "--scope", "render,diff")
	if err != nil {
		t.Fatalf("token error = %v", err)
	}
	if parts := strings.Split(strings.TrimSpace(out), "."); len(parts) != 3 {
		t.Errorf("token = %q, want a compact JWT", out)
	}

	if _, err := execute(t, "token"); !isUsage(err) {
		t.Errorf("token without subject error = %v, want usage error", err)
	}
	if _, err := execute(t, "token", "--subject", "ci"); err == nil {
		t.Error("token without a configured secret succeeded")
	}
}

func TestLoadConfig_Error(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "bad.yaml", "store:\n  backend: memcached\n")

	_, err := execute(t, "--config", cfgPath, "render", cfgPath)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		t.Errorf("render with invalid config error = %v", err)
	}
}
