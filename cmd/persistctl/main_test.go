package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRecordLifecycle(t *testing.T) {
	for _, driver := range []string{"file", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			path := t.TempDir()
			if driver == "sqlite" {
				path = filepath.Join(path, "persist.db")
			}
			flags := []string{"--driver", driver, "--path", path}

			if _, err := run(t, append([]string{"set", "counter", `{"counter":3}`}, flags...)...); err != nil {
				t.Fatalf("set: %v", err)
			}
			out, err := run(t, append([]string{"get", "counter"}, flags...)...)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if strings.TrimSpace(out) != `{"counter":3}` {
				t.Fatalf("unexpected record %q", out)
			}

			out, err = run(t, append([]string{"list"}, flags...)...)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if strings.TrimSpace(out) != "counter" {
				t.Fatalf("unexpected list output %q", out)
			}

			if _, err := run(t, append([]string{"clear", "counter"}, flags...)...); err != nil {
				t.Fatalf("clear: %v", err)
			}
			if _, err := run(t, append([]string{"get", "counter"}, flags...)...); !errors.Is(err, errNotFound) {
				t.Fatalf("expected errNotFound after clear, got %v", err)
			}
		})
	}
}

func TestSetRejectsInvalidJSON(t *testing.T) {
	_, err := run(t, "set", "counter", "{nope", "--path", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "not valid JSON") {
		t.Fatalf("expected invalid JSON error, got %v", err)
	}
}

func TestEnvironmentSelectsDriver(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PERSISTCTL_DRIVER", "file")
	t.Setenv("PERSISTCTL_PATH", dir)

	if _, err := run(t, "set", "prefs", `{"theme":"dark"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one record file in %s, got %v (err=%v)", dir, entries, err)
	}
}

func TestGetPretty(t *testing.T) {
	flags := []string{"--path", t.TempDir()}
	if _, err := run(t, append([]string{"set", "prefs", `{"theme":"dark"}`}, flags...)...); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, err := run(t, append([]string{"get", "prefs", "--pretty"}, flags...)...)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "{\n  \"theme\": \"dark\"\n}\n" {
		t.Fatalf("unexpected pretty output %q", out)
	}
}
