package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edoardob90/runits/internal/units"
)

// testConfig writes a config pointing at a fresh database under t.TempDir.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`
database:
  path: %q
  wal_mode: true
  busy_timeout: 5
logging:
  level: error
  format: text
  output: discard
`, filepath.Join(dir, "runits.db"))
	path := filepath.Join(dir, "runits.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func execute(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConvertCommand(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"to unit", []string{"convert", "1 mi", "km"}, "1 mi = 1.609344 km"},
		{"affine", []string{"convert", "100 degC", "degF"}, "100 degC = 21"},
		{"to system", []string{"convert", "1 N", "--system", "imperial"}, "ft*lb/s^2"},
		{"to active system", []string{"convert", "2 h"}, "2 h = 7200 s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, cfg, tt.args...)
			if err != nil {
				t.Fatalf("convert error = %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want it to contain %q", out, tt.want)
			}
		})
	}
}

func TestConvertCommandErrors(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name     string
		args     []string
		wantExit int
	}{
		{"target and system", []string{"convert", "1 m", "ft", "--system", "SI"}, exitInput},
		{"unknown unit", []string{"convert", "1 blarg", "m"}, exitInput},
		{"syntax", []string{"convert", "1 m^", "m"}, exitInput},
		{"incompatible", []string{"convert", "1 m", "s"}, exitFailure},
		{"unknown system", []string{"convert", "1 m", "--system", "martian"}, exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, cfg, tt.args...)
			if err == nil {
				t.Fatal("convert succeeded")
			}
			if got := exitCode(err); got != tt.wantExit {
				t.Errorf("exitCode(%v) = %d, want %d", err, got, tt.wantExit)
			}
		})
	}
}

func TestListingCommands(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		args []string
		want []string
		not  []string
	}{
		{[]string{"units", "--dimension", "length"}, []string{"ft", "mi", "length"}, []string{"kg"}},
		{[]string{"prefixes"}, []string{"SYMBOL", "Ki", "1000"}, nil},
		{[]string{"systems"}, []string{"CGS", "Imperial", "Natural", "*"}, nil},
		{[]string{"parse", "9.81 m/s^2"}, []string{"9.81 m/s^2", "length/time^2"}, []string{"offset"}},
		{[]string{"parse", "20 degC"}, []string{"temperature", "offset:", "273.15"}, nil},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := execute(t, cfg, tt.args...)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, not := range tt.not {
				if strings.Contains(out, not) {
					t.Errorf("output contains %q:\n%s", not, out)
				}
			}
		})
	}
}

func TestDefineAndRemove(t *testing.T) {
	cfg := testConfig(t)

	out, err := execute(t, cfg, "define", "furlong", "--scale", "220", "--base", "yd", "--alias", "fur")
	if err != nil {
		t.Fatalf("define error = %v", err)
	}
	if !strings.Contains(out, "defined furlong (simple") {
		t.Errorf("define output = %q", out)
	}

	// The definition persists across invocations.
	out, err = execute(t, cfg, "convert", "1 fur", "m")
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if !strings.Contains(out, "201.16") {
		t.Errorf("convert output = %q", out)
	}

	// Redefinition replaces the stored unit, aliases included.
	if _, err := execute(t, cfg, "define", "furlong", "--scale", "2", "--base", "m"); err != nil {
		t.Fatalf("redefine error = %v", err)
	}
	out, err = execute(t, cfg, "convert", "3 furlong", "m")
	if err != nil || !strings.Contains(out, "3 furlong = 6 m") {
		t.Errorf("convert after redefine = %q, %v", out, err)
	}
	if _, err := execute(t, cfg, "convert", "1 fur", "m"); !errors.Is(err, units.ErrUnknownUnit) {
		t.Errorf("dropped alias error = %v, want unknown unit", err)
	}
	if _, err := execute(t, cfg, "define", "bogus", "--kind", "weird", "--base", "m"); err == nil {
		t.Error("define with an unknown kind succeeded")
	}

	if _, err := execute(t, cfg, "remove", "furlong"); err != nil {
		t.Fatalf("remove error = %v", err)
	}
	_, err = execute(t, cfg, "convert", "1 furlong", "m")
	if !errors.Is(err, units.ErrUnknownUnit) {
		t.Errorf("convert after remove error = %v, want unknown unit", err)
	}
	if _, err := execute(t, cfg, "remove", "furlong"); err == nil {
		t.Error("removing a missing custom unit succeeded")
	}

	out, err = execute(t, cfg, "history", "--unit", "furlong")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("history = %q, want header plus 3 entries", out)
	}
	for i, action := range []string{"remove", "redefine", "define"} {
		if !strings.Contains(lines[i+1], action) || !strings.Contains(lines[i+1], "cli") {
			t.Errorf("history line %d = %q, want %s by cli", i+1, lines[i+1], action)
		}
	}
}

func TestBadConfig(t *testing.T) {
	if _, err := execute(t, filepath.Join(t.TempDir(), "missing.yaml"), "units"); err == nil {
		t.Error("missing explicit config accepted")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&usageError{"bad flags"}, exitInput},
		{fmt.Errorf("wrapped: %w", &units.UnknownUnitError{Name: "x"}), exitInput},
		{units.ErrAmbiguousUnit, exitInput},
		{units.ErrIncompatibleDimensions, exitFailure},
		{errors.New("disk full"), exitFailure},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
