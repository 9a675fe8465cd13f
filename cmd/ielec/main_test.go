package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esime/ielec/calc"
)

func noEnv(string) string { return "" }

func runCmd(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	err := run(context.Background(), args, strings.NewReader(stdin), stdout, stderr, noEnv)
	return stdout.String(), stderr.String(), err
}

// writeConfig writes a config with a SQLite database in a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ielec.yaml")
	data := "database:\n  path: ielec.db\nreport:\n  organization: Taller ESIME\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestRunVersion(t *testing.T) {
	out, _, err := runCmd(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ielec version dev")
}

func TestRunHelp(t *testing.T) {
	out, _, err := runCmd(t, "", "--help")
	require.NoError(t, err)
	for _, want := range []string{"serve", "calc", "report", "users", "--config"} {
		assert.Contains(t, out, want)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	_, _, err := runCmd(t, "", "frobnicate")
	assert.Error(t, err)
}

func TestCalcConductor(t *testing.T) {
	out, _, err := runCmd(t, `{"power": 3500, "voltage": 127}`, "calc", "conductor")
	require.NoError(t, err)

	var r calc.ConductorResult
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "12", r.GaugeLabel())
	assert.InDelta(t, 30.62, r.Current, 5e-3)
}

func TestCalcFromFileAsText(t *testing.T) {
	in, err := json.Marshal(calc.DefaultCavityInput())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sala.json")
	require.NoError(t, os.WriteFile(path, in, 0o600))

	out, _, err := runCmd(t, "", "calc", "cavity", "--input", path, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Método de Cavidades")
	assert.Contains(t, out, "Fecha:")
}

func TestCalcErrors(t *testing.T) {
	_, _, err := runCmd(t, "{}", "calc", "ohm")
	assert.ErrorContains(t, err, "unknown calculator \"ohm\" (use cavity, flux, conductor)")

	_, _, err = runCmd(t, `{"lenght": 1}`, "calc", "cavity")
	assert.Error(t, err)

	_, _, err = runCmd(t, `{"power": 3500, "voltage": 0}`, "calc", "conductor")
	assert.ErrorIs(t, err, errDegenerate)

	out, _, err := runCmd(t, `{"power": 3500, "voltage": 0}`, "calc", "conductor", "-f", "text")
	assert.ErrorIs(t, err, errDegenerate)
	assert.Contains(t, out, "Infinity")
}

func TestReport(t *testing.T) {
	cfg := writeConfig(t)
	in, err := json.Marshal(calc.DefaultFluxInput())
	require.NoError(t, err)

	pdf := filepath.Join(t.TempDir(), "flux.pdf")
	_, _, err = runCmd(t, string(in), "--config", cfg, "report", "flux", "--output", pdf)
	require.NoError(t, err)
	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	out, _, err := runCmd(t, string(in), "--config", cfg, "report", "flux", "-f", "md")
	require.NoError(t, err)
	assert.Contains(t, out, "| Concepto | Valor |")

	_, _, err = runCmd(t, string(in), "--config", cfg, "report", "flux", "-f", "docx")
	assert.Error(t, err)
}

func TestUsersLifecycle(t *testing.T) {
	cfg := writeConfig(t)

	out, _, err := runCmd(t, "", "--config", cfg, "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No users found.")

	_, _, err = runCmd(t, "", "--config", cfg, "users", "create", "ana@example.com", "--password", "abc")
	assert.ErrorContains(t, err, "at least 6")

	out, _, err = runCmd(t, "", "--config", cfg, "users", "create", "Ana@Example.com", "--name", "Ana", "--password", "secreto123")
	require.NoError(t, err)
	assert.Contains(t, out, "ana@example.com")

	_, _, err = runCmd(t, "", "--config", cfg, "users", "create", "ana@example.com", "--password", "secreto123")
	assert.ErrorContains(t, err, "already exists")

	_, _, err = runCmd(t, "", "--config", cfg, "users", "passwd", "ana@example.com", "--password", "otrosecreto")
	require.NoError(t, err)

	out, _, err = runCmd(t, "", "--config", cfg, "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 1 user(s)")
	id := strings.Fields(strings.Split(out, "\n")[2])[0]

	out, _, err = runCmd(t, "", "--config", cfg, "users", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted user "+id)

	_, _, err = runCmd(t, "", "--config", cfg, "users", "delete", id)
	assert.Error(t, err)
}

func TestConfigShow(t *testing.T) {
	cfg := writeConfig(t)
	out, _, err := runCmd(t, "", "--config", cfg, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Taller ESIME")

	_, _, err = runCmd(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "config", "show")
	assert.Error(t, err)
}

func TestServeRequiresConfig(t *testing.T) {
	_, _, err := runCmd(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "serve", "--dev")
	assert.ErrorContains(t, err, "loading config")
}
