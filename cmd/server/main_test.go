package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandeptwidyaop/hostbridge/internal/logging"
	"github.com/pandeptwidyaop/hostbridge/internal/models"
	"github.com/pandeptwidyaop/hostbridge/internal/system"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(logging.EnvLogLevel, "disabled")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("dialog:\n  enabled: false\n"), 0o644))

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--config", configPath))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "hostbridge "))
}

func TestAllowlistCmd(t *testing.T) {
	out, err := run(t, "allowlist")
	require.NoError(t, err)
	assert.Equal(t, system.AllowedCommands(), strings.Fields(out))
}

func TestInvokeCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	out, err := run(t, "invoke", "system_read_file", `{"path":"`+path+`"}`)
	require.NoError(t, err)

	var resp models.InvokeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "hello", resp.Data)
}

func TestInvokeCmd_ShowSaveDialogHeadless(t *testing.T) {
	out, err := run(t, "invoke", "show_save_dialog", `{"defaultPath":"tokens.json"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"data": null`)
}

func TestInvokeCmd_PolicyViolation(t *testing.T) {
	out, err := run(t, "invoke", "system_execute_command", `{"cmd":"curl","args":["http://example.com"]}`)
	require.ErrorIs(t, err, errCallFailed)

	var resp models.InvokeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "policy_violation", resp.Kind)
	assert.Equal(t, "Command 'curl' is not allowed", resp.Error)
}

func TestInvokeCmd_RequiresCall(t *testing.T) {
	_, err := run(t, "invoke")
	assert.Error(t, err)
}
