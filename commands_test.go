package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-yii/framework/alias"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("APP_BASE_PATH", base)
	t.Setenv("APP_ENV", "testing")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ALIASES_FILE", "")

	file := filepath.Join(base, "aliases.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`aliases:
  "@yii": /yii/framework/
  "@tii": "@yii/test"
  yii/gii: /yii/gii
`), 0o644))
	return file
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAliasGet(t *testing.T) {
	file := setupEnv(t)

	out, err := execute(t, "--aliases", file, "alias", "get", "@tii/file")
	require.NoError(t, err)
	assert.Equal(t, "/yii/framework/test/file\n", out)

	out, err = execute(t, "--aliases", file, "alias", "get", "@yii/gii/x")
	require.NoError(t, err)
	assert.Equal(t, "/yii/gii/x\n", out)
}

func TestAliasesFlagLeavesEnvironmentAlone(t *testing.T) {
	file := setupEnv(t)

	_, err := execute(t, "--aliases", file, "alias", "get", "@tii")
	require.NoError(t, err)
	assert.Empty(t, os.Getenv("ALIASES_FILE"))

	opts := &rootOptions{aliasesFile: file}
	a, err := opts.application()
	require.NoError(t, err)
	assert.Equal(t, file, a.Config().AliasesFile)
}

func TestAliasGet_Unknown(t *testing.T) {
	file := setupEnv(t)

	_, err := execute(t, "--aliases", file, "alias", "get", "@nope")
	assert.ErrorIs(t, err, alias.ErrInvalidAlias)
}

func TestAliasRoot(t *testing.T) {
	file := setupEnv(t)

	out, err := execute(t, "--aliases", file, "alias", "root", "@yii/gii/file")
	require.NoError(t, err)
	assert.Equal(t, "@yii/gii\n", out)
}

func TestAliasList(t *testing.T) {
	file := setupEnv(t)

	out, err := execute(t, "--aliases", file, "alias", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered aliases:")
	assert.Contains(t, out, "@yii/gii")
	assert.Contains(t, out, "/yii/framework/test")
	assert.Contains(t, out, "@app")
}

func TestBrokenAliasesFile(t *testing.T) {
	setupEnv(t)
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("aliases:\n  \"@x\": \"@missing/x\"\n"), 0o644))

	_, err := execute(t, "--aliases", bad, "alias", "list")
	assert.ErrorIs(t, err, alias.ErrInvalidAlias)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `^goyii \d+\.\d+(?:\.\d+)?(?:-\w+)?\n$`, out)
}

func TestMountRoutes(t *testing.T) {
	file := setupEnv(t)
	webroot := filepath.Join(os.Getenv("APP_BASE_PATH"), "public")
	require.NoError(t, os.MkdirAll(webroot, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(webroot, "app.css"), []byte("body{}"), 0o644))

	opts := &rootOptions{aliasesFile: file}
	a, err := opts.application()
	require.NoError(t, err)
	require.NoError(t, mountRoutes(a))

	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/aliases", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body struct {
		Aliases []alias.Entry `json:"aliases"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Aliases, alias.Entry{Alias: "@tii", Path: "/yii/framework/test"})

	rr = httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, staticPrefix+"/app.css", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "body{}", rr.Body.String())
}
