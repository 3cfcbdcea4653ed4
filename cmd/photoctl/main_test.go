package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(viper.New())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestSlugCommand(t *testing.T) {
	out, err := run(t, "slug", "The", "Loft", "District!")
	require.NoError(t, err)
	assert.Equal(t, "the-loft-district", out)

	_, err = run(t, "slug", "---")
	assert.Error(t, err)
}

func TestPathCommand(t *testing.T) {
	out, err := run(t, "path", "--city", "Atlanta", "--name", "The Loft District", "--category", "Exterior")
	require.NoError(t, err)
	assert.Equal(t, "photos/properties/atlanta-the-loft-district/property-exterior", out)

	out, err = run(t, "path", "--city", "Atlanta", "--name", "The Loft District", "--unit", "Apt 4B")
	require.NoError(t, err)
	assert.Equal(t, "photos/properties/atlanta-the-loft-district/unit-apt-4b", out)

	out, err = run(t, "path", "--city", "Atlanta", "--name", "The Loft District")
	require.NoError(t, err)
	assert.Equal(t, "photos/properties/atlanta-the-loft-district", out)

	_, err = run(t, "path", "--city", "Atlanta", "--name", "Loft", "--category", "garage")
	assert.Error(t, err)

	_, err = run(t, "path", "--city", "Atlanta", "--name", "Loft", "--category", "interior", "--unit", "1")
	assert.Error(t, err)

	_, err = run(t, "path", "--city", "!!!", "--name", "Loft")
	assert.Error(t, err)
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))

	files, err := collectImages(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.jpg", files[0].OriginalName)
	assert.Equal(t, "image/jpeg", files[0].ContentType)
	assert.Equal(t, "b.PNG", files[1].OriginalName)
	assert.Equal(t, "image/png", files[1].ContentType)
	assert.Equal(t, int64(1), files[1].Size)

	rc, err := files[0].Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)

	_, err = collectImages(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
