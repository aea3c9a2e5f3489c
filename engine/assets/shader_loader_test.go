package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadShaderEmbedded(t *testing.T) {
	src, err := LoadShader("", "simple.vert")
	require.NoError(t, err)
	assert.Contains(t, src, "#version 330 core")
	assert.Contains(t, src, "in vec2 position;")
}

func TestLoadShaderFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.frag"), []byte("void main() {}"), 0o644))

	src, err := LoadShader(dir, "x.frag")
	require.NoError(t, err)
	assert.Equal(t, "void main() {}", src)
}

func TestLoadShaderErrors(t *testing.T) {
	_, err := LoadShader("", "missing.vert")
	assert.ErrorContains(t, err, `load shader "missing.vert"`)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.vert"), []byte{0xff, 0xfe}, 0o644))
	_, err = LoadShader(dir, "bad.vert")
	assert.ErrorContains(t, err, "UTF-8")
}

func TestShaderNames(t *testing.T) {
	names, err := ShaderNames()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"camera.vert", "simple.frag", "simple.vert"}, names)
}
