package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"
)

//go:embed shaders
var embedded embed.FS

// LoadShader reads GLSL source. When dir is set the file is read from disk
// there; otherwise the shader built into the binary is used.
func LoadShader(dir, name string) (string, error) {
	var (
		b   []byte
		err error
	)
	if dir != "" {
		b, err = os.ReadFile(filepath.Join(dir, name))
	} else {
		b, err = fs.ReadFile(embedded, "shaders/"+name)
	}
	if err != nil {
		return "", fmt.Errorf("load shader %q: %w", name, err)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("load shader %q: not valid UTF-8", name)
	}
	return string(b), nil
}

// ShaderNames lists the built-in shaders.
func ShaderNames() ([]string, error) {
	entries, err := fs.ReadDir(embedded, "shaders")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
