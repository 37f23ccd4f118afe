package loaders

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadShaderSource reads a GLSL file. A leading BOM is dropped and CRLF line endings become LF.
func LoadShaderSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("func LoadShaderSource - %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return string(data), nil
}

/**
 * @brief ProgramSources holds the sources of one program. Compute is empty
 * for graphics programs and Vertex/Fragment are empty for compute programs.
 */
type ProgramSources struct {
	Name     string
	Vertex   string
	Fragment string
	Compute  string
}

// IsCompute reports whether the sources describe a compute program.
func (p *ProgramSources) IsCompute() bool {
	return p.Compute != ""
}

/**
 * @brief LoadProgram reads <dir>/<name>.comp when it exists, otherwise
 * <dir>/<name>.vert and <dir>/<name>.frag.
 */
func LoadProgram(dir, name string) (*ProgramSources, error) {
	p := &ProgramSources{Name: name}
	base := filepath.Join(dir, name)

	if _, err := os.Stat(base + ".comp"); err == nil {
		src, err := LoadShaderSource(base + ".comp")
		if err != nil {
			return nil, err
		}
		p.Compute = src
		return p, nil
	}

	vs, err := LoadShaderSource(base + ".vert")
	if err != nil {
		return nil, err
	}
	fs, err := LoadShaderSource(base + ".frag")
	if err != nil {
		return nil, err
	}
	p.Vertex, p.Fragment = vs, fs
	return p, nil
}
