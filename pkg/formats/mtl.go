package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/wowscene/pkg/encoding"
)

// Material is one newmtl entry with its diffuse texture.
type Material struct {
	Name    string
	Texture string // map_Kd resolved against the library directory
}

// MaterialLibrary maps material names to textures, keeping declaration order.
type MaterialLibrary struct {
	Materials []Material
	index     map[string]int
}

// NewMaterialLibrary returns an empty library.
func NewMaterialLibrary() *MaterialLibrary {
	return &MaterialLibrary{index: make(map[string]int)}
}

// Set binds name to texture. A repeated name keeps its original position
// and takes the new texture.
func (l *MaterialLibrary) Set(name, texture string) {
	if i, ok := l.index[name]; ok {
		l.Materials[i].Texture = texture
		return
	}
	l.index[name] = len(l.Materials)
	l.Materials = append(l.Materials, Material{Name: name, Texture: texture})
}

// Texture returns the texture bound to name.
func (l *MaterialLibrary) Texture(name string) (string, bool) {
	i, ok := l.index[name]
	if !ok {
		return "", false
	}
	return l.Materials[i].Texture, true
}

// Len returns the number of materials.
func (l *MaterialLibrary) Len() int {
	return len(l.Materials)
}

// ParseMTL parses a material library. Texture paths are resolved against
// baseDir. Unknown tokens are ignored; only read errors fail.
func ParseMTL(r io.Reader, baseDir string) (*MaterialLibrary, error) {
	lib := NewMaterialLibrary()

	scanner := bufio.NewScanner(encoding.NewReader(r))
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	current := ""
	for scanner.Scan() {
		token, rest := splitToken(scanner.Text())

		switch token {
		case "newmtl":
			current = rest
		case "map_Kd":
			// map_Kd before any newmtl has nothing to bind to.
			if current == "" || rest == "" {
				continue
			}
			lib.Set(current, encoding.ResolvePath(baseDir, rest))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MTL: %w", err)
	}

	return lib, nil
}

// ParseMTLFile parses a material library from disk, resolving textures
// relative to the library's own directory.
func ParseMTLFile(path string) (*MaterialLibrary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening MTL file: %w", err)
	}
	defer f.Close()

	lib, err := ParseMTL(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// splitToken splits a line into its first word and the trimmed remainder.
func splitToken(line string) (token, rest string) {
	line = strings.TrimSpace(line)
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}
