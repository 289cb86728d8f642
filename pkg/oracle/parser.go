package oracle

import (
	_ "embed"
	"fmt"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"strings"
)

//go:embed typos.yaml
var builtinTypos []byte

type typoFile struct {
	Typos map[string]string `yaml:"typos"`
}

func ParseTyposFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return ParseTypos(file)
}

// ParseTypos reads a YAML document of the form
//
//	typos:
//	  teh: the
//
// Keys are folded to lower case.
func ParseTypos(r io.Reader) (map[string]string, error) {
	var doc typoFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	typos := make(map[string]string, len(doc.Typos))
	for typo, correction := range doc.Typos {
		typo = strings.ToLower(strings.TrimSpace(typo))
		correction = strings.TrimSpace(correction)
		if typo == "" || correction == "" {
			return nil, fmt.Errorf("empty entry %q: %q", typo, correction)
		}
		typos[typo] = correction
	}

	return typos, nil
}

func Builtin() map[string]string {
	typos, err := ParseTypos(strings.NewReader(string(builtinTypos)))
	if err != nil {
		panic(fmt.Sprintf("builtin typo list: %v", err))
	}
	return typos
}
