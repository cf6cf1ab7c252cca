package settingsRepo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type promptsFile struct {
	Prompts []struct {
		Key    string `yaml:"key"`
		Prompt string `yaml:"prompt"`
	} `yaml:"prompts"`
}

// LoadDefaultPrompts читает стартовый набор промптов из YAML и возвращает
// их в виде строк "ключ:промпт". Отсутствующий файл - пустой список.
func LoadDefaultPrompts(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var file promptsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file %s: %w", path, err)
	}

	entries := make([]string, 0, len(file.Prompts))
	for _, p := range file.Prompts {
		key := strings.TrimSpace(p.Key)
		if key == "" {
			continue
		}
		entries = append(entries, key+":"+strings.TrimSpace(p.Prompt))
	}
	return entries, nil
}
