package tunnelwatch

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// EnvFile переписывает .env на месте: комментарии и порядок строк сохраняются,
// перед записью старый файл уходит в .env.bak.
type EnvFile struct {
	path string
	mu   sync.Mutex
}

func NewEnvFile(path string) *EnvFile {
	return &EnvFile{path: path}
}

func (f *EnvFile) Path() string { return f.path }

// Set обновляет ключи. Возвращает true, если файл изменился.
func (f *EnvFile) Set(updates map[string]string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines, err := f.readLines()
	if err != nil {
		return false, err
	}
	newLines, changed := rewriteEnv(lines, updates)
	if !changed {
		return false, nil
	}
	if err := f.write(newLines); err != nil {
		return false, err
	}
	return true, nil
}

func (f *EnvFile) readLines() ([]string, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("не удалось прочитать %s: %w", f.path, err)
	}
	text := strings.TrimRight(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

func (f *EnvFile) write(lines []string) error {
	if _, err := os.Stat(f.path); err == nil {
		if err := os.Rename(f.path, f.path+".bak"); err != nil {
			return fmt.Errorf("не удалось сделать резервную копию: %w", err)
		}
	}
	return os.WriteFile(f.path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

func isAssignment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" && !strings.HasPrefix(trimmed, "#") && strings.Contains(line, "=")
}

// rewriteEnv заменяет значения существующих ключей и дописывает отсутствующие в конец.
func rewriteEnv(lines []string, updates map[string]string) ([]string, bool) {
	normalized := make(map[string]string, len(updates))
	for k, v := range updates {
		normalized[k] = strings.TrimRight(v, "/")
	}

	changed := false
	seen := make(map[string]bool, len(normalized))
	out := make([]string, 0, len(lines)+len(normalized))
	for _, line := range lines {
		if !isAssignment(line) {
			out = append(out, line)
			continue
		}
		k, v, _ := strings.Cut(line, "=")
		key := strings.TrimSpace(k)
		val, ok := normalized[key]
		if !ok {
			out = append(out, line)
			continue
		}
		if v != val {
			changed = true
		}
		out = append(out, key+"="+val)
		seen[key] = true
	}

	// Порядок дописываемых ключей фиксирован, чтобы файл не менялся от запуска к запуску.
	for _, key := range []string{KeyServerURL, KeyAdminURL, KeyClientURL} {
		if val, ok := normalized[key]; ok && !seen[key] {
			out = append(out, key+"="+val)
			seen[key] = true
			changed = true
		}
	}
	for key, val := range normalized {
		if !seen[key] {
			out = append(out, key+"="+val)
			changed = true
		}
	}
	return out, changed
}
