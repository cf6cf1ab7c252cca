package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Store держит в памяти значение T и зеркалирует его в JSON-файл.
// Все операции сериализованы одним мьютексом на файл.
type Store[T any] struct {
	path     string
	newValue func() T
	log      *slog.Logger

	mu    sync.Mutex
	value T
}

// New создаёт хранилище. newValue возвращает пустое значение, которым
// заполняется хранилище, если файла нет или он битый.
func New[T any](path string, newValue func() T, log *slog.Logger) *Store[T] {
	return &Store[T]{
		path:     path,
		newValue: newValue,
		log:      log.With("store", filepath.Base(path)),
		value:    newValue(),
	}
}

// NewMap хранилище вида {"id": value}
func NewMap[V any](path string, log *slog.Logger) *Store[map[string]V] {
	return New(path, func() map[string]V { return make(map[string]V) }, log)
}

func (s *Store[T]) Path() string {
	return s.path
}

// Load читает файл. Отсутствующий файл - пустое значение без ошибки,
// нечитаемый JSON логируется и тоже даёт пустое значение.
// Возвращает (false, nil), если файла не было.
func (s *Store[T]) Load() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = s.newValue()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		s.log.Error("failed to read store file", "path", s.path, "error", err)
		return false, fmt.Errorf("read %s: %w", s.path, err)
	}

	// null - валидный JSON, но обнулил бы map
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		s.log.Error("store file holds null, starting empty", "path", s.path)
		return true, nil
	}

	value := s.newValue()
	if err := json.Unmarshal(raw, &value); err != nil {
		s.log.Error("store file is not valid json, starting empty", "path", s.path, "error", err)
		return true, nil
	}
	s.value = value

	return true, nil
}

// Read вызывает fn под блокировкой. fn не должна сохранять ссылку на значение.
func (s *Store[T]) Read(fn func(T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.value)
}

// Update меняет значение под блокировкой и, если fn вернула true, пишет файл.
// При ошибке записи изменение в памяти остаётся.
func (s *Store[T]) Update(fn func(*T) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fn(&s.value) {
		return nil
	}
	if err := s.save(); err != nil {
		s.log.Error("failed to persist store", "path", s.path, "error", err)
		return err
	}
	return nil
}

// Snapshot сериализованное текущее значение, в том же формате, что и файл
func (s *Store[T]) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return encode(s.value)
}

func (s *Store[T]) save() error {
	data, err := encode(s.value)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// encode отступ в 4 пробела, не-ASCII символы как есть
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
