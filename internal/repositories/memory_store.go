package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"

	apperrors "pedant-server/pkg/errors"
)

type memoryTxKey struct{}

// MemoryStore держит коллекции в памяти и, если задан путь, сохраняет их
// в JSON-файл после каждой успешной операции записи.
//
// Формат файла совместим с TinyDB: {"users": {"1": {...}}, ...}.
//
// Чтение вне транзакции ждёт завершения текущей транзакции и не видит
// её незафиксированных изменений.
type MemoryStore struct {
	mu          sync.RWMutex
	opMu        sync.RWMutex
	collections map[string]map[uint64]json.RawMessage
	seq         map[string]uint64
	path        string
	logger      *zap.Logger
}

func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[uint64]json.RawMessage),
		seq:         make(map[string]uint64),
		logger:      logger,
	}
}

// NewFileStore загружает базу из файла (если он есть) и сохраняет в него изменения.
func NewFileStore(path string, logger *zap.Logger) (*MemoryStore, error) {
	s := NewMemoryStore(logger)
	s.path = path

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("Файл базы не найден, будет создан при первой записи", zap.String("path", path))
			return s, nil
		}
		return nil, fmt.Errorf("не удалось прочитать файл базы: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}

	var tables map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tables); err != nil {
		return nil, fmt.Errorf("файл базы повреждён: %w", err)
	}
	for name, docs := range tables {
		coll := make(map[uint64]json.RawMessage, len(docs))
		for key, data := range docs {
			id, err := documentID(key, data)
			if err != nil {
				return nil, fmt.Errorf("коллекция %s, запись %s: %w", name, key, err)
			}
			if data, err = withID(data, id); err != nil {
				return nil, err
			}
			coll[id] = data
			if id > s.seq[name] {
				s.seq[name] = id
			}
		}
		s.collections[name] = coll
	}
	logger.Info("База загружена из файла", zap.String("path", path), zap.Int("collections", len(tables)))
	return s, nil
}

// documentID берёт id из поля документа, иначе из ключа TinyDB.
func documentID(key string, data json.RawMessage) (uint64, error) {
	v, err := fieldValue(data, "id")
	if err != nil {
		return 0, err
	}
	if f, ok := v.(float64); ok && f > 0 {
		return uint64(f), nil
	}
	return strconv.ParseUint(key, 10, 64)
}

func inMemoryTx(ctx context.Context) bool {
	return ctx.Value(memoryTxKey{}) != nil
}

// readLock берёт замок данных на чтение, а вне транзакции ещё и общий
// замок операций.
func (s *MemoryStore) readLock(ctx context.Context) func() {
	outside := !inMemoryTx(ctx)
	if outside {
		s.opMu.RLock()
	}
	s.mu.RLock()
	return func() {
		s.mu.RUnlock()
		if outside {
			s.opMu.RUnlock()
		}
	}
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	defer s.readLock(ctx)()
	return s.sorted(collection, nil), nil
}

func (s *MemoryStore) GetByID(ctx context.Context, collection string, id uint64) (Document, error) {
	defer s.readLock(ctx)()
	data, ok := s.collections[collection][id]
	if !ok {
		return Document{}, apperrors.ErrNotFound
	}
	return Document{ID: id, Data: data}, nil
}

func (s *MemoryStore) Find(ctx context.Context, collection string, where Fields) ([]Document, error) {
	expected := make(map[string]interface{}, len(where))
	for k, v := range where {
		n, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("условие поиска %s: %w", k, err)
		}
		expected[k] = n
	}

	defer s.readLock(ctx)()
	var matchErr error
	docs := s.sorted(collection, func(data json.RawMessage) bool {
		for k, want := range expected {
			got, err := fieldValue(data, k)
			if err != nil {
				matchErr = err
				return false
			}
			if !reflect.DeepEqual(got, want) {
				return false
			}
		}
		return true
	})
	return docs, matchErr
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, doc Document) (uint64, error) {
	var id uint64
	err := s.write(ctx, func() error {
		var err error
		id, err = s.insertLocked(collection, doc)
		return err
	})
	return id, err
}

func (s *MemoryStore) insertLocked(collection string, doc Document) (uint64, error) {
	coll := s.collection(collection)
	id := doc.ID
	if id == 0 {
		id = s.seq[collection] + 1
	} else if _, exists := coll[id]; exists {
		return 0, apperrors.NewAlreadyExistsError("Запись %d уже существует в %s", id, collection)
	}
	data, err := withID(doc.Data, id)
	if err != nil {
		return 0, err
	}
	coll[id] = data
	if id > s.seq[collection] {
		s.seq[collection] = id
	}
	return id, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, collection string, keyField string, doc Document) (uint64, error) {
	var id uint64
	err := s.write(ctx, func() error {
		coll := s.collection(collection)
		if keyField == "" || keyField == "id" {
			if doc.ID == 0 {
				var err error
				id, err = s.insertLocked(collection, doc)
				return err
			}
			data, err := withID(doc.Data, doc.ID)
			if err != nil {
				return err
			}
			coll[doc.ID] = data
			if doc.ID > s.seq[collection] {
				s.seq[collection] = doc.ID
			}
			id = doc.ID
			return nil
		}

		key, err := fieldValue(doc.Data, keyField)
		if err != nil {
			return err
		}
		for existingID, data := range coll {
			v, err := fieldValue(data, keyField)
			if err != nil {
				return err
			}
			if reflect.DeepEqual(v, key) {
				replaced, err := withID(doc.Data, existingID)
				if err != nil {
					return err
				}
				coll[existingID] = replaced
				id = existingID
				return nil
			}
		}
		id, err = s.insertLocked(collection, doc)
		return err
	})
	return id, err
}

func (s *MemoryStore) Delete(ctx context.Context, collection string, id uint64) (bool, error) {
	var removed bool
	err := s.write(ctx, func() error {
		coll := s.collections[collection]
		if _, ok := coll[id]; ok {
			delete(coll, id)
			removed = true
		}
		return nil
	})
	return removed, err
}

// RunInTransaction держит общий замок операций на всё время fn и
// восстанавливает снимок данных, если fn вернула ошибку или упала.
func (s *MemoryStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inMemoryTx(ctx) {
		return fn(ctx)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, memoryTxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	if err = s.persist(); err != nil {
		s.logger.Error("Не удалось сохранить базу в файл", zap.String("path", s.path), zap.Error(err))
		s.restore(snap)
		return err
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.persist()
}

// write выполняет изменение под замком данных. Вне транзакции изменение
// само становится транзакцией, иначе откат чужой транзакции мог бы его стереть.
func (s *MemoryStore) write(ctx context.Context, fn func() error) error {
	apply := func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn()
	}
	if inMemoryTx(ctx) {
		return apply()
	}
	return s.RunInTransaction(ctx, func(context.Context) error { return apply() })
}

func (s *MemoryStore) collection(name string) map[uint64]json.RawMessage {
	coll, ok := s.collections[name]
	if !ok {
		coll = make(map[uint64]json.RawMessage)
		s.collections[name] = coll
	}
	return coll
}

func (s *MemoryStore) sorted(collection string, match func(json.RawMessage) bool) []Document {
	coll := s.collections[collection]
	docs := make([]Document, 0, len(coll))
	for id, data := range coll {
		if match != nil && !match(data) {
			continue
		}
		docs = append(docs, Document{ID: id, Data: data})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

type memorySnapshot struct {
	collections map[string]map[uint64]json.RawMessage
	seq         map[string]uint64
}

// Документы неизменяемы (каждая запись кладёт новый срез), поэтому
// достаточно скопировать карты.
func (s *MemoryStore) snapshot() memorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := memorySnapshot{
		collections: make(map[string]map[uint64]json.RawMessage, len(s.collections)),
		seq:         make(map[string]uint64, len(s.seq)),
	}
	for name, coll := range s.collections {
		c := make(map[uint64]json.RawMessage, len(coll))
		for id, data := range coll {
			c[id] = data
		}
		snap.collections[name] = c
	}
	for name, v := range s.seq {
		snap.seq[name] = v
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = snap.collections
	s.seq = snap.seq
}

// persist пишет файл атомарно: временный файл и rename.
func (s *MemoryStore) persist() error {
	if s.path == "" {
		return nil
	}

	s.mu.RLock()
	tables := make(map[string]map[string]json.RawMessage, len(s.collections))
	for name, coll := range s.collections {
		docs := make(map[string]json.RawMessage, len(coll))
		for id, data := range coll {
			docs[strconv.FormatUint(id, 10)] = data
		}
		tables[name] = docs
	}
	s.mu.RUnlock()

	raw, err := json.MarshalIndent(tables, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
