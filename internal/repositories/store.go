package repositories

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	CollectionUsers            = "users"
	CollectionServices         = "services"
	CollectionServiceEmployees = "serviceEmployees"
	CollectionOrders           = "orders"
	CollectionHiringQueue      = "hiringQueue"
	CollectionHiringActivities = "hiringActivities"
	CollectionUserSettings     = "userSettings"
)

// Document - запись коллекции: целочисленный id и JSON-объект с полями.
// Поле "id" внутри Data всегда совпадает с ID.
type Document struct {
	ID   uint64
	Data json.RawMessage
}

// Fields - условие поиска: равенство верхнеуровневых полей документа.
type Fields map[string]interface{}

// DocumentStore - хранилище документов по коллекциям.
//
// Каждый примитив атомарен сам по себе. Многошаговые операции выполняются
// внутри RunInTransaction: операции сериализуются, при ошибке все записи
// внутри откатываются. Вложенный вызов присоединяется к внешней транзакции.
type DocumentStore interface {
	List(ctx context.Context, collection string) ([]Document, error)
	// GetByID возвращает apperrors.ErrNotFound, если записи нет.
	GetByID(ctx context.Context, collection string, id uint64) (Document, error)
	Find(ctx context.Context, collection string, where Fields) ([]Document, error)
	// Insert назначает следующий id, если doc.ID == 0. Явный id продвигает
	// счётчик коллекции, так что выданные id не повторяются.
	Insert(ctx context.Context, collection string, doc Document) (uint64, error)
	// Upsert заменяет запись с тем же значением keyField или вставляет новую.
	Upsert(ctx context.Context, collection string, keyField string, doc Document) (uint64, error)
	Delete(ctx context.Context, collection string, id uint64) (bool, error)
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Close() error
}

// withID проставляет поле "id" в JSON-объекте документа.
func withID(data json.RawMessage, id uint64) (json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("документ не является JSON-объектом: %w", err)
		}
	}
	rawID, _ := json.Marshal(id)
	fields["id"] = rawID
	return json.Marshal(fields)
}

// fieldValue достаёт значение поля документа; отсутствующее поле считается null.
func fieldValue(data json.RawMessage, field string) (interface{}, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	raw, ok := fields[field]
	if !ok {
		return nil, nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// normalize приводит значение условия к тому виду, в котором оно лежит в JSON.
func normalize(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
