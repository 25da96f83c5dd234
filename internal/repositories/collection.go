package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/utils"
)

type record interface {
	GetID() uint64
	SetID(id uint64)
}

// collection - типизированный доступ к коллекции документов.
// Каждая запись проверяется валидатором перед сохранением.
type collection[T any, PT interface {
	*T
	record
}] struct {
	store    DocumentStore
	name     string
	validate *validator.Validate
	notFound string
}

func newCollection[T any, PT interface {
	*T
	record
}](store DocumentStore, validate *validator.Validate, name, notFound string) collection[T, PT] {
	return collection[T, PT]{store: store, name: name, validate: validate, notFound: notFound}
}

func (c collection[T, PT]) decode(doc Document) (*T, error) {
	var v T
	if err := json.Unmarshal(doc.Data, &v); err != nil {
		return nil, fmt.Errorf("повреждённая запись %s/%d: %w", c.name, doc.ID, err)
	}
	PT(&v).SetID(doc.ID)
	return &v, nil
}

func (c collection[T, PT]) decodeAll(docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := c.decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (c collection[T, PT]) encode(v PT) (json.RawMessage, error) {
	if err := c.validate.Struct(v); err != nil {
		return nil, utils.ValidationError(err)
	}
	return json.Marshal(v)
}

func (c collection[T, PT]) get(ctx context.Context, id uint64) (*T, error) {
	doc, err := c.store.GetByID(ctx, c.name, id)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.NewNotFoundError(c.notFound, id)
		}
		return nil, err
	}
	return c.decode(doc)
}

func (c collection[T, PT]) list(ctx context.Context) ([]T, error) {
	docs, err := c.store.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	return c.decodeAll(docs)
}

func (c collection[T, PT]) find(ctx context.Context, where Fields) ([]T, error) {
	docs, err := c.store.Find(ctx, c.name, where)
	if err != nil {
		return nil, err
	}
	return c.decodeAll(docs)
}

// insert сохраняет новую запись; при v.GetID() == 0 id назначает хранилище.
func (c collection[T, PT]) insert(ctx context.Context, v PT) error {
	data, err := c.encode(v)
	if err != nil {
		return err
	}
	id, err := c.store.Insert(ctx, c.name, Document{ID: v.GetID(), Data: data})
	if err != nil {
		return err
	}
	v.SetID(id)
	return nil
}

// save заменяет запись целиком по id.
func (c collection[T, PT]) save(ctx context.Context, v PT) error {
	if v.GetID() == 0 {
		return c.insert(ctx, v)
	}
	data, err := c.encode(v)
	if err != nil {
		return err
	}
	_, err = c.store.Upsert(ctx, c.name, "id", Document{ID: v.GetID(), Data: data})
	return err
}

func (c collection[T, PT]) remove(ctx context.Context, id uint64) (bool, error) {
	return c.store.Delete(ctx, c.name, id)
}
