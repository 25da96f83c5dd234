package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	apperrors "pedant-server/pkg/errors"
)

const (
	documentsTable = "documents"
	sequencesTable = "document_sequences"

	// Ключ advisory-блокировки, под которой выполняются бизнес-операции.
	operationLockKey int64 = 0x70656461
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type pgTxKey struct{}

// PostgresStore хранит документы в JSONB-таблице documents.
type PostgresStore struct {
	pool   *pgxpool.Pool
	sb     sq.StatementBuilderType
	logger *zap.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		pool:   pool,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger: logger,
	}
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(pgTxKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	query := s.sb.Select("id", "data").From(documentsTable).
		Where(sq.Eq{"collection": collection}).
		OrderBy("id")
	return s.selectDocuments(ctx, query)
}

func (s *PostgresStore) GetByID(ctx context.Context, collection string, id uint64) (Document, error) {
	sqlStr, args, err := s.sb.Select("id", "data").From(documentsTable).
		Where(sq.Eq{"collection": collection, "id": int64(id)}).
		ToSql()
	if err != nil {
		return Document{}, err
	}

	var (
		rawID int64
		data  []byte
	)
	if err := s.q(ctx).QueryRow(ctx, sqlStr, args...).Scan(&rawID, &data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, apperrors.ErrNotFound
		}
		return Document{}, err
	}
	return Document{ID: uint64(rawID), Data: data}, nil
}

func (s *PostgresStore) Find(ctx context.Context, collection string, where Fields) ([]Document, error) {
	filter, err := json.Marshal(where)
	if err != nil {
		return nil, fmt.Errorf("условие поиска: %w", err)
	}
	query := s.sb.Select("id", "data").From(documentsTable).
		Where(sq.Eq{"collection": collection}).
		Where(sq.Expr("data @> ?::jsonb", string(filter))).
		OrderBy("id")
	return s.selectDocuments(ctx, query)
}

func (s *PostgresStore) Insert(ctx context.Context, collection string, doc Document) (uint64, error) {
	var id uint64
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		id, err = s.insert(ctx, collection, doc)
		return err
	})
	return id, err
}

func (s *PostgresStore) insert(ctx context.Context, collection string, doc Document) (uint64, error) {
	id, err := s.reserveID(ctx, collection, doc.ID)
	if err != nil {
		return 0, err
	}
	data, err := withID(doc.Data, id)
	if err != nil {
		return 0, err
	}

	sqlStr, args, err := s.sb.Insert(documentsTable).
		Columns("collection", "id", "data").
		Values(collection, int64(id), string(data)).
		ToSql()
	if err != nil {
		return 0, err
	}
	if _, err := s.q(ctx).Exec(ctx, sqlStr, args...); err != nil {
		return 0, translateWriteError(err, collection)
	}
	return id, nil
}

// reserveID выдаёт следующий id коллекции или продвигает счётчик до явного id.
func (s *PostgresStore) reserveID(ctx context.Context, collection string, explicit uint64) (uint64, error) {
	query := s.sb.Insert(sequencesTable).Columns("collection", "last_id")
	if explicit == 0 {
		query = query.Values(collection, 1).
			Suffix("ON CONFLICT (collection) DO UPDATE SET last_id = " + sequencesTable + ".last_id + 1 RETURNING last_id")
	} else {
		query = query.Values(collection, int64(explicit)).
			Suffix("ON CONFLICT (collection) DO UPDATE SET last_id = GREATEST(" + sequencesTable + ".last_id, EXCLUDED.last_id) RETURNING last_id")
	}
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}
	var last int64
	if err := s.q(ctx).QueryRow(ctx, sqlStr, args...).Scan(&last); err != nil {
		return 0, fmt.Errorf("не удалось получить id для %s: %w", collection, err)
	}
	if explicit != 0 {
		return explicit, nil
	}
	return uint64(last), nil
}

func (s *PostgresStore) Upsert(ctx context.Context, collection string, keyField string, doc Document) (uint64, error) {
	var id uint64
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		if keyField != "" && keyField != "id" {
			key, err := fieldValue(doc.Data, keyField)
			if err != nil {
				return err
			}
			existing, err := s.Find(ctx, collection, Fields{keyField: key})
			if err != nil {
				return err
			}
			if len(existing) == 0 {
				doc.ID = 0
				id, err = s.insert(ctx, collection, doc)
				return err
			}
			doc.ID = existing[0].ID
		}
		if doc.ID == 0 {
			var err error
			id, err = s.insert(ctx, collection, doc)
			return err
		}

		if _, err := s.reserveID(ctx, collection, doc.ID); err != nil {
			return err
		}
		data, err := withID(doc.Data, doc.ID)
		if err != nil {
			return err
		}
		sqlStr, args, err := s.sb.Insert(documentsTable).
			Columns("collection", "id", "data").
			Values(collection, int64(doc.ID), string(data)).
			Suffix("ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()").
			ToSql()
		if err != nil {
			return err
		}
		if _, err := s.q(ctx).Exec(ctx, sqlStr, args...); err != nil {
			return translateWriteError(err, collection)
		}
		id = doc.ID
		return nil
	})
	return id, err
}

func (s *PostgresStore) Delete(ctx context.Context, collection string, id uint64) (bool, error) {
	sqlStr, args, err := s.sb.Delete(documentsTable).
		Where(sq.Eq{"collection": collection, "id": int64(id)}).
		ToSql()
	if err != nil {
		return false, err
	}
	tag, err := s.q(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RunInTransaction открывает транзакцию и сразу берёт advisory-блокировку
// уровня транзакции: бизнес-операции выполняются по одной даже между процессами.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(pgTxKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error("ошибка при откате транзакции", zap.Error(rbErr))
			}
		} else {
			err = tx.Commit(ctx)
			if err != nil {
				err = fmt.Errorf("ошибка при коммите транзакции: %w", err)
			}
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", operationLockKey); err != nil {
		return fmt.Errorf("не удалось взять блокировку операции: %w", err)
	}

	err = fn(context.WithValue(ctx, pgTxKey{}, tx))
	return err
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) selectDocuments(ctx context.Context, query sq.SelectBuilder) ([]Document, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.q(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			rawID int64
			data  []byte
		)
		if err := rows.Scan(&rawID, &data); err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: uint64(rawID), Data: data})
	}
	return docs, rows.Err()
}

func translateWriteError(err error, collection string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperrors.Wrap(apperrors.KindAlreadyExists, err, fmt.Sprintf("Запись уже существует в %s", collection))
	}
	return err
}
