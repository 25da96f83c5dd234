package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "pedant-server/pkg/errors"
)

func raw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestMemoryStore_InsertAssignsMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zap.NewNop())

	id1, err := s.Insert(ctx, "things", Document{Data: raw(t, map[string]string{"name": "a"})})
	require.NoError(t, err)
	id2, err := s.Insert(ctx, "things", Document{Data: raw(t, map[string]string{"name": "b"})})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id1)
	assert.Equal(t, uint64(2), id2)

	removed, err := s.Delete(ctx, "things", id2)
	require.NoError(t, err)
	assert.True(t, removed)

	id3, err := s.Insert(ctx, "things", Document{Data: raw(t, map[string]string{"name": "c"})})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id3, "удалённый id не выдаётся повторно")

	explicit, err := s.Insert(ctx, "things", Document{ID: 100, Data: raw(t, map[string]string{"name": "d"})})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), explicit)

	next, err := s.Insert(ctx, "things", Document{Data: raw(t, map[string]string{"name": "e"})})
	require.NoError(t, err)
	assert.Equal(t, uint64(101), next)

	_, err = s.Insert(ctx, "things", Document{ID: 100, Data: raw(t, map[string]string{})})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyExists))
}

func TestMemoryStore_GetByIDEmbedsID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zap.NewNop())
	id, err := s.Insert(ctx, "things", Document{Data: raw(t, map[string]string{"name": "a"})})
	require.NoError(t, err)

	doc, err := s.GetByID(ctx, "things", id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"a"}`, string(doc.Data))

	_, err = s.GetByID(ctx, "things", 42)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestMemoryStore_FindMatchesEquality(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zap.NewNop())
	var nilID *uint64
	employer := uint64(7)

	_, _ = s.Insert(ctx, "queue", Document{Data: raw(t, map[string]interface{}{"candidateUserId": 1, "employerUserId": nilID, "status": "waiting_for_hire"})})
	_, _ = s.Insert(ctx, "queue", Document{Data: raw(t, map[string]interface{}{"candidateUserId": 2, "employerUserId": employer, "status": "pending"})})
	_, _ = s.Insert(ctx, "queue", Document{Data: raw(t, map[string]interface{}{"candidateUserId": 1, "employerUserId": employer, "status": "approved"})})

	found, err := s.Find(ctx, "queue", Fields{"candidateUserId": uint64(1)})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.Find(ctx, "queue", Fields{"employerUserId": nilID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, uint64(1), found[0].ID)

	found, err = s.Find(ctx, "queue", Fields{"employerUserId": &employer, "status": "pending"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, uint64(2), found[0].ID)
}

func TestMemoryStore_UpsertByKeyField(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zap.NewNop())

	id, err := s.Upsert(ctx, "settings", "userId", Document{Data: raw(t, map[string]interface{}{"userId": 5, "theme": "dark"})})
	require.NoError(t, err)

	again, err := s.Upsert(ctx, "settings", "userId", Document{Data: raw(t, map[string]interface{}{"userId": 5, "theme": "light"})})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	all, err := s.List(ctx, "settings")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.JSONEq(t, `{"id":1,"userId":5,"theme":"light"}`, string(all[0].Data))
}

func TestMemoryStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zap.NewNop())
	_, err := s.Insert(ctx, "things", Document{Data: raw(t, map[string]string{"name": "keep"})})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.Insert(ctx, "things", Document{Data: raw(t, map[string]string{"name": "lost"})}); err != nil {
			return err
		}
		if _, err := s.Delete(ctx, "things", 1); err != nil {
			return err
		}
		// вложенная транзакция присоединяется к внешней
		return s.RunInTransaction(ctx, func(ctx context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)

	all, err := s.List(ctx, "things")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.JSONEq(t, `{"id":1,"name":"keep"}`, string(all[0].Data))

	id, err := s.Insert(ctx, "things", Document{Data: raw(t, map[string]string{"name": "next"})})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id, "счётчик тоже откатывается")
}

func TestMemoryStore_TransactionsAreSerialized(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zap.NewNop())
	id, err := s.Insert(ctx, "counters", Document{Data: raw(t, map[string]int{"value": 0})})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RunInTransaction(ctx, func(ctx context.Context) error {
				doc, err := s.GetByID(ctx, "counters", id)
				if err != nil {
					return err
				}
				var c struct{ Value int }
				if err := json.Unmarshal(doc.Data, &c); err != nil {
					return err
				}
				_, err = s.Upsert(ctx, "counters", "id", Document{ID: id, Data: raw(t, map[string]int{"value": c.Value + 1})})
				return err
			})
		}()
	}
	wg.Wait()

	doc, err := s.GetByID(ctx, "counters", id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"value":50}`, string(doc.Data))
}

func TestMemoryStore_ReadOutsideTxSeesOnlyCommitted(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zap.NewNop())
	boom := errors.New("boom")

	inserted := make(chan uint64)
	release := make(chan struct{})
	txDone := make(chan error)
	go func() {
		txDone <- s.RunInTransaction(ctx, func(ctx context.Context) error {
			id, err := s.Insert(ctx, "things", Document{Data: raw(t, map[string]string{"name": "draft"})})
			if err != nil {
				return err
			}
			inserted <- id
			<-release
			return boom
		})
	}()
	id := <-inserted

	read := make(chan error)
	go func() {
		_, err := s.GetByID(ctx, "things", id)
		read <- err
	}()

	select {
	case err := <-read:
		t.Fatalf("чтение не дождалось транзакции: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	assert.ErrorIs(t, <-txDone, boom)
	assert.True(t, apperrors.IsKind(<-read, apperrors.KindNotFound))

	docs, err := s.List(ctx, "things")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFileStore_PersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "db.json")

	s, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	_, err = s.Insert(ctx, "users", Document{ID: 555, Data: raw(t, map[string]string{"username": "ivan"})})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "services", Document{Data: raw(t, map[string]string{"serviceNumber": "042"})})
	require.NoError(t, err)

	reloaded, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	doc, err := reloaded.GetByID(ctx, "users", 555)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":555,"username":"ivan"}`, string(doc.Data))

	next, err := reloaded.Insert(ctx, "services", Document{Data: raw(t, map[string]string{"serviceNumber": "043"})})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next)
}

func TestFileStore_LoadsTinyDBLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"orders": {"3": {"orderNumber": "001-00001"}, "7": {"id": 9, "orderNumber": "001-00002"}}}`), 0o644))

	s, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)

	docs, err := s.List(context.Background(), "orders")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, uint64(3), docs[0].ID)
	assert.Equal(t, uint64(9), docs[1].ID)

	id, err := s.Insert(context.Background(), "orders", Document{Data: raw(t, map[string]string{"orderNumber": "001-00003"})})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), id)
}

func TestFileStore_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := NewFileStore(path, zap.NewNop())
	assert.Error(t, err)
}
