package repositories

import "context"

type TxManagerInterface interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TxManager struct {
	store DocumentStore
}

func NewTxManager(store DocumentStore) TxManagerInterface {
	return &TxManager{store: store}
}

// RunInTransaction выполняет `fn` как одну бизнес-операцию: все чтения и записи
// внутри видят согласованное состояние, при ошибке записи откатываются.
// Репозитории берут транзакцию из ctx, поэтому fn должна передавать его дальше.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.store.RunInTransaction(ctx, fn)
}
