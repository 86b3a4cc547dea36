package dbx

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx 把事务放进 ctx，后续 DAO 通过 Conn 拿到的就是这个事务
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom 取出 ctx 里面的事务
func TxFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

var ErrTxDone = errors.New("事务已经结束")

// Tx 显式开启的事务。Commit 之后再 Rollback 不会报错，方便 defer tx.Rollback()
type Tx struct {
	db   *gorm.DB
	done bool
}

func (t *Tx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	return t.db.Commit().Error
}

func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.db.Rollback().Error
}

// Transactor 开启事务的能力，service 依赖这个接口而不是 Pool
type Transactor interface {
	// Transaction ctx 里面已经有事务的时候直接复用，否则开启一个新事务
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
