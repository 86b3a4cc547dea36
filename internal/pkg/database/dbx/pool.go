package dbx

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"gitee.com/flycash/notification-dispatch/internal/errs"
	"github.com/gotomicro/ego/core/elog"
	"gorm.io/gorm"
)

// DefaultMaxOpenConns 单个进程最多两个连接
const DefaultMaxOpenConns = 2

var (
	tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	orderPattern     = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*( (?i:ASC|DESC))?$`)
)

var _ Transactor = (*Pool)(nil)

// Pool 进程内唯一的数据库连接池。
// 启动的时候创建，退出的时候 Close；事务通过 ctx 传递。
type Pool struct {
	db     *gorm.DB
	logger *elog.Component
}

// NewPool maxOpenConns <= 0 的时候使用 DefaultMaxOpenConns
func NewPool(db *gorm.DB, maxOpenConns int) (*Pool, error) {
	if maxOpenConns <= 0 {
		maxOpenConns = DefaultMaxOpenConns
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取连接池失败 %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	if maxOpenConns < 2 {
		sqlDB.SetMaxIdleConns(maxOpenConns)
	}
	return &Pool{
		db:     db,
		logger: elog.DefaultLogger.With(elog.String("component", "dbx.Pool")),
	}, nil
}

// Close 断开全部连接
func (p *Pool) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	p.logger.Info("关闭数据库连接池")
	return sqlDB.Close()
}

// Conn ctx 里面有事务就用事务，否则用连接池
func (p *Pool) Conn(ctx context.Context) *gorm.DB {
	if tx, ok := TxFrom(ctx); ok {
		return tx.WithContext(ctx)
	}
	return p.db.WithContext(ctx)
}

// Begin 开启事务，返回的 ctx 携带了这个事务
func (p *Pool) Begin(ctx context.Context) (context.Context, *Tx, error) {
	tx := p.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		p.logger.Error("开启事务失败", elog.FieldErr(tx.Error))
		return ctx, nil, tx.Error
	}
	p.logger.Debug("BEGIN")
	return WithTx(ctx, tx), &Tx{db: tx}, nil
}

func (p *Pool) Transaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := TxFrom(ctx); ok {
		return fn(ctx)
	}
	txCtx, tx, err := p.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()
	if err = fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			p.logger.Error("回滚事务失败", elog.FieldErr(rbErr))
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		p.logger.Error("提交事务失败", elog.FieldErr(err))
		return err
	}
	p.logger.Debug("COMMIT")
	return nil
}

// Create 插入一行，values 的 key 是列名
func (p *Pool) Create(ctx context.Context, table string, values map[string]any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	p.logStatement("INSERT", table, "", keys(values))
	err := p.Conn(ctx).Table(table).Create(values).Error
	if err != nil {
		p.logger.Error("插入数据失败", elog.String("table", table), elog.FieldErr(err))
	}
	return err
}

// Query 读取条件，Where 使用占位符
type Query struct {
	Where string
	Args  []any
	// Order 形如 "id ASC"
	Order string
	Limit int
}

// Read 把满足条件的行读到 dest 里面，dest 一般是切片指针
func (p *Pool) Read(ctx context.Context, table string, dest any, q Query) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if q.Order != "" && !orderPattern.MatchString(q.Order) {
		return fmt.Errorf("%w: 非法排序 %q", errs.ErrInvalidParameter, q.Order)
	}
	p.logStatement("SELECT", table, q.Where, nil)
	db := p.Conn(ctx).Table(table)
	if q.Where != "" {
		db = db.Where(q.Where, q.Args...)
	}
	if q.Order != "" {
		db = db.Order(q.Order)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	err := db.Find(dest).Error
	if err != nil {
		p.logger.Error("查询数据失败", elog.String("table", table), elog.FieldErr(err))
	}
	return err
}

// Update 返回受影响的行数，调用方可以依据行数判断条件更新是否成功
func (p *Pool) Update(ctx context.Context, table string, values map[string]any, query string, args ...any) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	if query == "" {
		return 0, fmt.Errorf("%w: 不允许无条件更新 %s", errs.ErrInvalidParameter, table)
	}
	p.logStatement("UPDATE", table, query, keys(values))
	res := p.Conn(ctx).Table(table).Where(query, args...).Updates(values)
	if res.Error != nil {
		p.logger.Error("更新数据失败", elog.String("table", table), elog.FieldErr(res.Error))
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Delete 物理删除
func (p *Pool) Delete(ctx context.Context, table string, query string, args ...any) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	if query == "" {
		return 0, fmt.Errorf("%w: 不允许无条件删除 %s", errs.ErrInvalidParameter, table)
	}
	p.logStatement("DELETE", table, query, nil)
	res := p.Conn(ctx).Exec(fmt.Sprintf("DELETE FROM `%s` WHERE %s", table, query), args...)
	if res.Error != nil {
		p.logger.Error("删除数据失败", elog.String("table", table), elog.FieldErr(res.Error))
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// logStatement 只记录语句结构，不记录参数的值
func (p *Pool) logStatement(op, table, query string, columns []string) {
	fields := []elog.Field{elog.String("op", op), elog.String("table", table)}
	if query != "" {
		fields = append(fields, elog.String("where", query))
	}
	if len(columns) > 0 {
		fields = append(fields, elog.String("columns", strings.Join(columns, ",")))
	}
	p.logger.Debug("执行SQL", fields...)
}

func checkTable(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("%w: 非法表名 %q", errs.ErrInvalidParameter, table)
	}
	return nil
}

func keys(values map[string]any) []string {
	res := make([]string, 0, len(values))
	for k := range values {
		res = append(res, k)
	}
	return res
}
