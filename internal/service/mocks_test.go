package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/reward-redemption-system/internal/model"
	"github.com/fairyhunter13/reward-redemption-system/pkg/database"
)

// mockPlayerRepository is a mock implementation of PlayerRepositoryInterface.
type mockPlayerRepository struct {
	insertFn  func(ctx context.Context, player *model.Player) error
	listFn    func(ctx context.Context) ([]model.Player, error)
	getByIDFn func(ctx context.Context, id int64) (*model.Player, error)
}

func (m *mockPlayerRepository) Insert(ctx context.Context, player *model.Player) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, player)
	}
	return nil
}

func (m *mockPlayerRepository) List(ctx context.Context) ([]model.Player, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockPlayerRepository) GetByID(ctx context.Context, id int64) (*model.Player, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

// playersWith returns a repository that knows only the given players.
func playersWith(players ...model.Player) *mockPlayerRepository {
	return &mockPlayerRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Player, error) {
			for _, p := range players {
				if p.ID == id {
					p := p
					return &p, nil
				}
			}
			return nil, nil
		},
	}
}

// mockRewardRepository is a mock implementation of RewardRepositoryInterface.
type mockRewardRepository struct {
	insertFn  func(ctx context.Context, reward *model.Reward) error
	listFn    func(ctx context.Context) ([]model.Reward, error)
	getByIDFn func(ctx context.Context, id int64) (*model.Reward, error)
}

func (m *mockRewardRepository) Insert(ctx context.Context, reward *model.Reward) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, reward)
	}
	return nil
}

func (m *mockRewardRepository) List(ctx context.Context) ([]model.Reward, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockRewardRepository) GetByID(ctx context.Context, id int64) (*model.Reward, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

// rewardsWith returns a repository that knows only the given rewards.
func rewardsWith(rewards ...model.Reward) *mockRewardRepository {
	return &mockRewardRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Reward, error) {
			for _, r := range rewards {
				if r.ID == id {
					r := r
					return &r, nil
				}
			}
			return nil, nil
		},
	}
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
// Callbacks registered with onEnd run in reverse order when the transaction
// commits or rolls back, whichever comes first.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error

	mu         sync.Mutex
	ended      bool
	committed  bool
	rolledBack bool
	callbacks  []func(committed bool)
}

func (m *mockTx) onEnd(fn func(committed bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

func (m *mockTx) finish(committed bool) {
	m.mu.Lock()
	if m.ended {
		m.mu.Unlock()
		return
	}
	m.ended = true
	m.committed = committed
	m.rolledBack = !committed
	callbacks := m.callbacks
	m.mu.Unlock()

	for i := len(callbacks) - 1; i >= 0; i-- {
		callbacks[i](committed)
	}
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		if err := m.commitFn(ctx); err != nil {
			return err
		}
	}
	m.finish(true)
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	var err error
	if m.rollbackFn != nil {
		err = m.rollbackFn(ctx)
	}
	m.finish(false)
	return err
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)

	mu  sync.Mutex
	txs []*mockTx
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	tx := &mockTx{}
	m.mu.Lock()
	m.txs = append(m.txs, tx)
	m.mu.Unlock()
	return tx, nil
}

func (m *mockTxBeginner) last() *mockTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.txs) == 0 {
		return nil
	}
	return m.txs[len(m.txs)-1]
}

// fakeLedger is an in-memory LedgerRepositoryInterface.
// Writes become visible only when their transaction commits, and LockPair
// holds a per-pair mutex until the transaction ends, mirroring
// pg_advisory_xact_lock.
type fakeLedger struct {
	mu            sync.Mutex
	locks         map[[2]int64]*sync.Mutex
	coupons       map[int64]model.Coupon
	playerCoupons []model.PlayerCoupon
	nextID        int64

	lockErr         error
	countErr        error
	findErr         error
	createCouponErr error
	createPCErr     error
	listFn          func(ctx context.Context, playerID int64) ([]model.Redemption, error)
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		locks:   map[[2]int64]*sync.Mutex{},
		coupons: map[int64]model.Coupon{},
	}
}

func (f *fakeLedger) txOf(tx database.TxQuerier) *mockTx {
	mt, ok := tx.(*mockTx)
	if !ok {
		panic("fakeLedger requires *mockTx")
	}
	return mt
}

func (f *fakeLedger) LockPair(ctx context.Context, tx database.TxQuerier, playerID, rewardID int64) error {
	if f.lockErr != nil {
		return f.lockErr
	}
	key := [2]int64{playerID, rewardID}

	f.mu.Lock()
	l, ok := f.locks[key]
	if !ok {
		l = &sync.Mutex{}
		f.locks[key] = l
	}
	f.mu.Unlock()

	l.Lock()
	f.txOf(tx).onEnd(func(bool) { l.Unlock() })
	return nil
}

func (f *fakeLedger) CountRedemptions(ctx context.Context, tx database.TxQuerier, playerID, rewardID int64, window *model.TimeRange) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, pc := range f.playerCoupons {
		if pc.PlayerID != playerID || f.coupons[pc.CouponID].RewardID != rewardID {
			continue
		}
		if window != nil && (pc.RedeemedAt.Before(window.Start) || pc.RedeemedAt.After(window.End)) {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeLedger) FindRedemption(ctx context.Context, tx database.TxQuerier, playerID, rewardID int64) (*model.PlayerCoupon, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, pc := range f.playerCoupons {
		if pc.PlayerID == playerID && f.coupons[pc.CouponID].RewardID == rewardID {
			pc := pc
			return &pc, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) CreateCoupon(ctx context.Context, tx database.TxQuerier, value string, rewardID int64) (*model.Coupon, error) {
	if f.createCouponErr != nil {
		return nil, f.createCouponErr
	}
	f.mu.Lock()
	f.nextID++
	coupon := model.Coupon{ID: f.nextID, Value: value, RewardID: rewardID}
	f.mu.Unlock()

	f.txOf(tx).onEnd(func(committed bool) {
		if committed {
			f.mu.Lock()
			f.coupons[coupon.ID] = coupon
			f.mu.Unlock()
		}
	})
	return &coupon, nil
}

func (f *fakeLedger) CreatePlayerCoupon(ctx context.Context, tx database.TxQuerier, playerID, couponID int64, redeemedAt time.Time) (*model.PlayerCoupon, error) {
	if f.createPCErr != nil {
		return nil, f.createPCErr
	}
	f.mu.Lock()
	f.nextID++
	pc := model.PlayerCoupon{ID: f.nextID, PlayerID: playerID, CouponID: couponID, RedeemedAt: redeemedAt}
	f.mu.Unlock()

	f.txOf(tx).onEnd(func(committed bool) {
		if committed {
			f.mu.Lock()
			f.playerCoupons = append(f.playerCoupons, pc)
			f.mu.Unlock()
		}
	})
	return &pc, nil
}

func (f *fakeLedger) ListByPlayer(ctx context.Context, playerID int64) ([]model.Redemption, error) {
	if f.listFn != nil {
		return f.listFn(ctx, playerID)
	}
	return nil, nil
}

// rows returns the committed player coupons and coupons.
func (f *fakeLedger) rows() (playerCoupons, coupons int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.playerCoupons), len(f.coupons)
}
