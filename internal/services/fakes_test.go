package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tumo-mining/backend/internal/events"
	"github.com/tumo-mining/backend/internal/models"
	"github.com/tumo-mining/backend/internal/repositories"
	"github.com/tumo-mining/backend/internal/solana"
)

type memUsers struct {
	mu       sync.Mutex
	byWallet map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byWallet: make(map[string]*models.User)}
}

func (m *memUsers) UpsertByWallet(_ context.Context, wallet string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byWallet[wallet]; ok {
		return u, nil
	}
	u := &models.User{ID: uuid.New(), Wallet: wallet, CreatedAt: time.Now()}
	m.byWallet[wallet] = u
	return u, nil
}

func (m *memUsers) GetByWallet(_ context.Context, wallet string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byWallet[wallet]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

type memEvents struct {
	mu        sync.Mutex
	events    []models.MiningEvent
	appendErr error
}

func (m *memEvents) Append(_ context.Context, e *models.MiningEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(e)
}

func (m *memEvents) appendLocked(e *models.MiningEvent) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	e.ID = int64(len(m.events) + 1)
	m.events = append(m.events, *e)
	return nil
}

func (m *memEvents) AppendWithinCap(_ context.Context, e *models.MiningEvent, from, to time.Time, limit int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > 0 {
		var used int64
		for _, ev := range m.events {
			if ev.UserID == e.UserID && !ev.TS.Before(from) && ev.TS.Before(to) {
				used += ev.Points
			}
		}
		if used+e.Points > limit {
			return false, nil
		}
	}
	if err := m.appendLocked(e); err != nil {
		return false, err
	}
	return true, nil
}

func (m *memEvents) PointsInWindow(_ context.Context, from, to time.Time) ([]models.UserPoints, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sums := make(map[uuid.UUID]int64)
	for _, e := range m.events {
		if !e.TS.Before(from) && e.TS.Before(to) {
			sums[e.UserID] += e.Points
		}
	}
	out := make([]models.UserPoints, 0, len(sums))
	for id, p := range sums {
		out = append(out, models.UserPoints{UserID: id, Points: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID.String() < out[j].UserID.String() })
	return out, nil
}

func (m *memEvents) SumInWindow(ctx context.Context, from, to time.Time) (int64, error) {
	rows, _ := m.PointsInWindow(ctx, from, to)
	var total int64
	for _, r := range rows {
		total += r.Points
	}
	return total, nil
}

func (m *memEvents) UserPointsInWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	rows, _ := m.PointsInWindow(ctx, from, to)
	for _, r := range rows {
		if r.UserID == userID {
			return r.Points, nil
		}
	}
	return 0, nil
}

// add inserts an event directly, bypassing tick validation.
func (m *memEvents) add(userID uuid.UUID, points int64, ts time.Time) {
	_ = m.Append(context.Background(), &models.MiningEvent{UserID: userID, Points: points, Reason: models.ReasonTimer, TS: ts})
}

type memPools struct {
	mu    sync.Mutex
	pools map[string]models.DailyPool
}

func newMemPools() *memPools {
	return &memPools{pools: make(map[string]models.DailyPool)}
}

func (m *memPools) EnsureDailyPool(_ context.Context, p *models.DailyPool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := models.FormatDay(p.Day)
	if stored, ok := m.pools[key]; ok {
		*p = stored
		return nil
	}
	p.CreatedAt = time.Now()
	m.pools[key] = *p
	return nil
}

type claimKey struct {
	day  string
	user uuid.UUID
}

type memClaimables struct {
	mu     sync.Mutex
	rows   map[claimKey]*models.Claimable
	claims map[claimKey]*models.Claim
}

func newMemClaimables() *memClaimables {
	return &memClaimables{
		rows:   make(map[claimKey]*models.Claimable),
		claims: make(map[claimKey]*models.Claim),
	}
}

func (m *memClaimables) UpsertMany(_ context.Context, rows []models.Claimable) (applied, frozen int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		k := claimKey{models.FormatDay(r.Day), r.UserID}
		if cur, ok := m.rows[k]; ok && cur.Claimed {
			frozen++
			continue
		}
		row := r
		row.UpdatedAt = time.Now()
		m.rows[k] = &row
		applied++
	}
	return applied, frozen, nil
}

func (m *memClaimables) Get(_ context.Context, day time.Time, userID uuid.UUID) (*models.Claimable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.rows[claimKey{models.FormatDay(day), userID}]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *memClaimables) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]models.Claimable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Claimable
	for k, c := range m.rows {
		if k.user == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.After(out[j].Day) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memClaimables) Finalize(_ context.Context, userID uuid.UUID, day time.Time, sig string) (models.FinalizeOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := claimKey{models.FormatDay(day), userID}
	c, ok := m.rows[k]
	if !ok {
		return models.FinalizeMissing, nil
	}
	if c.Claimed {
		if cl, ok := m.claims[k]; ok && cl.Sig == sig {
			return models.FinalizeDuplicate, nil
		}
		return models.FinalizeConflict, nil
	}
	c.Claimed = true
	m.claims[k] = &models.Claim{ID: int64(len(m.claims) + 1), UserID: userID, Day: day, Sig: sig, CreatedAt: time.Now()}
	return models.FinalizeApplied, nil
}

func (m *memClaimables) GetClaim(_ context.Context, userID uuid.UUID, day time.Time) (*models.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.claims[claimKey{models.FormatDay(day), userID}]; ok {
		return c, nil
	}
	return nil, repositories.ErrNotFound
}

type memAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (m *memAudit) Log(_ context.Context, entry models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type memPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (m *memPublisher) Publish(_ context.Context, _ string, e events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

type fakeBuilder struct {
	calls  int
	amount uint64
	err    error
}

func (f *fakeBuilder) Build(_ context.Context, wallet string, amount uint64) (*solana.Transfer, error) {
	f.calls++
	f.amount = amount
	if f.err != nil {
		return nil, f.err
	}
	return &solana.Transfer{Base64: "dHg=", CreatesATA: true}, nil
}
