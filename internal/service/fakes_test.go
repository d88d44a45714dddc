package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/repository"
)

// memMovies is an in-memory MovieStore.
type memMovies struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.Movie
}

func newMemMovies() *memMovies { return &memMovies{rows: map[uint64]model.Movie{}} }

func (m *memMovies) sorted(keep func(model.Movie) bool) []model.Movie {
	out := []model.Movie{}
	for _, mv := range m.rows {
		if keep(mv) {
			out = append(out, mv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memMovies) ListAll(context.Context) ([]model.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(model.Movie) bool { return true }), nil
}

func (m *memMovies) ListByCategory(_ context.Context, c string) ([]model.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(mv model.Movie) bool { return mv.Category == c }), nil
}

func (m *memMovies) GetByID(_ context.Context, id uint64) (model.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv, ok := m.rows[id]
	if !ok {
		return model.Movie{}, repository.ErrMovieNotFound
	}
	return mv, nil
}

func (m *memMovies) CreateMany(_ context.Context, in []model.MovieInput) ([]model.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Movie, 0, len(in))
	for _, mi := range in {
		m.nextID++
		mv := mi.Movie(m.nextID)
		m.rows[mv.ID] = mv
		out = append(out, mv)
	}
	return out, nil
}

func (m *memMovies) Update(_ context.Context, id uint64, in model.MovieInput) (model.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return model.Movie{}, repository.ErrMovieNotFound
	}
	m.rows[id] = in.Movie(id)
	return m.rows[id], nil
}

func (m *memMovies) Delete(_ context.Context, id uint64) (model.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv, ok := m.rows[id]
	if !ok {
		return model.Movie{}, repository.ErrMovieNotFound
	}
	delete(m.rows, id)
	return mv, nil
}

// memUsers is an in-memory UserStore.  Each mutation appends its log
// entry under the same lock, so a failed mutation leaves no entry.
type memUsers struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[string]model.User
	roleDB map[uint64]model.Role
	logs   []model.UserLog
}

func newMemUsers(roles ...model.Role) *memUsers {
	db := map[uint64]model.Role{}
	for _, r := range roles {
		db[r.ID] = r
	}
	return &memUsers{rows: map[string]model.User{}, roleDB: db}
}

func (m *memUsers) byID(id uint64) (string, bool) {
	for name, u := range m.rows {
		if u.ID == id {
			return name, true
		}
	}
	return "", false
}

func (m *memUsers) appendLog(userID uint64, e model.LogEntry) uint64 {
	id := uint64(len(m.logs) + 1)
	m.logs = append(m.logs, model.UserLog{
		ID: id, UserID: userID, Action: e.Action, Description: e.Description, CreatedAt: e.CreatedAt,
	})
	return id
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[username]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) ListAll(context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.User{}
	for _, u := range m.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) Create(_ context.Context, u *model.User, e model.LogEntry) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[u.Username]; ok {
		return 0, repository.ErrUsernameExists
	}
	m.nextID++
	u.ID = m.nextID
	m.rows[u.Username] = *u
	return m.appendLog(u.ID, e), nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id uint64, hash string, e model.LogEntry) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.byID(id)
	if !ok {
		return 0, repository.ErrUserNotFound
	}
	u := m.rows[name]
	u.PasswordHash = hash
	m.rows[name] = u
	return m.appendLog(id, e), nil
}

func (m *memUsers) SetActive(_ context.Context, id uint64, active bool, e model.LogEntry) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name, ok := m.byID(id); ok {
		u := m.rows[name]
		u.IsActive = active
		m.rows[name] = u
	}
	return m.appendLog(id, e), nil
}

func (m *memUsers) ReplaceRoles(_ context.Context, userID uint64, roleIDs []uint64, e model.LogEntry) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.byID(userID)
	if !ok {
		return 0, repository.ErrUserNotFound
	}
	u := m.rows[name]
	u.Roles = []model.Role{}
	for _, id := range roleIDs {
		u.Roles = append(u.Roles, m.roleDB[id])
	}
	m.rows[name] = u
	return m.appendLog(userID, e), nil
}

func (m *memUsers) Delete(_ context.Context, id uint64, e model.LogEntry) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.byID(id)
	if !ok {
		return 0, repository.ErrUserNotFound
	}
	delete(m.rows, name)
	return m.appendLog(id, e), nil
}

func (m *memUsers) entries() []model.UserLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.UserLog(nil), m.logs...)
}

func (m *memUsers) lastLog() model.UserLog {
	logs := m.entries()
	return logs[len(logs)-1]
}

// memRoles is an in-memory RoleStore.
type memRoles struct{ roles []model.Role }

func (m memRoles) ListByNames(_ context.Context, names []string) ([]model.Role, error) {
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	out := []model.Role{}
	for _, r := range m.roles {
		if want[r.Name] {
			out = append(out, r)
		}
	}
	return out, nil
}

// memAudit is an in-memory AuditTrail over memUsers' log rows.  Actions
// listed in missing fail to resolve.
type memAudit struct {
	mu        sync.Mutex
	users     *memUsers
	missing   map[model.ActionName]bool
	announced []uint64
}

func (m *memAudit) Prepare(_ context.Context, action model.ActionName, description string) (model.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.missing[action] {
		return model.LogEntry{}, fmt.Errorf("resolve action %q: %w", action, repository.ErrActionNotFound)
	}
	return model.LogEntry{Action: action, Description: description, CreatedAt: time.Now().UTC()}, nil
}

func (m *memAudit) Announce(_ context.Context, _ model.User, _ model.LogEntry, logID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.announced = append(m.announced, logID)
}

func (m *memAudit) ListByUser(_ context.Context, userID uint64) ([]model.UserLog, error) {
	out := []model.UserLog{}
	for _, e := range m.users.entries() {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}
