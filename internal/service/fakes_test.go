package service

import (
	"context"
	"sync"

	"osteo-upgrade-go/internal/model"
	"osteo-upgrade-go/internal/repository"
	"osteo-upgrade-go/pkg/events"

	"gorm.io/gorm"
)

// fakeUserRepo 是 UserRepository 的内存实现。
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*model.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.nextID
	f.nextID++
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(userID uint) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) FindAll() ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, *u)
	}
	return users, nil
}

func (f *fakeUserRepo) Update(user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Delete(userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, userID)
	return nil
}

func (f *fakeUserRepo) CountActive() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.users {
		if u.IsActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserRepo) CountActiveByStatus() ([]repository.StatusCount, error) {
	return nil, nil
}

func (f *fakeUserRepo) CountNewByDay(days int) ([]repository.DateCount, error) {
	return nil, nil
}

// fakeTreeRepo 是 TreeRepository 的内存实现。
type fakeTreeRepo struct {
	trees  map[uint]*model.DecisionTree
	nextID uint
}

func newFakeTreeRepo(trees ...*model.DecisionTree) *fakeTreeRepo {
	f := &fakeTreeRepo{trees: map[uint]*model.DecisionTree{}, nextID: 1}
	for _, t := range trees {
		if t.ID == 0 {
			t.ID = f.nextID
		}
		if t.ID >= f.nextID {
			f.nextID = t.ID + 1
		}
		f.trees[t.ID] = t
	}
	return f
}

func (f *fakeTreeRepo) Create(tree *model.DecisionTree) error {
	tree.ID = f.nextID
	f.nextID++
	f.trees[tree.ID] = tree
	return nil
}

func (f *fakeTreeRepo) FindByID(id uint) (*model.DecisionTree, error) {
	t, ok := f.trees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (f *fakeTreeRepo) FindAll() ([]model.DecisionTree, error) {
	trees := make([]model.DecisionTree, 0, len(f.trees))
	for _, t := range f.trees {
		trees = append(trees, *t)
	}
	return trees, nil
}

func (f *fakeTreeRepo) Update(tree *model.DecisionTree) error {
	if _, ok := f.trees[tree.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.trees[tree.ID] = tree
	return nil
}

func (f *fakeTreeRepo) Delete(id uint) error {
	delete(f.trees, id)
	return nil
}

func (f *fakeTreeRepo) Count() (int64, error) {
	return int64(len(f.trees)), nil
}

// fakeDiagnosticRepo 是 DiagnosticRepository 的内存实现。
type fakeDiagnosticRepo struct {
	sessions []*model.DiagnosticSession
	nextID   uint
	failNext bool
}

func newFakeDiagnosticRepo() *fakeDiagnosticRepo {
	return &fakeDiagnosticRepo{nextID: 1}
}

func (f *fakeDiagnosticRepo) Create(session *model.DiagnosticSession) error {
	if f.failNext {
		f.failNext = false
		return gorm.ErrInvalidDB
	}
	if err := session.Encode(); err != nil {
		return err
	}
	session.ID = f.nextID
	f.nextID++
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeDiagnosticRepo) FindByID(id uint) (*model.DiagnosticSession, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDiagnosticRepo) FindByUser(userID uint, limit int) ([]model.DiagnosticSession, error) {
	var out []model.DiagnosticSession
	for i := len(f.sessions) - 1; i >= 0 && len(out) < limit; i-- {
		if f.sessions[i].UserID == userID {
			out = append(out, *f.sessions[i])
		}
	}
	return out, nil
}

func (f *fakeDiagnosticRepo) Count() (int64, error) {
	return int64(len(f.sessions)), nil
}

func (f *fakeDiagnosticRepo) CountByTree(limit int) ([]repository.TreeCount, error) {
	return nil, nil
}

// fakeSettingRepo 是 SettingRepository 的内存实现。
type fakeSettingRepo struct {
	settings map[string]string
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{settings: map[string]string{}}
}

func (f *fakeSettingRepo) Get(key string) (*model.Setting, error) {
	value, ok := f.settings[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Setting{Key: key, Value: value}, nil
}

func (f *fakeSettingRepo) Upsert(setting *model.Setting) error {
	f.settings[setting.Key] = setting.Value
	return nil
}

// fakePublisher 记录发布过的事件。
type fakePublisher struct {
	published []events.DiagnosticCompleted
}

func (f *fakePublisher) PublishDiagnosticCompleted(ctx context.Context, event events.DiagnosticCompleted) error {
	f.published = append(f.published, event)
	return nil
}

func intPtr(v int) *int { return &v }
