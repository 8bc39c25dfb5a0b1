package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/csv-manager/internal/domain"
	"github.com/spec-kit/csv-manager/internal/events"
	"github.com/spec-kit/csv-manager/internal/repository"
)

// -------- test fakes --------

type fakeUserRepo struct {
	repository.UserRepository
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			user := user
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			user := user
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context, skip, limit int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]domain.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	if skip > len(users) {
		skip = len(users)
	}
	users = users[skip:]
	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

type fakeFileRepo struct {
	repository.CSVFileRepository
	mu     sync.Mutex
	nextID int64
	files  map[int64]domain.CSVFile
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[int64]domain.CSVFile)}
}

func (f *fakeFileRepo) Create(_ context.Context, file *domain.CSVFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	file.ID = f.nextID
	file.UploadedAt = time.Now()
	f.files[file.ID] = *file
	return nil
}

func (f *fakeFileRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.files, id)
	return nil
}

func (f *fakeFileRepo) GetByID(_ context.Context, id int64) (*domain.CSVFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &file, nil
}

func (f *fakeFileRepo) List(_ context.Context, skip, limit int) ([]domain.CSVFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	files := make([]domain.CSVFile, 0, len(f.files))
	for _, file := range f.files {
		files = append(files, file)
	}
	// Newest first, matching the SQL ordering.
	sort.Slice(files, func(i, j int) bool { return files[i].ID > files[j].ID })
	if skip > len(files) {
		skip = len(files)
	}
	files = files[skip:]
	if limit > 0 && limit < len(files) {
		files = files[:limit]
	}
	return files, nil
}

func (f *fakeFileRepo) ListByUploader(_ context.Context, uploaderID int64) ([]domain.CSVFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	files := make([]domain.CSVFile, 0)
	for _, file := range f.files {
		if file.UploaderID == uploaderID {
			files = append(files, file)
		}
	}
	return files, nil
}

type fakeDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (f *fakeDispatcher) Publish(_ context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, event)
	return nil
}

func (f *fakeDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (f *fakeDispatcher) events() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.Event, len(f.published))
	copy(out, f.published)
	return out
}
