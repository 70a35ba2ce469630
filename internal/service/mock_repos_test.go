package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SirOwss/MASARI/internal/model"
	"github.com/SirOwss/MASARI/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: username
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range m.users {
		if u.UserID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.Username] = user
	return nil
}

// ── Mock ExamTimingRepository ──

type mockExamTimingRepo struct {
	timings []model.ExamTiming
	failErr error
}

func newMockExamTimingRepo() *mockExamTimingRepo {
	return &mockExamTimingRepo{}
}

func (m *mockExamTimingRepo) Replace(_ context.Context, timings []model.ExamTiming) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.timings = timings
	return nil
}

func (m *mockExamTimingRepo) List(_ context.Context) ([]model.ExamTiming, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	return m.timings, nil
}

func (m *mockExamTimingRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.timings)), nil
}

// ── Mock CourseRefRepository ──

type mockCourseRefRepo struct {
	refs    []model.CourseRef
	failErr error
}

func newMockCourseRefRepo() *mockCourseRefRepo {
	return &mockCourseRefRepo{}
}

func (m *mockCourseRefRepo) Replace(_ context.Context, refs []model.CourseRef) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.refs = refs
	return nil
}

func (m *mockCourseRefRepo) List(_ context.Context) ([]model.CourseRef, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	return m.refs, nil
}

func (m *mockCourseRefRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.refs)), nil
}

// ── Mock ScheduleRunRepository ──

type mockScheduleRunRepo struct {
	runs    map[string]*model.ScheduleRun
	failErr error
}

func newMockScheduleRunRepo() *mockScheduleRunRepo {
	return &mockScheduleRunRepo{runs: make(map[string]*model.ScheduleRun)}
}

func (m *mockScheduleRunRepo) Create(_ context.Context, run *model.ScheduleRun) error {
	if m.failErr != nil {
		return m.failErr
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	m.runs[run.RunID] = run
	return nil
}

func (m *mockScheduleRunRepo) GetByID(_ context.Context, id string) (*model.ScheduleRun, error) {
	if r, ok := m.runs[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRunRepo) List(_ context.Context, limit int) ([]model.ScheduleRun, error) {
	var result []model.ScheduleRun
	for _, r := range m.runs {
		result = append(result, *r)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *mockScheduleRunRepo) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, r := range m.runs {
		if r.CreatedAt.Before(cutoff) {
			delete(m.runs, id)
			n++
		}
	}
	return n, nil
}

// ── 聚合辅助 ──

type testRepos struct {
	user   *mockUserRepo
	timing *mockExamTimingRepo
	course *mockCourseRefRepo
	run    *mockScheduleRunRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		user:   newMockUserRepo(),
		timing: newMockExamTimingRepo(),
		course: newMockCourseRefRepo(),
		run:    newMockScheduleRunRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		User:       r.user,
		ExamTiming: r.timing,
		CourseRef:  r.course,
		Run:        r.run,
	}
}
