package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/printops/jobtrack/internal/domain"
	"github.com/printops/jobtrack/internal/repository"
)

// In-memory fakes for the repository and storage interfaces. They mimic
// the sentinel behavior of the real implementations: pgx.ErrNoRows for
// missing rows, and CommitUpdate applying the patch and the history entry
// together or not at all.

type fakeJobRepo struct {
	mu        sync.Mutex
	jobs      map[string]*domain.Job
	updates   *fakeUpdateRepo
	nextID    int
	commits   int
	commitErr error
	deleteErr error
}

func newFakeJobRepo(updates *fakeUpdateRepo) *fakeJobRepo {
	return &fakeJobRepo{jobs: map[string]*domain.Job{}, updates: updates}
}

func (r *fakeJobRepo) Create(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	job.ID = fmt.Sprintf("job-%d", r.nextID)
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepo) List(_ context.Context) ([]domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Job
	for _, job := range r.jobs {
		result = append(result, *job)
	}
	return result, nil
}

func (r *fakeJobRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.jobs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.jobs, id)
	return nil
}

func (r *fakeJobRepo) CommitUpdate(ctx context.Context, jobID string, patch repository.JobFieldPatch, update *domain.JobUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits++
	if r.commitErr != nil {
		return r.commitErr
	}
	job, ok := r.jobs[jobID]
	if !ok {
		return pgx.ErrNoRows
	}
	if patch.Status != nil {
		job.Status = *patch.Status
	}
	if patch.DepartmentID != nil {
		job.DepartmentID = *patch.DepartmentID
	}
	if patch.Priority != nil {
		job.Priority = *patch.Priority
	}
	if patch.ApprovalURL != nil {
		job.ApprovalURL = patch.ApprovalURL
	}
	if update != nil {
		update.JobID = jobID
		r.updates.append(update)
	}
	return nil
}

type fakeUpdateRepo struct {
	mu      sync.Mutex
	nextID  int
	byJob   map[string][]domain.JobUpdate
	listErr error
}

func newFakeUpdateRepo() *fakeUpdateRepo {
	return &fakeUpdateRepo{byJob: map[string][]domain.JobUpdate{}}
}

func (r *fakeUpdateRepo) append(update *domain.JobUpdate) {
	r.nextID++
	update.ID = fmt.Sprintf("upd-%d", r.nextID)
	// prepend: listing is newest first
	r.byJob[update.JobID] = append([]domain.JobUpdate{*update}, r.byJob[update.JobID]...)
}

func (r *fakeUpdateRepo) Create(_ context.Context, update *domain.JobUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.append(update)
	return nil
}

func (r *fakeUpdateRepo) ListByJob(_ context.Context, jobID string) ([]domain.JobUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]domain.JobUpdate{}, r.byJob[jobID]...), nil
}

type fakeDeptRepo struct {
	departments []domain.Department
	listErr     error
}

func newFakeDeptRepo(names ...string) *fakeDeptRepo {
	repo := &fakeDeptRepo{}
	for i, name := range names {
		repo.departments = append(repo.departments, domain.Department{
			ID:   fmt.Sprintf("dept-%d", i+1),
			Name: name,
		})
	}
	return repo
}

func (r *fakeDeptRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	for i := range r.departments {
		if r.departments[i].ID == id {
			copied := r.departments[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeDeptRepo) GetByName(_ context.Context, name string) (*domain.Department, error) {
	for i := range r.departments {
		if r.departments[i].Name == name {
			copied := r.departments[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeDeptRepo) ListOrdered(_ context.Context) ([]domain.Department, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	result := append([]domain.Department{}, r.departments...)
	domain.SortDepartments(result)
	return result, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*domain.UserProfile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.UserProfile{}}
}

func (r *fakeUserRepo) Create(_ context.Context, profile *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	profile.ID = fmt.Sprintf("user-%d", r.nextID)
	copied := *profile
	r.users[profile.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *profile
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, profile := range r.users {
		if profile.Email == email {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.UserProfile
	for _, profile := range r.users {
		result = append(result, *profile)
	}
	return result, nil
}

func (r *fakeUserRepo) UpdateDepartment(_ context.Context, id string, departmentID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	profile.DepartmentID = departmentID
	return nil
}

type fakeFileStore struct {
	mu         sync.Mutex
	nextSeq    int
	stored     map[string]bool // url -> exists
	deleted    []string
	failUpload string // filename substring that fails to upload
	failDelete string // url substring that fails to delete
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{stored: map[string]bool{}}
}

func (f *fakeFileStore) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload != "" && strings.Contains(key, f.failUpload) {
		return "", fmt.Errorf("upload refused: %s", key)
	}
	if body != nil {
		_, _ = io.Copy(io.Discard, body)
	}
	f.nextSeq++
	url := fmt.Sprintf("https://files.test/%s", key)
	f.stored[url] = true
	return url, nil
}

func (f *fakeFileStore) DeleteByURL(_ context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != "" && strings.Contains(fileURL, f.failDelete) {
		return fmt.Errorf("delete refused: %s", fileURL)
	}
	f.deleted = append(f.deleted, fileURL)
	delete(f.stored, fileURL)
	return nil
}

func (f *fakeFileStore) storedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}
