package store

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"muniboard-be/models"
)

// Store holds the in-memory dataset snapshot. Mutations run read-modify-
// replace on a deep copy under the lock, so readers always observe either
// the pre- or post-mutation snapshot, never an intermediate state.
type Store struct {
	mu     sync.RWMutex
	data   Dataset
	loaded bool
}

func New() *Store {
	return &Store{}
}

// NewWithData builds a pre-loaded store, used by tests and seeding.
func NewWithData(data Dataset) *Store {
	return &Store{data: data.clone(), loaded: true}
}

// Load reads the snapshot document once; later calls are no-ops so the
// one-shot load cannot replace live data.
func (s *Store) Load(path string) error {
	if s.Loaded() {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.LoadFrom(f)
}

func (s *Store) LoadFrom(r io.Reader) error {
	var data Dataset
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	s.data = data
	s.loaded = true
	return nil
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Snapshot returns a copy of the current dataset, or ErrNotLoaded before the
// one-shot load has completed.
func (s *Store) Snapshot() (Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return Dataset{}, ErrNotLoaded
	}
	return s.data.clone(), nil
}

// apply runs a pure mutation against a clone and swaps it in wholesale.
func (s *Store) apply(mut func(*Dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	next := s.data.clone()
	if err := mut(&next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// --- IssueRepository (in-memory) ---

func (s *Store) List(ctx context.Context) ([]models.Issue, error) {
	data, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return data.Issues, nil
}

func (s *Store) Get(ctx context.Context, id int) (*models.Issue, error) {
	data, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	for i := range data.Issues {
		if data.Issues[i].ID == id {
			return &data.Issues[i], nil
		}
	}
	return nil, ErrIssueNotFound
}

func (s *Store) Create(ctx context.Context, issue *models.Issue) error {
	return s.apply(func(d *Dataset) error {
		issue.ID = d.nextIssueID()
		d.Issues = append(d.Issues, *issue)
		return nil
	})
}

func (s *Store) Update(ctx context.Context, issue models.Issue) (*models.Issue, error) {
	err := s.apply(func(d *Dataset) error {
		for i := range d.Issues {
			if d.Issues[i].ID == issue.ID {
				d.Issues[i] = issue
				return nil
			}
		}
		return ErrIssueNotFound
	})
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// Issues exposes the store as its issue repository.
func (s *Store) Issues() IssueRepository { return s }

// Users and Contractors wrap the same snapshot behind their own interfaces.
func (s *Store) Users() UserRepository { return (*userStore)(s) }

func (s *Store) Contractors() ContractorRepository { return (*contractorStore)(s) }

type userStore Store

func (s *userStore) List(ctx context.Context) ([]models.User, error) {
	data, err := (*Store)(s).Snapshot()
	if err != nil {
		return nil, err
	}
	return data.Users, nil
}

func (s *userStore) Get(ctx context.Context, id int) (*models.User, error) {
	data, err := (*Store)(s).Snapshot()
	if err != nil {
		return nil, err
	}
	if u := data.UserByID(id); u != nil {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	data, err := (*Store)(s).Snapshot()
	if err != nil {
		return nil, err
	}
	for i := range data.Users {
		if strings.EqualFold(data.Users[i].Email, email) {
			return &data.Users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *userStore) Create(ctx context.Context, u *models.User) error {
	return (*Store)(s).apply(func(d *Dataset) error {
		for _, existing := range d.Users {
			if strings.EqualFold(existing.Email, u.Email) {
				return ErrEmailTaken
			}
		}
		u.ID = d.nextUserID()
		d.Users = append(d.Users, *u)
		return nil
	})
}

func (s *userStore) Update(ctx context.Context, u models.User) (*models.User, error) {
	err := (*Store)(s).apply(func(d *Dataset) error {
		for i := range d.Users {
			if d.Users[i].ID == u.ID {
				d.Users[i] = u
				return nil
			}
		}
		return ErrUserNotFound
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes only the user record. Issues referencing the user are left
// in place; lookups degrade to Unknown/Unassigned.
func (s *userStore) Delete(ctx context.Context, id int) error {
	return (*Store)(s).apply(func(d *Dataset) error {
		for i := range d.Users {
			if d.Users[i].ID == id {
				d.Users = append(d.Users[:i], d.Users[i+1:]...)
				return nil
			}
		}
		return ErrUserNotFound
	})
}

type contractorStore Store

func (s *contractorStore) List(ctx context.Context) ([]models.Contractor, error) {
	data, err := (*Store)(s).Snapshot()
	if err != nil {
		return nil, err
	}
	return data.Contractors, nil
}

func (s *contractorStore) Link(ctx context.Context, userID int) (*models.Contractor, error) {
	var link models.Contractor
	err := (*Store)(s).apply(func(d *Dataset) error {
		if d.IsContractor(userID) {
			return ErrAlreadyLinked
		}
		link = models.Contractor{ID: d.nextContractorID(), UserID: userID}
		d.Contractors = append(d.Contractors, link)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *contractorStore) Unlink(ctx context.Context, userID int) error {
	return (*Store)(s).apply(func(d *Dataset) error {
		for i := range d.Contractors {
			if d.Contractors[i].UserID == userID {
				d.Contractors = append(d.Contractors[:i], d.Contractors[i+1:]...)
				return nil
			}
		}
		return ErrLinkNotFound
	})
}
