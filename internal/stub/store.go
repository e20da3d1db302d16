package stub

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// Store holds all stub state in memory. It backs a development server, so
// nothing survives a restart on purpose.
type Store struct {
	mu sync.RWMutex

	users       map[string]*stubUser
	refreshToks map[string]string // refresh token -> user ID
	csrfToks    map[string]time.Time

	complaints    map[string]*domain.Complaint
	notifications map[string][]domain.Notification

	categories  []domain.Category
	statuses    []domain.Status
	priorities  []domain.Priority
	departments []domain.Department
}

type stubUser struct {
	domain.User
	PasswordHash string
}

// NewStore builds a store seeded with reference data and demo accounts.
func NewStore(bcryptCost int) (*Store, error) {
	s := &Store{
		users:         make(map[string]*stubUser),
		refreshToks:   make(map[string]string),
		csrfToks:      make(map[string]time.Time),
		complaints:    make(map[string]*domain.Complaint),
		notifications: make(map[string][]domain.Notification),
	}
	s.seedReference()
	if err := s.seedUsers(bcryptCost); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) seedReference() {
	s.categories = []domain.Category{
		{ID: "cat-conduct", Name: "Workplace Conduct", Description: "Behavioral concerns", IsActive: true},
		{ID: "cat-facilities", Name: "Facilities", Description: "Building and equipment", IsActive: true},
		{ID: "cat-it", Name: "IT Systems", Description: "Software and access issues", IsActive: true},
		{ID: "cat-payroll", Name: "Payroll", Description: "Compensation issues", IsActive: true},
	}
	s.statuses = []domain.Status{
		{ID: "st-open", Name: "Open", SortRank: 1},
		{ID: "st-review", Name: "Under Review", SortRank: 2},
		{ID: "st-resolved", Name: "Resolved", Terminal: true, SortRank: 3},
		{ID: "st-dismissed", Name: "Dismissed", Terminal: true, SortRank: 4},
	}
	s.priorities = []domain.Priority{
		{ID: "pr-low", Name: "Low", Weight: 1, IsActive: true},
		{ID: "pr-medium", Name: "Medium", Weight: 2, IsActive: true},
		{ID: "pr-high", Name: "High", Weight: 3, IsActive: true},
	}
	s.departments = []domain.Department{
		{ID: "dep-hr", Name: "Human Resources", IsActive: true},
		{ID: "dep-it", Name: "Information Technology", IsActive: true},
		{ID: "dep-ops", Name: "Operations", IsActive: true},
	}
}

func (s *Store) seedUsers(bcryptCost int) error {
	seeds := []struct {
		email string
		name  string
		role  domain.Role
		dept  string
	}{
		{"staff@example.com", "Sam Staff", domain.RoleStaff, "dep-ops"},
		{"officer@example.com", "Olive Officer", domain.RoleDepartmentOfficer, "dep-ops"},
		{"it@example.com", "Ian Tadmin", domain.RoleITOfficer, "dep-it"},
		{"hr@example.com", "Hana Radmin", domain.RoleHRAdmin, "dep-hr"},
		{"admin@example.com", "Ada Admin", domain.RoleAdmin, "dep-hr"},
	}

	for _, seed := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcryptCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		dept := seed.dept
		now := time.Now()
		user := &stubUser{
			User: domain.User{
				ID:           uuid.NewString(),
				Name:         seed.name,
				Email:        seed.email,
				Role:         seed.role,
				DepartmentID: &dept,
				CreatedAt:    now,
				UpdatedAt:    now,
			},
			PasswordHash: string(hash),
		}
		s.users[user.ID] = user
	}
	return nil
}

// Authenticate verifies credentials and returns the matching user.
func (s *Store) Authenticate(email, password string) (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil {
				user := u.User
				return &user, true
			}
			return nil, false
		}
	}
	return nil, false
}

// UserByID looks up a user.
func (s *Store) UserByID(id string) (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	user := u.User
	return &user, true
}

// UsersByRole returns users holding the given role.
func (s *Store) UsersByRole(role domain.Role) []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u.User)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// IssueRefreshToken mints and records a refresh token for the user.
func (s *Store) IssueRefreshToken(userID string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.refreshToks[token] = userID
	s.mu.Unlock()
	return token
}

// RotateRefreshToken swaps a valid refresh token for a new one.
func (s *Store) RotateRefreshToken(token string) (userID, newToken string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok = s.refreshToks[token]
	if !ok {
		return "", "", false
	}
	delete(s.refreshToks, token)
	newToken = uuid.NewString()
	s.refreshToks[newToken] = userID
	return userID, newToken, true
}

// IssueCSRFToken mints a CSRF token valid for an hour.
func (s *Store) IssueCSRFToken() string {
	token := uuid.NewString()
	s.mu.Lock()
	s.csrfToks[token] = time.Now().Add(time.Hour)
	s.mu.Unlock()
	return token
}

// ValidCSRFToken reports whether the token was issued and has not expired.
func (s *Store) ValidCSRFToken(token string) bool {
	s.mu.RLock()
	expiry, ok := s.csrfToks[token]
	s.mu.RUnlock()
	return ok && time.Now().Before(expiry)
}

// SaveComplaint inserts or replaces a complaint.
func (s *Store) SaveComplaint(c *domain.Complaint) {
	s.mu.Lock()
	s.complaints[c.ID] = c
	s.mu.Unlock()
}

// Complaint fetches one complaint.
func (s *Store) Complaint(id string) (*domain.Complaint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.complaints[id]
	if !ok {
		return nil, false
	}
	clone := *c
	return &clone, true
}

// ComplaintByTracking fetches a complaint by tracking token.
func (s *Store) ComplaintByTracking(token string) (*domain.Complaint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.complaints {
		if c.TrackingToken != nil && *c.TrackingToken == token {
			clone := *c
			return &clone, true
		}
	}
	return nil, false
}

// DeleteComplaint removes a complaint.
func (s *Store) DeleteComplaint(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.complaints[id]; !ok {
		return false
	}
	delete(s.complaints, id)
	return true
}

// ComplaintFilter narrows List results.
type ComplaintFilter struct {
	StatusIDs    []string
	CategoryIDs  []string
	DepartmentID string
	Search       string
	SubmitterID  string
}

// ListComplaints returns matching complaints sorted by creation time, newest
// first.
func (s *Store) ListComplaints(filter ComplaintFilter) []domain.Complaint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Complaint
	for _, c := range s.complaints {
		if !matchesFilter(c, filter) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func matchesFilter(c *domain.Complaint, f ComplaintFilter) bool {
	if f.DepartmentID != "" && c.DepartmentID != f.DepartmentID {
		return false
	}
	if f.SubmitterID != "" && (c.SubmitterID == nil || *c.SubmitterID != f.SubmitterID) {
		return false
	}
	if len(f.StatusIDs) > 0 && !containsString(f.StatusIDs, c.StatusID) {
		return false
	}
	if len(f.CategoryIDs) > 0 && !containsString(f.CategoryIDs, c.CategoryID) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Subject), needle) &&
			!strings.Contains(strings.ToLower(c.Description), needle) {
			return false
		}
	}
	return true
}

func containsString(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

// AddNotification appends a notification for a user.
func (s *Store) AddNotification(n domain.Notification) {
	s.mu.Lock()
	s.notifications[n.UserID] = append(s.notifications[n.UserID], n)
	s.mu.Unlock()
}

// Notifications returns a user's notifications, newest first.
func (s *Store) Notifications(userID string, unreadOnly bool) []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Notification
	for _, n := range s.notifications[userID] {
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// MarkNotificationRead flags one notification as read.
func (s *Store) MarkNotificationRead(userID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.notifications[userID]
	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
			return true
		}
	}
	return false
}

// Categories returns seeded categories.
func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category{}, s.categories...)
}

// Statuses returns seeded statuses.
func (s *Store) Statuses() []domain.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Status{}, s.statuses...)
}

// ActivePriorities returns seeded priorities that are active.
func (s *Store) ActivePriorities() []domain.Priority {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Priority
	for _, p := range s.priorities {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

// Departments returns seeded departments.
func (s *Store) Departments() []domain.Department {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Department{}, s.departments...)
}
