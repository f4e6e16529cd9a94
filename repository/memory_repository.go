package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atlaslearn/atlas/backend/models"
)

// MemoryRepository keeps everything in process memory. It backs tests and
// local runs without a database; data is lost on restart.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	emails     map[string]string
	tokens     map[string]*models.RefreshToken
	quizzes    []models.QuizResult
	interviews []models.InterviewRecord
	messages   []models.ChatMessage
	now        func() time.Time
}

var _ Store = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:  make(map[string]*models.User),
		emails: make(map[string]string),
		tokens: make(map[string]*models.RefreshToken),
		now:    time.Now,
	}
}

func (r *MemoryRepository) Ping(ctx context.Context) error    { return nil }
func (r *MemoryRepository) Migrate(ctx context.Context) error { return nil }
func (r *MemoryRepository) Close() error                      { return nil }

func cloneUser(u *models.User) *models.User {
	c := *u
	c.WeakTopics = slices.Clone(u.WeakTopics)
	return &c
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := r.emails[key]; ok {
		return ErrDuplicateEmail
	}
	user.Prepare(r.now())
	r.users[user.ID] = cloneUser(user)
	r.emails[key] = user.ID
	return nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return cloneUser(r.users[id]), nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (r *MemoryRepository) UpdateUserProfile(ctx context.Context, id, name, standard string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Name = name
	u.Standard = standard
	u.UpdatedAt = r.now()
	return nil
}

func (r *MemoryRepository) MergeWeakTopics(ctx context.Context, userID string, topics []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	u.WeakTopics = models.MergeTopics(u.WeakTopics, topics)
	u.UpdatedAt = r.now()
	return slices.Clone(u.WeakTopics), nil
}

func (r *MemoryRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token.ID == "" {
		token.ID = models.NewID()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = r.now()
	}
	c := *token
	r.tokens[token.Token] = &c
	return nil
}

func (r *MemoryRepository) GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tokens[tokenHash]
	if !ok || !t.ExpiresAt.After(r.now()) {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (r *MemoryRepository) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, tokenHash)
	return nil
}

func (r *MemoryRepository) DeleteAllUserTokens(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

func (r *MemoryRepository) CreateQuizResult(ctx context.Context, result *models.QuizResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	result.Prepare(r.now())
	r.quizzes = append(r.quizzes, *result)
	return nil
}

func (r *MemoryRepository) ListQuizResults(ctx context.Context, userID string) ([]models.QuizResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.QuizResult{}
	for _, q := range r.quizzes {
		if q.UserID == userID {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r *MemoryRepository) CreateInterviewRecord(ctx context.Context, record *models.InterviewRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.Prepare(r.now())
	r.interviews = append(r.interviews, *record)
	return nil
}

func (r *MemoryRepository) ListInterviewRecords(ctx context.Context, userID string, limit int) ([]models.InterviewRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.InterviewRecord{}
	for _, rec := range r.interviews {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.Prepare(r.now())
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *MemoryRepository) GetRecentChatMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.ChatMessage{}
	// Walk backwards so equal timestamps keep insertion order reversed.
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].UserID == userID {
			out = append(out, r.messages[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
