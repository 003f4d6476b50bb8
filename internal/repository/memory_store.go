package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tutor-central/internal/domain/account"
	"tutor-central/internal/domain/chat"
	tutor_errors "tutor-central/pkg/errors"

	"github.com/google/uuid"
)

type pairKey struct {
	tutorID   uuid.UUID
	studentID uuid.UUID
}

// MemoryStore keeps accounts, chats and messages in-process. It enforces the
// same uniqueness rules as the postgres schema.
type MemoryStore struct {
	mu sync.RWMutex

	accounts     map[uuid.UUID]account.Account
	accountOrder []uuid.UUID
	emails       map[string]uuid.UUID
	usernames    map[string]uuid.UUID
	accountChats map[uuid.UUID][]uuid.UUID

	tutors       map[uuid.UUID]account.TutorProfile // key: account ID
	tutorOrder   []uuid.UUID
	students     map[uuid.UUID]account.StudentProfile // key: account ID
	studentByID  map[uuid.UUID]uuid.UUID              // profile ID -> account ID
	chats        map[uuid.UUID]chat.Chat
	pairs        map[pairKey]uuid.UUID
	messages     map[uuid.UUID][]chat.Message
	lastSequence int64
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[uuid.UUID]account.Account),
		emails:       make(map[string]uuid.UUID),
		usernames:    make(map[string]uuid.UUID),
		accountChats: make(map[uuid.UUID][]uuid.UUID),
		tutors:       make(map[uuid.UUID]account.TutorProfile),
		students:     make(map[uuid.UUID]account.StudentProfile),
		studentByID:  make(map[uuid.UUID]uuid.UUID),
		chats:        make(map[uuid.UUID]chat.Chat),
		pairs:        make(map[pairKey]uuid.UUID),
		messages:     make(map[uuid.UUID][]chat.Message),
	}
}

func (m *MemoryStore) Accounts() AccountRepository {
	return &memoryAccounts{m}
}

func (m *MemoryStore) Chats() ChatRepository {
	return &memoryChats{m}
}

func (m *MemoryStore) Messages() MessageRepository {
	return &memoryMessages{m}
}

type memoryAccounts struct{ *MemoryStore }

func (r *memoryAccounts) Create(_ context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.Email = strings.ToLower(a.Email)
	if _, taken := r.emails[a.Email]; taken {
		return tutor_errors.ErrConflict
	}
	if _, taken := r.usernames[a.Username]; taken {
		return tutor_errors.ErrConflict
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.accounts[a.ID] = *a
	r.accountOrder = append(r.accountOrder, a.ID)
	r.emails[a.Email] = a.ID
	r.usernames[a.Username] = a.ID
	return nil
}

func (r *memoryAccounts) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return tutor_errors.NotFound("account")
	}
	delete(r.accounts, id)
	delete(r.emails, a.Email)
	delete(r.usernames, a.Username)
	delete(r.accountChats, id)
	filtered := r.accountOrder[:0]
	for _, item := range r.accountOrder {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	r.accountOrder = filtered
	return nil
}

func (r *memoryAccounts) GetByID(_ context.Context, id uuid.UUID) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return account.Account{}, tutor_errors.NotFound("account")
	}
	return a, nil
}

func (r *memoryAccounts) GetByEmail(_ context.Context, email string) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.emails[strings.ToLower(email)]
	if !ok {
		return account.Account{}, tutor_errors.NotFound("account")
	}
	return r.accounts[id], nil
}

func (r *memoryAccounts) GetByUsername(_ context.Context, username string) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.usernames[username]
	if !ok {
		return account.Account{}, tutor_errors.NotFound("account")
	}
	return r.accounts[id], nil
}

func (r *memoryAccounts) List(_ context.Context) ([]account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]account.Account, 0, len(r.accountOrder))
	for _, id := range r.accountOrder {
		res = append(res, r.accounts[id])
	}
	return res, nil
}

func (r *memoryAccounts) Update(_ context.Context, a account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.accounts[a.ID]
	if !ok {
		return tutor_errors.NotFound("account")
	}
	email := strings.ToLower(a.Email)
	if owner, taken := r.emails[email]; taken && owner != a.ID {
		return tutor_errors.ErrConflict
	}
	if owner, taken := r.usernames[a.Username]; taken && owner != a.ID {
		return tutor_errors.ErrConflict
	}
	delete(r.emails, current.Email)
	delete(r.usernames, current.Username)
	current.Username = a.Username
	current.Email = email
	current.FirstName = a.FirstName
	current.LastName = a.LastName
	current.UpdatedAt = time.Now()
	r.accounts[a.ID] = current
	r.emails[current.Email] = a.ID
	r.usernames[current.Username] = a.ID
	return nil
}

func (r *memoryAccounts) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return tutor_errors.NotFound("account")
	}
	a.PasswordHash = hash
	a.UpdatedAt = time.Now()
	r.accounts[id] = a
	return nil
}

func (r *memoryAccounts) UpdatePhoto(_ context.Context, id uuid.UUID, photo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return tutor_errors.NotFound("account")
	}
	a.Photo = photo
	a.UpdatedAt = time.Now()
	r.accounts[id] = a
	return nil
}

func (r *memoryAccounts) AddChat(_ context.Context, accountID, chatID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[accountID]; !ok {
		return tutor_errors.NotFound("account")
	}
	for _, id := range r.accountChats[accountID] {
		if id == chatID {
			return nil
		}
	}
	r.accountChats[accountID] = append(r.accountChats[accountID], chatID)
	return nil
}

func (r *memoryAccounts) ListChatIDs(_ context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]uuid.UUID(nil), r.accountChats[accountID]...), nil
}

func (r *memoryAccounts) CreateTutor(_ context.Context, p *account.TutorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tutors[p.AccountID]; exists {
		return tutor_errors.ErrConflict
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.tutors[p.AccountID] = *p
	r.tutorOrder = append(r.tutorOrder, p.AccountID)
	return nil
}

func (r *memoryAccounts) CreateStudent(_ context.Context, p *account.StudentProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.students[p.AccountID]; exists {
		return tutor_errors.ErrConflict
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.students[p.AccountID] = *p
	r.studentByID[p.ID] = p.AccountID
	return nil
}

func (r *memoryAccounts) GetTutorByAccountID(_ context.Context, accountID uuid.UUID) (account.TutorProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.tutors[accountID]
	if !ok {
		return account.TutorProfile{}, tutor_errors.NotFound("tutor profile")
	}
	return p, nil
}

func (r *memoryAccounts) GetStudentByAccountID(_ context.Context, accountID uuid.UUID) (account.StudentProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.students[accountID]
	if !ok {
		return account.StudentProfile{}, tutor_errors.NotFound("student profile")
	}
	return p, nil
}

func (r *memoryAccounts) GetStudentByID(_ context.Context, id uuid.UUID) (account.StudentProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	accountID, ok := r.studentByID[id]
	if !ok {
		return account.StudentProfile{}, tutor_errors.NotFound("student profile")
	}
	return r.students[accountID], nil
}

func (r *memoryAccounts) ListTutors(_ context.Context) ([]account.TutorProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]account.TutorProfile, 0, len(r.tutorOrder))
	for _, accountID := range r.tutorOrder {
		if p, ok := r.tutors[accountID]; ok {
			res = append(res, p)
		}
	}
	return res, nil
}

type memoryChats struct{ *MemoryStore }

func (r *memoryChats) Create(_ context.Context, c *chat.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{tutorID: c.TutorID, studentID: c.StudentID}
	if _, exists := r.pairs[key]; exists {
		return tutor_errors.ErrConflict
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.chats[c.ID] = *c
	r.pairs[key] = c.ID
	return nil
}

func (r *memoryChats) GetByID(_ context.Context, id uuid.UUID) (chat.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.chats[id]
	if !ok {
		return chat.Chat{}, tutor_errors.NotFound("chat")
	}
	return c, nil
}

func (r *memoryChats) GetByPair(_ context.Context, tutorID, studentID uuid.UUID) (chat.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.pairs[pairKey{tutorID: tutorID, studentID: studentID}]
	if !ok {
		return chat.Chat{}, tutor_errors.NotFound("chat")
	}
	return r.chats[id], nil
}

type memoryMessages struct{ *MemoryStore }

func (r *memoryMessages) Create(_ context.Context, msg *chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chats[msg.ChatID]; !ok {
		return tutor_errors.NotFound("chat")
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	r.lastSequence++
	msg.Seq = r.lastSequence
	r.messages[msg.ChatID] = append(r.messages[msg.ChatID], *msg)
	return nil
}

func (r *memoryMessages) ListByChat(_ context.Context, chatID uuid.UUID) ([]chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := append([]chat.Message(nil), r.messages[chatID]...)
	sort.Slice(res, func(i, j int) bool { return res[i].Seq < res[j].Seq })
	return res, nil
}
