package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/artisenpaiii/liftlog/internal/model"
	"github.com/artisenpaiii/liftlog/pkg/mail"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // id → user

	// beforeCreate 在唯一索引检查前执行，用于模拟并发注册抢先写入
	beforeCreate func()
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == "" {
		user.ID = "user-" + user.Username
	}
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	entries map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{entries: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.entries[jti] = ttl
	return nil
}

// ── Mock mail.Sender ──

type mockMailer struct {
	sent chan mail.Message
}

func newMockMailer() *mockMailer {
	return &mockMailer{sent: make(chan mail.Message, 4)}
}

func (m *mockMailer) Send(_ context.Context, msg mail.Message) error {
	m.sent <- msg
	return nil
}
