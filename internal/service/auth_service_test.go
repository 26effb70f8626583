package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/artisenpaiii/liftlog/config"
	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/model"
	"github.com/artisenpaiii/liftlog/internal/repository"
	"github.com/artisenpaiii/liftlog/pkg/jwt"
)

type authFixture struct {
	svc       AuthService
	users     *mockUserRepo
	blacklist *mockBlacklist
	mailer    *mockMailer
	jwtMgr    *jwt.Manager
}

func setupTestAuthService() *authFixture {
	users := newMockUserRepo()
	repo := &repository.Repository{User: users}

	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-unit-testing-2026",
		TokenTTL:  7 * 24 * time.Hour,
	})

	f := &authFixture{
		users:     users,
		blacklist: newMockBlacklist(),
		mailer:    newMockMailer(),
		jwtMgr:    jwtMgr,
	}
	f.svc = NewAuthService(repo, jwtMgr, f.blacklist, f.mailer, zap.NewNop())
	return f
}

func createTestUser(users *mockUserRepo, username, email, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		ID:           "user-" + username,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	users.users[user.ID] = user
	return user
}

// ── 注册测试 ──

func TestRegister_Success(t *testing.T) {
	f := setupTestAuthService()

	result, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "lifter",
		Email:    "lifter@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register 应成功，但返回错误: %v", err)
	}
	if result.Token == "" {
		t.Error("Token 不应为空")
	}
	if result.User.Username != "lifter" || result.User.Email != "lifter@example.com" {
		t.Errorf("用户信息不符: %+v", result.User)
	}

	stored := f.users.users[result.User.ID]
	if stored == nil || stored.PasswordHash == "password123" {
		t.Fatal("密码应以哈希形式存储")
	}

	claims, err := f.jwtMgr.ParseToken(result.Token)
	if err != nil || claims.UserID != result.User.ID {
		t.Errorf("Token 应属于新用户，err=%v", err)
	}

	select {
	case msg := <-f.mailer.sent:
		if msg.To[0] != "lifter@example.com" {
			t.Errorf("欢迎邮件收件人不符: %v", msg.To)
		}
	case <-time.After(2 * time.Second):
		t.Error("期望发送欢迎邮件")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := setupTestAuthService()
	createTestUser(f.users, "existing", "taken@example.com", "password123")

	_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "newcomer",
		Email:    "taken@example.com",
		Password: "password123",
	})

	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("期望 ErrEmailTaken，实际: %v", err)
	}
	if ErrEmailTaken.Field != "email" {
		t.Errorf("期望 field=email，实际=%s", ErrEmailTaken.Field)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	f := setupTestAuthService()
	createTestUser(f.users, "taken", "first@example.com", "password123")

	_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "taken",
		Email:    "second@example.com",
		Password: "password123",
	})

	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("期望 ErrUsernameTaken，实际: %v", err)
	}
	if ErrUsernameTaken.Field != "username" {
		t.Errorf("期望 field=username，实际=%s", ErrUsernameTaken.Field)
	}
}

func TestRegister_ConcurrentDuplicateReportsField(t *testing.T) {
	tests := []struct {
		name   string
		winner *model.User
		want   error
	}{
		{"email", &model.User{ID: "user-winner", Username: "winner", Email: "race@example.com"}, ErrEmailTaken},
		{"username", &model.User{ID: "user-winner", Username: "racer", Email: "winner@example.com"}, ErrUsernameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestAuthService()
			// 唯一性检查通过后，另一请求抢先写入
			f.users.beforeCreate = func() { f.users.users[tt.winner.ID] = tt.winner }

			_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
				Username: "racer",
				Email:    "race@example.com",
				Password: "password123",
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}

func TestRegister_PasswordTooLongInBytes(t *testing.T) {
	f := setupTestAuthService()

	// 40 个字符、80 字节
	_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "accent",
		Email:    "accent@example.com",
		Password: strings.Repeat("é", 40),
	})
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("期望 ErrPasswordTooLong，实际: %v", err)
	}
	if ErrPasswordTooLong.Field != "password" || ErrPasswordTooLong.Kind.HTTPStatus() != 400 {
		t.Errorf("期望 field=password 且状态 400")
	}
	if len(f.users.users) != 0 {
		t.Error("密码超长时不应创建用户")
	}
}

// ── 登录测试 ──

func TestLogin_Success(t *testing.T) {
	f := setupTestAuthService()
	createTestUser(f.users, "lifter", "lifter@example.com", "password123")

	result, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "lifter@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功，但返回错误: %v", err)
	}
	if result.Token == "" {
		t.Error("Token 不应为空")
	}
	if result.User.ID != "user-lifter" {
		t.Errorf("期望 ID=user-lifter，实际=%s", result.User.ID)
	}
}

func TestLogin_UnknownEmailAndWrongPasswordIdentical(t *testing.T) {
	f := setupTestAuthService()
	createTestUser(f.users, "lifter", "lifter@example.com", "password123")

	_, errWrong := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "lifter@example.com",
		Password: "wrong_password",
	})
	_, errUnknown := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})

	if !errors.Is(errWrong, ErrInvalidCredentials) || !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("两种情况都应返回 ErrInvalidCredentials，实际: %v / %v", errWrong, errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Errorf("错误信息应一致: %q vs %q", errWrong.Error(), errUnknown.Error())
	}
}

// ── 个人信息 / 登出 ──

func TestGetProfile(t *testing.T) {
	f := setupTestAuthService()
	user := createTestUser(f.users, "lifter", "lifter@example.com", "password123")

	profile, err := f.svc.GetProfile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetProfile 应成功: %v", err)
	}
	if profile.User.Email != "lifter@example.com" {
		t.Errorf("期望 Email=lifter@example.com，实际=%s", profile.User.Email)
	}

	if _, err := f.svc.GetProfile(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestLogout_BlacklistsRemainingLifetime(t *testing.T) {
	f := setupTestAuthService()

	if err := f.svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}

	ttl, ok := f.blacklist.entries["jti-1"]
	if !ok {
		t.Fatal("jti 应加入黑名单")
	}
	if ttl <= 59*time.Minute || ttl > time.Hour {
		t.Errorf("黑名单 TTL 应约为 1 小时，实际 %v", ttl)
	}
}

func TestLogout_WithoutBlacklist(t *testing.T) {
	repo := &repository.Repository{User: newMockUserRepo()}
	jwtMgr := jwt.NewManager(&config.AuthConfig{JWTSecret: "test-secret-key-for-unit-testing", TokenTTL: time.Hour})
	svc := NewAuthService(repo, jwtMgr, nil, nil, zap.NewNop())

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("未配置黑名单时 Logout 应为空操作: %v", err)
	}
}
