package authcore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockUserProvider struct {
	mu      sync.Mutex
	users   map[string]User
	byEmail map[string]string

	createErr error
	updateErr error

	getByEmailCalls     int
	getByIDCalls        int
	createCalls         int
	updateProfileCalls  int
	updatePasswordCalls int
	updateRoleCalls     int
	deleteCalls         int
}

func newMockUserProvider() *mockUserProvider {
	return &mockUserProvider{
		users:   make(map[string]User),
		byEmail: make(map[string]string),
	}
}

func (m *mockUserProvider) GetUserByEmail(_ context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getByEmailCalls++

	userID, ok := m.byEmail[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return m.users[userID], nil
}

func (m *mockUserProvider) GetUserByID(_ context.Context, userID string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getByIDCalls++

	user, ok := m.users[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserProvider) CreateUser(_ context.Context, input CreateUserInput) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++

	if m.createErr != nil {
		return User{}, m.createErr
	}
	if _, exists := m.byEmail[input.Email]; exists {
		return User{}, ErrEmailExists
	}

	user := User{
		ID:           input.ID,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
		AvatarURL:    input.AvatarURL,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[user.ID] = user
	m.byEmail[user.Email] = user.ID
	return user, nil
}

func (m *mockUserProvider) UpdateProfile(_ context.Context, userID, name, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateProfileCalls++

	if m.updateErr != nil {
		return User{}, m.updateErr
	}
	user, ok := m.users[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	if other, exists := m.byEmail[email]; exists && other != userID {
		return User{}, ErrEmailExists
	}

	delete(m.byEmail, user.Email)
	user.Name = name
	user.Email = email
	m.users[userID] = user
	m.byEmail[email] = userID
	return user, nil
}

func (m *mockUserProvider) UpdatePasswordHash(_ context.Context, userID, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updatePasswordCalls++

	if m.updateErr != nil {
		return m.updateErr
	}
	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = newHash
	m.users[userID] = user
	return nil
}

func (m *mockUserProvider) UpdateRole(_ context.Context, userID string, role Role) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateRoleCalls++

	user, ok := m.users[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user.Role = role
	m.users[userID] = user
	return user, nil
}

func (m *mockUserProvider) DeleteUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++

	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	delete(m.byEmail, user.Email)
	delete(m.users, userID)
	return nil
}

type sentMail struct {
	ToEmail string
	Name    string
	Code    string
}

type mockMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

func (m *mockMailer) SendActivationCode(_ context.Context, toEmail, name, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{ToEmail: toEmail, Name: name, Code: code})
	return nil
}

func (m *mockMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no activation mail sent")
	}
	return m.sent[len(m.sent)-1].Code
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Token.ActivationSecret = []byte("test-activation-secret")
	cfg.Token.AccessSecret = []byte("test-access-secret")
	cfg.Token.RefreshSecret = []byte("test-refresh-secret")
	// Keep hashing fast in tests.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	return cfg
}

type engineTestEnv struct {
	engine   *Engine
	mr       *miniredis.Miniredis
	rdb      *redis.Client
	provider *mockUserProvider
	mailer   *mockMailer
}

func newEngineTest(t *testing.T, mutate func(*Config)) (*engineTestEnv, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	provider := newMockUserProvider()
	mailer := &mockMailer{}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(provider).
		WithMailer(mailer).
		Build()
	if err != nil {
		rdb.Close()
		mr.Close()
		t.Fatalf("engine build: %v", err)
	}

	env := &engineTestEnv{
		engine:   engine,
		mr:       mr,
		rdb:      rdb,
		provider: provider,
		mailer:   mailer,
	}
	return env, func() {
		engine.Close()
		rdb.Close()
		mr.Close()
	}
}

// seedUser registers an account directly through the provider with a real
// argon2 hash of the given password.
func (env *engineTestEnv) seedUser(t *testing.T, email, pass string, role Role) User {
	t.Helper()

	hash, err := env.engine.passwordHash.Hash(pass)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	env.provider.mu.Lock()
	id := fmt.Sprintf("u%d", len(env.provider.users)+1)
	env.provider.mu.Unlock()

	user, err := env.provider.CreateUser(context.Background(), CreateUserInput{
		ID:           id,
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// login is a convenience wrapper asserting a successful login.
func (env *engineTestEnv) login(t *testing.T, email, pass string) (User, TokenPair) {
	t.Helper()
	user, pair, err := env.engine.Login(context.Background(), email, pass)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return user, pair
}
