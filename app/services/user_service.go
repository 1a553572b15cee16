package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"KasirApp/app/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Sessions expire after this long without being renewed.
const sessionTTL = 12 * time.Hour

// ErrInvalidCredentials is returned for a wrong username or password.
// The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("username atau password salah")

type session struct {
	userID    uint
	expiresAt time.Time
}

// UserService handles cashier accounts and login sessions. Sessions are
// held in memory; a server restart logs everyone out.
type UserService struct {
	db     *gorm.DB
	logger *LoggerService

	mu       sync.Mutex
	sessions map[string]session
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, logger *LoggerService) *UserService {
	return &UserService{
		db:       db,
		logger:   logger,
		sessions: make(map[string]session),
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *UserService) Register(nama, username, password string, tokoID uint) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username dan password wajib diisi")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password minimal 6 karakter")
	}

	var count int64
	s.db.Model(&models.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("username %s sudah terdaftar", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Nama:         nama,
		Username:     username,
		PasswordHash: string(hash),
		Role:         "kasir",
		TokoID:       tokoID,
		IsActive:     true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.logger != nil {
		s.logger.LogInfo("User registered", username)
	}
	return &user, nil
}

// Authenticate verifies credentials and returns a new session token.
func (s *UserService) Authenticate(username, password string) (string, *models.User, error) {
	var user models.User
	err := s.db.First(&user, "username = ? AND is_active = ?", username, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	s.sessions[token] = session{userID: user.ID, expiresAt: time.Now().Add(sessionTTL)}
	s.mu.Unlock()

	return token, &user, nil
}

// Validate resolves a session token to its user, renewing the session.
func (s *UserService) Validate(token string) (*models.User, error) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	if ok && time.Now().After(sess.expiresAt) {
		delete(s.sessions, token)
		ok = false
	}
	if ok {
		sess.expiresAt = time.Now().Add(sessionTTL)
		s.sessions[token] = sess
	}
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("sesi tidak valid atau kedaluwarsa")
	}

	var user models.User
	if err := s.db.First(&user, sess.userID).Error; err != nil {
		return nil, fmt.Errorf("user not found for session: %w", err)
	}
	return &user, nil
}

// Logout drops a session token.
func (s *UserService) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
