package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"shopfront/internal/domain"
	"shopfront/internal/email"
	"shopfront/internal/repository"
)

// UserService coordina registro, login y recuperación de contraseña.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	emailSender email.Sender
	otpStore    OTPStore
	otpLimiter  OTPRateLimiter
	otpTTL      time.Duration
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, emailSender email.Sender, otpStore OTPStore, otpLimiter OTPRateLimiter, otpTTL time.Duration) *UserService {
	if otpStore == nil {
		otpStore = NewMemoryOTPStore()
	}
	if otpLimiter == nil {
		otpLimiter = NewOTPRateLimiter(defaultOTPTTL, 3)
	}
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	return &UserService{
		logger:      logger,
		users:       users,
		emailSender: emailSender,
		otpStore:    otpStore,
		otpLimiter:  otpLimiter,
		otpTTL:      otpTTL,
	}
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOTPInvalid         = errors.New("otp invalid")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrRateLimited        = errors.New("rate limited")
)

const (
	defaultOTPTTL     = 10 * time.Minute
	minPasswordLength = 8
)

// Signup crea el usuario con la contraseña hasheada. La entrada debe haber
// pasado ValidateSignup; la unicidad email/phone la resuelve el constraint
// de la base (repository.ErrDuplicateIdentity).
func (s *UserService) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(in.Password)), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeIdentifier(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		DOB:          strings.TrimSpace(in.DOB),
		Gender:       strings.ToLower(strings.TrimSpace(in.Gender)),
		PasswordHash: string(hashBytes),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	return created, nil
}

// Authenticate resuelve el identificador (email o phone) y verifica la
// contraseña. Cualquier falla devuelve el mismo error genérico.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (domain.User, error) {
	identifier = normalizeIdentifier(identifier)
	password = strings.TrimSpace(password)
	if identifier == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// RequestPasswordReset emite un OTP para el usuario detrás del identificador
// y lo envía por email. Devuelve el email canónico del usuario para que la
// sesión registre el reset pendiente. Si el envío falla, el OTP emitido se
// revoca: no queda reset pendiente a medias.
func (s *UserService) RequestPasswordReset(ctx context.Context, identifier string) (string, error) {
	identifier = normalizeIdentifier(identifier)
	if identifier == "" {
		return "", ErrUserNotFound
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if s.otpLimiter != nil && !s.otpLimiter.Allow(user.Email) {
		return "", ErrRateLimited
	}

	code, hash, err := generateOTP()
	if err != nil {
		return "", err
	}
	expiresAt := time.Now().UTC().Add(s.otpTTL)
	if err := s.otpStore.Put(ctx, user.Email, hash, s.otpTTL); err != nil {
		return "", err
	}

	if s.emailSender == nil {
		_ = s.otpStore.Delete(ctx, user.Email)
		return "", ErrEmailSendFailure
	}
	if err := s.emailSender.SendOTP(ctx, user.Email, code, expiresAt); err != nil {
		if s.logger != nil {
			s.logger.Warn("send otp failed", zap.Error(err), zap.String("email", user.Email))
		}
		_ = s.otpStore.Delete(ctx, user.Email)
		return "", ErrEmailSendFailure
	}

	return user.Email, nil
}

// ResetPassword aplica las reglas en orden estricto: OTP, luego coincidencia
// de contraseñas, luego longitud. La primera que falla corta la evaluación.
// En éxito persiste el hash nuevo y consume el OTP.
func (s *UserService) ResetPassword(ctx context.Context, emailAddr, code, newPassword, confirmPassword string) error {
	emailAddr = normalizeIdentifier(emailAddr)
	code = strings.TrimSpace(code)
	newPassword = strings.TrimSpace(newPassword)
	confirmPassword = strings.TrimSpace(confirmPassword)

	storedHash, ok, err := s.otpStore.Get(ctx, emailAddr)
	if err != nil {
		return err
	}
	if !ok || !ValidOTPCode(code) || !verifyOTP(code, storedHash) {
		return ErrOTPInvalid
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hashBytes)); err != nil {
		return err
	}

	return s.otpStore.Delete(ctx, emailAddr)
}

// InvalidatePendingReset descarta el OTP pendiente de un email, si existe.
// Se usa al reentrar al flujo de forgot-password.
func (s *UserService) InvalidatePendingReset(ctx context.Context, emailAddr string) {
	emailAddr = normalizeIdentifier(emailAddr)
	if emailAddr == "" {
		return
	}
	_ = s.otpStore.Delete(ctx, emailAddr)
}

// GetByEmail resuelve el usuario logueado desde el email de sesión.
func (s *UserService) GetByEmail(ctx context.Context, emailAddr string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeIdentifier(emailAddr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// generateOTP produce un código uniforme en [100000, 999999] y su hash
// salteado para almacenar; el código en claro solo viaja en el email.
func generateOTP() (string, string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", "", err
	}
	code := strconv.FormatInt(n.Int64()+100000, 10)

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", "", err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])

	return code, saltStr + ":" + hash, nil
}

func verifyOTP(code, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}
	saltStr := parts[0]
	expectedHash := parts[1]
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expectedHash)) == 1
}

func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// OTPRateLimiter limita la frecuencia de solicitudes de OTP por clave.
type OTPRateLimiter interface {
	Allow(key string) bool
}

type otpRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time
}

// NewOTPRateLimiter crea un rate limiter en memoria.
func NewOTPRateLimiter(window time.Duration, max int) OTPRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &otpRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
	}
}

func (l *otpRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	cutoff := now.Add(-l.window)
	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	kept = append(kept, now)
	l.hits[key] = kept
	return true
}
