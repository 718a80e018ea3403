package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore guarda el hash del OTP pendiente por email, con TTL explícito.
// El OTP vive acá y no en la sesión: expirar y revocar son operaciones del
// store, no un efecto colateral de la vida de la cookie.
type OTPStore interface {
	Put(ctx context.Context, email, otpHash string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, bool, error)
	Delete(ctx context.Context, email string) error
}

type memoryOTPEntry struct {
	hash      string
	expiresAt time.Time
}

type memoryOTPStore struct {
	mu    sync.Mutex
	items map[string]memoryOTPEntry
}

func NewMemoryOTPStore() OTPStore {
	return &memoryOTPStore{
		items: make(map[string]memoryOTPEntry),
	}
}

func (s *memoryOTPStore) Put(_ context.Context, email, otpHash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	s.items[email] = memoryOTPEntry{
		hash:      otpHash,
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *memoryOTPStore) Get(_ context.Context, email string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return "", false, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, strings.ToLower(strings.TrimSpace(email)))
		return "", false, nil
	}
	return entry.hash, true, nil
}

func (s *memoryOTPStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, strings.ToLower(strings.TrimSpace(email)))
	return nil
}

type redisOTPStore struct {
	client *redis.Client
	prefix string
}

func NewRedisOTPStore(client *redis.Client) OTPStore {
	if client == nil {
		return nil
	}
	return &redisOTPStore{
		client: client,
		prefix: "otp:code:",
	}
}

func (s *redisOTPStore) Put(ctx context.Context, email, otpHash string, ttl time.Duration) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	return s.client.Set(ctx, s.prefix+email, otpHash, ttl).Err()
}

func (s *redisOTPStore) Get(ctx context.Context, email string) (string, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	val, err := s.client.Get(ctx, s.prefix+email).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *redisOTPStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, s.prefix+strings.ToLower(strings.TrimSpace(email))).Err()
}
