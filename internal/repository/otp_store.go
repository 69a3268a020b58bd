package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const otpKeyPrefix = "otp:"

// redisOTPStore keeps verification codes in redis with a TTL, so expiry is
// enforced by the store itself rather than by a sweep of an in-process map.
type redisOTPStore struct {
	rdb *redis.Client
	log *logrus.Logger
}

func NewRedisOTPStore(rdb *redis.Client, logger *logrus.Logger) domain.OTPStore {
	return &redisOTPStore{
		rdb: rdb,
		log: logger,
	}
}

func otpKey(contact string) string {
	return otpKeyPrefix + strings.ToLower(strings.TrimSpace(contact))
}

func (s *redisOTPStore) Set(ctx context.Context, contact, code string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, otpKey(contact), code, ttl).Err(); err != nil {
		s.log.Errorf("Failed to store OTP for %s: %v", contact, err)
		return fmt.Errorf("could not store OTP: %w", err)
	}
	s.log.Infof("Stored OTP for %s (expires in %s)", contact, ttl)
	return nil
}

func (s *redisOTPStore) Get(ctx context.Context, contact string) (string, error) {
	code, err := s.rdb.Get(ctx, otpKey(contact)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("OTP for %s: %w", contact, domain.ErrNotFound)
		}
		s.log.Errorf("Failed to read OTP for %s: %v", contact, err)
		return "", fmt.Errorf("could not read OTP: %w", err)
	}
	return code, nil
}

func (s *redisOTPStore) Delete(ctx context.Context, contact string) error {
	if err := s.rdb.Del(ctx, otpKey(contact)).Err(); err != nil {
		s.log.Errorf("Failed to delete OTP for %s: %v", contact, err)
		return fmt.Errorf("could not delete OTP: %w", err)
	}
	return nil
}
