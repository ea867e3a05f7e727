package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
	"github.com/atvirokodosprendimai/bookwerx/internal/core/ports"
)

const issueAttempts = 3

type TenantService struct {
	repo     ports.TenantRepository
	newToken func() string
}

func NewTenantService(repo ports.TenantRepository) *TenantService {
	return &TenantService{repo: repo, newToken: uuid.NewString}
}

// Issue generates and persists a fresh API key. The raw key is only ever
// available on the returned value.
func (s *TenantService) Issue(ctx context.Context) (domain.APIKey, error) {
	var lastErr error
	for range issueAttempts {
		token := s.newToken()
		key := domain.APIKey{
			Key:       token,
			TenantID:  HashToken(token),
			CreatedAt: time.Now().UTC(),
		}
		err := s.repo.Insert(ctx, key)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, domain.ErrUniqueViolation) {
			return domain.APIKey{}, fmt.Errorf("issue api key: %w", err)
		}
		lastErr = err
	}
	return domain.APIKey{}, fmt.Errorf("issue api key: %w", lastErr)
}

func (s *TenantService) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	return s.repo.Exists(ctx, HashToken(key))
}

// Authenticate resolves a raw key to its tenant id, or ErrUnknownAPIKey.
func (s *TenantService) Authenticate(ctx context.Context, key string) (string, error) {
	ok, err := s.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check api key: %w", err)
	}
	if !ok {
		return "", domain.ErrUnknownAPIKey
	}
	return HashToken(key), nil
}

func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
