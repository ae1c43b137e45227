package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"vendaflow/internal/pricing"
)

// DisclosureSessionStore persists which hidden price points a seller revealed
// during a negotiation. Reveals are per lead+product and expire with the
// conversation; rejections, by contrast, live in Postgres forever.
type DisclosureSessionStore interface {
	Save(ctx context.Context, orgID, productID, leadID uuid.UUID, reveals map[uuid.UUID][]pricing.Tier) error
	Load(ctx context.Context, orgID, productID, leadID uuid.UUID) (map[uuid.UUID][]pricing.Tier, error)
}

const disclosureSessionTTL = 24 * time.Hour

type redisDisclosureStore struct {
	rdb *redis.Client
}

func NewDisclosureSessionStore(rdb *redis.Client) DisclosureSessionStore {
	return &redisDisclosureStore{rdb: rdb}
}

func disclosureKey(orgID, productID, leadID uuid.UUID) string {
	return fmt.Sprintf("disclosure:%s:%s:%s", orgID, productID, leadID)
}

func (s *redisDisclosureStore) Save(ctx context.Context, orgID, productID, leadID uuid.UUID, reveals map[uuid.UUID][]pricing.Tier) error {
	payload := make(map[string][]string, len(reveals))
	for kitID, tiers := range reveals {
		for _, t := range tiers {
			payload[kitID.String()] = append(payload[kitID.String()], string(t))
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, disclosureKey(orgID, productID, leadID), raw, disclosureSessionTTL).Err()
}

func (s *redisDisclosureStore) Load(ctx context.Context, orgID, productID, leadID uuid.UUID) (map[uuid.UUID][]pricing.Tier, error) {
	raw, err := s.rdb.Get(ctx, disclosureKey(orgID, productID, leadID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var payload map[string][]string
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID][]pricing.Tier, len(payload))
	for k, tiers := range payload {
		kitID, err := uuid.Parse(k)
		if err != nil {
			continue
		}
		for _, t := range tiers {
			out[kitID] = append(out[kitID], pricing.Tier(t))
		}
	}
	return out, nil
}
