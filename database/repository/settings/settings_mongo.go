package settingsRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"academix/database"
	"academix/models"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	settingsCacheKey = "settings:fees"
	settingsCacheTTL = 5 * time.Minute
)

// SettingsRepository provides the global fee/commission configuration.
type SettingsRepository interface {
	GetFeeSettings() (*models.FeeSettings, error)
}

// MongoSettingsRepo implements SettingsRepository with a Redis read-through
// cache. Pricing snapshots the resolved values onto the booking, so a stale
// cache window only delays when new rates take effect.
type MongoSettingsRepo struct {
	coll  *mongo.Collection
	cache *redis.Client
}

// NewMongoSettingsRepo creates a new instance of SettingsRepository using
// MongoDB. cache may be nil to skip caching.
func NewMongoSettingsRepo(cache *redis.Client) SettingsRepository {
	return &MongoSettingsRepo{
		coll:  database.Collection("settings"),
		cache: cache,
	}
}

// GetFeeSettings resolves the current fee settings, preferring the cache.
func (r *MongoSettingsRepo) GetFeeSettings() (*models.FeeSettings, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, settingsCacheKey).Result(); err == nil {
			var cached models.FeeSettings
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var settings models.FeeSettings
	if err := r.coll.FindOne(ctx, bson.M{"id": "fees"}).Decode(&settings); err != nil {
		if err == mongo.ErrNoDocuments {
			// No admin-configured settings yet; fall back to zero fees.
			return &models.FeeSettings{}, nil
		}
		return nil, fmt.Errorf("failed to fetch fee settings: %w", err)
	}

	if r.cache != nil {
		if raw, err := json.Marshal(settings); err == nil {
			r.cache.Set(ctx, settingsCacheKey, raw, settingsCacheTTL)
		}
	}
	return &settings, nil
}
