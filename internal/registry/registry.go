package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrAlreadyTracked = errors.New("player is already tracked")
	ErrNotTracked     = errors.New("player is not tracked")
	ErrNotOwner       = errors.New("player was added by somebody else")
)

// TrackedPlayer is one row of the registry: a riot id on a shard,
// owned by the discord user that added it.
// The puuid is cached opportunistically after a successful resolution;
// it is never authoritative and may be empty
type TrackedPlayer struct {
	ID          uint   `gorm:"primaryKey"`
	OwnerId     string `gorm:"index"`
	Name        string `gorm:"uniqueIndex:idx_player_identity"`
	Tag         string `gorm:"uniqueIndex:idx_player_identity"`
	Shard       string `gorm:"uniqueIndex:idx_player_identity"`
	Puuid       string
	LastUpdated time.Time
	IsDefault   bool
}

func (p *TrackedPlayer) String() string {
	return fmt.Sprintf("%s#%s (%s)", p.Name, p.Tag, p.Shard)
}

type Registry struct {
	db *gorm.DB
}

// Open the registry database at the provided path,
// migrating the schema if needed
func CreateRegistry(path string) (*Registry, error) {

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open registry database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&TrackedPlayer{}); err != nil {
		return nil, fmt.Errorf("could not migrate registry database: %w", err)
	}

	return &Registry{db: db}, nil
}

// Add a player to the registry.
// The (name, tag, shard) triple has to be unique
func (registry *Registry) Add(player TrackedPlayer) (TrackedPlayer, error) {

	player.LastUpdated = time.Now()
	err := registry.db.Create(&player).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return TrackedPlayer{}, ErrAlreadyTracked
	}
	if err != nil {
		return TrackedPlayer{}, err
	}
	log.Info().Msg(fmt.Sprintf("Tracking player %s for owner %s", &player, player.OwnerId))
	return player, nil
}

// Remove a player from the registry.
// Only the owner that added the player may remove it
func (registry *Registry) Remove(name string, tag string, shard string, callerId string) error {

	var player TrackedPlayer
	err := registry.db.Where("name = ? AND tag = ? AND shard = ?", name, tag, shard).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotTracked
	}
	if err != nil {
		return err
	}
	if player.OwnerId != callerId {
		return ErrNotOwner
	}

	if err := registry.db.Delete(&player).Error; err != nil {
		return err
	}
	log.Info().Msg(fmt.Sprintf("Untracked player %s", &player))
	return nil
}

// All the tracked players, default roster first, then by name
func (registry *Registry) All() ([]TrackedPlayer, error) {
	var players []TrackedPlayer
	err := registry.db.Order("is_default DESC, name").Find(&players).Error
	return players, err
}

// The players added by the provided owner
func (registry *Registry) ByOwner(ownerId string) ([]TrackedPlayer, error) {
	var players []TrackedPlayer
	err := registry.db.Where("owner_id = ?", ownerId).Order("name").Find(&players).Error
	return players, err
}

// The default roster
func (registry *Registry) Defaults() ([]TrackedPlayer, error) {
	var players []TrackedPlayer
	err := registry.db.Where("is_default = ?", true).Order("name").Find(&players).Error
	return players, err
}

// Replace the default roster with the provided players.
// Rows added by users are left alone
func (registry *Registry) SeedDefaults(players []TrackedPlayer) error {

	if err := registry.db.Where("is_default = ?", true).Delete(&TrackedPlayer{}).Error; err != nil {
		return err
	}
	for _, player := range players {
		player.IsDefault = true
		player.LastUpdated = time.Now()
		if err := registry.db.Create(&player).Error; err != nil {
			// A user may already track this identity, which is fine
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				log.Debug().Msg(fmt.Sprintf("Default player %s is already tracked", &player))
				continue
			}
			return err
		}
		log.Info().Msg(fmt.Sprintf("Seeded default player %s", &player))
	}
	return nil
}

// Cache the puuid a player resolved to, so the row shows
// something useful even if the provider is down later
func (registry *Registry) SavePuuid(id uint, puuid string) error {
	return registry.db.Model(&TrackedPlayer{}).Where("id = ?", id).
		Updates(map[string]interface{}{"puuid": puuid, "last_updated": time.Now()}).Error
}

// Clear cached puuids older than the provided age, forcing the next
// leaderboard request to resolve those players from scratch
func (registry *Registry) ClearStalePuuids(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	result := registry.db.Model(&TrackedPlayer{}).
		Where("puuid != '' AND last_updated < ?", cutoff).
		Update("puuid", "")
	return result.RowsAffected, result.Error
}
