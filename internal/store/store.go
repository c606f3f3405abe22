package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/glebarez/sqlite"

	"github.com/tlannick/starlane/internal/game"
)

// Store persists games, turn snapshots and battle reports in SQLite. The
// engine itself never touches it; callers archive each TurnResult after the
// generator hands it over.
type Store struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// GameRecord is one hosted game.
type GameRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string
	Seed      int64
	CreatedAt time.Time
}

// TurnRecord is one archived turn snapshot: the lz4-compressed canonical
// bytes plus their hash, so replays can verify determinism offline.
type TurnRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	GameID    string `gorm:"index:idx_turns_game_turn,unique;size:36;not null"`
	Turn      int    `gorm:"index:idx_turns_game_turn,unique;not null"`
	Hash      string `gorm:"size:64;not null"`
	Snapshot  []byte `gorm:"not null"`
	CreatedAt time.Time
}

// BattleRecord is one archived battle report.
type BattleRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	GameID    string `gorm:"index;size:36;not null"`
	Turn      int    `gorm:"index"`
	Engine    string
	Rounds    int
	Draw      bool
	Report    []byte `gorm:"not null"`
	CreatedAt time.Time
}

// Open connects to the SQLite database at path, or an in-memory database
// when path is empty, and migrates the schema.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", dsn, err)
	}
	if err := db.AutoMigrate(&GameRecord{}, &TurnRecord{}, &BattleRecord{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	log.Info().Str("path", dsn).Msg("store opened")
	return &Store{DB: db, Logger: log}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateGame registers a new game and archives its starting snapshot.
// Returns the generated game id.
func (s *Store) CreateGame(name string, state *game.GameState) (string, error) {
	rec := GameRecord{
		ID:   uuid.NewString(),
		Name: name,
		Seed: state.Seed,
	}
	if err := s.DB.Create(&rec).Error; err != nil {
		return "", fmt.Errorf("create game: %w", err)
	}
	if err := s.SaveTurn(rec.ID, state); err != nil {
		return "", err
	}
	s.Logger.Info().Str("game", rec.ID).Str("name", name).Msg("game created")
	return rec.ID, nil
}

// SaveTurn archives one snapshot under its game.
func (s *Store) SaveTurn(gameID string, state *game.GameState) error {
	data, err := game.CanonicalBytes(state)
	if err != nil {
		return err
	}
	hash, err := game.StateHash(state)
	if err != nil {
		return err
	}
	packed, err := game.CompressSnapshot(data)
	if err != nil {
		return err
	}
	rec := TurnRecord{
		GameID:   gameID,
		Turn:     state.Turn,
		Hash:     hash,
		Snapshot: packed,
	}
	if err := s.DB.Create(&rec).Error; err != nil {
		return fmt.Errorf("save turn %d: %w", state.Turn, err)
	}
	s.Logger.Debug().
		Str("game", gameID).Int("turn", state.Turn).
		Int("bytes", len(packed)).Str("hash", hash[:12]).
		Msg("turn archived")
	return nil
}

// LoadTurn restores the snapshot of one archived turn and verifies its hash.
func (s *Store) LoadTurn(gameID string, turn int) (*game.GameState, error) {
	var rec TurnRecord
	err := s.DB.Where("game_id = ? AND turn = ?", gameID, turn).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("game %s has no archived turn %d", gameID, turn)
	}
	if err != nil {
		return nil, fmt.Errorf("load turn %d: %w", turn, err)
	}
	data, err := game.DecompressSnapshot(rec.Snapshot)
	if err != nil {
		return nil, err
	}
	var state game.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode turn %d: %w", turn, err)
	}
	restored, err := game.CloneState(&state)
	if err != nil {
		return nil, err
	}
	hash, err := game.StateHash(restored)
	if err != nil {
		return nil, err
	}
	if hash != rec.Hash {
		return nil, fmt.Errorf("turn %d snapshot corrupt: hash %s, recorded %s", turn, hash, rec.Hash)
	}
	return restored, nil
}

// LatestTurn returns the highest archived turn number for a game.
func (s *Store) LatestTurn(gameID string) (int, error) {
	var turn int
	err := s.DB.Model(&TurnRecord{}).
		Where("game_id = ?", gameID).
		Select("COALESCE(MAX(turn), 0)").
		Scan(&turn).Error
	if err != nil {
		return 0, fmt.Errorf("latest turn: %w", err)
	}
	return turn, nil
}

// SaveBattleReports archives a turn's battle reports.
func (s *Store) SaveBattleReports(gameID string, reports []*game.BattleReport) error {
	for _, r := range reports {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode battle report: %w", err)
		}
		rec := BattleRecord{
			GameID: gameID,
			Turn:   r.Turn,
			Engine: r.Engine,
			Rounds: r.Rounds,
			Draw:   r.Draw,
			Report: payload,
		}
		if err := s.DB.Create(&rec).Error; err != nil {
			return fmt.Errorf("save battle report: %w", err)
		}
	}
	return nil
}

// BattleReports loads the archived reports of one game turn.
func (s *Store) BattleReports(gameID string, turn int) ([]*game.BattleReport, error) {
	var recs []BattleRecord
	err := s.DB.Where("game_id = ? AND turn = ?", gameID, turn).
		Order("id").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("load battle reports: %w", err)
	}
	out := make([]*game.BattleReport, 0, len(recs))
	for _, rec := range recs {
		var r game.BattleReport
		if err := json.Unmarshal(rec.Report, &r); err != nil {
			return nil, fmt.Errorf("decode battle report %d: %w", rec.ID, err)
		}
		out = append(out, &r)
	}
	return out, nil
}
