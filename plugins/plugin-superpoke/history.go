package pluginsuperpoke

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/database/sqlite"
)

// PokeRecord is the GORM model for superpoke_history (one row per poke on the bot).
type PokeRecord struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    string    `gorm:"column:user_id;not null;index;type:text"`
	GroupID   string    `gorm:"column:group_id;not null;index;type:text"`
	Command   string    `gorm:"column:command;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}

// TableName returns the table name for GORM.
func (PokeRecord) TableName() string {
	return "superpoke_history"
}

// PokerStat is one row of the pokestats ranking.
type PokerStat struct {
	UserID string
	Count  int64
	Last   time.Time
}

// historyStore holds the GORM DB for poke history. Times are stored in UTC.
type historyStore struct {
	db *gorm.DB
	mu sync.Mutex
}

func openHistory(dbPath string) (*historyStore, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&PokeRecord{}); err != nil {
		return nil, err
	}
	return &historyStore{db: db}, nil
}

func (s *historyStore) Record(userID, groupID, command string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Create(&PokeRecord{
		UserID:    userID,
		GroupID:   groupID,
		Command:   command,
		CreatedAt: at.UTC(),
	}).Error
}

// Top returns the users who poked the bot most in groupID, busiest first.
func (s *historyStore) Top(groupID string, limit int) ([]PokerStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []struct {
		UserID string
		Count  int64
	}
	err := s.db.Model(&PokeRecord{}).
		Select("user_id, count(*) as count").
		Where("group_id = ?", groupID).
		Group("user_id").
		Order("count desc, user_id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]PokerStat, 0, len(rows))
	for _, r := range rows {
		var last PokeRecord
		err := s.db.Where("group_id = ? AND user_id = ?", groupID, r.UserID).
			Order("created_at desc").
			First(&last).Error
		if err != nil {
			return nil, err
		}
		out = append(out, PokerStat{UserID: r.UserID, Count: r.Count, Last: last.CreatedAt})
	}
	return out, nil
}

// Prune deletes records older than before and reports how many were removed.
func (s *historyStore) Prune(before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.db.Where("created_at < ?", before.UTC()).Delete(&PokeRecord{})
	return res.RowsAffected, res.Error
}
