package storage

import "time"

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	Username  string    `gorm:"size:64"`
	FirstSeen time.Time
	LastSeen  time.Time `gorm:"index"`
}

type ActionLog struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    int64  `gorm:"index"`
	Action    string `gorm:"size:64;index"`
	URL       string `gorm:"type:text"`
	CreatedAt time.Time
}

type Download struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    int64     `gorm:"index"`
	URL       string    `gorm:"type:text"`
	Title     string    `gorm:"type:text"`
	Size      int64
	CreatedAt time.Time `gorm:"index"`
}

func (ActionLog) TableName() string { return "action_logs" }

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{&User{}, &ActionLog{}, &Download{}}
}
