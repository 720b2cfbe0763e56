package leave

import "time"

const (
	TypeAnnual = "annual"
	TypeHalfAM = "half_am"
	TypeHalfPM = "half_pm"
)

type Entry struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null"`
	Date      string    `gorm:"column:date;not null"`
	Type      string    `gorm:"column:type;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Entry) TableName() string {
	return "leaves"
}
