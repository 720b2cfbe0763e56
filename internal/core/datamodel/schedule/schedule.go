package schedule

type Entry struct {
	ID         int64  `gorm:"primaryKey"`
	UserID     int64  `gorm:"column:user_id;not null;uniqueIndex:ux_schedule_user_date"`
	Date       string `gorm:"column:date;not null;uniqueIndex:ux_schedule_user_date"`
	PlannedIn  string `gorm:"column:planned_in;not null"`
	PlannedOut string `gorm:"column:planned_out;not null"`
}

func (Entry) TableName() string {
	return "schedules"
}
