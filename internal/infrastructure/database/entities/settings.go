package entities

import "time"

// BotSettingID is the fixed key of the single settings row. All reads and
// upserts go through this identifier.
const BotSettingID uint = 1

// BotSetting holds the operator-editable system persona.
type BotSetting struct {
	ID           uint      `gorm:"primaryKey"`
	SystemPrompt string    `gorm:"type:text;not null"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for BotSetting.
func (BotSetting) TableName() string {
	return "bot_settings"
}
