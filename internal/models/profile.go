package models

// ProfileModel is a user account with its API credential and preferences.
type ProfileModel struct {
	Base
	Email           string `json:"email"             gorm:"uniqueIndex;not null"`
	FullName        string `json:"full_name"`
	APIKey          string `json:"api_key"           gorm:"uniqueIndex;not null"`
	WebhookURL      string `json:"webhook_url"`
	AutoSaveEnabled bool   `json:"auto_save_enabled" gorm:"default:true"`
}

func (ProfileModel) TableName() string { return "profiles" }
