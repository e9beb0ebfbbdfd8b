package analysis

import (
	"tubelens-api/internal/domain/common"
	"tubelens-api/internal/domain/users"

	"github.com/google/uuid"
)

type YoutubeType string

const (
	TypeChannel YoutubeType = "channel"
	TypeVideo   YoutubeType = "video"
)

func (t YoutubeType) Valid() bool {
	return t == TypeChannel || t == TypeVideo
}

type YoutubeAnalysis struct {
	common.BaseModel

	UserID uuid.UUID  `gorm:"type:uuid;not null;index:idx_analyses_user_youtube,priority:1"`
	User   users.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	YoutubeType YoutubeType `gorm:"type:varchar(10);not null"`
	YoutubeID   string      `gorm:"type:varchar(255);not null;index:idx_analyses_user_youtube,priority:2"`
	Title       string      `gorm:"type:varchar(255)"`
	Summary     string      `gorm:"type:text"`

	Questions []AnalysisQuestion `gorm:"foreignKey:AnalysisID;constraint:OnDelete:CASCADE"`
}

func (YoutubeAnalysis) TableName() string {
	return "youtube_analyses"
}

type AnalysisQuestion struct {
	common.BaseModel

	AnalysisID uuid.UUID `gorm:"type:uuid;not null;index"`

	Question string `gorm:"type:text;not null"`
	Answer   string `gorm:"type:text"`
}
