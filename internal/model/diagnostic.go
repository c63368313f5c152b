// Package model 定义了与数据库表对应的 Go 结构体。
package model

import (
	"encoding/json"
	"time"
)

// DiagnosticSession 对应于数据库中的 'diagnostic_sessions' 表。
// 一次完整问诊走查的不可变记录：路径与结果字段在创建时反范式化
// 固化，源树之后被修改或删除也不影响历史记录。
type DiagnosticSession struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             uint      `gorm:"not null;index" json:"user_id"`
	TreeID             uint      `gorm:"not null" json:"tree_id"`
	TreeName           string    `gorm:"type:varchar(255);not null" json:"tree_name"`
	Path               string    `gorm:"type:text;not null" json:"-"`
	PathIDs            []int     `gorm:"-" json:"path"`
	ResultTitle        string    `gorm:"type:varchar(255)" json:"result_title"`
	ResultSeverity     string    `gorm:"type:varchar(20)" json:"result_severity"`
	ResultDescription  string    `gorm:"type:text" json:"result_description"`
	Recommendations    string    `gorm:"type:text" json:"-"`
	RecommendationList []string  `gorm:"-" json:"recommendations"`
	CreatedAt          time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (DiagnosticSession) TableName() string {
	return "diagnostic_sessions"
}

// Encode 将 PathIDs 和 RecommendationList 编码进 JSON 文本列。
func (d *DiagnosticSession) Encode() error {
	if d.PathIDs == nil {
		d.PathIDs = []int{}
	}
	if d.RecommendationList == nil {
		d.RecommendationList = []string{}
	}
	path, err := json.Marshal(d.PathIDs)
	if err != nil {
		return err
	}
	recs, err := json.Marshal(d.RecommendationList)
	if err != nil {
		return err
	}
	d.Path = string(path)
	d.Recommendations = string(recs)
	return nil
}

// Decode 将 JSON 文本列解码回 PathIDs 和 RecommendationList。
func (d *DiagnosticSession) Decode() error {
	d.PathIDs = []int{}
	d.RecommendationList = []string{}
	if d.Path != "" {
		if err := json.Unmarshal([]byte(d.Path), &d.PathIDs); err != nil {
			return err
		}
	}
	if d.Recommendations != "" {
		if err := json.Unmarshal([]byte(d.Recommendations), &d.RecommendationList); err != nil {
			return err
		}
	}
	return nil
}
