// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// OrthoTest 对应于数据库中的 'ortho_tests' 表。
// 它是可供查阅的骨科参考测试，敏感度/特异度等统计字段可为空。
type OrthoTest struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Region         string    `gorm:"type:varchar(100);not null;index" json:"region"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Description    string    `gorm:"type:text;not null" json:"description"`
	Sensitivity    *float64  `gorm:"default:null" json:"sensitivity"`
	Specificity    *float64  `gorm:"default:null" json:"specificity"`
	LRPlus         *float64  `gorm:"column:lr_plus;default:null" json:"lr_plus"`
	LRMinus        *float64  `gorm:"column:lr_minus;default:null" json:"lr_minus"`
	VideoURL       string    `gorm:"column:video_url;type:varchar(512)" json:"video_url"`
	TestReferences string    `gorm:"type:text" json:"test_references"`
	Interpretation string    `gorm:"type:text" json:"interpretation"`
	CreatedBy      uint      `json:"created_by"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (OrthoTest) TableName() string {
	return "ortho_tests"
}

// EsOrthoTest 是写入 Elasticsearch 索引的文档结构，
// 仅包含参与全文检索与展示的字段。
type EsOrthoTest struct {
	ID             uint   `json:"id"`
	Region         string `json:"region"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Interpretation string `json:"interpretation"`
}
