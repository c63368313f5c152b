// Package model 定义了与数据库表对应的 Go 结构体。
package model

import (
	"encoding/json"
	"time"
)

// 决策树节点类型的封闭集合。
const (
	NodeTypeQuestion = "question"
	NodeTypeTest     = "test"
	NodeTypeResult   = "result"
)

// 结果节点严重程度的封闭集合。
const (
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// Answer 是问题或测试节点上的一个可选答案。
// Next 指向同一棵树内的目标节点 id，编辑器允许暂存 null。
type Answer struct {
	Text string `json:"text"`
	Next *int   `json:"next"`
}

// NodeTest 是测试节点内嵌的参考测试快照。
// 字段在编辑时从 ortho_tests 复制，之后不与源记录同步。
type NodeTest struct {
	ID          *int   `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
}

// Node 是决策树中的一个节点，按 Type 区分三种变体：
// question（提问）、test（临床测试）、result（诊断结果，终点）。
type Node struct {
	ID   int    `json:"id"`
	Type string `json:"type"`

	// question / test 共用字段
	Text    string   `json:"text,omitempty"`
	Answers []Answer `json:"answers,omitempty"`

	// test 专用字段
	Tests []NodeTest `json:"tests,omitempty"`

	// result 专用字段
	Title           string   `json:"title,omitempty"`
	Severity        string   `json:"severity,omitempty"`
	Description     string   `json:"description,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	IsRedFlag       bool     `json:"isRedFlag,omitempty"`
}

// DecisionTree 对应于数据库中的 'decision_trees' 表。
// 节点列表以 JSON 形式存储在 data 列中，读取后解码到 Nodes。
type DecisionTree struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Icon      string    `gorm:"type:varchar(16);default:'🦴'" json:"icon"`
	Data      string    `gorm:"type:text;not null" json:"-"`
	Nodes     []Node    `gorm:"-" json:"nodes"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (DecisionTree) TableName() string {
	return "decision_trees"
}

// DecodeNodes 将 data 列中的 JSON 解码到 Nodes 字段。
func (t *DecisionTree) DecodeNodes() error {
	if t.Data == "" {
		t.Nodes = []Node{}
		return nil
	}
	return json.Unmarshal([]byte(t.Data), &t.Nodes)
}

// EncodeNodes 将 Nodes 字段编码为 JSON 并写入 data 列。
func (t *DecisionTree) EncodeNodes() error {
	if t.Nodes == nil {
		t.Nodes = []Node{}
	}
	data, err := json.Marshal(t.Nodes)
	if err != nil {
		return err
	}
	t.Data = string(data)
	return nil
}

// FindNode 在树内按 id 查找节点，找不到时返回 nil。
func (t *DecisionTree) FindNode(id int) *Node {
	for i := range t.Nodes {
		if t.Nodes[i].ID == id {
			return &t.Nodes[i]
		}
	}
	return nil
}
