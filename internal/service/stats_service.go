// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"strconv"
	"time"

	"osteo-upgrade-go/internal/repository"
	"osteo-upgrade-go/pkg/database"
)

const (
	statsDailyKeyPrefix = "stats:diagnostics:daily:"
	statsWindowDays     = 30
	statsTreeLimit      = 10
)

// DailyCount 是时间序列上一天的计数。
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// AdminStats 是管理后台仪表盘的完整数据。
type AdminStats struct {
	TotalUsers        int64                    `json:"total_users"`
	TotalDiagnostics  int64                    `json:"total_diagnostics"`
	TotalTrees        int64                    `json:"total_trees"`
	TotalTests        int64                    `json:"total_tests"`
	UsersByStatus     []repository.StatusCount `json:"users_by_status"`
	DiagnosticsByTree []repository.TreeCount   `json:"diagnostics_by_tree"`
	RecentDiagnostics []DailyCount             `json:"recent_diagnostics"`
	NewUsers          []repository.DateCount   `json:"new_users"`
}

// StatsService 接口定义了管理端统计的业务操作。
type StatsService interface {
	Dashboard(ctx context.Context) (*AdminStats, error)
}

type statsService struct {
	userRepo       repository.UserRepository
	diagnosticRepo repository.DiagnosticRepository
	treeRepo       repository.TreeRepository
	testRepo       repository.TestRepository
}

// NewStatsService 创建一个新的 StatsService 实例。
func NewStatsService(userRepo repository.UserRepository, diagnosticRepo repository.DiagnosticRepository,
	treeRepo repository.TreeRepository, testRepo repository.TestRepository) StatsService {
	return &statsService{
		userRepo:       userRepo,
		diagnosticRepo: diagnosticRepo,
		treeRepo:       treeRepo,
		testRepo:       testRepo,
	}
}

// Dashboard 汇总仪表盘数据。总量和分布来自数据库，
// 近 30 天诊断曲线来自统计管道维护的 Redis 日计数器。
func (s *statsService) Dashboard(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}

	var err error
	if stats.TotalUsers, err = s.userRepo.CountActive(); err != nil {
		return nil, err
	}
	if stats.TotalDiagnostics, err = s.diagnosticRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalTrees, err = s.treeRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalTests, err = s.testRepo.Count(); err != nil {
		return nil, err
	}
	if stats.UsersByStatus, err = s.userRepo.CountActiveByStatus(); err != nil {
		return nil, err
	}
	if stats.DiagnosticsByTree, err = s.diagnosticRepo.CountByTree(statsTreeLimit); err != nil {
		return nil, err
	}
	if stats.NewUsers, err = s.userRepo.CountNewByDay(statsWindowDays); err != nil {
		return nil, err
	}

	stats.RecentDiagnostics = s.recentDiagnostics(ctx)
	return stats, nil
}

// recentDiagnostics 读取最近 30 天的日计数器，缺失的日期按 0 补齐。
// 计数器读取失败按 0 处理，不让仪表盘整体失败。
func (s *statsService) recentDiagnostics(ctx context.Context) []DailyCount {
	series := make([]DailyCount, 0, statsWindowDays)
	now := time.Now()
	for i := statsWindowDays - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		var count int64
		if val, err := database.RDB.Get(ctx, statsDailyKeyPrefix+date).Result(); err == nil {
			count, _ = strconv.ParseInt(val, 10, 64)
		}
		series = append(series, DailyCount{Date: date, Count: count})
	}
	return series
}
