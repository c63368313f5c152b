// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"

	"osteo-upgrade-go/internal/config"
	"osteo-upgrade-go/internal/model"
	"osteo-upgrade-go/internal/repository"
	"osteo-upgrade-go/pkg/es"
	"osteo-upgrade-go/pkg/log"
)

// TestInput 是创建/修改参考测试的输入字段集合。
type TestInput struct {
	Region         string   `json:"region" binding:"required"`
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description" binding:"required"`
	Sensitivity    *float64 `json:"sensitivity"`
	Specificity    *float64 `json:"specificity"`
	LRPlus         *float64 `json:"lr_plus"`
	LRMinus        *float64 `json:"lr_minus"`
	VideoURL       string   `json:"video_url"`
	TestReferences string   `json:"test_references"`
	Interpretation string   `json:"interpretation"`
}

// TestService 接口定义了骨科参考测试的业务操作。
type TestService interface {
	List(region string) ([]model.OrthoTest, error)
	Get(id uint) (*model.OrthoTest, error)
	Search(ctx context.Context, query, region string) ([]model.OrthoTest, error)
	Create(input TestInput, createdBy uint) (*model.OrthoTest, error)
	Update(id uint, input TestInput) error
	Delete(id uint) error
}

type testService struct {
	testRepo repository.TestRepository
	esCfg    config.ElasticsearchConfig
}

// NewTestService 创建一个新的 TestService 实例。
func NewTestService(testRepo repository.TestRepository, esCfg config.ElasticsearchConfig) TestService {
	return &testService{testRepo: testRepo, esCfg: esCfg}
}

// List 返回参考测试列表，可按区域过滤。
func (s *testService) List(region string) ([]model.OrthoTest, error) {
	return s.testRepo.FindAll(region)
}

// Get 返回一条参考测试。
func (s *testService) Get(id uint) (*model.OrthoTest, error) {
	return s.testRepo.FindByID(id)
}

// Search 通过 Elasticsearch 全文检索参考测试，再回表取完整记录。
// 索引中可能残留已删除的文档，回表失败的 id 直接跳过。
func (s *testService) Search(ctx context.Context, query, region string) ([]model.OrthoTest, error) {
	ids, err := es.SearchTests(ctx, s.esCfg.IndexName, query, region)
	if err != nil {
		return nil, err
	}

	tests := make([]model.OrthoTest, 0, len(ids))
	for _, id := range ids {
		test, err := s.testRepo.FindByID(id)
		if err != nil {
			continue
		}
		tests = append(tests, *test)
	}
	return tests, nil
}

// Create 持久化一条新的参考测试并同步写入检索索引。
func (s *testService) Create(input TestInput, createdBy uint) (*model.OrthoTest, error) {
	test := &model.OrthoTest{
		Region:         input.Region,
		Name:           input.Name,
		Description:    input.Description,
		Sensitivity:    input.Sensitivity,
		Specificity:    input.Specificity,
		LRPlus:         input.LRPlus,
		LRMinus:        input.LRMinus,
		VideoURL:       input.VideoURL,
		TestReferences: input.TestReferences,
		Interpretation: input.Interpretation,
		CreatedBy:      createdBy,
	}
	if err := s.testRepo.Create(test); err != nil {
		return nil, err
	}
	s.index(test)
	return test, nil
}

// Update 覆盖一条已存在的参考测试并同步更新检索索引。
func (s *testService) Update(id uint, input TestInput) error {
	test, err := s.testRepo.FindByID(id)
	if err != nil {
		return err
	}
	test.Region = input.Region
	test.Name = input.Name
	test.Description = input.Description
	test.Sensitivity = input.Sensitivity
	test.Specificity = input.Specificity
	test.LRPlus = input.LRPlus
	test.LRMinus = input.LRMinus
	test.VideoURL = input.VideoURL
	test.TestReferences = input.TestReferences
	test.Interpretation = input.Interpretation
	if err := s.testRepo.Update(test); err != nil {
		return err
	}
	s.index(test)
	return nil
}

// Delete 删除一条参考测试并从检索索引中移除。
func (s *testService) Delete(id uint) error {
	if _, err := s.testRepo.FindByID(id); err != nil {
		return err
	}
	if err := s.testRepo.Delete(id); err != nil {
		return err
	}
	if err := es.DeleteTest(context.Background(), s.esCfg.IndexName, id); err != nil {
		log.Warnf("从索引移除参考测试失败: id=%d, error: %v", id, err)
	}
	return nil
}

// index 尽力而为地写入检索索引。数据库是事实来源，
// 索引失败只记录日志，不让 CRUD 操作失败。
func (s *testService) index(test *model.OrthoTest) {
	doc := model.EsOrthoTest{
		ID:             test.ID,
		Region:         test.Region,
		Name:           test.Name,
		Description:    test.Description,
		Interpretation: test.Interpretation,
	}
	if err := es.IndexTest(context.Background(), s.esCfg.IndexName, doc); err != nil {
		log.Warnf("索引参考测试失败: id=%d, error: %v", test.ID, err)
	}
}
