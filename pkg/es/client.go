// Package es 提供了与 Elasticsearch 交互的客户端功能。
// 索引中维护骨科参考测试的全文检索文档，随 CRUD 写入同步更新。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"osteo-upgrade-go/internal/config"
	"osteo-upgrade-go/internal/model"
	"osteo-upgrade-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// InitES 初始化 Elasticsearch 客户端并确保索引存在。
func InitES(esCfg config.ElasticsearchConfig) error {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName)
}

// createIndexIfNotExists 检查索引是否存在，不存在则按映射创建。
func createIndexIfNotExists(indexName string) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", indexName, res.StatusCode)
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	// 参考测试的检索字段：名称权重最高，区域用于精确过滤
	mapping := `{
		"mappings": {
			"properties": {
				"id": { "type": "long" },
				"region": { "type": "keyword" },
				"name": { "type": "text" },
				"description": { "type": "text" },
				"interpretation": { "type": "text" }
			}
		}
	}`

	res, err = ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}

// IndexTest 将单条参考测试文档写入索引（文档 id 即数据库主键）。
func IndexTest(ctx context.Context, indexName string, doc model.EsOrthoTest) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: strconv.FormatUint(uint64(doc.ID), 10),
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, ESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引参考测试文档出错: %s", res.String())
		return errors.New("failed to index document")
	}
	return nil
}

// DeleteTest 从索引中移除一条参考测试文档。
func DeleteTest(ctx context.Context, indexName string, id uint) error {
	req := esapi.DeleteRequest{
		Index:      indexName,
		DocumentID: strconv.FormatUint(uint64(id), 10),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, ESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	// 文档不存在视为已删除
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		log.Errorf("删除参考测试文档出错: %s", res.String())
		return errors.New("failed to delete document")
	}
	return nil
}

// SearchTests 在索引上执行全文检索，region 非空时附加精确过滤。
// 返回命中的文档 id 列表，按相关度排序。
func SearchTests(ctx context.Context, indexName, query, region string) ([]uint, error) {
	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"name^2", "description", "interpretation"},
			},
		},
	}
	boolQuery := map[string]interface{}{"must": must}
	if region != "" {
		boolQuery["filter"] = []map[string]interface{}{
			{"term": map[string]interface{}{"region": region}},
		}
	}
	body := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"size":  50,
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := ESClient.Search(
		ESClient.Search.WithContext(ctx),
		ESClient.Search.WithIndex(indexName),
		ESClient.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("检索参考测试出错: %s", res.String())
		return nil, errors.New("search request failed")
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source model.EsOrthoTest `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}
	return ids, nil
}
