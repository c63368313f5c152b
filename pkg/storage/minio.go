// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
// 生成的诊断报告 PDF 会归档到这里，供审计留存。
package storage

import (
	"bytes"
	"context"
	"fmt"

	"osteo-upgrade-go/internal/config"
	"osteo-upgrade-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient 是一个全局的 MinIO 客户端实例。
var MinioClient *minio.Client

// InitMinIO 初始化 MinIO 客户端并确保归档存储桶存在。
func InitMinIO(cfg config.MinIOConfig) {
	var err error

	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("初始化 MinIO 客户端失败", err)
	}

	log.Info("MinIO 客户端初始化成功")

	ctx := context.Background()
	bucketName := cfg.BucketName
	exists, err := MinioClient.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatal("检查 MinIO 存储桶失败", err)
	}

	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", bucketName)
		err = MinioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			log.Fatal("创建 MinIO 存储桶失败", err)
		}
		log.Infof("存储桶 '%s' 创建成功", bucketName)
	} else {
		log.Infof("存储桶 '%s' 已存在", bucketName)
	}
}

// ArchiveReport 将一份诊断报告 PDF 写入归档存储桶。
// 对象名按诊断 id 固定，重复归档会覆盖同一对象（内容本身是确定性的）。
func ArchiveReport(ctx context.Context, bucketName string, diagnosticID uint, pdf []byte) error {
	objectName := fmt.Sprintf("reports/diagnostic-%d.pdf", diagnosticID)
	_, err := MinioClient.PutObject(ctx, bucketName, objectName,
		bytes.NewReader(pdf), int64(len(pdf)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	return err
}
