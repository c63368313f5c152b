// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"

	"osteo-upgrade-go/internal/config"
	"osteo-upgrade-go/pkg/events"
	"osteo-upgrade-go/pkg/log"

	"github.com/segmentio/kafka-go"
)

// EventProcessor defines the interface for any service that can process a
// diagnostic event. This decouples the Kafka consumer from the concrete
// aggregation pipeline.
type EventProcessor interface {
	Process(ctx context.Context, event events.DiagnosticCompleted) error
}

// Publisher 以值类型适配包级生产者函数，供业务层以接口注入。
type Publisher struct{}

// PublishDiagnosticCompleted 发送一个诊断完成事件。
func (Publisher) PublishDiagnosticCompleted(ctx context.Context, event events.DiagnosticCompleted) error {
	return ProduceDiagnosticEvent(ctx, event)
}

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
}

// ProduceDiagnosticEvent 发送一个诊断完成事件到 Kafka。
func ProduceDiagnosticEvent(ctx context.Context, event events.DiagnosticCompleted) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return producer.WriteMessages(ctx, kafka.Message{Value: eventBytes})
}

// StartConsumer 启动一个 Kafka 消费者来处理诊断完成事件。
// 统计聚合是幂等性较弱的计数操作，处理失败时直接提交 offset 跳过：
// 事件丢失只会让统计曲线偏低，不值得为它阻塞队列。
func StartConsumer(cfg config.KafkaConfig, processor EventProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  "osteo-upgrade-stats",
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(context.Background())
		if err != nil {
			log.Error("从 Kafka 读取消息失败", err)
			break
		}

		var event events.DiagnosticCompleted
		if err := json.Unmarshal(m.Value, &event); err != nil {
			log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("提交错误消息失败: %v", err)
			}
			continue
		}

		if err := processor.Process(context.Background(), event); err != nil {
			log.Errorf("处理诊断事件失败: diagnosticId=%d, error: %v", event.DiagnosticID, err)
		}
		if err := r.CommitMessages(context.Background(), m); err != nil {
			log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
		}
	}

	if err := r.Close(); err != nil {
		log.Errorf("关闭 Kafka 消费者失败: %v", err)
	}
}
