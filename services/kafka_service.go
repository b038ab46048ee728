package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"studysphere/config"
)

// KafkaService 变更事件总线。每个实例使用独立的消费者组，保证所有实例都能收到全部事件。
type KafkaService struct {
	producer sarama.SyncProducer
	consumer sarama.ConsumerGroup
	topic    string
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	metrics  *KafkaMetrics
}

// KafkaMetrics 收集Kafka相关指标
type KafkaMetrics struct {
	messagesSent     int64
	messagesReceived int64
	errors           int64
	mu               sync.RWMutex
}

func (m *KafkaMetrics) add(sent, received, errs int64) {
	m.mu.Lock()
	m.messagesSent += sent
	m.messagesReceived += received
	m.errors += errs
	m.mu.Unlock()
}

// ChangeHandler 变更事件处理函数
type ChangeHandler func(event ChangeEvent)

// NewKafkaService 创建Kafka服务
func NewKafkaService() (*KafkaService, error) {
	brokers := config.AppConfig.KafkaBootstrapServers

	producerConfig := sarama.NewConfig()
	producerConfig.Producer.RequiredAcks = sarama.WaitForAll
	producerConfig.Producer.Retry.Max = 5
	producerConfig.Producer.Return.Successes = true
	producerConfig.Producer.Compression = sarama.CompressionSnappy
	producerConfig.Version = sarama.V2_5_0_0

	producer, err := sarama.NewSyncProducer(brokers, producerConfig)
	if err != nil {
		return nil, fmt.Errorf("创建Kafka同步生产者失败: %v", err)
	}

	consumerConfig := sarama.NewConfig()
	consumerConfig.Consumer.Return.Errors = true
	consumerConfig.Consumer.Offsets.Initial = sarama.OffsetNewest // 只关心启动之后的变更
	consumerConfig.Consumer.Offsets.AutoCommit.Enable = true
	consumerConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second
	consumerConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{
		sarama.NewBalanceStrategyRoundRobin(),
	}
	consumerConfig.Version = sarama.V2_5_0_0

	groupID := config.AppConfig.KafkaConsumerGroup + "-" + uuid.NewString()
	consumer, err := sarama.NewConsumerGroup(brokers, groupID, consumerConfig)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("创建Kafka消费者组失败: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	service := &KafkaService{
		producer: producer,
		consumer: consumer,
		topic:    config.AppConfig.KafkaTopicPrefix + "changes",
		ctx:      ctx,
		cancel:   cancel,
		metrics:  &KafkaMetrics{},
	}

	service.wg.Add(1)
	go service.handleConsumerErrors()

	return service, nil
}

// handleConsumerErrors 记录消费者错误
func (s *KafkaService) handleConsumerErrors() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case err, ok := <-s.consumer.Errors():
			if !ok {
				return
			}
			s.metrics.add(0, 0, 1)
			log.Printf("消费消息错误: %v", err)
		}
	}
}

// Close 关闭Kafka服务
func (s *KafkaService) Close() error {
	s.cancel()

	var errs []error
	if err := s.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("关闭Kafka同步生产者失败: %v", err))
	}
	if err := s.consumer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("关闭Kafka消费者失败: %v", err))
	}
	s.wg.Wait()

	return errors.Join(errs...)
}

// GetMetrics 获取Kafka指标
func (s *KafkaService) GetMetrics() map[string]int64 {
	s.metrics.mu.RLock()
	defer s.metrics.mu.RUnlock()

	return map[string]int64{
		"messages_sent":     s.metrics.messagesSent,
		"messages_received": s.metrics.messagesReceived,
		"errors":            s.metrics.errors,
	}
}

// EnsureTopicExists 确保变更主题存在
func (s *KafkaService) EnsureTopicExists() error {
	adminConfig := sarama.NewConfig()
	adminConfig.Version = sarama.V2_5_0_0

	admin, err := sarama.NewClusterAdmin(config.AppConfig.KafkaBootstrapServers, adminConfig)
	if err != nil {
		return fmt.Errorf("创建Kafka管理客户端失败: %v", err)
	}
	defer admin.Close()

	topics, err := admin.ListTopics()
	if err != nil {
		return fmt.Errorf("获取主题列表失败: %v", err)
	}
	if _, exists := topics[s.topic]; exists {
		return nil
	}

	detail := &sarama.TopicDetail{
		NumPartitions:     int32(config.AppConfig.KafkaPartitions),
		ReplicationFactor: int16(config.AppConfig.KafkaReplicationFactor),
		ConfigEntries: map[string]*string{
			"retention.ms":   strPtr("3600000"), // 变更通知只需保留1小时
			"cleanup.policy": strPtr("delete"),
		},
	}
	if err := admin.CreateTopic(s.topic, detail, false); err != nil && !errors.Is(err, sarama.ErrTopicAlreadyExists) {
		return fmt.Errorf("创建主题失败: %v", err)
	}
	log.Printf("已创建Kafka主题: %s", s.topic)
	return nil
}

// PublishChange 同步发布变更事件
func (s *KafkaService) PublishChange(event ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %v", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     s.topic,
		Key:       sarama.StringEncoder(event.Type),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.Timestamp,
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		s.metrics.add(0, 0, 1)
		return fmt.Errorf("发送事件失败: %v", err)
	}
	s.metrics.add(1, 0, 0)
	return nil
}

// Subscribe 在后台消费变更主题，直到服务关闭
func (s *KafkaService) Subscribe(handler ChangeHandler) error {
	if err := s.EnsureTopicExists(); err != nil {
		return err
	}

	h := &changeConsumerHandler{service: s, handler: handler}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			if err := s.consumer.Consume(s.ctx, []string{s.topic}, h); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				log.Printf("消费主题 %s 失败: %v", s.topic, err)
				select {
				case <-s.ctx.Done():
					return
				case <-time.After(5 * time.Second): // 重试前等待
				}
				continue
			}
			if s.ctx.Err() != nil {
				return
			}
		}
	}()

	log.Printf("已订阅主题: %s", s.topic)
	return nil
}

// changeConsumerHandler 实现sarama.ConsumerGroupHandler接口
type changeConsumerHandler struct {
	service *KafkaService
	handler ChangeHandler
}

func (h *changeConsumerHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *changeConsumerHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim 按分区顺序处理事件
func (h *changeConsumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			var event ChangeEvent
			if err := json.Unmarshal(message.Value, &event); err != nil {
				h.service.metrics.add(0, 0, 1)
				log.Printf("解析变更事件失败: %v", err)
			} else {
				h.service.metrics.add(0, 1, 0)
				h.safeHandle(event)
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *changeConsumerHandler) safeHandle(event ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("处理变更事件时发生panic: %v", r)
		}
	}()
	h.handler(event)
}

func strPtr(s string) *string {
	return &s
}
