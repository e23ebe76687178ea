package di

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"movement-server/internal/common/constants"
	"movement-server/internal/interfaces"
	"movement-server/internal/messaging"
	"movement-server/internal/models"
)

// =============================================================================
// Mock implementations (testing)
// =============================================================================

type MockDatabaseService struct {
	mu      sync.Mutex
	records []*models.CommandRecord
}

func NewMockDatabaseService() *MockDatabaseService {
	return &MockDatabaseService{}
}

func (m *MockDatabaseService) CreateCommandRecord(record *models.CommandRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.RequestID == record.RequestID {
			return fmt.Errorf("duplicate request id %s", record.RequestID)
		}
	}
	record.ID = uint(len(m.records) + 1)
	m.records = append(m.records, record)
	return nil
}

func (m *MockDatabaseService) CompleteCommandRecord(record *models.CommandRecord, status string, success bool, message string, finalYaw float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.Status = status
	record.Success = success
	record.Message = message
	record.FinalYaw = finalYaw
	now := time.Now()
	record.ResponseTime = &now
	return nil
}

func (m *MockDatabaseService) ListCommandRecords(robotID string, limit int) ([]models.CommandRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CommandRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].RobotID == robotID {
			out = append(out, *m.records[i])
		}
	}
	return out, nil
}

func (m *MockDatabaseService) FailAllRunningCommands(robotID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.RobotID == robotID && r.Status == constants.CommandStatusRunning {
			r.Status = constants.CommandStatusFailure
			r.Message = reason
		}
	}
	return nil
}

// GetLastRecord most recent command record
func (m *MockDatabaseService) GetLastRecord() *models.CommandRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) == 0 {
		return nil
	}
	r := *m.records[len(m.records)-1]
	return &r
}

type MockCacheService struct {
	mu       sync.Mutex
	data     map[string]string
	hashData map[string]map[string]string
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		data:     make(map[string]string),
		hashData: make(map[string]map[string]string),
	}
}

func (m *MockCacheService) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *MockCacheService) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
		delete(m.hashData, key)
	}
	return nil
}

func (m *MockCacheService) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for key := range m.hashData {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MockCacheService) HSet(ctx context.Context, key, field string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hashData[key] == nil {
		m.hashData[key] = make(map[string]string)
	}
	m.hashData[key][field] = fmt.Sprintf("%v", value)
	return nil
}

func (m *MockCacheService) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string)
	for k, v := range m.hashData[key] {
		out[k] = v
	}
	return out, nil
}

func (m *MockCacheService) Pipeline() interfaces.CachePipeline {
	return &MockCachePipeline{cache: m}
}

type MockCachePipeline struct {
	cache *MockCacheService
}

func (m *MockCachePipeline) HSet(ctx context.Context, key, field string, value interface{}) error {
	return m.cache.HSet(ctx, key, field, value)
}

func (m *MockCachePipeline) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (m *MockCachePipeline) Exec(ctx context.Context) error {
	return nil
}

type MockMessagePublisher struct {
	mu                sync.Mutex
	publishedMessages []MockMessage
	subscriptions     map[string]messaging.MessageHandler
	connected         bool
}

type MockMessage struct {
	topic   string
	payload []byte
}

func (m *MockMessage) Duplicate() bool   { return false }
func (m *MockMessage) Qos() byte         { return 0 }
func (m *MockMessage) Retained() bool    { return false }
func (m *MockMessage) Topic() string     { return m.topic }
func (m *MockMessage) MessageID() uint16 { return 0 }
func (m *MockMessage) Payload() []byte   { return m.payload }
func (m *MockMessage) Ack()              {}

func NewMockMessagePublisher() *MockMessagePublisher {
	return &MockMessagePublisher{
		subscriptions: make(map[string]messaging.MessageHandler),
		connected:     true,
	}
}

func (m *MockMessagePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		data = []byte(fmt.Sprintf("%v", v))
	}
	m.publishedMessages = append(m.publishedMessages, MockMessage{topic: topic, payload: data})
	return nil
}

func (m *MockMessagePublisher) Subscribe(topic string, qos byte, callback messaging.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions[topic] = callback
	return nil
}

func (m *MockMessagePublisher) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockMessagePublisher) Disconnect(quiesce uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
}

// Deliver simulates an inbound message on topic
func (m *MockMessagePublisher) Deliver(topic string, payload []byte) error {
	m.mu.Lock()
	handler, ok := m.subscriptions[topic]
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("no subscription for %s", topic)
	}
	handler(nil, &MockMessage{topic: topic, payload: payload})
	return nil
}

// GetPublishedMessages messages published on topic, in order
func (m *MockMessagePublisher) GetPublishedMessages(topic string) []MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MockMessage
	for _, msg := range m.publishedMessages {
		if msg.topic == topic {
			out = append(out, msg)
		}
	}
	return out
}
