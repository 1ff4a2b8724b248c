package repositories

import (
	"slices"
	"sync"

	"group-messaging/domain"

	"github.com/samber/lo"
)

// MemoryMessageRepository keeps every conversation in a sorted slice.
type MemoryMessageRepository struct {
	mu       sync.RWMutex
	messages map[string][]domain.Message
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{messages: make(map[string][]domain.Message)}
}

// StoreMessage appends then re-sorts the bucket. The sort is stable so the
// new message lands after any message sharing its timestamp.
func (m *MemoryMessageRepository) StoreMessage(message domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := message.Key()
	bucket := append(m.messages[key], message)
	domain.SortByTimestamp(bucket)
	m.messages[key] = bucket
	return nil
}

func (m *MemoryMessageRepository) GetMessages(key string) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.messages[key]), nil
}

func (m *MemoryMessageRepository) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := lo.Keys(m.messages)
	slices.Sort(keys)
	return keys, nil
}

func (m *MemoryMessageRepository) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = make(map[string][]domain.Message)
	return nil
}
