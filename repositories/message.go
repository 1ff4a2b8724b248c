//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"group-messaging/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	messagePrefix = "msg:"
	sequenceKey   = "seq:msg"
)

// IMessageRepository owns the ordered history of every conversation.
// GetMessages returns the bucket sorted by ascending timestamp, ties kept in
// insertion order.
type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	GetMessages(key string) ([]domain.Message, error)
	Keys() ([]string, error)
	Clear() error
}

// OpenInMemory opens a BadgerDB living only in memory: history is rebuilt on
// every login and never survives the process.
func OpenInMemory() (*badger.DB, error) {
	return badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.WARNING))
}

type BadgerMessageRepository struct {
	db       *badger.DB
	log      *slog.Logger
	sequence *badger.Sequence
}

func NewBadgerMessageRepository(db *badger.DB, log *slog.Logger) (*BadgerMessageRepository, error) {
	sequence, err := db.GetSequence([]byte(sequenceKey), 100)
	if err != nil {
		return nil, err
	}
	return &BadgerMessageRepository{db: db, log: log, sequence: sequence}, nil
}

// Close releases the leased sequence range. The db stays open.
func (m *BadgerMessageRepository) Close() error {
	return m.sequence.Release()
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{hex conversation key}:{timestamp}:{sequence}" so that:
//  1. A prefix scan returns one conversation in chronological order
//     (zero padded, sign flipped timestamp keeps lexicographical order).
//  2. Messages sharing a timestamp stay in insertion order thanks to the
//     monotonic sequence.
//
// Hex encoding keeps a conversation key from colliding with another one's prefix.
func (m *BadgerMessageRepository) StoreMessage(message domain.Message) error {
	seq, err := m.sequence.Next()
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s%020d:%020d",
		conversationPrefix(message.Key()),
		uint64(message.Timestamp)^(1<<63),
		seq,
	)
	bytes, err := marshalMessage(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetMessages retrieves one conversation using a prefix scan.
func (m *BadgerMessageRepository) GetMessages(key string) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(conversationPrefix(key))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				message, err := unmarshalMessage(value)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}

// Keys lists the conversations holding at least one message.
func (m *BadgerMessageRepository) Keys() ([]string, error) {
	var keys []string
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = []byte(messagePrefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			raw := strings.TrimPrefix(string(it.Item().Key()), messagePrefix)
			encoded, _, _ := strings.Cut(raw, ":")
			decoded, err := hex.DecodeString(encoded)
			if err != nil {
				m.log.Warn("Skipping malformed message key", "key", string(it.Item().Key()))
				continue
			}
			keys = append(keys, string(decoded))
		}
		return nil
	})
	keys = lo.Uniq(keys)
	slices.Sort(keys)
	return keys, err
}

func (m *BadgerMessageRepository) Clear() error {
	return m.db.DropPrefix([]byte(messagePrefix))
}

func conversationPrefix(key string) string {
	return messagePrefix + hex.EncodeToString([]byte(key)) + ":"
}

func marshalMessage(message domain.Message) ([]byte, error) {
	value, err := structpb.NewStruct(map[string]any{
		"id":          message.ID.String(),
		"kind":        message.Kind.String(),
		"to":          message.To,
		"from":        message.From,
		"content":     message.Content,
		"timestamp":   float64(message.Timestamp),
		"recipient":   message.Recipient,
		"isMyMessage": message.IsMyMessage,
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(value)
}

func unmarshalMessage(bytes []byte) (domain.Message, error) {
	var value structpb.Struct
	if err := proto.Unmarshal(bytes, &value); err != nil {
		return domain.Message{}, err
	}
	fields := value.GetFields()
	id, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return domain.Message{}, err
	}
	kind := domain.DirectMessage
	if fields["kind"].GetStringValue() == domain.GroupMessage.String() {
		kind = domain.GroupMessage
	}
	return domain.Message{
		ID:          id,
		Kind:        kind,
		To:          fields["to"].GetStringValue(),
		From:        fields["from"].GetStringValue(),
		Content:     fields["content"].GetStringValue(),
		Timestamp:   int64(fields["timestamp"].GetNumberValue()),
		Recipient:   fields["recipient"].GetStringValue(),
		IsMyMessage: fields["isMyMessage"].GetBoolValue(),
	}, nil
}
