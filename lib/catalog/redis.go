package catalog

import (
	"context"
	"sort"

	"github.com/ValentinKolb/flatmsg/lib/marshal"
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// redisItemPrefix prefixes the hash holding the flat pairs of one item
	redisItemPrefix = "flatmsg:item:"
	// redisIndexKey is the set of all stored item IDs
	redisIndexKey = "flatmsg:items"
)

type redisStore struct {
	engine *marshal.Engine
	client redis.Cmdable
}

// NewRedisStore creates a store that keeps every item as one Redis hash whose fields
// are the structural keys of the item's message
func NewRedisStore(e *marshal.Engine, client redis.Cmdable) IStore {
	return &redisStore{
		engine: e,
		client: client,
	}
}

func itemKey(id uuid.UUID) string {
	return redisItemPrefix + id.String()
}

func (s *redisStore) Put(ctx context.Context, item Item) error {
	if item.ID == uuid.Nil {
		return NewError(RetCInvalidOperation, "item has no ID")
	}
	msg, err := Encode(s.engine, item)
	if err != nil {
		return NewError(RetCInternalError, err.Error())
	}

	fields := make([]any, 0, 2*msg.Len())
	msg.Range(func(k, v string) bool {
		fields = append(fields, k, v)
		return true
	})

	key := itemKey(item.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields...)
		pipe.SAdd(ctx, redisIndexKey, item.ID.String())
		return nil
	})
	if err != nil {
		return NewError(RetCInternalError, err.Error())
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, id uuid.UUID) (Item, bool, error) {
	fields, err := s.client.HGetAll(ctx, itemKey(id)).Result()
	if err != nil {
		return Item{}, false, NewError(RetCInternalError, err.Error())
	}
	if len(fields) == 0 {
		return Item{}, false, nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msg := urlmsg.New()
	for _, k := range keys {
		msg.Set(k, fields[k])
	}

	item, err := Decode(s.engine, msg)
	if err != nil {
		return Item{}, false, NewError(RetCCorruptItem, err.Error())
	}
	return item, true, nil
}

func (s *redisStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, itemKey(id))
		pipe.SRem(ctx, redisIndexKey, id.String())
		return nil
	})
	if err != nil {
		return NewError(RetCInternalError, err.Error())
	}
	return nil
}

func (s *redisStore) List(ctx context.Context) ([]Item, error) {
	ids, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, NewError(RetCInternalError, err.Error())
	}

	items := make([]Item, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, NewError(RetCCorruptItem, err.Error())
		}
		item, ok, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		// deleted between SMEMBERS and HGETALL
		if !ok {
			continue
		}
		items = append(items, item)
	}
	sortItems(items)
	return items, nil
}

func (s *redisStore) Has(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := s.client.Exists(ctx, itemKey(id)).Result()
	if err != nil {
		return false, NewError(RetCInternalError, err.Error())
	}
	return n > 0, nil
}
