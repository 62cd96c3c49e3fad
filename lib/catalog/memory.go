package catalog

import (
	"context"
	"sort"

	"github.com/ValentinKolb/flatmsg/lib/marshal"
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

type memoryStore struct {
	engine *marshal.Engine
	items  *xsync.MapOf[uuid.UUID, string]
}

// NewMemoryStore creates a store that keeps the wire form of every item in memory
func NewMemoryStore(e *marshal.Engine) IStore {
	return &memoryStore{
		engine: e,
		items:  xsync.NewMapOf[uuid.UUID, string](),
	}
}

func (s *memoryStore) Put(_ context.Context, item Item) error {
	if item.ID == uuid.Nil {
		return NewError(RetCInvalidOperation, "item has no ID")
	}
	msg, err := Encode(s.engine, item)
	if err != nil {
		return NewError(RetCInternalError, err.Error())
	}
	s.items.Store(item.ID, msg.String())
	return nil
}

func (s *memoryStore) Get(_ context.Context, id uuid.UUID) (Item, bool, error) {
	raw, ok := s.items.Load(id)
	if !ok {
		return Item{}, false, nil
	}
	item, err := s.decode(raw)
	if err != nil {
		return Item{}, false, err
	}
	return item, true, nil
}

func (s *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.items.Delete(id)
	return nil
}

func (s *memoryStore) List(_ context.Context) ([]Item, error) {
	var (
		items []Item
		err   error
	)
	s.items.Range(func(_ uuid.UUID, raw string) bool {
		var item Item
		if item, err = s.decode(raw); err != nil {
			return false
		}
		items = append(items, item)
		return true
	})
	if err != nil {
		return nil, err
	}
	sortItems(items)
	return items, nil
}

func (s *memoryStore) Has(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := s.items.Load(id)
	return ok, nil
}

func (s *memoryStore) decode(raw string) (Item, error) {
	msg, err := urlmsg.Parse(raw, urlmsg.DefaultSeparator)
	if err != nil {
		return Item{}, NewError(RetCCorruptItem, err.Error())
	}
	item, err := Decode(s.engine, msg)
	if err != nil {
		return Item{}, NewError(RetCCorruptItem, err.Error())
	}
	return item, nil
}

// sortItems orders items by name, then ID
func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID.String() < items[j].ID.String()
	})
}
