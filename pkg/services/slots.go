package services

import (
	"context"
	"sync"
)

type slot struct {
	ch   chan struct{}
	refs int
}

// chatSlots allows one in-flight round-trip per chat. Entries are dropped once
// nobody holds or waits on them.
type chatSlots struct {
	mu    sync.Mutex
	slots map[uint]*slot
}

func newChatSlots() *chatSlots {
	return &chatSlots{slots: map[uint]*slot{}}
}

func (s *chatSlots) acquire(ctx context.Context, chatID uint) (release func(), err error) {
	s.mu.Lock()
	sl := s.slots[chatID]
	if sl == nil {
		sl = &slot{ch: make(chan struct{}, 1)}
		s.slots[chatID] = sl
	}
	sl.refs++
	s.mu.Unlock()

	select {
	case sl.ch <- struct{}{}:
	case <-ctx.Done():
		s.unref(chatID, sl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-sl.ch
			s.unref(chatID, sl)
		})
	}, nil
}

func (s *chatSlots) unref(chatID uint, sl *slot) {
	s.mu.Lock()
	sl.refs--
	if sl.refs == 0 {
		delete(s.slots, chatID)
	}
	s.mu.Unlock()
}

func (s *chatSlots) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
