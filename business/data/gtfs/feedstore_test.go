package gtfs

import (
	"sync"
	"testing"

	"github.com/matryer/is"
)

func TestFeedStoreSwap(t *testing.T) {
	is := is.New(t)
	store := NewFeedStore()
	is.Equal(store.Current(), (*StaticFeed)(nil))

	first := NewStaticFeed()
	first.Routes.Names["r1"] = "first"
	store.Swap(first)
	is.Equal(store.Current(), first)

	// a refresh replaces the snapshot wholesale; the old one is untouched
	second := NewStaticFeed()
	second.Routes.Names["r1"] = "second"
	store.Swap(second)
	is.Equal(store.Current(), second)
	is.Equal(first.Routes.Names["r1"], "first")
}

func TestFeedStoreConcurrentReaders(t *testing.T) {
	store := NewFeedStore()
	store.Swap(NewStaticFeed())

	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if feed := store.Current(); feed == nil {
					t.Error("reader observed nil snapshot after first publish")
					return
				}
			}
		}()
	}
	for i := 0; i < 100; i++ {
		store.Swap(NewStaticFeed())
	}
	wg.Wait()
}
