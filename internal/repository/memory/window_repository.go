package memory

import (
	"time"

	"soulscript-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type WindowRepository struct {
	cache *cache.Cache
}

func NewWindowRepository() *WindowRepository {
	// Windows expire after an hour of inactivity; expired items are
	// purged every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &WindowRepository{
		cache: c,
	}
}

func (r *WindowRepository) Save(window *store.Window) {
	r.cache.Set(window.SessionID, window, cache.DefaultExpiration)
}

func (r *WindowRepository) Get(sessionID string) (*store.Window, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Window), true
	}
	return nil, false
}

func (r *WindowRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
