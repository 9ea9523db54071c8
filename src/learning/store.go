package learning

import (
	"sync"
	"sync/atomic"
	"time"

	"confluence-engine/src/interfaces"
	"confluence-engine/src/logger"
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Learning store: in-process cache of per-symbol profiles in front of the
// backtester, with age-based invalidation and optional persistence.
// -----------------------------------------------------------------------------

type Store struct {
	mutex      sync.RWMutex
	profiles   map[string]*models.MSymbolLearning
	maxAge     time.Duration
	backtester *Backtester
	db         interfaces.IDatabase
	rebuilds   atomic.Int64
	Logger     *logger.Logger
}

// -----------------------------------------------------------------------------

// NewStore builds the store. db may be nil; profiles then live only in
// memory for the process lifetime.
func NewStore(bt *Backtester, maxAgeMinutes int, db interfaces.IDatabase, log *logger.Logger) *Store {
	if maxAgeMinutes <= 0 {
		maxAgeMinutes = 240
	}
	return &Store{
		profiles:   make(map[string]*models.MSymbolLearning),
		maxAge:     time.Duration(maxAgeMinutes) * time.Minute,
		backtester: bt,
		db:         db,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

// Profile returns the cached profile for symbol, rebuilding from bars when
// the cache is cold or older than the max age. bars is the symbol's base
// interval history as of now. A cold cache first tries the persisted
// profile, so a restarted process does not re-backtest every symbol.
func (s *Store) Profile(symbol string, bars []models.MBar, baseMinutes float64, now time.Time) *models.MSymbolLearning {
	s.mutex.RLock()
	cached := s.profiles[symbol]
	s.mutex.RUnlock()

	if s.fresh(cached, now) {
		return cached
	}

	if cached == nil && s.db != nil {
		stored, err := s.db.LoadLearningProfile(symbol)
		if err != nil && s.Logger != nil {
			s.Logger.Warning("%s: failed to load persisted profile: %v", symbol, err)
		}
		if s.fresh(stored, now) {
			s.mutex.Lock()
			s.profiles[symbol] = stored
			s.mutex.Unlock()
			if s.Logger != nil {
				s.Logger.Debug("%s: warm-started learning profile from storage", symbol)
			}
			return stored
		}
	}

	return s.Rebuild(symbol, bars, baseMinutes, now)
}

// -----------------------------------------------------------------------------

func (s *Store) fresh(p *models.MSymbolLearning, now time.Time) bool {
	return p != nil && now.Unix()-p.BuiltAt < int64(s.maxAge.Seconds())
}

// -----------------------------------------------------------------------------

// Cached returns the profile only if it is already in memory, fresh or not.
func (s *Store) Cached(symbol string) *models.MSymbolLearning {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.profiles[symbol]
}

// -----------------------------------------------------------------------------

// Rebuild forces a fresh backtest pass and replaces the cache entry.
func (s *Store) Rebuild(symbol string, bars []models.MBar, baseMinutes float64, now time.Time) *models.MSymbolLearning {
	s.rebuilds.Add(1)
	profile, events := s.backtester.Build(symbol, bars, baseMinutes, now.Unix())

	s.mutex.Lock()
	s.profiles[symbol] = profile
	s.mutex.Unlock()

	if s.db != nil {
		if len(events) > 0 {
			if err := s.db.SaveConfluenceEvents(symbol, events); err != nil && s.Logger != nil {
				s.Logger.Warning("%s: failed to persist confluence events: %v", symbol, err)
			}
		}
		if err := s.db.SaveLearningProfile(profile); err != nil && s.Logger != nil {
			s.Logger.Warning("%s: failed to persist learning profile: %v", symbol, err)
		}
	}
	return profile
}

// -----------------------------------------------------------------------------

// Invalidate drops a symbol's cached profile so the next request rebuilds.
func (s *Store) Invalidate(symbol string) {
	s.mutex.Lock()
	delete(s.profiles, symbol)
	s.mutex.Unlock()
}

// -----------------------------------------------------------------------------

// Size reports the number of cached profiles.
func (s *Store) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.profiles)
}

// -----------------------------------------------------------------------------

// RebuildCount reports how many backtest passes this process has run.
func (s *Store) RebuildCount() int64 {
	return s.rebuilds.Load()
}
