// Package lot keeps each user's staged selection of products, the lot a
// farmer assembles before creating an auction. Collections live in a
// kvstore.Store, one per owner, keyed off the active session's subject.
package lot

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	ierrors "github.com/jrsteele09/go-bidagri-client/internal/errors"
	"github.com/jrsteele09/go-bidagri-client/kvstore"
	"github.com/jrsteele09/go-bidagri-client/products"
	"github.com/rs/zerolog/log"
)

// Storage keys
const (
	KeyPrefix      = "bidagri-lot:"
	ownerKeyPrefix = KeyPrefix + "user:"
	AnonymousKey   = KeyPrefix + "anonymous"
	// LegacyKey is the single shared collection older clients wrote
	LegacyKey = "bidagri-lot"
)

// Entry is one product in a lot. Quantity is always at least 1.
type Entry struct {
	Product  products.Product `json:"product"`
	Quantity int              `json:"quantity"`
	AddedAt  time.Time        `json:"addedAt"`
	OwnerID  string           `json:"ownerId,omitempty"`
}

// OwnerSummary describes one stored collection
type OwnerSummary struct {
	OwnerID   string
	Anonymous bool
	Entries   int
	Quantity  int
}

// OwnerResolver supplies the active user id. *session.Manager implements it.
type OwnerResolver interface {
	Subject() (string, bool)
}

// Store is the lot store. Each exported operation is one atomic
// read-modify-write over the owner's collection.
type Store struct {
	owners           OwnerResolver
	store            kvstore.Store
	nowTime          func() time.Time
	anonymousStaging bool
	lock             sync.Mutex
}

// Option defines a function type to modify the Store instance.
type Option func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithAnonymousStaging lets Add stage products under the anonymous
// collection while nobody is signed in. The staged entries move to the
// user's lot with MigrateAnonymousTo after login.
func WithAnonymousStaging() Option {
	return func(s *Store) {
		s.anonymousStaging = true
	}
}

// New creates a lot store scoped by owners over store.
func New(owners OwnerResolver, store kvstore.Store, options ...Option) (*Store, error) {
	if owners == nil {
		return nil, errors.New("[lot.New] owner resolver is required")
	}
	if store == nil {
		return nil, errors.New("[lot.New] store is required")
	}

	s := &Store{
		owners:  owners,
		store:   store,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// OwnerKey returns the storage key of ownerID's collection. The empty
// owner maps to the anonymous collection.
func OwnerKey(ownerID string) string {
	if ownerID == "" {
		return AnonymousKey
	}
	return ownerKeyPrefix + ownerID
}

// ResolveOwnerKey returns the key of the active user's collection, or the
// anonymous key when nobody is signed in. It is recomputed on every call.
func (s *Store) ResolveOwnerKey() string {
	return OwnerKey(s.currentOwner())
}

// List returns the active user's entries. Missing or corrupt data yields
// an empty lot.
func (s *Store) List() []Entry {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.load(s.ResolveOwnerKey())
}

// Add puts one of product in the active user's lot, incrementing the
// quantity when the product is already there.
func (s *Store) Add(product products.Product) ([]Entry, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	owner := s.currentOwner()
	if owner == "" && !s.anonymousStaging {
		return nil, ErrUnauthenticatedWrite
	}

	key := OwnerKey(owner)
	entries := s.load(key)
	now := s.nowTime()

	if i := indexOf(entries, product.ID); i >= 0 {
		entries[i].Quantity++
		entries[i].AddedAt = now
	} else {
		entries = append(entries, Entry{
			Product:  product,
			Quantity: 1,
			AddedAt:  now,
			OwnerID:  owner,
		})
	}

	if err := s.save(key, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Remove drops productID from the active user's lot. Removing an absent
// product is not an error.
func (s *Store) Remove(productID int64) ([]Entry, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.removeLocked(s.ResolveOwnerKey(), productID)
}

// SetQuantity sets the quantity of productID. A quantity of zero or less
// removes the entry; an absent product is left absent.
func (s *Store) SetQuantity(productID int64, quantity int) ([]Entry, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	key := s.ResolveOwnerKey()
	if quantity <= 0 {
		return s.removeLocked(key, productID)
	}

	entries := s.load(key)
	i := indexOf(entries, productID)
	if i < 0 {
		return entries, nil
	}
	entries[i].Quantity = quantity
	entries[i].AddedAt = s.nowTime()

	if err := s.save(key, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Count is the sum of quantities in the active user's lot
func (s *Store) Count() int {
	count := 0
	for _, e := range s.List() {
		count += e.Quantity
	}
	return count
}

// Total sums quantity times the named price over the active user's lot.
// It is for display; pricing is settled by the backend.
func (s *Store) Total(field products.PriceField) (float64, error) {
	if _, err := products.ParsePriceField(string(field)); err != nil {
		return 0, ierrors.Wrapf(ErrUnknownPriceField, "price field %q", field)
	}

	total := 0.0
	for _, e := range s.List() {
		price, _ := e.Product.Price(field)
		total += price * float64(e.Quantity)
	}
	return total, nil
}

// Clear deletes the active user's lot
func (s *Store) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.store.Remove(s.ResolveOwnerKey())
}

// MigrateAnonymousTo merges the anonymous collection into ownerID's lot,
// summing quantities of shared products, then deletes the anonymous
// collection. ownerID must be the active subject. Running it again with
// nothing staged is a no-op. It returns the number of entries moved.
func (s *Store) MigrateAnonymousTo(ownerID string) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if ownerID == "" {
		return 0, ErrUnauthenticatedWrite
	}
	if current := s.currentOwner(); current != ownerID {
		return 0, ierrors.Wrapf(ErrOwnerMismatch, "migrating to %q", ownerID)
	}

	staged := s.load(AnonymousKey)
	if len(staged) == 0 {
		return 0, s.store.Remove(AnonymousKey)
	}

	key := OwnerKey(ownerID)
	entries := s.load(key)
	for _, a := range staged {
		if i := indexOf(entries, a.Product.ID); i >= 0 {
			entries[i].Quantity += a.Quantity
			if a.AddedAt.After(entries[i].AddedAt) {
				entries[i].AddedAt = a.AddedAt
			}
			continue
		}
		a.OwnerID = ownerID
		entries = append(entries, a)
	}

	if err := s.save(key, entries); err != nil {
		return 0, err
	}
	if err := s.store.Remove(AnonymousKey); err != nil {
		return 0, ierrors.Wrapf(err, "removing anonymous lot")
	}

	log.Info().Str("owner", ownerID).Int("entries", len(staged)).Msg("Moved anonymous lot to user")
	return len(staged), nil
}

// Sweep summarises every stored collection, anonymous included. It is an
// administrative view; callers gate it on role.
func (s *Store) Sweep() []OwnerSummary {
	s.lock.Lock()
	defer s.lock.Unlock()

	summaries := make([]OwnerSummary, 0)
	for _, key := range kvstore.KeysWithPrefix(s.store, KeyPrefix) {
		summary := OwnerSummary{}
		switch {
		case key == AnonymousKey:
			summary.Anonymous = true
		case strings.HasPrefix(key, ownerKeyPrefix):
			summary.OwnerID = strings.TrimPrefix(key, ownerKeyPrefix)
		default:
			continue
		}

		entries := s.load(key)
		if len(entries) == 0 {
			continue
		}
		summary.Entries = len(entries)
		for _, e := range entries {
			summary.Quantity += e.Quantity
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// Purge deletes every lot collection, including the legacy shared one.
func (s *Store) Purge() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	removed, err := kvstore.RemovePrefix(s.store, KeyPrefix)
	if err != nil {
		return err
	}
	if err := s.store.Remove(LegacyKey); err != nil {
		return err
	}
	log.Info().Int("collections", removed).Msg("Purged lots")
	return nil
}

func (s *Store) currentOwner() string {
	owner, ok := s.owners.Subject()
	if !ok {
		return ""
	}
	return owner
}

func (s *Store) removeLocked(key string, productID int64) ([]Entry, error) {
	entries := s.load(key)
	i := indexOf(entries, productID)
	if i < 0 {
		return entries, nil
	}
	entries = append(entries[:i], entries[i+1:]...)

	if err := s.save(key, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// load never fails: corrupt collections are logged, removed and read as
// empty, and entries with a non-positive quantity are dropped.
func (s *Store) load(key string) []Entry {
	entries := make([]Entry, 0)

	stored, ok := s.store.Get(key)
	if !ok || stored == "" {
		return entries
	}

	var decoded []Entry
	if err := json.Unmarshal([]byte(stored), &decoded); err != nil {
		log.Warn().Err(ierrors.Wrapf(ErrStorageCorrupt, "parsing %s: %v", key, err)).Msg("Stored lot corrupt, clearing")
		if err := s.store.Remove(key); err != nil {
			log.Err(err).Str("key", key).Msg("Failed removing corrupt lot")
		}
		return entries
	}

	for _, e := range decoded {
		if e.Quantity > 0 {
			entries = append(entries, e)
		}
	}
	return entries
}

// save writes the whole collection; an empty collection is deleted.
func (s *Store) save(key string, entries []Entry) error {
	if len(entries) == 0 {
		return s.store.Remove(key)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return ierrors.Wrapf(err, "marshaling lot")
	}
	if err := s.store.Set(key, string(data)); err != nil {
		return ierrors.Wrapf(err, "storing lot %s", key)
	}
	return nil
}

func indexOf(entries []Entry, productID int64) int {
	for i, e := range entries {
		if e.Product.ID == productID {
			return i
		}
	}
	return -1
}
