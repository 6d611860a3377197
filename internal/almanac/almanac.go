// Package almanac persists one calculation per UTC day in a badger store.
package almanac

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/litescript/ls-cosmos/internal/jyotish"
	"github.com/litescript/ls-cosmos/internal/logging"
)

// ErrNotFound is returned when a day has no stored entry.
var ErrNotFound = errors.New("almanac: day not found")

// dayPrefix namespaces day keys within the store.
const dayPrefix = 'd'

// Calculator produces CosmicData for an instant.
type Calculator interface {
	Calculate(t time.Time) (jyotish.CosmicData, error)
}

// Entry is the stored record for one day.
type Entry struct {
	Date       string             `json:"date"` // YYYY-MM-DD, UTC
	ComputedAt time.Time          `json:"computed_at"`
	Data       jyotish.CosmicData `json:"data"`
}

// Store is a day-keyed almanac backed by badger.
type Store struct {
	db  *badger.DB
	log *logging.Logger
}

// Open opens (or creates) an on-disk almanac at path.
func Open(path string, log *logging.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path).
		WithCompression(options.ZSTD).
		WithNumVersionsToKeep(1)
	return open(opts, log)
}

// OpenInMemory opens an almanac that lives only in memory.
func OpenInMemory(log *logging.Logger) (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), log)
}

func open(opts badger.Options, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.Discard()
	}
	opts = opts.WithLogger(badgerLogger{log})

	db, err := badger.Open(opts)
	if err != nil {
		log.Error("almanac: open %q: %v", opts.Dir, err)
		return nil, fmt.Errorf("open almanac: %w", err)
	}
	log.Debug("almanac opened dir=%q inMemory=%v", opts.Dir, opts.InMemory)
	return &Store{db: db, log: log}, nil
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date as a UTC day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

// DayKey returns the sortable key for the UTC day containing t.
func DayKey(t time.Time) []byte {
	key := make([]byte, 9)
	key[0] = dayPrefix
	// Flipping the sign bit keeps pre-1970 days ordered before later ones.
	binary.BigEndian.PutUint64(key[1:], uint64(Day(t).Unix())^(1<<63))
	return key
}

// Put stores the calculation for the day containing data.Time.
func (s *Store) Put(data jyotish.CosmicData) error {
	val, key, err := encode(data)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

func encode(data jyotish.CosmicData) (val, key []byte, err error) {
	e := Entry{
		Date:       Day(data.Time).Format(time.DateOnly),
		ComputedAt: time.Now().UTC(),
		Data:       data,
	}
	val, err = json.Marshal(e)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s: %w", e.Date, err)
	}
	return val, DayKey(data.Time), nil
}

// Get returns the entry for the UTC day containing day.
func (s *Store) Get(day time.Time) (Entry, error) {
	var e Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(DayKey(day))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Range returns entries for days in [from, to], both inclusive, in
// chronological order. Missing days are skipped.
func (s *Store) Range(from, to time.Time) ([]Entry, error) {
	var entries []Entry
	start, end := DayKey(from), DayKey(to)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{dayPrefix}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(start); it.Valid(); it.Next() {
			item := it.Item()
			if string(item.Key()) > string(end) {
				break
			}
			err := item.Value(func(val []byte) error {
				var e Entry
				if err := json.Unmarshal(val, &e); err != nil {
					return fmt.Errorf("decode %x: %w", item.Key(), err)
				}
				entries = append(entries, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return entries, err
}

// Fill computes and stores the missing days among days consecutive days
// starting at from. Each day is sampled at 00:00 UTC; days already stored
// are left untouched. New days are written in one batch: on error nothing
// is stored. It returns the number of days written.
func (s *Store) Fill(ctx context.Context, calc Calculator, from time.Time, days int) (int, error) {
	start := Day(from)
	todo, err := s.missing(start, days)
	if err != nil {
		return 0, err
	}
	if len(todo) == 0 {
		s.log.Debug("almanac: %d days from %s already stored", days, start.Format(time.DateOnly))
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	written := 0
	for _, day := range todo {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		data, err := calc.Calculate(day)
		if err != nil {
			s.log.Error("almanac: calculate %s: %v", day.Format(time.DateOnly), err)
			return 0, fmt.Errorf("calculate %s: %w", day.Format(time.DateOnly), err)
		}

		val, key, err := encode(data)
		if err != nil {
			return 0, err
		}
		if err := wb.Set(key, val); err != nil {
			return 0, fmt.Errorf("write batch: %w", err)
		}
		written++
	}

	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush batch: %w", err)
	}
	s.log.Info("almanac filled %d days from %s", written, start.Format(time.DateOnly))
	return written, nil
}

// missing returns the days in the window that have no stored entry.
func (s *Store) missing(start time.Time, days int) ([]time.Time, error) {
	var out []time.Time
	err := s.db.View(func(txn *badger.Txn) error {
		for i := 0; i < days; i++ {
			day := start.AddDate(0, 0, i)
			_, err := txn.Get(DayKey(day))
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
				out = append(out, day)
			case err != nil:
				return fmt.Errorf("lookup %s: %w", day.Format(time.DateOnly), err)
			}
		}
		return nil
	})
	return out, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close almanac: %w", err)
	}
	return nil
}

// badgerLogger routes badger's internal logging through our logger.
type badgerLogger struct {
	l *logging.Logger
}

func (b badgerLogger) Errorf(format string, args ...any)   { b.l.Error(format, args...) }
func (b badgerLogger) Warningf(format string, args ...any) { b.l.Warn(format, args...) }
func (b badgerLogger) Infof(format string, args ...any)    { b.l.Debug(format, args...) }
func (b badgerLogger) Debugf(format string, args ...any)   { b.l.Debug(format, args...) }
