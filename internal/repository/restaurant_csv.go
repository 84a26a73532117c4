package repository

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofrs/flock"

	"github.com/ahmednasr/restaurant-autocomplete/internal/models"
)

var csvHeader = []string{"display_name", "user_rating_count"}

const lockRetry = 20 * time.Millisecond

// RestaurantCSV stores restaurants in a two-column CSV file
// (display_name,user_rating_count). A sidecar lock file serialises access
// across processes; the mutex does the same within this one.
type RestaurantCSV struct {
	path string
	lock *flock.Flock
	mu   sync.RWMutex
}

// NewRestaurantCSV returns a store backed by the file at path. The file does
// not need to exist yet.
func NewRestaurantCSV(path string) *RestaurantCSV {
	return &RestaurantCSV{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// All returns every row in file order. A missing file is an empty store.
func (r *RestaurantCSV) All(ctx context.Context) ([]models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := os.Stat(r.path); errors.Is(err, os.ErrNotExist) {
		return []models.Restaurant{}, nil
	}
	locked, err := r.lock.TryRLockContext(ctx, lockRetry)
	if err != nil || !locked {
		return nil, errors.Wrapf(lockErr(err), "lock %s for reading", r.path)
	}
	defer r.lock.Unlock()

	return r.read()
}

func (r *RestaurantCSV) List(ctx context.Context, limit, offset int) ([]models.Restaurant, error) {
	rows, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return window(rows, limit, offset), nil
}

func (r *RestaurantCSV) Count(ctx context.Context) (int, error) {
	rows, err := r.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Insert appends one row, creating the file (with header) if needed.
func (r *RestaurantCSV) Insert(ctx context.Context, rest models.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return errors.Wrapf(err, "create data dir for %s", r.path)
	}
	locked, err := r.lock.TryLockContext(ctx, lockRetry)
	if err != nil || !locked {
		return errors.Wrapf(lockErr(err), "lock %s for writing", r.path)
	}
	defer r.lock.Unlock()

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %s", r.path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat %s", r.path)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return errors.Wrap(err, "write header")
		}
	}
	if err := w.Write([]string{rest.DisplayName, strconv.Itoa(rest.UserRatingCount)}); err != nil {
		return errors.Wrapf(err, "write %q", rest.DisplayName)
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flush %s", r.path)
}

// read parses the whole file. Columns are located by header name so extra
// columns written by other tools are tolerated.
func (r *RestaurantCSV) read() ([]models.Restaurant, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", r.path)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []models.Restaurant{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read header of %s", r.path)
	}
	nameCol, ratingCol := -1, -1
	for i, h := range header {
		switch h {
		case "display_name":
			nameCol = i
		case "user_rating_count":
			ratingCol = i
		}
	}
	if nameCol < 0 {
		return nil, errors.Newf("%s: missing display_name column", r.path)
	}

	out := []models.Restaurant{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", r.path)
		}
		if nameCol >= len(rec) || rec[nameCol] == "" {
			continue
		}
		row := models.Restaurant{DisplayName: rec[nameCol]}
		if ratingCol >= 0 && ratingCol < len(rec) {
			row.UserRatingCount = parseCount(rec[ratingCol])
		}
		out = append(out, row)
	}
	return out, nil
}

// parseCount accepts "12" as well as "12.0" (pandas writes floats when a column
// has gaps). Anything unparsable counts as zero.
func parseCount(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func lockErr(err error) error {
	if err != nil {
		return err
	}
	return errors.New("lock not acquired")
}
