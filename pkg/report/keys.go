package report

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/younsl/volreaper/pkg/utils"
)

// Object key prefixes shared by the collector and the enforcer
const (
	InventoryPrefix   = "volume_report_"
	DeletionLogPrefix = "deleted_volumes_"
	keySuffix         = ".csv"
)

// ErrNoReport is returned when no inventory report exists in the bucket
var ErrNoReport = errors.New("no inventory report found")

// InventoryKey returns the object key for a report produced at t
func InventoryKey(t time.Time) string {
	return InventoryPrefix + utils.FormatStamp(t) + keySuffix
}

// DeletionLogKey returns the object key for a deletion log produced at t
func DeletionLogKey(t time.Time) string {
	return DeletionLogPrefix + utils.FormatStamp(t) + keySuffix
}

// KeyStamp extracts the embedded timestamp from a key carrying prefix.
// It returns false when the key does not match prefix<YYYY-MM-DD_HH-MM-SS>.csv.
func KeyStamp(key, prefix string) (string, bool) {
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, keySuffix) {
		return "", false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(key, prefix), keySuffix)
	if _, err := utils.ParseStamp(stamp); err != nil {
		return "", false
	}
	return stamp, true
}

// LatestKey picks the key whose embedded timestamp is greatest among keys
// carrying prefix. Keys that do not parse are ignored.
func LatestKey(keys []string, prefix string) (string, error) {
	candidates := lo.Filter(keys, func(k string, _ int) bool {
		_, ok := KeyStamp(k, prefix)
		return ok
	})
	if len(candidates) == 0 {
		return "", ErrNoReport
	}

	// The stamp layout is zero-padded, so string order is time order
	sort.Slice(candidates, func(i, j int) bool {
		si, _ := KeyStamp(candidates[i], prefix)
		sj, _ := KeyStamp(candidates[j], prefix)
		return si > sj
	})
	return candidates[0], nil
}
