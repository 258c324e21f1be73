// Package retention decides which conversations may be dropped and sweeps them periodically.
//
// Messages are never edited or removed one by one; retention only ever deletes whole threads.
package retention

import (
	"sort"
	"time"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
)

// Policy selects the thread IDs that should be deleted.
type Policy interface {
	Select(now time.Time, metas []*entity.ConversationMeta) []string
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(now time.Time, metas []*entity.ConversationMeta) []string

func (f PolicyFunc) Select(now time.Time, metas []*entity.ConversationMeta) []string {
	return f(now, metas)
}

// KeepForever never selects anything.
var KeepForever Policy = PolicyFunc(func(time.Time, []*entity.ConversationMeta) []string { return nil })

// IdleTTL selects threads not updated within ttl. A non-positive ttl keeps everything.
func IdleTTL(ttl time.Duration) Policy {
	if ttl <= 0 {
		return KeepForever
	}
	return PolicyFunc(func(now time.Time, metas []*entity.ConversationMeta) []string {
		var ids []string
		for _, m := range metas {
			if now.Sub(m.UpdatedAt) > ttl {
				ids = append(ids, m.ThreadID)
			}
		}
		return ids
	})
}

// MaxConversations keeps the n most recently updated threads and selects the rest.
// A non-positive n keeps everything.
func MaxConversations(n int) Policy {
	if n <= 0 {
		return KeepForever
	}
	return PolicyFunc(func(_ time.Time, metas []*entity.ConversationMeta) []string {
		if len(metas) <= n {
			return nil
		}
		sorted := make([]*entity.ConversationMeta, len(metas))
		copy(sorted, metas)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
		})
		ids := make([]string, 0, len(sorted)-n)
		for _, m := range sorted[n:] {
			ids = append(ids, m.ThreadID)
		}
		return ids
	})
}

// All selects the union of what every policy selects, in first-seen order.
func All(policies ...Policy) Policy {
	return PolicyFunc(func(now time.Time, metas []*entity.ConversationMeta) []string {
		seen := make(map[string]struct{})
		var ids []string
		for _, p := range policies {
			for _, id := range p.Select(now, metas) {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
		return ids
	})
}
