package service

import (
	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/feed"
)

// Store key prefixes
const (
	// PrefixDynamicCache is the prefix of cached uploader dynamics (dynamic-feed:cache:{mid})
	PrefixDynamicCache = feed.DynamicCachePrefix

	// PrefixShuffle is the prefix of the last shuffle order per tab (shuffle:{tab})
	PrefixShuffle = "shuffle:"
)

// shuffleKey returns the store key holding tab's last shuffle order
func shuffleKey(tab domain.Tab) string {
	return PrefixShuffle + string(tab)
}

// CachePrefixes returns every prefix cleared on logout
func CachePrefixes() []string {
	return []string{PrefixDynamicCache, PrefixShuffle}
}
