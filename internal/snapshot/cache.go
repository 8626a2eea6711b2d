package snapshot

import "github.com/rickgao/orderbook-recorder/internal/model"

// Book is the most recent bid and ask sides seen for one identifier.
type Book struct {
	Bids []model.PriceLevel
	Asks []model.PriceLevel
}

// Cache maps identifiers to their latest book. Entries are replaced
// wholesale on every update. Not safe for concurrent use.
type Cache struct {
	books map[string]Book
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{books: make(map[string]Book)}
}

// Put replaces the entry for id.
func (c *Cache) Put(id string, b Book) {
	c.books[id] = b
}

// Get returns the entry for id.
func (c *Cache) Get(id string) (Book, bool) {
	b, ok := c.books[id]
	return b, ok
}

// Len returns the number of identifiers with an entry.
func (c *Cache) Len() int {
	return len(c.books)
}
