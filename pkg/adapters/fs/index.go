package fs

import (
	"slices"

	"github.com/aretw0/jsonvault/pkg/core"
)

// index is the authoritative in-memory working set. Insertion order is kept
// so snapshots serialize deterministically.
type index struct {
	docs  map[string]core.Document
	order []string
}

func newIndex() *index {
	return &index{docs: make(map[string]core.Document)}
}

func (ix *index) Len() int {
	return len(ix.order)
}

func (ix *index) Get(id string) (core.Document, bool) {
	doc, ok := ix.docs[id]
	return doc, ok
}

// Put inserts or replaces a document, keeping the original position on replace.
func (ix *index) Put(doc core.Document) {
	id := doc.ID()
	if _, exists := ix.docs[id]; !exists {
		ix.order = append(ix.order, id)
	}
	ix.docs[id] = doc
}

func (ix *index) Remove(id string) bool {
	if _, ok := ix.docs[id]; !ok {
		return false
	}
	delete(ix.docs, id)
	if i := slices.Index(ix.order, id); i >= 0 {
		ix.order = slices.Delete(ix.order, i, i+1)
	}
	return true
}

// Position returns the insertion position of id.
func (ix *index) Position(id string) (int, bool) {
	if _, ok := ix.docs[id]; !ok {
		return 0, false
	}
	return slices.Index(ix.order, id), true
}

// InsertAt puts doc back at a previous position, used to undo a removal.
func (ix *index) InsertAt(pos int, doc core.Document) {
	id := doc.ID()
	if _, exists := ix.docs[id]; exists {
		ix.docs[id] = doc
		return
	}
	pos = min(max(pos, 0), len(ix.order))
	ix.order = slices.Insert(ix.order, pos, id)
	ix.docs[id] = doc
}

// All returns the documents in insertion order. The slice is new but the
// documents are shared with the index.
func (ix *index) All() []core.Document {
	out := make([]core.Document, 0, len(ix.order))
	for _, id := range ix.order {
		out = append(out, ix.docs[id])
	}
	return out
}

// Types counts documents per doc_type.
func (ix *index) Types() map[string]int {
	counts := make(map[string]int)
	for _, doc := range ix.docs {
		counts[doc.Type()]++
	}
	return counts
}
