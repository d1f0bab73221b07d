package lang

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"strconv"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// Stream provides streaming access to top-level blocks in suite source.
// It parses on-demand and caches individual blocks, not full trees.
type Stream struct {
	reader    io.Reader
	source    string
	sourceKey string
	metadata  *state
}

// NewStream creates a streaming parser from an io.Reader.
// The reader will not be consumed until first block access.
func NewStream(r io.Reader) *Stream {
	var p Stream

	p.reader = r
	p.metadata = new(state)

	return &p
}

// NewStreamFromString creates a streaming parser from a source string.
func NewStreamFromString(source string) *Stream {
	// Create source key (hash) for caching - using xxhash3 for performance
	hash := xxh3.Hash([]byte(source))
	sourceKey := strconv.FormatUint(hash, 36)

	// Get or create metadata entry
	entry := new(state)
	value, _ := globalRegistry.LoadOrStore(sourceKey, entry)

	metadata, ok := value.(*state)
	if !ok {
		metadata = entry
	}

	return &Stream{
		source:    source,
		sourceKey: sourceKey,
		metadata:  metadata,
	}
}

// ensureParsed ensures the source has been read and parsed.
// This extracts and caches individual top-level blocks on first access.
func (p *Stream) ensureParsed() error {
	p.metadata.once.Do(func() {
		// Read source if from reader
		if p.source == "" && p.reader != nil {
			// Wrap reader with async read-ahead for concurrent I/O.
			ra := readahead.NewReader(p.reader)
			defer ra.Close()

			data, err := io.ReadAll(ra)
			if err != nil {
				p.metadata.err = ErrReadInput.Wrap(err).
					With(slog.String("source", "reader"))

				return
			}

			p.source = string(data)

			// Generate source key - using xxhash3 for performance
			hash := xxh3.Hash(data)
			p.sourceKey = strconv.FormatUint(hash, 36)
		}

		// Parse source to extract blocks
		root, err := parseSource(context.TODO(), p.source)
		if err != nil {
			p.metadata.err = err

			return
		}

		// Cache each block individually and track identifiers
		p.metadata.identifiers = make([]string, len(root.Blocks))
		for i, blk := range root.Blocks {
			id := blockID(blk, i)
			p.metadata.identifiers[i] = id
			globalCache.Store(p.sourceKey+":"+id, blk)
		}
	})

	return p.metadata.err
}

// GetBlock retrieves a top-level block by its name.
// Returns an error if parsing fails or the block is not found.
func (p *Stream) GetBlock(name string) (*Block, error) {
	err := p.ensureParsed()
	if err != nil {
		return nil, err
	}

	if value, ok := globalCache.Load(p.sourceKey + ":" + name); ok {
		if blk, ok := value.(*Block); ok {
			return blk, nil
		}
	}

	return nil, ErrBlockNotFound.
		With(slog.String("name", name))
}

// Blocks returns an iterator over all top-level blocks in the source.
// If parsing fails, the iterator yields no values.
func (p *Stream) Blocks() iter.Seq[*Block] {
	return func(yield func(*Block) bool) {
		err := p.ensureParsed()
		if err != nil {
			return
		}

		for _, id := range p.metadata.identifiers {
			if value, ok := globalCache.Load(p.sourceKey + ":" + id); ok {
				if blk, ok := value.(*Block); ok {
					if !yield(blk) {
						return
					}
				}
			}
		}
	}
}

// Root returns the complete parsed tree.
// This reconstructs the tree from cached blocks.
// Use sparingly - prefer GetBlock or Blocks for efficiency.
func (p *Stream) Root() (*Root, error) {
	err := p.ensureParsed()
	if err != nil {
		return nil, err
	}

	root := &Root{
		Blocks: make([]*Block, len(p.metadata.identifiers)),
	}

	applyDefaults(root)

	for i, id := range p.metadata.identifiers {
		if value, ok := globalCache.Load(p.sourceKey + ":" + id); ok {
			if blk, ok := value.(*Block); ok {
				root.Blocks[i] = blk
			}
		}
	}

	root.buildIndex()

	return root, nil
}

// Functional-style interfaces for direct use without creating a Stream
// instance.

// GetBlockFrom retrieves a top-level block by name from an io.Reader.
func GetBlockFrom(r io.Reader, name string) (*Block, error) {
	return NewStream(r).GetBlock(name)
}

// BlocksFrom returns an iterator over all top-level blocks from an
// io.Reader.
func BlocksFrom(r io.Reader) iter.Seq[*Block] {
	return NewStream(r).Blocks()
}
