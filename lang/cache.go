package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

var (
	// globalCache stores top-level blocks keyed by (source_hash:identifier).
	// This allows efficient lookup without keeping full trees in memory.
	globalCache sync.Map

	// globalRegistry tracks source metadata by source hash.
	globalRegistry sync.Map
)

// state tracks parsing state and top-level block list for a source.
type state struct {
	once        sync.Once
	identifiers []string // cache identifiers of top-level blocks, in order
	err         error
}

// blockID returns the cache identifier of a top-level block.
// Hooks have no name, so they are keyed by their position in the source.
func blockID(blk *Block, index int) string {
	if blk.Name != "" {
		return blk.Name
	}

	return "(" + blk.Keyword + ")#" + strconv.Itoa(index)
}

// hashOptions encodes options using gob and hashes with xxh3.
// Returns a hash that uniquely identifies the options configuration.
func hashOptions(opts optionsKey) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(opts.maxDepth)

	return xxh3.Hash(buf.Bytes())
}

// ParseReader parses input from an io.Reader and returns the tree.
// The reader content is cached after first parse for efficiency.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Root, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	// This allows data to be pre-fetched while we process previous chunks.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	// Build a temporary Root to determine options state
	var tempRoot Root

	applyDefaults(&tempRoot)
	applyOptions(&tempRoot, opts...)

	tempRoot.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	// If options differ from defaults, bypass cache
	if tempRoot.opts.maxDepth != DefaultMaxDepth {
		tempRoot.logger.TraceContext(
			ctx,
			"cache bypass",
			slog.Int("max_depth", tempRoot.opts.maxDepth),
		)

		return parseSource(ctx, string(data), opts...)
	}

	return parseStringCached(ctx, string(data), opts...)
}

// parseStringCached parses a string with caching.
func parseStringCached(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Root, error) {
	// Build a temporary Root to get effective options
	var tempRoot Root

	applyDefaults(&tempRoot)
	applyOptions(&tempRoot, opts...)

	// Generate source key (hash) for caching - using xxhash3 for performance
	// Combine source hash with options hash for cache key uniqueness
	sourceHash := xxh3.Hash([]byte(source))
	optsHash := hashOptions(tempRoot.opts)
	combinedHash := sourceHash ^ optsHash
	sourceKey := strconv.FormatUint(combinedHash, 36)

	// Get or create metadata entry
	entry := new(state)
	value, cacheHit := globalRegistry.LoadOrStore(sourceKey, entry)

	metadata, ok := value.(*state)
	if !ok {
		return nil, ErrUnexpectedToken.
			With(slog.String("issue", "invalid metadata type in cache"))
	}

	tempRoot.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", cacheHit),
	)

	// Ensure the source has been parsed
	metadata.once.Do(func() {
		// Parse source to extract blocks (bypassing cache)
		root, parseErr := parseSource(ctx, source, opts...)
		if parseErr != nil {
			metadata.err = parseErr

			return
		}

		// Cache each block individually and track identifiers
		metadata.identifiers = make([]string, len(root.Blocks))
		for i, blk := range root.Blocks {
			id := blockID(blk, i)
			metadata.identifiers[i] = id
			globalCache.Store(sourceKey+":"+id, blk)
		}
	})

	if metadata.err != nil {
		return nil, metadata.err
	}

	// Reconstruct tree from cached blocks
	root := &Root{
		Blocks: make([]*Block, len(metadata.identifiers)),
	}

	applyDefaults(root)
	applyOptions(root, opts...)

	for i, id := range metadata.identifiers {
		if cachedValue, ok := globalCache.Load(sourceKey + ":" + id); ok {
			if blk, ok := cachedValue.(*Block); ok {
				root.Blocks[i] = blk
			}
		}
	}

	root.buildIndex()

	return root, nil
}

// ClearCache removes all cached blocks and source metadata.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache = sync.Map{}
	globalRegistry = sync.Map{}
}
