// Package disk provides a durable per-document vector store on the local
// filesystem with exact brute-force cosine search.
package disk

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Artifact file names within a document directory. A collection is ready
// only when all three exist.
const (
	embeddingsFile = "embeddings.bin"
	chunksFile     = "chunks.jsonl"
	metaFile       = "meta.json"
)

// embeddingsMagic guards against reading an unrelated file as a matrix.
const embeddingsMagic = "DQV1"

// scoreEpsilon avoids division by zero for degenerate all-zero vectors.
const scoreEpsilon = 1e-8

// Store persists one collection per document ID under a root directory
// and serves similarity search over loaded collections.
//
// Writer discipline is the caller's: at most one Persist per document ID
// at a time. Readers are safe concurrently once IsReady is true, because
// collections are only ever replaced whole via rename, never mutated.
type Store struct {
	root     string
	embedder driven.EmbeddingService

	mu     sync.RWMutex
	loaded map[string]*collection
}

// collection is an in-memory document collection. The matrix is one
// contiguous buffer; vector i is the slice [i*dim : (i+1)*dim].
type collection struct {
	dim    int
	matrix []float32
	chunks []string
	metas  []domain.ChunkMeta
}

// vector returns the i-th embedding as a view into the matrix.
func (c *collection) vector(i int) []float32 {
	return c.matrix[i*c.dim : (i+1)*c.dim]
}

// collectionMeta is the typed on-disk metadata record.
type collectionMeta struct {
	Title      string             `json:"title"`
	Source     string             `json:"source"`
	MediaType  string             `json:"media_type"`
	NumChunks  int                `json:"num_chunks"`
	Dimensions int                `json:"dimensions"`
	Chunks     []domain.ChunkMeta `json:"chunks"`
}

// chunkLine is one chunks.jsonl record.
type chunkLine struct {
	Text string `json:"text"`
}

// NewStore creates a vector store rooted at dataDir. If dataDir is empty,
// defaults to ~/.docqa/docs.
func NewStore(dataDir string, embedder driven.EmbeddingService) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docqa", "docs")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{
		root:     dataDir,
		embedder: embedder,
		loaded:   make(map[string]*collection),
	}, nil
}

// Root returns the data directory path.
func (s *Store) Root() string {
	return s.root
}

// docDir returns the directory for a document's artifacts.
func (s *Store) docDir(documentID string) string {
	return filepath.Join(s.root, documentID)
}

// Persist embeds all chunk texts in one batch and writes the collection
// atomically: artifacts are staged in a temporary directory and renamed
// into place as the final step, so a failed embed or interrupted write
// never leaves a partially-ready collection.
func (s *Store) Persist(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error {
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	texts := make([]string, len(chunks))
	metas := make([]domain.ChunkMeta, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
		metas[i] = domain.ChunkMeta{Page: c.Page, Index: c.Index}
	}

	logger.Debug("Embedding %d chunks for document %s", len(chunks), doc.ID)
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding provider returned %d vectors for %d chunks",
			len(vectors), len(chunks))
	}

	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	matrix := make([]float32, 0, dim*len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("embedding provider returned mixed dimensions: %d and %d at index %d",
				dim, len(v), i)
		}
		matrix = append(matrix, v...)
	}

	tmpDir, err := os.MkdirTemp(s.root, doc.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(tmpDir) // no-op after a successful rename

	if err := writeEmbeddings(filepath.Join(tmpDir, embeddingsFile), dim, len(chunks), matrix); err != nil {
		return err
	}
	if err := writeChunks(filepath.Join(tmpDir, chunksFile), texts); err != nil {
		return err
	}
	meta := collectionMeta{
		Title:      doc.Title,
		Source:     doc.Source,
		MediaType:  doc.MediaType.String(),
		NumChunks:  len(chunks),
		Dimensions: dim,
		Chunks:     metas,
	}
	if err := writeMeta(filepath.Join(tmpDir, metaFile), meta); err != nil {
		return err
	}

	final := s.docDir(doc.ID)
	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("removing previous collection: %w", err)
	}
	if err := os.Rename(tmpDir, final); err != nil {
		return fmt.Errorf("publishing collection: %w", err)
	}

	s.mu.Lock()
	s.loaded[doc.ID] = &collection{dim: dim, matrix: matrix, chunks: texts, metas: metas}
	s.mu.Unlock()

	logger.Info("Persisted document %s: %d chunks, %d dimensions", doc.ID, len(chunks), dim)
	return nil
}

// IsReady returns true iff all three artifacts exist on disk.
func (s *Store) IsReady(documentID string) bool {
	dir := s.docDir(documentID)
	for _, name := range []string{embeddingsFile, chunksFile, metaFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// Load reads the collection into memory if not already loaded. A second
// Load for a loaded document is a no-op, not a re-read.
func (s *Store) Load(_ context.Context, documentID string) error {
	s.mu.RLock()
	_, ok := s.loaded[documentID]
	s.mu.RUnlock()
	if ok {
		return nil
	}

	if !s.IsReady(documentID) {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotReady)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loaded[documentID]; ok {
		return nil
	}

	col, err := s.readCollection(documentID)
	if err != nil {
		return err
	}
	s.loaded[documentID] = col
	logger.Debug("Loaded document %s: %d chunks", documentID, len(col.chunks))
	return nil
}

// readCollection reads and cross-validates the three artifacts.
func (s *Store) readCollection(documentID string) (*collection, error) {
	dir := s.docDir(documentID)

	meta, err := readMeta(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, err
	}
	dim, count, matrix, err := readEmbeddings(filepath.Join(dir, embeddingsFile))
	if err != nil {
		return nil, err
	}
	texts, err := readChunks(filepath.Join(dir, chunksFile))
	if err != nil {
		return nil, err
	}

	// Reject inconsistent artifacts rather than trusting them.
	if count != meta.NumChunks || len(texts) != meta.NumChunks || len(meta.Chunks) != meta.NumChunks {
		return nil, fmt.Errorf("%w: document %s artifacts disagree (vectors=%d texts=%d metadata=%d declared=%d)",
			domain.ErrInvalidInput, documentID, count, len(texts), len(meta.Chunks), meta.NumChunks)
	}
	if dim != meta.Dimensions {
		return nil, fmt.Errorf("%w: document %s dimension mismatch (matrix=%d declared=%d)",
			domain.ErrInvalidInput, documentID, dim, meta.Dimensions)
	}

	return &collection{dim: dim, matrix: matrix, chunks: texts, metas: meta.Chunks}, nil
}

// TopK embeds the query and returns the k most similar chunks, descending
// by cosine similarity, ties broken by lower chunk index. Brute-force
// O(n) over the collection; collections are bounded to a few thousand
// chunks per document, so no approximate index is needed.
func (s *Store) TopK(ctx context.Context, documentID, query string, k int) ([]driven.VectorHit, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}
	if err := s.Load(ctx, documentID); err != nil {
		return nil, err
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	s.mu.RLock()
	col := s.loaded[documentID]
	s.mu.RUnlock()

	n := len(col.chunks)
	if n == 0 {
		return nil, nil
	}

	// The embedding model may have changed since ingestion; scoring a
	// query vector of a different width would read past stored vectors.
	if len(queryVec) != col.dim {
		return nil, fmt.Errorf("%w: query embedding has %d dimensions, collection %s stores %d; re-ingest the document with the current model",
			domain.ErrInvalidInput, len(queryVec), documentID, col.dim)
	}

	queryNorm := norm(queryVec)
	hits := make([]driven.VectorHit, n)
	for i := 0; i < n; i++ {
		v := col.vector(i)
		hits[i] = driven.VectorHit{
			Index:      i,
			Similarity: dot(queryVec, v) / (queryNorm*norm(v) + scoreEpsilon),
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Index < hits[j].Index
	})

	if k > n {
		k = n
	}
	return hits[:k], nil
}

// Chunk returns the stored text at the given index.
func (s *Store) Chunk(documentID string, index int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.loaded[documentID]
	if !ok {
		return "", fmt.Errorf("document %s: %w", documentID, domain.ErrNotReady)
	}
	if index < 0 || index >= len(col.chunks) {
		return "", fmt.Errorf("%w: index %d, collection size %d", domain.ErrOutOfRange, index, len(col.chunks))
	}
	return col.chunks[index], nil
}

// Metadata returns the stored per-chunk metadata at the given index.
func (s *Store) Metadata(documentID string, index int) (domain.ChunkMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.loaded[documentID]
	if !ok {
		return domain.ChunkMeta{}, fmt.Errorf("document %s: %w", documentID, domain.ErrNotReady)
	}
	if index < 0 || index >= len(col.metas) {
		return domain.ChunkMeta{}, fmt.Errorf("%w: index %d, collection size %d",
			domain.ErrOutOfRange, index, len(col.metas))
	}
	return col.metas[index], nil
}

// Close drops all in-memory collections.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = make(map[string]*collection)
	return nil
}

// dot computes the dot product in float64 to limit rounding drift.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// norm computes the Euclidean norm in float64.
func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// writeEmbeddings writes the matrix artifact: magic, dimension and row
// count header followed by the row-major float32 little-endian matrix.
func writeEmbeddings(path string, dim, count int, matrix []float32) error {
	buf := make([]byte, len(embeddingsMagic)+8+len(matrix)*4)
	copy(buf, embeddingsMagic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(dim))
	binary.LittleEndian.PutUint32(buf[8:], uint32(count))
	for i, f := range matrix {
		binary.LittleEndian.PutUint32(buf[12+i*4:], math.Float32bits(f))
	}

	if err := os.WriteFile(path, buf, 0600); err != nil {
		return fmt.Errorf("writing embeddings: %w", err)
	}
	return nil
}

// readEmbeddings reads and validates the matrix artifact.
func readEmbeddings(path string) (dim, count int, matrix []float32, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("reading embeddings: %w", err)
	}
	if len(data) < 12 || string(data[:4]) != embeddingsMagic {
		return 0, 0, nil, fmt.Errorf("%w: malformed embeddings file %s", domain.ErrInvalidInput, path)
	}

	dim = int(binary.LittleEndian.Uint32(data[4:]))
	count = int(binary.LittleEndian.Uint32(data[8:]))
	body := data[12:]
	if len(body) != dim*count*4 {
		return 0, 0, nil, fmt.Errorf("%w: embeddings file %s holds %d bytes, header declares %d",
			domain.ErrInvalidInput, path, len(body), dim*count*4)
	}

	matrix = make([]float32, dim*count)
	for i := range matrix {
		matrix[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[i*4:]))
	}
	return dim, count, matrix, nil
}

// writeChunks writes one JSON record per chunk text, in chunk order.
func writeChunks(path string, texts []string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, text := range texts {
		if err := enc.Encode(chunkLine{Text: text}); err != nil {
			return fmt.Errorf("encoding chunk: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing chunks: %w", err)
	}
	return f.Close()
}

// readChunks reads chunk texts in stored order.
func readChunks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}
	defer f.Close()

	var texts []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var line chunkLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			return nil, fmt.Errorf("%w: malformed chunk record in %s: %v", domain.ErrInvalidInput, path, err)
		}
		texts = append(texts, line.Text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning chunks: %w", err)
	}
	return texts, nil
}

// writeMeta writes the typed metadata record.
func writeMeta(path string, meta collectionMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// readMeta reads the typed metadata record.
func readMeta(path string) (*collectionMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	var meta collectionMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: malformed metadata file %s: %v", domain.ErrInvalidInput, path, err)
	}
	return &meta, nil
}
