package rag

import (
	"context"
	"fmt"
	"time"

	"learning_server/core/domain"

	"github.com/go-pkgz/pool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 4

// VectorEmbedder is satisfied by *Embedder and by test doubles.
type VectorEmbedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingVector, error)
}

type RetrievalRequest struct {
	Query  string
	Chunks []domain.Chunk
	TopK   int
}

type RetrievalResult struct {
	Ranked   []domain.RankedChunk
	Mode     domain.RetrievalMode
	Embedded int   // chunks with a usable vector
	Err      error // why retrieval degraded to slicing
}

// Retriever embeds the query and every chunk, then keeps the top-K chunks by
// cosine similarity. Chunks whose embedding fails are left out of the ranking.
type Retriever struct {
	embedder    VectorEmbedder
	concurrency int
	log         zerolog.Logger
}

func NewRetriever(embedder VectorEmbedder, concurrency int, log zerolog.Logger) *Retriever {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Retriever{
		embedder:    embedder,
		concurrency: concurrency,
		log:         log.With().Str("component", "retriever").Logger(),
	}
}

// chunkEmbedWorker implements pool.Worker over chunk positions. Each job
// writes only the vectors slot of its own chunk.
type chunkEmbedWorker struct {
	embedder VectorEmbedder
	chunks   []domain.Chunk
	vectors  []domain.EmbeddingVector
	log      zerolog.Logger
}

func (w *chunkEmbedWorker) Do(ctx context.Context, idx int) error {
	vec, err := w.embedder.Embed(ctx, w.chunks[idx].Text)
	if err != nil {
		w.log.Warn().Err(err).Int("chunk", idx).Msg("chunk embedding failed, excluding from ranking")
		return nil
	}
	w.vectors[idx] = vec
	return nil
}

// Retrieve never fails. When no vector can be compared it falls back to the
// first TopK chunks and records the cause in Err.
func (r *Retriever) Retrieve(ctx context.Context, req RetrievalRequest) RetrievalResult {
	if len(req.Chunks) == 0 {
		return RetrievalResult{Mode: domain.RetrievalNone}
	}

	start := time.Now()
	vectors := make([]domain.EmbeddingVector, len(req.Chunks))
	var query domain.EmbeddingVector

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		vec, err := r.embedder.Embed(gctx, req.Query)
		if err != nil {
			return fmt.Errorf("failed to embed query: %w", err)
		}
		query = vec
		return nil
	})

	g.Go(func() error {
		worker := &chunkEmbedWorker{
			embedder: r.embedder,
			chunks:   req.Chunks,
			vectors:  vectors,
			log:      r.log,
		}
		p := pool.New[int](r.concurrency, worker).
			WithBatchSize(1).
			WithWorkerChanSize(len(req.Chunks)).
			WithContinueOnError()
		if err := p.Go(gctx); err != nil {
			return fmt.Errorf("failed to start embedding pool: %w", err)
		}
		for i := range req.Chunks {
			p.Submit(i)
		}
		if err := p.Close(gctx); err != nil && gctx.Err() == nil {
			r.log.Warn().Err(err).Msg("embedding pool closed with error")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		r.log.Warn().Err(err).Msg("query embedding failed, using leading chunks")
		return sliced(req, err)
	}

	candidates := make([]ChunkVector, 0, len(req.Chunks))
	for i, vec := range vectors {
		if vec == nil {
			continue
		}
		candidates = append(candidates, ChunkVector{Chunk: req.Chunks[i], Vector: vec})
	}
	if len(candidates) == 0 {
		r.log.Warn().Int("chunks", len(req.Chunks)).Msg("no chunk could be embedded, using leading chunks")
		return sliced(req, domain.ErrAllEmbeddingsFailed)
	}

	ranked := SelectTopK(Rank(query, candidates), req.TopK)
	r.log.Debug().
		Int("chunks", len(req.Chunks)).
		Int("embedded", len(candidates)).
		Int("selected", len(ranked)).
		Dur("elapsed", time.Since(start)).
		Msg("retrieval completed")

	return RetrievalResult{Ranked: ranked, Mode: domain.RetrievalRanked, Embedded: len(candidates)}
}

// sliced takes the first TopK chunks in document order with zero similarity.
func sliced(req RetrievalRequest, cause error) RetrievalResult {
	k := req.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	if k > len(req.Chunks) {
		k = len(req.Chunks)
	}

	ranked := make([]domain.RankedChunk, 0, k)
	for _, c := range req.Chunks[:k] {
		ranked = append(ranked, domain.RankedChunk{Chunk: c})
	}
	return RetrievalResult{Ranked: ranked, Mode: domain.RetrievalSliced, Err: cause}
}
