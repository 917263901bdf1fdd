package service

import (
	"context"

	"docstream-be/internal/dto"
	"docstream-be/internal/entity"
	"docstream-be/internal/pkg/logger"
	"docstream-be/internal/pkg/serverutils"
	"docstream-be/internal/repository/contract"
	"docstream-be/pkg/cache"
	"docstream-be/pkg/embedding"
	"docstream-be/pkg/pipeline"
)

const defaultQueryK = 5

type IRetrievalService interface {
	// Query embeds the request text and returns the top-k most similar chunks
	// of INDEXED documents, optionally narrowed by metadata filters.
	Query(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error)

	// GetChunksByDocId lists a document's chunks in sequence order. Works for
	// in-flight documents too. Embedding vectors are never returned.
	GetChunksByDocId(ctx context.Context, docId string) (*dto.ChunksByDocResponse, error)
}

type retrievalService struct {
	docRepo     contract.DocumentRepository
	chunkRepo   contract.ChunkRepository
	provider    embedding.Provider
	vectorCache cache.VectorCache
	dim         int
	metric      string
	sysLogger   logger.ILogger
}

func NewRetrievalService(
	docRepo contract.DocumentRepository,
	chunkRepo contract.ChunkRepository,
	provider embedding.Provider,
	vectorCache cache.VectorCache,
	dim int,
	metric string,
	sysLogger logger.ILogger,
) IRetrievalService {
	return &retrievalService{
		docRepo:     docRepo,
		chunkRepo:   chunkRepo,
		provider:    provider,
		vectorCache: vectorCache,
		dim:         dim,
		metric:      metric,
		sysLogger:   sysLogger,
	}
}

func (s *retrievalService) queryVector(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key(s.provider.ModelId(), text)
	if vec, ok := s.vectorCache.Get(ctx, key); ok {
		return vec, nil
	}

	result, err := s.provider.Embed(ctx, text)
	if err != nil {
		s.sysLogger.Error("retrieval", "Failed to embed query text", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, serverutils.ServiceUnavailableError("Embedding service unavailable")
	}
	if result.Dim != s.dim {
		// The query path uses the same provider as the pipeline, so this
		// only fires on misconfiguration.
		s.sysLogger.Error("retrieval", "Query embedding dimension mismatch", map[string]interface{}{
			"expected": s.dim,
			"got":      result.Dim,
			"model":    result.Model,
		})
		return nil, serverutils.ServiceUnavailableError("Embedding dimension mismatch")
	}

	s.vectorCache.Set(ctx, key, result.Values)
	return result.Values, nil
}

func (s *retrievalService) Query(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	k := req.K
	if k <= 0 {
		k = defaultQueryK
	}

	vec, err := s.queryVector(ctx, req.Text)
	if err != nil {
		return nil, err
	}

	hits, err := s.chunkRepo.Search(ctx, contract.SearchQuery{
		Vector:  vec,
		K:       k,
		Filters: req.Filters,
		Metric:  s.metric,
	})
	if err != nil {
		s.sysLogger.Error("retrieval", "Chunk search failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, serverutils.ServiceUnavailableError("Search backend unavailable")
	}

	results := make([]dto.QueryResult, len(hits))
	for i, hit := range hits {
		results[i] = dto.QueryResult{
			ChunkId:   hit.Chunk.ChunkId,
			DocId:     hit.Chunk.DocId,
			ChunkText: hit.Chunk.ChunkText,
			Score:     hit.Score,
			PageStart: hit.Chunk.PageStart,
			PageEnd:   hit.Chunk.PageEnd,
			Metadata:  hit.Chunk.Metadata,
		}
	}
	return &dto.QueryResponse{Results: results}, nil
}

func (s *retrievalService) GetChunksByDocId(ctx context.Context, docId string) (*dto.ChunksByDocResponse, error) {
	doc, err := s.docRepo.FindByDocId(ctx, docId)
	if err != nil {
		return nil, serverutils.ServiceUnavailableError("Document store unavailable")
	}
	if doc == nil {
		return nil, serverutils.NotFoundError("Document not found")
	}

	chunks, err := s.chunkRepo.FindByDocId(ctx, docId)
	if err != nil {
		return nil, serverutils.ServiceUnavailableError("Document store unavailable")
	}

	resp := &dto.ChunksByDocResponse{
		DocId:   doc.DocId,
		Status:  string(doc.Status),
		Indexed: doc.Status == pipeline.StatusIndexed,
		Chunks:  make([]dto.ChunkResponse, len(chunks)),
	}
	for i, c := range chunks {
		resp.Chunks[i] = mapChunk(c)
	}
	return resp, nil
}

func mapChunk(c *entity.Chunk) dto.ChunkResponse {
	return dto.ChunkResponse{
		ChunkId:          c.ChunkId,
		DocId:            c.DocId,
		PageStart:        c.PageStart,
		PageEnd:          c.PageEnd,
		SequenceIndex:    c.SequenceIndex,
		ChunkText:        c.ChunkText,
		Metadata:         c.Metadata,
		HasEmbedding:     len(c.Embedding) > 0,
		EmbeddingModel:   c.EmbeddingModel,
		EmbeddingDim:     c.EmbeddingDim,
		EmbeddingVersion: c.EmbeddingVersion,
		CreatedAt:        c.CreatedAt,
	}
}
