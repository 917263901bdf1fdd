package implementation

import (
	"context"

	"docstream-be/internal/entity"
	"docstream-be/internal/mapper"
	"docstream-be/internal/model"
	"docstream-be/internal/repository/contract"
	"docstream-be/internal/repository/specification"
	"docstream-be/pkg/pipeline"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

func NewChunkRepository(db *gorm.DB) contract.ChunkRepository {
	return &ChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkMapper(),
	}
}

func (r *ChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// UpsertBulk writes chunks by chunk_id with ON CONFLICT DO UPDATE, so a
// redelivered chunking or embedding pass overwrites rather than duplicates.
func (r *ChunkRepositoryImpl) UpsertBulk(ctx context.Context, chunks []*entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chunk_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"doc_id", "page_start", "page_end", "sequence_index",
			"chunk_text", "metadata", "embedding", "embedding_model",
			"embedding_dim", "embedding_version", "updated_at",
		}),
	}).CreateInBatches(models, 200).Error
}

func (r *ChunkRepositoryImpl) FindByDocId(ctx context.Context, docId string) ([]*entity.Chunk, error) {
	var models []*model.Chunk
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByDocId{DocId: docId},
		specification.OrderBySequence{},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkRepositoryImpl) CountEmbedded(ctx context.Context, docId string, version string) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Chunk{}),
		specification.ByDocId{DocId: docId},
		specification.WithEmbeddingVersion{Version: version},
	)
	err := query.Count(&count).Error
	return count, err
}

// Search runs the combined vector + filter query. It only sees chunks whose
// parent document is INDEXED and which carry a vector, so partially-written
// data never leaks into query results.
func (r *ChunkRepositoryImpl) Search(ctx context.Context, q contract.SearchQuery) ([]*contract.ScoredChunk, error) {
	k := q.K
	if k <= 0 {
		k = 5
	}

	type result struct {
		model.Chunk
		Score float64
	}
	var results []result

	queryVector := pgvector.NewVector(q.Vector)

	// Cosine distance in pgvector is 1 - cosine_similarity, so the score
	// select inverts it. For L2 the negated distance keeps "higher is
	// better" for callers.
	scoreExpr := "1 - (embedding <=> ?)"
	orderExpr := "score DESC"
	if q.Metric == "l2" {
		scoreExpr = "-(embedding <-> ?)"
	}

	query := r.db.WithContext(ctx).
		Table("chunks").
		Select("chunks.*, "+scoreExpr+" AS score", queryVector).
		Joins("JOIN documents ON documents.doc_id = chunks.doc_id").
		Where("documents.status = ?", string(pipeline.StatusIndexed)).
		Where("chunks.embedding IS NOT NULL").
		Where("chunks.embedding_version <> ''")

	for field, value := range q.Filters {
		query = specification.MetadataEquals{Field: field, Value: value}.Apply(query)
	}

	err := query.Order(orderExpr).Limit(k).Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChunk{
			Chunk: r.mapper.ToEntity(&res.Chunk),
			Score: res.Score,
		}
	}
	return scored, nil
}
