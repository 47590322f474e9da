package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"docqa/internal/domain"
	"docqa/internal/port"
)

const ingestBatchSize = 32

// Ingestor runs the upload pipeline: chunk, embed, store, index. Embedding
// happens in batches outside any store or index lock, so queries against
// already-indexed documents proceed while an ingest is in flight.
type Ingestor struct {
	store    port.DocumentStore
	index    port.VectorIndex
	chunker  port.Chunker
	embedder port.Embedder
	log      *slog.Logger

	// onChange runs after a successful ingest; used to invalidate
	// query caches.
	onChange func()
}

func NewIngestor(store port.DocumentStore, index port.VectorIndex, chunker port.Chunker, embedder port.Embedder, log *slog.Logger, onChange func()) *Ingestor {
	if log == nil {
		log = slog.Default()
	}
	return &Ingestor{
		store:    store,
		index:    index,
		chunker:  chunker,
		embedder: embedder,
		log:      log,
		onChange: onChange,
	}
}

// Ingest uploads one document. progress, if non-nil, is called after each
// embedded batch with the number of passages done so far and the total.
// An empty document is reported as ErrEmptyDocument and indexes nothing.
func (u *Ingestor) Ingest(ctx context.Context, name, text string, progress func(done, total int)) (domain.Document, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Document{}, fmt.Errorf("%s: %w", name, domain.ErrEmptyDocument)
	}
	if want, got := u.index.Dimension(), u.embedder.Dimension(); want != got {
		return domain.Document{}, &domain.DimensionMismatchError{Want: want, Got: got}
	}

	doc := domain.Document{
		ID:         uuid.NewString(),
		Name:       name,
		Text:       text,
		UploadedAt: time.Now(),
	}

	passages, err := u.chunker.Chunk(doc)
	if err != nil {
		return domain.Document{}, fmt.Errorf("chunk %s: %w", name, err)
	}

	vectors := make([][]float32, 0, len(passages))
	for start := 0; start < len(passages); start += ingestBatchSize {
		end := start + ingestBatchSize
		if end > len(passages) {
			end = len(passages)
		}
		texts := make([]string, 0, end-start)
		for _, p := range passages[start:end] {
			texts = append(texts, p.Text)
		}

		batch, err := u.embedder.Embed(ctx, texts)
		if err != nil {
			return domain.Document{}, fmt.Errorf("embed %s: %w", name, err)
		}
		vectors = append(vectors, batch...)

		if progress != nil {
			progress(end, len(passages))
		}
	}

	if err := u.store.PutDocument(doc, passages); err != nil {
		return domain.Document{}, fmt.Errorf("store %s: %w", name, err)
	}
	for i, v := range vectors {
		if err := u.index.Add(v, passages[i].ID); err != nil {
			return domain.Document{}, fmt.Errorf("index %s: %w", name, err)
		}
	}

	if u.onChange != nil {
		u.onChange()
	}

	u.log.Info("document ingested",
		"doc_id", doc.ID,
		"name", name,
		"passages", len(passages),
		"model", u.embedder.ModelName())

	return doc, nil
}
