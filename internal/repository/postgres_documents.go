package repository

import (
	"context"
	"fmt"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	"OptionPilot/pkg/util"
)

// DocumentsSchema creates the rationale document table when missing.
const DocumentsSchema = `
CREATE TABLE IF NOT EXISTS rationale_documents (
	id           TEXT PRIMARY KEY,
	symbol       TEXT NOT NULL,
	content      TEXT NOT NULL,
	score        DOUBLE PRECISION NOT NULL DEFAULT 0,
	published_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS rationale_documents_symbol ON rationale_documents (symbol, published_at DESC);
`

// documentFreshness is the maximum age of a retrievable document.
const documentFreshness = "30 days"

// PGDocumentStore retrieves context documents for rationales.
type PGDocumentStore struct {
	q Querier
}

// NewPGDocumentStore creates the store.
func NewPGDocumentStore(q Querier) *PGDocumentStore {
	return &PGDocumentStore{q: q}
}

// Retrieve returns up to limit fresh documents about symbol, best score first.
func (s *PGDocumentStore) Retrieve(ctx context.Context, symbol string, limit int) ([]models.ContextDocument, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `
		SELECT id, content, score
		FROM rationale_documents
		WHERE symbol = $1 AND published_at >= now() - $2::interval
		ORDER BY score DESC, published_at DESC
		LIMIT $3
	`
	rows, err := s.q.Query(ctx, query, util.NormalizeSymbol(symbol), documentFreshness, limit)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []models.ContextDocument
	for rows.Next() {
		var d models.ContextDocument
		if err := rows.Scan(&d.ID, &d.Content, &d.Score); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

var _ domrepo.DocumentStore = (*PGDocumentStore)(nil)
