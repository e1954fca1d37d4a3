package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "vendra/internal/core/context"
	"vendra/internal/core/id"
	"vendra/internal/domain/metrics"
)

// AuditAction represents the type of audited override operation.
type AuditAction string

const (
	AuditActionSet   AuditAction = "set"
	AuditActionClear AuditAction = "clear"
)

// CompressionAlgo specifies the compression algorithm used for large
// change payloads.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// AuditEntry records one override mutation.
type AuditEntry struct {
	ID                id.ID           `db:"id"`
	SellerID          id.ID           `db:"seller_id"`
	Metric            string          `db:"metric"`
	Period            string          `db:"period"`
	Action            AuditAction     `db:"action"`
	UserID            string          `db:"user_id"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditService writes the override audit trail. It implements
// metrics.Auditor; the store invokes it inside the mutation transaction,
// so a failed audit write rolls the mutation back.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024, // 10KB
	}, nil
}

// OverrideSet records an override upsert.
func (s *AuditService) OverrideSet(ctx context.Context, o *metrics.Override) error {
	changes, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal audit changes: %w", err)
	}
	return s.log(ctx, AuditEntry{
		SellerID: o.SellerID,
		Metric:   o.Metric.String(),
		Period:   o.Period.String(),
		Action:   AuditActionSet,
		Changes:  changes,
	})
}

// OverrideCleared records an override removal.
func (s *AuditService) OverrideCleared(ctx context.Context, sellerID id.ID, metric metrics.Metric, period metrics.Period) error {
	return s.log(ctx, AuditEntry{
		SellerID: sellerID,
		Metric:   metric.String(),
		Period:   period.String(),
		Action:   AuditActionClear,
	})
}

func (s *AuditService) log(ctx context.Context, entry AuditEntry) error {
	entry.ID = id.New()
	entry.CreatedAt = time.Now().UTC()
	entry.UserID = appctx.GetUserID(ctx)

	entry.CompressionAlgo = CompressionNone
	if len(entry.Changes) > s.compressThreshold {
		entry.ChangesCompressed = s.encoder.EncodeAll(entry.Changes, nil)
		entry.Changes = nil
		entry.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO override_audit (
			id, seller_id, metric, period, action, user_id,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		entry.ID, entry.SellerID, entry.Metric, entry.Period,
		entry.Action, entry.UserID,
		entry.Changes, entry.ChangesCompressed, entry.CompressionAlgo,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// SellerHistory retrieves the audit trail for a seller, newest first.
func (s *AuditService) SellerHistory(ctx context.Context, sellerID id.ID, limit int) ([]AuditEntry, error) {
	sql := `
		SELECT id, seller_id, metric, period, action, user_id,
			   changes, changes_compressed, compression_algo, created_at
		FROM override_audit
		WHERE seller_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, sellerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		err := rows.Scan(
			&e.ID, &e.SellerID, &e.Metric, &e.Period, &e.Action, &e.UserID,
			&e.Changes, &e.ChangesCompressed, &e.CompressionAlgo,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		if e.CompressionAlgo == CompressionZstd && len(e.ChangesCompressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(e.ChangesCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress changes: %w", err)
			}
			e.Changes = decompressed
			e.ChangesCompressed = nil
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Ensure interface compliance.
var _ metrics.Auditor = (*AuditService)(nil)
