package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/civil"
	"cloud.google.com/go/storage"
	"github.com/aiworkshop/finassist/backend/internal/model"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// Snapshot is a bulk export of one user's data.
type Snapshot struct {
	Transactions []model.TransactionRecord
	Bills        []model.Bill
}

type rawSnapshot struct {
	Transactions []map[string]any `json:"transactions"`
	Bills        []map[string]any `json:"bills"`
}

// ParseSnapshot decodes a JSON snapshot of the form
// {"transactions": [...], "bills": [...]} using the stored document layout.
// Every record is assigned to userID. Records that cannot be read are
// skipped and logged; unreadable dates become today. Bills must also pass
// validation.
func ParseSnapshot(data []byte, userID string, today civil.Date, log zerolog.Logger) (*Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw rawSnapshot
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := &Snapshot{
		Transactions: make([]model.TransactionRecord, 0, len(raw.Transactions)),
		Bills:        make([]model.Bill, 0, len(raw.Bills)),
	}
	for i, doc := range raw.Transactions {
		tx, err := transactionFromData(stringField(doc, "id"), doc, today)
		if err != nil {
			log.Warn().Int("index", i).Err(err).Msg("skipping snapshot transaction")
			continue
		}
		tx.UserID = userID
		snap.Transactions = append(snap.Transactions, tx)
	}
	for i, doc := range raw.Bills {
		bill, err := billFromData(stringField(doc, "id"), doc, today)
		if err == nil {
			if bill.Category == "" {
				bill.Category = model.DefaultBillCategory
			}
			err = bill.Validate()
		}
		if err != nil {
			log.Warn().Int("index", i).Err(err).Msg("skipping snapshot bill")
			continue
		}
		bill.UserID = userID
		snap.Bills = append(snap.Bills, bill)
	}
	return snap, nil
}

// ReadSource returns the bytes at a local path or a gs://bucket/object URI.
func ReadSource(ctx context.Context, source string, opts ...option.ClientOption) ([]byte, error) {
	if strings.HasPrefix(source, "gs://") {
		return ReadObject(ctx, source, opts...)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return data, nil
}

// ReadObject downloads an object given as gs://bucket/path.
func ReadObject(ctx context.Context, uri string, opts ...option.ClientOption) ([]byte, error) {
	bucket, object, err := splitGCSURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader %s/%s: %w", bucket, object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}
	return data, nil
}

func splitGCSURI(uri string) (bucket, object string, err error) {
	trimmed, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	bucket, object, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return bucket, object, nil
}
