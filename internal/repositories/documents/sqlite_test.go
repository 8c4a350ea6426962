package documents

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmribeiro/recibox/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE documents (
  id TEXT PRIMARY KEY,
  sequence_label TEXT NOT NULL DEFAULT '',
  payer_name TEXT NOT NULL DEFAULT '',
  payer_document TEXT NOT NULL DEFAULT '',
  amount TEXT NOT NULL DEFAULT '0',
  issue_date TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  payment_method TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'issued',
  logo_ref TEXT NOT NULL DEFAULT '',
  signature_ref TEXT NOT NULL DEFAULT '',
  issuer_name TEXT NOT NULL DEFAULT '',
  issuer_document TEXT NOT NULL DEFAULT '',
  contract_id TEXT NOT NULL DEFAULT '',
  pending INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE tombstones (id TEXT PRIMARY KEY);
`)
	require.NoError(t, err)

	return db
}

func sampleDoc(id string) *models.Document {
	return &models.Document{
		Id:            id,
		SequenceLabel: "0001",
		PayerName:     "Maria Souza",
		PayerDocument: "123.456.789-00",
		Amount:        decimal.RequireFromString("150.50"),
		IssueDate:     time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Description:   "Aluguel janeiro",
		PaymentMethod: "pix",
		Status:        models.StatusIssued,
	}
}

func TestUpsert_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	d := sampleDoc("id1")
	require.NoError(t, r.Upsert(ctx, d))

	got, err := r.GetByID(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", got.PayerName)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("150.50")))

	// update by the same id
	d.PayerName = "Maria S. Souza"
	d.Status = models.StatusPaid
	require.NoError(t, r.Upsert(ctx, d))

	got, err = r.GetByID(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, "Maria S. Souza", got.PayerName)
	assert.Equal(t, models.StatusPaid, got.Status)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1) // still one row, no duplicates
}

func TestUpsert_IssuerOverrideRoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	d := sampleDoc("id1")
	d.IssuerOverride = &models.Issuer{Name: "Filial Ltda", Document: "12.345.678/0001-00"}
	d.SignatureRef = "sig-filial"
	require.NoError(t, r.Upsert(ctx, d))

	got, err := r.GetByID(ctx, "id1")
	require.NoError(t, err)
	require.NotNil(t, got.IssuerOverride)
	assert.Equal(t, "Filial Ltda", got.IssuerOverride.Name)
	assert.Equal(t, "sig-filial", got.SignatureRef)
}

func TestMergeRemote_UpsertsWhenNotTombstoned(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	written, err := r.MergeRemote(ctx, sampleDoc("id1"))
	require.NoError(t, err)
	assert.True(t, written)

	// merging the same snapshot again is idempotent
	written, err = r.MergeRemote(ctx, sampleDoc("id1"))
	require.NoError(t, err)
	assert.True(t, written)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMergeRemote_SkipsTombstonedID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO tombstones (id) VALUES ('id1')`)
	require.NoError(t, err)

	written, err := r.MergeRemote(ctx, sampleDoc("id1"))
	require.NoError(t, err)
	assert.False(t, written)

	_, err = r.GetByID(ctx, "id1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMergeRemote_OverwritesLocalEntry(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	local := sampleDoc("id1")
	local.PayerName = "stale name"
	local.Pending = true
	require.NoError(t, r.Upsert(ctx, local))

	fresh := sampleDoc("id1")
	fresh.PayerName = "fresh name"
	written, err := r.MergeRemote(ctx, fresh)
	require.NoError(t, err)
	assert.True(t, written)

	got, err := r.GetByID(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, "fresh name", got.PayerName)
	assert.False(t, got.Pending) // remote-confirmed records are synced
}

func TestDeleteByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleDoc("id1")))
	require.NoError(t, r.DeleteByID(ctx, "id1"))

	_, err := r.GetByID(ctx, "id1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleDoc("id1")))
	require.NoError(t, r.UpdateStatus(ctx, "id1", models.StatusOverdue))

	got, err := r.GetByID(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOverdue, got.Status)

	assert.ErrorIs(t, r.UpdateStatus(ctx, "missing", models.StatusPaid), ErrNotFound)
}
