package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmribeiro/recibox/internal/models"
	"github.com/dmribeiro/recibox/internal/remote"
	"github.com/dmribeiro/recibox/internal/repositories/documents"
	"github.com/dmribeiro/recibox/internal/repositories/tombstones"
)

// fakeReauth approves or rejects every re-authentication attempt.
type fakeReauth struct {
	err   error
	calls int
}

func (f *fakeReauth) Reauthenticate(ctx context.Context, password []byte) error {
	f.calls++
	return f.err
}

func newTestService(db *sql.DB, primary, secondary remote.Source, auth Reauthenticator) DocumentService {
	return NewDocumentService(
		db,
		documents.NewSQLiteRepository(db),
		tombstones.NewSQLiteRepository(db),
		primary, secondary, auth,
		testLogger(),
	)
}

func createInput() CreateInput {
	return CreateInput{
		PayerName:     "Maria Souza",
		PayerDocument: "123.456.789-00",
		Amount:        decimal.RequireFromString("150.50"),
		IssueDate:     time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Description:   "Aluguel",
		PaymentMethod: "pix",
	}
}

func TestCreate_PrimarySuppliesCanonicalIdentity(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	canonical := remoteDoc("srv-1", "Maria Souza")
	canonical.SequenceLabel = "0042"
	primary := &fakeSource{available: true, createDoc: &canonical}
	secondary := &fakeSource{available: true}

	svc := newTestService(db, primary, secondary, &fakeReauth{})
	doc, err := svc.Create(ctx, createInput())
	require.NoError(t, err)

	assert.Equal(t, "srv-1", doc.Id)
	assert.Equal(t, "0042", doc.SequenceLabel)
	assert.False(t, doc.Pending)

	// the provisional record was replaced, not duplicated
	all, err := documents.NewSQLiteRepository(db).GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "srv-1", all[0].Id)
}

func TestCreate_FallsBackToSecondary(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	mirror := remoteDoc("mir-1", "Maria Souza")
	primary := &fakeSource{available: true, createErr: remote.ErrRejected}
	secondary := &fakeSource{available: true, createDoc: &mirror}

	svc := newTestService(db, primary, secondary, &fakeReauth{})
	doc, err := svc.Create(ctx, createInput())
	require.NoError(t, err)

	assert.Equal(t, "mir-1", doc.Id)
	assert.False(t, doc.Pending)
}

func TestCreate_BothFailKeepsLocalRecord(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	primary := &fakeSource{available: false}
	secondary := &fakeSource{available: true, createErr: remote.ErrRejected}

	svc := newTestService(db, primary, secondary, &fakeReauth{})
	doc, err := svc.Create(ctx, createInput())
	require.NoError(t, err)

	assert.True(t, doc.Pending)
	assert.NotEmpty(t, doc.Id)
	assert.Contains(t, doc.SequenceLabel, "TMP-")

	got, err := documents.NewSQLiteRepository(db).GetByID(ctx, doc.Id)
	require.NoError(t, err)
	assert.True(t, got.Pending)
}

func TestDelete_ReauthFailureTouchesNothing(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	docs := documents.NewSQLiteRepository(db)
	existing := remoteDoc("abc", "payer")
	require.NoError(t, docs.Upsert(ctx, &existing))

	primary := &fakeSource{available: true}
	svc := newTestService(db, primary, &fakeSource{}, &fakeReauth{err: ErrUnauthorized})

	err := svc.Delete(ctx, "abc", []byte("wrong"))
	assert.ErrorIs(t, err, ErrUnauthorized)

	// document still there, no tombstone, no remote call
	_, err = docs.GetByID(ctx, "abc")
	assert.NoError(t, err)
	ok, err := tombstones.NewSQLiteRepository(db).Contains(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, primary.removed)
}

func TestDelete_TombstonesEvenWhenRemoteFails(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	docs := documents.NewSQLiteRepository(db)
	existing := remoteDoc("abc", "payer")
	require.NoError(t, docs.Upsert(ctx, &existing))

	primary := &fakeSource{available: true, removeErr: remote.ErrRejected}
	secondary := &fakeSource{available: true, removeErr: remote.ErrRejected}

	svc := newTestService(db, primary, secondary, &fakeReauth{})
	require.NoError(t, svc.Delete(ctx, "abc", []byte("pw")))

	_, err := docs.GetByID(ctx, "abc")
	assert.ErrorIs(t, err, documents.ErrNotFound)

	ok, err := tombstones.NewSQLiteRepository(db).Contains(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDelete_RemovesFromPrimary(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	docs := documents.NewSQLiteRepository(db)
	existing := remoteDoc("abc", "payer")
	require.NoError(t, docs.Upsert(ctx, &existing))

	primary := &fakeSource{available: true}
	secondary := &fakeSource{available: true}

	svc := newTestService(db, primary, secondary, &fakeReauth{})
	require.NoError(t, svc.Delete(ctx, "abc", []byte("pw")))

	assert.Equal(t, []string{"abc"}, primary.removed)
	assert.Empty(t, secondary.removed) // primary succeeded, no fallback
}

func TestDelete_LocalOnlySkipsRemote(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	docs := documents.NewSQLiteRepository(db)
	local := remoteDoc("loc-1", "payer")
	local.Pending = true
	require.NoError(t, docs.Upsert(ctx, &local))

	primary := &fakeSource{available: true}
	secondary := &fakeSource{available: true}

	svc := newTestService(db, primary, secondary, &fakeReauth{})
	require.NoError(t, svc.Delete(ctx, "loc-1", []byte("pw")))

	assert.Empty(t, primary.removed)
	assert.Empty(t, secondary.removed)

	ok, err := tombstones.NewSQLiteRepository(db).Contains(ctx, "loc-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDelete_FallsBackToSecondaryRemoval(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	docs := documents.NewSQLiteRepository(db)
	existing := remoteDoc("abc", "payer")
	require.NoError(t, docs.Upsert(ctx, &existing))

	primary := &fakeSource{available: true, removeErr: remote.ErrRejected}
	secondary := &fakeSource{available: true}

	svc := newTestService(db, primary, secondary, &fakeReauth{})
	require.NoError(t, svc.Delete(ctx, "abc", []byte("pw")))

	assert.Equal(t, []string{"abc"}, secondary.removed)
}

func TestUpdateStatus(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	docs := documents.NewSQLiteRepository(db)
	existing := remoteDoc("abc", "payer")
	require.NoError(t, docs.Upsert(ctx, &existing))

	svc := newTestService(db, &fakeSource{}, &fakeSource{}, &fakeReauth{})

	require.NoError(t, svc.UpdateStatus(ctx, "abc", models.StatusPaid))
	got, err := docs.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.Status)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, "abc", models.Status("bogus")), ErrInvalidStatus)
}

func TestUpdateStatus_TombstonedIdIsTerminal(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, tombstones.NewSQLiteRepository(db).Add(ctx, "dead"))

	svc := newTestService(db, &fakeSource{}, &fakeSource{}, &fakeReauth{})
	assert.ErrorIs(t, svc.UpdateStatus(ctx, "dead", models.StatusPaid), ErrDeleted)
}
