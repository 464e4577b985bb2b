package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"resume-generator/internal/extract"
	"resume-generator/internal/shared/auth"
	"resume-generator/internal/shared/telemetry"
	"resume-generator/internal/structuring"
	"resume-generator/internal/users"
)

type fakeExtractor struct {
	text      string
	gotMedia  extract.MediaType
	callCount int
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, media extract.MediaType) string {
	f.callCount++
	f.gotMedia = media
	return f.text
}

type fakeStructurer struct {
	resume structuring.Resume
	err    error
	gotJD  string
}

func (f *fakeStructurer) Structure(_ context.Context, _, jd string) (structuring.Resume, error) {
	f.gotJD = jd
	if f.err != nil {
		return structuring.Fallback(), f.err
	}
	return f.resume, nil
}

type fakeArchive struct {
	saved   map[string][]byte
	deleted []string
	saveErr error
}

func (f *fakeArchive) Save(_ context.Context, owner, fileName, _ string, r io.Reader) (string, int64, error) {
	if f.saveErr != nil {
		return "", 0, f.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	key := owner + "/" + fileName
	f.saved[key] = data
	return key, int64(len(data)), nil
}

func (f *fakeArchive) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.saved[key]
	if !ok {
		return nil, errors.New("missing")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeArchive) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.saved, key)
	return nil
}

type failingResumes struct {
	*MemoryRepo
}

func (failingResumes) Create(context.Context, Record) (Record, error) {
	return Record{}, errors.New("disk full")
}

type failingTx struct {
	users *users.MemoryRepo
}

func (f failingTx) InTx(ctx context.Context, fn func(ctx context.Context, u users.Repo, r Repo) error) error {
	return fn(ctx, f.users, failingResumes{NewMemoryRepo()})
}

type serviceFixture struct {
	svc        *Service
	extractor  *fakeExtractor
	structurer *fakeStructurer
	users      *users.MemoryRepo
	resumes    *MemoryRepo
}

func newServiceFixture() serviceFixture {
	userRepo := users.NewMemoryRepo()
	resumeRepo := NewMemoryRepo()
	ex := &fakeExtractor{text: "Alice Example\nGo engineer"}
	st := &fakeStructurer{resume: sampleResume()}
	return serviceFixture{
		svc: &Service{
			Extractor:  ex,
			Structurer: st,
			Tx:         MemoryTxRunner{Users: userRepo, Resumes: resumeRepo},
			Users:      userRepo,
			Resumes:    resumeRepo,
		},
		extractor:  ex,
		structurer: st,
		users:      userRepo,
		resumes:    resumeRepo,
	}
}

var alice = auth.Identity{Email: "alice@example.com", Name: "alice"}

func pdfUpload() Upload {
	return Upload{
		FileName:       "resume.pdf",
		ContentType:    "application/pdf",
		Data:           []byte("%PDF-1.4 fake"),
		JobDescription: "Senior Go engineer",
	}
}

func TestGeneratePersistsRecordAndUser(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	rec, err := f.svc.Generate(ctx, alice, pdfUpload())
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.Equal(t, extract.MediaPDF, f.extractor.gotMedia)
	assert.Equal(t, "Senior Go engineer", f.structurer.gotJD)

	user, err := f.users.GetByEmail(ctx, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.DisplayName)

	stored, err := f.resumes.GetForOwner(ctx, user.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Example\nGo engineer", stored.OriginalText)
	assert.Equal(t, sampleResume(), stored.Structured)
}

func TestGenerateLogsTransitions(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := telemetry.SetLogger(zap.New(core))
	defer restore()

	f := newServiceFixture()
	_, err := f.svc.Generate(context.Background(), alice, pdfUpload())
	require.NoError(t, err)

	var stages []string
	for _, e := range logs.FilterMessage("resume.status_transition").All() {
		stages = append(stages, fmt.Sprint(e.ContextMap()["status_transition"]))
	}
	assert.Equal(t, []string{"received", "extracting", "extracted", "structuring", "structured", "persisted"}, stages)
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	f := newServiceFixture()

	up := pdfUpload()
	up.FileName = "resume.txt"
	_, err := f.svc.Generate(context.Background(), alice, up)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	assert.ErrorIs(t, err, ErrInvalidInput)

	up = pdfUpload()
	up.JobDescription = "   "
	_, err = f.svc.Generate(context.Background(), alice, up)
	assert.ErrorIs(t, err, ErrMissingJobDescription)

	assert.Zero(t, f.extractor.callCount)
}

func TestGenerateNoTextWritesNothing(t *testing.T) {
	f := newServiceFixture()
	f.extractor.text = ""

	_, err := f.svc.Generate(context.Background(), alice, pdfUpload())
	assert.ErrorIs(t, err, ErrNoText)
	assert.Equal(t, StageExtractionFailed, StageFor(err))

	_, err = f.users.GetByEmail(context.Background(), alice.Email)
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestGenerateStructuringFailureWritesNothing(t *testing.T) {
	f := newServiceFixture()
	f.structurer.err = fmt.Errorf("%w: bad", structuring.ErrSchemaViolation)

	_, err := f.svc.Generate(context.Background(), alice, pdfUpload())
	assert.ErrorIs(t, err, ErrStructuring)
	assert.ErrorIs(t, err, structuring.ErrSchemaViolation)
	assert.Equal(t, StageStructuringFailed, StageFor(err))

	_, err = f.users.GetByEmail(context.Background(), alice.Email)
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestGenerateArchivesUpload(t *testing.T) {
	f := newServiceFixture()
	archive := &fakeArchive{}
	f.svc.Archive = archive

	rec, err := f.svc.Generate(context.Background(), alice, pdfUpload())
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com/resume.pdf", rec.SourceObjectKey)
	assert.Equal(t, []byte("%PDF-1.4 fake"), archive.saved[rec.SourceObjectKey])
}

func TestGenerateArchiveFailureAborts(t *testing.T) {
	f := newServiceFixture()
	f.svc.Archive = &fakeArchive{saveErr: errors.New("bucket gone")}

	_, err := f.svc.Generate(context.Background(), alice, pdfUpload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket gone")
	assert.Equal(t, StagePersistFailed, StageFor(err))
}

func TestGeneratePersistFailureDeletesArchive(t *testing.T) {
	f := newServiceFixture()
	archive := &fakeArchive{}
	f.svc.Archive = archive
	f.svc.Tx = failingTx{users: f.users}

	_, err := f.svc.Generate(context.Background(), alice, pdfUpload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []string{"alice@example.com/resume.pdf"}, archive.deleted)
	assert.Empty(t, archive.saved)
}

func TestFetchAppliesAccessPolicy(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	rec, err := f.svc.Generate(ctx, alice, pdfUpload())
	require.NoError(t, err)

	view, err := f.svc.Fetch(ctx, alice.Email, rec.ID, false)
	require.NoError(t, err)
	assert.False(t, view.Paid)
	assert.IsType(t, Teaser{}, view.Data)

	view, err = f.svc.Fetch(ctx, alice.Email, rec.ID, true)
	require.NoError(t, err)
	assert.True(t, view.Paid)
	assert.Equal(t, sampleResume(), view.Data)
}

func TestFetchLedgerIgnoresClientFlag(t *testing.T) {
	f := newServiceFixture()
	f.svc.Access = AccessForMode("ledger", f.resumes)
	ctx := context.Background()
	rec, err := f.svc.Generate(ctx, alice, pdfUpload())
	require.NoError(t, err)

	view, err := f.svc.Fetch(ctx, alice.Email, rec.ID, true)
	require.NoError(t, err)
	assert.False(t, view.Paid)

	require.NoError(t, f.svc.Unlock(ctx, rec.ID, "pay_1"))
	view, err = f.svc.Fetch(ctx, alice.Email, rec.ID, false)
	require.NoError(t, err)
	assert.True(t, view.Paid)
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	rec, err := f.svc.Generate(ctx, alice, pdfUpload())
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, "mallory@example.com", rec.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.users.GetOrCreate(ctx, "mallory@example.com", "")
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, "mallory@example.com", rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSummaries(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	_, err := f.svc.List(ctx, alice.Email)
	assert.ErrorIs(t, err, ErrUserNotFound)

	up := pdfUpload()
	up.JobDescription = string(bytes.Repeat([]byte("é"), 120))
	first, err := f.svc.Generate(ctx, alice, up)
	require.NoError(t, err)
	f.extractor.text = "second"
	second, err := f.svc.Generate(ctx, alice, pdfUpload())
	require.NoError(t, err)

	list, err := f.svc.List(ctx, alice.Email)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, 3, list[1].FeedbackCount)
	assert.True(t, list[1].HasData)
	assert.Equal(t, string(bytes.Repeat([]byte("é"), 100))+"...", list[1].JobDescription)
	assert.Equal(t, "Senior Go engineer", list[0].JobDescription)
}

func TestAccessForModeDefaultsToClient(t *testing.T) {
	assert.IsType(t, ClientAsserted{}, AccessForMode("", NewMemoryRepo()))
	assert.IsType(t, LedgerAccess{}, AccessForMode("ledger", NewMemoryRepo()))
}
