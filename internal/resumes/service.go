package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-generator/internal/extract"
	"resume-generator/internal/shared/auth"
	"resume-generator/internal/shared/metrics"
	"resume-generator/internal/shared/storage/object"
	"resume-generator/internal/shared/telemetry"
	"resume-generator/internal/shared/util"
	"resume-generator/internal/structuring"
	"resume-generator/internal/users"
)

// Stage is a step in the generation lifecycle.
type Stage string

const (
	StageReceived          Stage = "received"
	StageExtracting        Stage = "extracting"
	StageExtracted         Stage = "extracted"
	StageExtractionFailed  Stage = "extraction_failed"
	StageStructuring       Stage = "structuring"
	StageStructured        Stage = "structured"
	StageStructuringFailed Stage = "structuring_failed"
	StagePersisted         Stage = "persisted"
	StagePersistFailed     Stage = "persist_failed"
	StageRejected          Stage = "rejected"
)

type Extractor interface {
	Extract(ctx context.Context, data []byte, media extract.MediaType) string
}

type Structurer interface {
	Structure(ctx context.Context, resumeText, jobDescription string) (structuring.Resume, error)
}

// Service runs generation and serves stored resumes.
// Archive is optional; a nil Archive skips saving the upload.
type Service struct {
	Extractor  Extractor
	Structurer Structurer
	Tx         TxRunner
	Users      users.Repo
	Resumes    Repo
	Access     Access
	Archive    object.ObjectStore
	Now        func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) access() Access {
	if s.Access == nil {
		return ClientAsserted{}
	}
	return s.Access
}

// Generate extracts, structures and persists one upload. Nothing is written
// unless every step succeeds.
func (s *Service) Generate(ctx context.Context, id auth.Identity, up Upload) (Record, error) {
	logTransition(id.Email, StageReceived, nil)
	if err := validateUpload(up); err != nil {
		metrics.IncGenerateFailed(metrics.ReasonInvalidInput)
		logTransition(id.Email, StageRejected, map[string]any{"error": err})
		return Record{}, err
	}

	metrics.IncGenerateStarted()
	start := s.now()
	defer func() {
		metrics.ObserveGenerateDurationMs(float64(s.now().Sub(start).Microseconds()) / 1000.0)
	}()

	logTransition(id.Email, StageExtracting, nil)
	media := extract.MediaTypeFor(up.ContentType, up.FileName, up.Data)
	text := s.Extractor.Extract(ctx, up.Data, media)
	if text == "" {
		metrics.IncGenerateFailed(metrics.ReasonNoText)
		logTransition(id.Email, StageExtractionFailed, map[string]any{"media_type": string(media)})
		return Record{}, ErrNoText
	}
	logTransition(id.Email, StageExtracted, map[string]any{"text_chars": len(text)})

	logTransition(id.Email, StageStructuring, nil)
	structured, err := s.Structurer.Structure(ctx, text, up.JobDescription)
	if err != nil {
		metrics.IncGenerateFailed(structuringReason(err))
		logTransition(id.Email, StageStructuringFailed, map[string]any{"error": err})
		return Record{}, fmt.Errorf("%w: %w", ErrStructuring, err)
	}
	logTransition(id.Email, StageStructured, map[string]any{"ats_score": structured.ATSScore})

	var archiveKey string
	if s.Archive != nil {
		key, size, err := s.Archive.Save(ctx, id.Email, up.FileName, up.ContentType, bytes.NewReader(up.Data))
		if err != nil {
			metrics.IncGenerateFailed(metrics.ReasonArchive)
			logTransition(id.Email, StagePersistFailed, map[string]any{"error": err})
			return Record{}, fmt.Errorf("archive upload: %w", err)
		}
		archiveKey = key
		telemetry.Info("resume.archived", map[string]any{"key": key, "size_bytes": size})
	}

	var rec Record
	err = s.Tx.InTx(ctx, func(ctx context.Context, u users.Repo, r Repo) error {
		owner, err := u.GetOrCreate(ctx, id.Email, id.Name)
		if err != nil {
			return err
		}
		rec, err = r.Create(ctx, Record{
			OwnerID:         owner.ID,
			OriginalText:    text,
			Structured:      structured,
			JobDescription:  up.JobDescription,
			SourceObjectKey: archiveKey,
		})
		return err
	})
	if err != nil {
		if archiveKey != "" {
			if derr := s.Archive.Delete(ctx, archiveKey); derr != nil {
				telemetry.Warn("resume.archive_cleanup_failed", map[string]any{"key": archiveKey, "error": derr})
			}
		}
		metrics.IncGenerateFailed(metrics.ReasonPersistence)
		logTransition(id.Email, StagePersistFailed, map[string]any{"error": err})
		return Record{}, fmt.Errorf("persist resume: %w", err)
	}

	metrics.IncGenerateCompleted()
	logTransition(id.Email, StagePersisted, map[string]any{"resume_id": rec.ID})
	return rec, nil
}

// Get returns the caller's resume id.
func (s *Service) Get(ctx context.Context, email string, id int64) (Record, error) {
	owner, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return Record{}, err
	}
	return s.Resumes.GetForOwner(ctx, owner.ID, id)
}

// Fetch is Get followed by the access policy and projection.
func (s *Service) Fetch(ctx context.Context, email string, id int64, asserted bool) (View, error) {
	rec, err := s.Get(ctx, email, id)
	if err != nil {
		return View{}, err
	}
	paid, err := s.access().Paid(ctx, rec.OwnerID, rec.ID, asserted)
	if err != nil {
		return View{}, fmt.Errorf("check access: %w", err)
	}
	tier := "teaser"
	if paid {
		tier = "full"
	}
	metrics.IncResumeFetch(tier)
	return View{Record: rec, Paid: paid, Data: Project(rec.Structured, paid)}, nil
}

// List returns summaries of the caller's resumes, newest first.
func (s *Service) List(ctx context.Context, email string) ([]Summary, error) {
	owner, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	recs, err := s.Resumes.ListForOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, summarize(rec))
	}
	return out, nil
}

// Unlock records a server-side entitlement for resume id.
func (s *Service) Unlock(ctx context.Context, id int64, reference string) error {
	if err := s.Resumes.Unlock(ctx, id, strings.TrimSpace(reference)); err != nil {
		return err
	}
	telemetry.Info("resume.unlocked", map[string]any{"resume_id": id, "reference": reference})
	return nil
}

// StageFor reports the last lifecycle stage reached by a Generate call that returned err.
func StageFor(err error) Stage {
	switch {
	case err == nil:
		return StagePersisted
	case errors.Is(err, ErrInvalidInput):
		return StageRejected
	case errors.Is(err, ErrNoText):
		return StageExtractionFailed
	case errors.Is(err, ErrStructuring):
		return StageStructuringFailed
	default:
		return StagePersistFailed
	}
}

func validateUpload(up Upload) error {
	if _, ok := AllowedExtensions[util.FileExtension(up.FileName)]; !ok {
		return ErrUnsupportedFile
	}
	if strings.TrimSpace(up.JobDescription) == "" {
		return ErrMissingJobDescription
	}
	return nil
}

func structuringReason(err error) string {
	switch {
	case errors.Is(err, structuring.ErrMalformedJSON):
		return metrics.ReasonMalformed
	case errors.Is(err, structuring.ErrSchemaViolation):
		return metrics.ReasonSchema
	default:
		return metrics.ReasonModel
	}
}

func logTransition(email string, stage Stage, extra map[string]any) {
	fields := map[string]any{"user_email": email, "status_transition": string(stage)}
	for k, v := range extra {
		fields[k] = v
	}
	telemetry.Info("resume.status_transition", fields)
}
