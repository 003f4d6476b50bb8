package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"tutor-central/internal/domain/account"
	"tutor-central/internal/media"
	"tutor-central/internal/repository"
	"tutor-central/internal/storage"
	tutor_errors "tutor-central/pkg/errors"
	"tutor-central/pkg/logger"

	"go.uber.org/zap"
)

type UploadStage string

const (
	StageReceived UploadStage = "received"
	StageResized  UploadStage = "resized"
	StageEncoded  UploadStage = "encoded"
	StageStored   UploadStage = "stored"
	StageLinked   UploadStage = "linked"
	StageFailed   UploadStage = "failed"
)

type UploadConfig struct {
	MaxBytes     int64
	ReadTimeout  time.Duration
	StoreTimeout time.Duration
	Quality      int
	MaxWidth     int
}

func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		MaxBytes:     10 << 20,
		ReadTimeout:  30 * time.Second,
		StoreTimeout: 30 * time.Second,
		Quality:      media.DefaultQuality,
		MaxWidth:     media.MaxWidth,
	}
}

type UploadService struct {
	accounts repository.AccountRepository
	store    storage.ObjectStore
	cfg      UploadConfig
	log      *logger.Logger
	now      func() time.Time
}

func NewUploadService(accounts repository.AccountRepository, store storage.ObjectStore, cfg UploadConfig, log *logger.Logger) *UploadService {
	defaults := DefaultUploadConfig()
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaults.MaxBytes
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaults.ReadTimeout
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaults.StoreTimeout
	}
	if cfg.Quality <= 0 {
		cfg.Quality = defaults.Quality
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = defaults.MaxWidth
	}
	return &UploadService{accounts: accounts, store: store, cfg: cfg, log: log, now: time.Now}
}

type SignedUpload struct {
	URL     string
	Key     string
	Headers map[string]string
}

// uploadRun tracks one pass through the pipeline.
type uploadRun struct {
	stage UploadStage
	key   string
	log   *zap.Logger
}

func (r *uploadRun) advance(stage UploadStage) {
	r.stage = stage
	r.log.Info("upload stage", zap.String("stage", string(stage)), zap.String("key", r.key))
}

func (r *uploadRun) fail(err error) error {
	r.log.Warn("upload failed",
		zap.String("stage", string(r.stage)),
		zap.String("key", r.key),
		zap.Error(err))
	r.stage = StageFailed
	return err
}

// Upload reads an image from r, resizes and re-encodes it as WebP, stores it
// and points the caller's photo at it. The account is only touched after the
// object is stored.
func (s *UploadService) Upload(ctx context.Context, actor Identity, r io.Reader) (account.Account, error) {
	a, err := s.accounts.GetByID(ctx, actor.AccountID)
	if err != nil {
		return account.Account{}, err
	}

	run := &uploadRun{
		key: fmt.Sprintf("%s-%d.%s", a.ID, s.now().UnixNano(), media.Extension),
		log: s.log.WithContext(ctx).Logger.With(zap.String("account_id", a.ID.String())),
	}

	data, err := s.receive(ctx, r)
	if err != nil {
		return account.Account{}, run.fail(err)
	}
	mimeType, err := media.Sniff(data)
	if err != nil {
		return account.Account{}, run.fail(tutor_errors.Invalid(err.Error()))
	}
	run.advance(StageReceived)

	img, err := media.Decode(data)
	if err != nil {
		return account.Account{}, run.fail(tutor_errors.Invalid(err.Error()))
	}
	img = media.Resize(img, s.cfg.MaxWidth)
	run.advance(StageResized)

	var exif []byte
	if mimeType == "image/jpeg" {
		exif = media.ExtractEXIF(data)
	}
	encoded, err := media.Encode(img, s.cfg.Quality, exif)
	if err != nil {
		return account.Account{}, run.fail(err)
	}
	run.advance(StageEncoded)

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	err = s.store.Put(storeCtx, run.key, bytes.NewReader(encoded), int64(len(encoded)), media.ContentType)
	cancel()
	if err != nil {
		return account.Account{}, run.fail(tutor_errors.Storage("store object", err))
	}
	run.advance(StageStored)

	photo := s.store.URL(run.key)
	if err := s.accounts.UpdatePhoto(ctx, a.ID, photo); err != nil {
		s.discard(ctx, run)
		return account.Account{}, run.fail(tutor_errors.Storage("link photo", err))
	}
	run.advance(StageLinked)

	a.Photo = photo
	return a, nil
}

// receive reads the whole stream under the read timeout and size cap.
func (s *UploadService) receive(ctx context.Context, r io.Reader) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxBytes+1))
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		if closer, ok := r.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, tutor_errors.Storage("read upload", ctx.Err())
	case res := <-done:
		switch {
		case res.err != nil:
			return nil, tutor_errors.Storage("read upload", res.err)
		case int64(len(res.data)) > s.cfg.MaxBytes:
			return nil, fmt.Errorf("%w: %w: limit is %d bytes", tutor_errors.ErrInvalidInput, tutor_errors.ErrTooLarge, s.cfg.MaxBytes)
		case len(res.data) == 0:
			return nil, tutor_errors.Invalid("empty upload")
		}
		return res.data, nil
	}
}

// discard removes an object whose link step failed. Best effort.
func (s *UploadService) discard(ctx context.Context, run *uploadRun) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.StoreTimeout)
	defer cancel()
	if err := s.store.Delete(ctx, run.key); err != nil {
		run.log.Error("orphaned upload could not be removed", zap.String("key", run.key), zap.Error(err))
	}
}

// SignedLink returns a pre-authorized direct upload address for filename.
func (s *UploadService) SignedLink(ctx context.Context, filename string) (SignedUpload, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return SignedUpload{}, tutor_errors.Invalid("filename is required")
	}
	link, headers, err := s.store.PresignPut(ctx, filename, "", 0)
	if err != nil {
		return SignedUpload{}, tutor_errors.Storage("presign upload", err)
	}
	return SignedUpload{URL: link, Key: filename, Headers: headers}, nil
}

