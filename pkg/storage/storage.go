package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/verifi-app/verifi-backend/pkg/clock"
	"github.com/verifi-app/verifi-backend/pkg/codec"
	"github.com/verifi-app/verifi-backend/pkg/config"
	pkgerrors "github.com/verifi-app/verifi-backend/pkg/errors"
	"github.com/verifi-app/verifi-backend/pkg/logger"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
)

const bytesPerMB = 1 << 20

// Uploader writes review photos to a bucket and hands back their public URL.
type Uploader struct {
	bucket        *blob.Bucket
	publicBaseURL string
	maxBytes      int
	clock         clock.Clock
	logg          *logger.Logger
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Open opens the bucket named by cfg.BucketURL (mem://, file://, gs://).
func Open(ctx context.Context, cfg config.StorageConfig, clk clock.Clock, logg *logger.Logger) (*Uploader, error) {
	if cfg.BucketURL == "" {
		return nil, errors.New("storage bucket url is required")
	}
	bucket, err := blob.OpenBucket(ctx, cfg.BucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %q: %w", cfg.BucketURL, err)
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logg == nil {
		logg = logger.Nop()
	}

	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 10
	}
	u := &Uploader{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxBytes:      maxMB * bytesPerMB,
		clock:         clk,
		logg:          logg,
	}

	ctx = logg.WithField(ctx, "bucket", cfg.BucketURL)
	logg.Info(ctx, "storage bucket opened")
	return u, nil
}

// UploadReviewPhoto stores an image under <userID>/<timestamp><ext> and
// returns its public URL. Payloads that are not images fail validation.
func (u *Uploader) UploadReviewPhoto(ctx context.Context, userID string, payload []byte) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id is required").
			WithDetails(map[string]string{"user_id": "is required"})
	}
	if len(payload) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "photo is empty").
			WithDetails(map[string]string{"photo": "is required"})
	}
	if len(payload) > u.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "photo is too large").
			WithDetails(map[string]string{"photo": fmt.Sprintf("must be at most %d bytes", u.maxBytes)})
	}

	mt := mimetype.Detect(payload)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "photo must be an image").
			WithDetails(map[string]string{"photo": "unsupported type " + mt.String()})
	}

	key := userID + "/" + codec.EncodeTime(u.clock.Now()) + mt.Extension()
	opts := &blob.WriterOptions{ContentType: mt.String()}
	if err := u.bucket.WriteAll(ctx, key, payload, opts); err != nil {
		ctx = u.logg.WithFields(ctx, map[string]any{"key": key, "user_id": userID})
		u.logg.Error(ctx, "photo upload failed", err)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "photo upload failed")
	}

	return u.PublicURL(key), nil
}

// PublicURL joins key onto the configured public base.
func (u *Uploader) PublicURL(key string) string {
	return u.publicBaseURL + "/" + strings.TrimLeft(key, "/")
}

func (u *Uploader) Ping(ctx context.Context) error {
	ok, err := u.bucket.IsAccessible(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("storage bucket is not accessible")
	}
	return nil
}

func (u *Uploader) Close() error {
	return u.bucket.Close()
}
