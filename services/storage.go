package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"claim_flow_app_go/config"
	"claim_flow_app_go/services/archive"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// StorageProvider holds case document files under slash separated keys.
// Every provider is also an archive.FileStore.
type StorageProvider interface {
	archive.FileStore
	Put(ctx context.Context, key string, r io.Reader, contentType string, size int64) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
	Name() string
}

// StoredObject describes a file after Put
type StoredObject struct {
	Key         string
	FileName    string
	Size        int64
	ContentType string
}

// ErrInvalidStorageKey is returned for keys that would escape the storage root
var ErrInvalidStorageKey = errors.New("invalid storage key")

// Storage is the process-wide provider, set by InitializeStorage
var Storage StorageProvider

// InitializeStorage picks the bucket when R2 credentials are complete and
// reachable, and the upload directory otherwise
func InitializeStorage(cfg *config.Config) {
	if !cfg.HasObjectStorage() {
		Storage = NewLocalStorage(cfg.UploadDir)
		log.Printf("Storage connection established (%s)", Storage.Name())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bucket, err := NewBucketStorage(ctx, cfg)
	if err != nil {
		log.Printf("[WARNING] Object storage unavailable: %v. Falling back to local storage.", err)
		Storage = NewLocalStorage(cfg.UploadDir)
		return
	}
	Storage = bucket
	log.Printf("Storage connection established (%s)", Storage.Name())
}

// StoreUpload copies a multipart upload into store under key
func StoreUpload(ctx context.Context, store StorageProvider, file *multipart.FileHeader, key string) (*StoredObject, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()
	return store.Put(ctx, key, src, UploadContentType(file), file.Size)
}

// GenerateCaseDocumentKey builds cases/<caseID>/<kind>/<uuid><ext>
func GenerateCaseDocumentKey(caseID, kind, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return path.Join("cases", caseID, kind, uuid.NewString()+ext)
}

// ContentTypeForName detects the content type from the file extension
func ContentTypeForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".heic":
		return "image/heic"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".zip":
		return "application/zip"
	}
	return "application/octet-stream"
}

// BucketStorage keeps files in an S3 compatible bucket (Cloudflare R2)
type BucketStorage struct {
	client *s3.Client
	bucket string
}

// NewBucketStorage connects to the R2 account of cfg and checks the bucket
func NewBucketStorage(ctx context.Context, cfg *config.Config) (*BucketStorage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.R2BucketName)}); err != nil {
		return nil, fmt.Errorf("bucket %s not reachable: %w", cfg.R2BucketName, err)
	}
	return &BucketStorage{client: client, bucket: cfg.R2BucketName}, nil
}

// Name describes the provider for logs
func (b *BucketStorage) Name() string { return "bucket " + b.bucket }

// Put uploads r as one object
func (b *BucketStorage) Put(ctx context.Context, key string, r io.Reader, contentType string, size int64) (*StoredObject, error) {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return &StoredObject{Key: key, FileName: path.Base(key), Size: size, ContentType: contentType}, nil
}

// Delete removes the object; missing objects are not an error on S3
func (b *BucketStorage) Delete(ctx context.Context, key string) error {
	if _, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Exists checks for the object with HeadObject
func (b *BucketStorage) Exists(ctx context.Context, key string) bool {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if !errors.As(err, &notFound) {
			log.Printf("[WARNING] HeadObject failed for %s: %v", key, err)
		}
		return false
	}
	return true
}

// Open streams the object body
func (b *BucketStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return out.Body, nil
}

// LocalStorage keeps files below a directory on disk
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates a new local storage provider
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

// Name describes the provider for logs
func (l *LocalStorage) Name() string { return "local " + l.baseDir }

func (l *LocalStorage) fullPath(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	if clean == string(filepath.Separator) {
		return "", ErrInvalidStorageKey
	}
	return filepath.Join(l.baseDir, clean), nil
}

// Put writes r to a temporary file and renames it into place, so readers
// never see a partial file
func (l *LocalStorage) Put(ctx context.Context, key string, r io.Reader, contentType string, size int64) (*StoredObject, error) {
	fullPath, err := l.fullPath(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), fullPath)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to save %s: %w", key, err)
	}

	return &StoredObject{Key: key, FileName: path.Base(key), Size: written, ContentType: contentType}, nil
}

// Delete removes the file; a missing file is not an error
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := l.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists reports whether key names a regular file
func (l *LocalStorage) Exists(ctx context.Context, key string) bool {
	fullPath, err := l.fullPath(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(fullPath)
	return err == nil && info.Mode().IsRegular()
}

// Open opens the file for reading
func (l *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := l.fullPath(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}
