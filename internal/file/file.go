package file

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const uploadTimeout = 30 * time.Second

// Client is the part of the Cloudinary upload API used here.
type Client interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

type FileUploader struct {
	client Client
	folder string
}

func New(cloudName, apiKey, apiSecret, folder string) (*FileUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}

	return NewWithClient(&cld.Upload, folder), nil
}

func NewWithClient(client Client, folder string) *FileUploader {
	return &FileUploader{
		client: client,
		folder: folder,
	}
}

// Upload stores the content and returns its https URL. Cloudinary reports
// some failures only through an empty URL, so that is an error too.
func (f *FileUploader) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	result, err := f.client.Upload(ctx, file, uploader.UploadParams{
		Folder:   f.folder,
		PublicID: publicID(filename),
	})
	if err != nil {
		return "", err
	}

	if result.SecureURL == "" {
		return "", fmt.Errorf("cloudinary: no url returned for %s", filename)
	}

	return result.SecureURL, nil
}

func publicID(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, base)

	if base == "" || base == "." {
		base = "upload"
	}

	return base + "-" + uuid.NewString()[:8]
}
