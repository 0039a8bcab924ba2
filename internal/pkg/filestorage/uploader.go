package filestorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	KindImage = "image"
	KindVideo = "video"
)

var (
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrFileTooLarge     = errors.New("file too large")
)

// Uploader puts multipart uploads on a media host
type Uploader struct {
	store    MediaStore
	folder   string
	maxBytes int64
}

// NewUploader creates an Uploader writing below folder. maxBytes of 0 disables the size check.
func NewUploader(store MediaStore, folder string, maxBytes int64) *Uploader {
	return &Uploader{store: store, folder: strings.Trim(folder, "/"), maxBytes: maxBytes}
}

// Store returns the underlying media host
func (u *Uploader) Store() MediaStore {
	return u.store
}

// DetectKind sniffs data and reports whether it is an image or a video
func DetectKind(data []byte) (kind string, contentType string, err error) {
	mt := mimetype.Detect(data)
	contentType = mt.String()
	for m := mt; m != nil; m = m.Parent() {
		switch {
		case strings.HasPrefix(m.String(), "image/"):
			return KindImage, contentType, nil
		case strings.HasPrefix(m.String(), "video/"):
			return KindVideo, contentType, nil
		}
	}
	return "", contentType, fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
}

func (u *Uploader) read(fh *multipart.FileHeader) ([]byte, error) {
	if u.maxBytes > 0 && fh.Size > u.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrFileTooLarge, fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

func (u *Uploader) key(sub, ext string) string {
	return path.Join(u.folder, sub, uuid.New().String()+ext)
}

// UploadMedia stores an image or video upload below sub and returns the object with its kind
func (u *Uploader) UploadMedia(ctx context.Context, fh *multipart.FileHeader, sub string) (*Object, string, error) {
	data, err := u.read(fh)
	if err != nil {
		return nil, "", err
	}
	kind, contentType, err := DetectKind(data)
	if err != nil {
		return nil, "", err
	}

	ext := mimetype.Lookup(contentType).Extension()
	if ext == "" {
		ext = path.Ext(fh.Filename)
	}
	obj, err := u.store.Put(ctx, u.key(sub, ext), contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", err
	}
	return obj, kind, nil
}

// UploadImage stores an image upload scaled down to at most width pixels wide, re-encoded as JPEG
func (u *Uploader) UploadImage(ctx context.Context, fh *multipart.FileHeader, sub string, width int) (*Object, error) {
	data, err := u.read(fh)
	if err != nil {
		return nil, err
	}
	if kind, contentType, err := DetectKind(data); err != nil || kind != KindImage {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
	}

	resized, err := ResizeImage(data, width)
	if err != nil {
		return nil, err
	}
	return u.store.Put(ctx, u.key(sub, ".jpg"), "image/jpeg", bytes.NewReader(resized), int64(len(resized)))
}

// ResizeImage decodes data and encodes it as JPEG, scaling it down to width when wider
func ResizeImage(data []byte, width int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMedia, err)
	}
	if width > 0 && img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
