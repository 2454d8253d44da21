package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/phenrril/marina/internal/domain"
)

// limita a 800x1000 y deja que Cloudinary elija calidad y formato
const productTransformation = "c_limit,w_800,h_1000/q_auto/f_auto"

type Storage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func New(cloudinaryURL, folder string) (*Storage, error) {
	if strings.TrimSpace(cloudinaryURL) == "" {
		return nil, errors.New("CLOUDINARY_URL faltante")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Storage{cld: cld, folder: folder}, nil
}

// Upload acepta un data URI o una URL remota.
func (s *Storage) Upload(ctx context.Context, file string) (*domain.UploadedImage, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		return nil, domain.Invalid("file", "No se proporcionó archivo")
	}
	res, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         s.folder,
		Transformation: productTransformation,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return &domain.UploadedImage{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (s *Storage) Delete(ctx context.Context, publicID string) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return domain.Invalid("publicId", "No se proporcionó publicId")
	}
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	if res.Result == "not found" {
		return domain.ErrNotFound
	}
	return nil
}
