package unsplash

import (
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// DecodePhoto parses one Unsplash photo object. It fails with a
// *domain.DecodeError when id, width, height, or every url variant is
// missing or of the wrong type.
func DecodePhoto(data []byte) (domain.Photo, error) {
	var dto photoDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.Photo{}, decodeErr(err)
	}
	return toPhoto(&dto)
}

// DecodePhotos parses a JSON array of photo objects, failing on the first
// invalid element.
func DecodePhotos(data []byte) ([]domain.Photo, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, decodeErr(err)
	}
	return decodeRaw(raw)
}

func decodeRaw(raw []json.RawMessage) ([]domain.Photo, error) {
	photos := make([]domain.Photo, 0, len(raw))
	for i, r := range raw {
		p, err := DecodePhoto(r)
		if err != nil {
			return nil, fmt.Errorf("photo %d: %w", i, err)
		}
		photos = append(photos, p)
	}
	return photos, nil
}

func toPhoto(dto *photoDTO) (domain.Photo, error) {
	if dto.ID == nil || *dto.ID == "" {
		return domain.Photo{}, &domain.DecodeError{Field: "id", Reason: "missing"}
	}
	if dto.Width == nil {
		return domain.Photo{}, &domain.DecodeError{Field: "width", Reason: "missing"}
	}
	if dto.Height == nil {
		return domain.Photo{}, &domain.DecodeError{Field: "height", Reason: "missing"}
	}
	if *dto.Width <= 0 || *dto.Height <= 0 {
		return domain.Photo{}, &domain.DecodeError{Field: "width/height", Reason: "must be positive"}
	}
	if dto.URLs == nil {
		return domain.Photo{}, &domain.DecodeError{Field: "urls", Reason: "missing"}
	}

	p := domain.Photo{
		ID:     *dto.ID,
		Width:  *dto.Width,
		Height: *dto.Height,
		Color:  dto.Color,
		URLs: domain.PhotoURLs{
			Raw:     dto.URLs.Raw,
			Full:    dto.URLs.Full,
			Regular: dto.URLs.Regular,
			Small:   dto.URLs.Small,
			Thumb:   dto.URLs.Thumb,
		},
		Links: domain.PhotoLinks{
			Self:             dto.Links.Self,
			HTML:             dto.Links.HTML,
			Download:         dto.Links.Download,
			DownloadLocation: dto.Links.DownloadLocation,
		},
	}
	if !p.URLs.Any() {
		return domain.Photo{}, &domain.DecodeError{Field: "urls", Reason: "no size variant present"}
	}

	// Description
	p.Description = dto.Description
	if p.Description == "" {
		p.Description = dto.AltDescription
	}

	// Attribution
	if dto.User != nil {
		p.User = domain.User{
			Name:       dto.User.Name,
			Username:   dto.User.Username,
			ProfileURL: dto.User.Links.HTML,
		}
	}

	return p, nil
}

func decodeErr(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &domain.DecodeError{
			Field:  typeErr.Field,
			Reason: "expected " + typeErr.Type.String() + ", got " + typeErr.Value,
			Err:    err,
		}
	}
	return &domain.DecodeError{Reason: "malformed JSON", Err: err}
}
