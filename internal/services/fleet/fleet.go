// Package fleet управляет автопарком: карточками автомобилей, их статусами и
// галереей фотографий в публичном бакете. Каталог кешируется в Redis.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/lib/validation"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	"github.com/magabrotheeeer/rental-portal/internal/session"
	"github.com/magabrotheeeer/rental-portal/internal/storage"
)

// Ключи и время жизни кеша каталога.
const (
	CacheKeyList = "fleet:list"
	CacheTTL     = 5 * time.Minute
)

// Значения по умолчанию для новой карточки.
const (
	DefaultCategory = "Sport"
	DefaultEnergy   = "Essence"
	DefaultGearbox  = "Auto"
)

var (
	ErrForbidden     = errors.New("admin role required")
	ErrInvalid       = errors.New("invalid car data")
	ErrInvalidImage  = errors.New("invalid car image")
	ErrNotFound      = errors.New("car not found")
	ErrImageNotFound = errors.New("car image not found")
	ErrStoreFailed   = errors.New("could not store car image")
)

// Repository хранилище автопарка.
type Repository interface {
	CreateCar(ctx context.Context, in models.CarInput) (int, error)
	ListCars(ctx context.Context) ([]models.Car, error)
	GetCar(ctx context.Context, id int) (models.Car, error)
	UpdateCar(ctx context.Context, id int, in models.CarInput) error
	SetCarStatus(ctx context.Context, id int, status string) error
	DeleteCar(ctx context.Context, id int) ([]string, error)
	AddCarImage(ctx context.Context, img models.CarImage) (models.CarImage, error)
	SetCarCover(ctx context.Context, carID int, imageID string) error
	DeleteCarImage(ctx context.Context, carID int, imageID string) (models.CarImage, error)
}

// ObjectStore публичный бакет фотографий.
type ObjectStore interface {
	Upload(ctx context.Context, token, bucket, path, contentType string, body io.Reader) error
	PublicURL(bucket, path string) string
	Remove(ctx context.Context, token, bucket string, paths ...string) error
}

// Cache кеш JSON-снимков.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Image загружаемая фотография.
type Image struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Service операции с автопарком.
type Service struct {
	repo     Repository
	objects  ObjectStore
	cache    Cache
	log      *slog.Logger
	validate *validator.Validate
	bucket   string
	now      func() time.Time
	newID    func() string

	// Ключи, которые сбрасываются при любом изменении автопарка.
	dependents []string
}

// New создаёт Service. cache может быть nil, тогда каталог читается из базы.
// dependents дополнительные ключи кеша, построенные на данных автопарка.
func New(repo Repository, objects ObjectStore, cache Cache, log *slog.Logger, bucket string, dependents ...string) *Service {
	return &Service{
		repo:       repo,
		objects:    objects,
		cache:      cache,
		log:        log,
		validate:   validation.New(),
		bucket:     bucket,
		now:        time.Now,
		newID:      uuid.NewString,
		dependents: dependents,
	}
}

func requireAdmin(sess *session.Session) error {
	if err := session.Require(sess); err != nil {
		return err
	}
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// Catalog возвращает список автомобилей для витрины.
func (s *Service) Catalog(ctx context.Context) ([]models.Car, error) {
	const op = "services.fleet.Catalog"
	if s.cache != nil {
		var cars []models.Car
		found, err := s.cache.Get(ctx, CacheKeyList, &cars)
		if err != nil {
			s.log.Warn("failed to read fleet cache", slog.String("op", op), sl.Err(err))
		} else if found {
			return cars, nil
		}
	}
	cars, err := s.repo.ListCars(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, CacheKeyList, cars, CacheTTL); err != nil {
			s.log.Warn("failed to write fleet cache", slog.String("op", op), sl.Err(err))
		}
	}
	return cars, nil
}

// List список автомобилей для администратора, всегда из базы.
func (s *Service) List(ctx context.Context, sess *session.Session) ([]models.Car, error) {
	const op = "services.fleet.List"
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	cars, err := s.repo.ListCars(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cars, nil
}

// Get возвращает автомобиль с галереей.
func (s *Service) Get(ctx context.Context, sess *session.Session, id int) (models.Car, error) {
	const op = "services.fleet.Get"
	if err := requireAdmin(sess); err != nil {
		return models.Car{}, err
	}
	car, err := s.repo.GetCar(ctx, id)
	if err != nil {
		return models.Car{}, fmt.Errorf("%s: %w", op, s.mapErr(err))
	}
	return car, nil
}

// ApplyDefaults заполняет незаданные поля карточки.
func (s *Service) ApplyDefaults(in models.CarInput) models.CarInput {
	if in.Year == 0 {
		in.Year = s.now().Year()
	}
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	if in.Energy == "" {
		in.Energy = DefaultEnergy
	}
	if in.Gearbox == "" {
		in.Gearbox = DefaultGearbox
	}
	if in.Status == "" {
		in.Status = models.CarAvailable
	}
	if in.Features == nil {
		in.Features = []string{}
	}
	return in
}

// Create добавляет автомобиль и возвращает его id.
func (s *Service) Create(ctx context.Context, sess *session.Session, in models.CarInput) (int, error) {
	const op = "services.fleet.Create"
	if err := requireAdmin(sess); err != nil {
		return 0, err
	}
	if err := s.validate.Struct(in); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	id, err := s.repo.CreateCar(ctx, s.ApplyDefaults(in))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	s.log.Info("car created", slog.Int("car_id", id), slog.String("brand", in.Brand), slog.String("model", in.Model))
	return id, nil
}

// Update перезаписывает карточку автомобиля.
func (s *Service) Update(ctx context.Context, sess *session.Session, id int, in models.CarInput) error {
	const op = "services.fleet.Update"
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.repo.UpdateCar(ctx, id, s.ApplyDefaults(in)); err != nil {
		return fmt.Errorf("%s: %w", op, s.mapErr(err))
	}
	s.invalidate(ctx)
	return nil
}

// SetStatus меняет статус автомобиля.
func (s *Service) SetStatus(ctx context.Context, sess *session.Session, id int, status string) error {
	const op = "services.fleet.SetStatus"
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.validate.Struct(models.StatusInput{Status: status}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.repo.SetCarStatus(ctx, id, status); err != nil {
		return fmt.Errorf("%s: %w", op, s.mapErr(err))
	}
	s.invalidate(ctx)
	return nil
}

// Delete удаляет автомобиль и его фотографии из бакета.
func (s *Service) Delete(ctx context.Context, sess *session.Session, id int) error {
	const op = "services.fleet.Delete"
	if err := requireAdmin(sess); err != nil {
		return err
	}
	paths, err := s.repo.DeleteCar(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, s.mapErr(err))
	}
	s.invalidate(ctx)
	if len(paths) > 0 {
		if err := s.objects.Remove(ctx, sess.AccessToken, s.bucket, paths...); err != nil {
			s.log.Warn("car deleted but images left in bucket", slog.String("op", op),
				slog.Int("car_id", id), slog.Int("images", len(paths)), sl.Err(err))
		}
	}
	return nil
}

// AddImage загружает фотографию в галерею автомобиля.
func (s *Service) AddImage(ctx context.Context, sess *session.Session, carID int, img Image) (models.CarImage, error) {
	const op = "services.fleet.AddImage"
	if err := requireAdmin(sess); err != nil {
		return models.CarImage{}, err
	}
	mediaType, _, err := mime.ParseMediaType(img.ContentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") || img.Body == nil {
		return models.CarImage{}, fmt.Errorf("%w: content type %q", ErrInvalidImage, img.ContentType)
	}
	if _, err := s.repo.GetCar(ctx, carID); err != nil {
		return models.CarImage{}, fmt.Errorf("%s: %w", op, s.mapErr(err))
	}

	id := s.newID()
	path := fmt.Sprintf("cars/%d/%s.%s", carID, id, imageExt(img.Name, mediaType))
	if err := s.objects.Upload(ctx, sess.AccessToken, s.bucket, path, mediaType, img.Body); err != nil {
		return models.CarImage{}, fmt.Errorf("%s: %w: %w", op, ErrStoreFailed, err)
	}
	saved, err := s.repo.AddCarImage(ctx, models.CarImage{
		ID:    id,
		CarID: carID,
		URL:   s.objects.PublicURL(s.bucket, path),
		Path:  path,
	})
	if err != nil {
		if rmErr := s.objects.Remove(ctx, sess.AccessToken, s.bucket, path); rmErr != nil {
			s.log.Warn("failed to remove unreferenced car image", slog.String("op", op),
				slog.String("path", path), sl.Err(rmErr))
		}
		return models.CarImage{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	return saved, nil
}

// SetCover делает фотографию обложкой.
func (s *Service) SetCover(ctx context.Context, sess *session.Session, carID int, imageID string) error {
	const op = "services.fleet.SetCover"
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.repo.SetCarCover(ctx, carID, imageID); err != nil {
		return fmt.Errorf("%s: %w", op, s.mapErr(err))
	}
	s.invalidate(ctx)
	return nil
}

// RemoveImage удаляет фотографию из галереи и бакета.
func (s *Service) RemoveImage(ctx context.Context, sess *session.Session, carID int, imageID string) error {
	const op = "services.fleet.RemoveImage"
	if err := requireAdmin(sess); err != nil {
		return err
	}
	img, err := s.repo.DeleteCarImage(ctx, carID, imageID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, s.mapErr(err))
	}
	s.invalidate(ctx)
	if err := s.objects.Remove(ctx, sess.AccessToken, s.bucket, img.Path); err != nil {
		s.log.Warn("image unlinked but left in bucket", slog.String("op", op),
			slog.String("path", img.Path), sl.Err(err))
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := append([]string{CacheKeyList}, s.dependents...)
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), keys...); err != nil {
		s.log.Warn("failed to invalidate fleet cache", sl.Err(err))
	}
}

func (s *Service) mapErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrCarNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, storage.ErrImageNotFound):
		return fmt.Errorf("%w: %w", ErrImageNotFound, err)
	default:
		return err
	}
}

func imageExt(name, mediaType string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext := strings.ToLower(name[i+1:])
		if ext != "" && len(ext) <= 5 && strings.IndexFunc(ext, func(r rune) bool {
			return (r < 'a' || r > 'z') && (r < '0' || r > '9')
		}) < 0 {
			return ext
		}
	}
	if mediaType == "image/jpeg" {
		return "jpg"
	}
	return strings.TrimPrefix(mediaType, "image/")
}
