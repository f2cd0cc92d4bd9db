package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/rental-portal/internal/models"
)

const carColumns = `id, brand, model, year, category, energy, gearbox, hp, accel, seats,
	price, deposit, km, plate, status, features, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCar(row rowScanner) (models.Car, error) {
	var (
		c        models.Car
		features []byte
	)
	err := row.Scan(&c.ID, &c.Brand, &c.Model, &c.Year, &c.Category, &c.Energy, &c.Gearbox,
		&c.HP, &c.Acceleration, &c.Seats, &c.PricePerDay, &c.Deposit, &c.KmIncluded,
		&c.Plate, &c.Status, &features, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &c.Features); err != nil {
			return c, fmt.Errorf("decode features: %w", err)
		}
	}
	if c.Features == nil {
		c.Features = []string{}
	}
	c.Images = []models.CarImage{}
	return c, nil
}

func featuresJSON(features []string) (string, error) {
	if features == nil {
		features = []string{}
	}
	b, err := json.Marshal(features)
	return string(b), err
}

// CreateCar добавляет автомобиль и возвращает его id.
// Значения по умолчанию подставляет сервис автопарка.
func (s *Storage) CreateCar(ctx context.Context, in models.CarInput) (int, error) {
	const op = "storage.CreateCar"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	features, err := featuresJSON(in.Features)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	var id int
	err = s.DB.QueryRowContext(ctx, `
		INSERT INTO cars (brand, model, year, category, energy, gearbox, hp, accel, seats,
			price, deposit, km, plate, status, features)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15::jsonb)
		RETURNING id`,
		in.Brand, in.Model, in.Year, in.Category, in.Energy, in.Gearbox, in.HP, in.Acceleration,
		in.Seats, in.PricePerDay, in.Deposit, in.KmIncluded, in.Plate, in.Status, features).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListCars возвращает все автомобили с галереями, новые первыми.
func (s *Storage) ListCars(ctx context.Context) ([]models.Car, error) {
	const op = "storage.ListCars"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+carColumns+` FROM cars ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	cars := []models.Car{}
	index := map[int]int{}
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		index[c.ID] = len(cars)
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	images, err := s.listImages(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, img := range images {
		if i, ok := index[img.CarID]; ok {
			cars[i].Images = append(cars[i].Images, img)
		}
	}
	return cars, nil
}

// GetCar возвращает автомобиль с галереей или ErrCarNotFound.
func (s *Storage) GetCar(ctx context.Context, id int) (models.Car, error) {
	const op = "storage.GetCar"
	if err := checkCtx(ctx, op); err != nil {
		return models.Car{}, err
	}
	c, err := scanCar(s.DB.QueryRowContext(ctx, `SELECT `+carColumns+` FROM cars WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Car{}, fmt.Errorf("%s: %w", op, ErrCarNotFound)
		}
		return models.Car{}, fmt.Errorf("%s: %w", op, err)
	}
	images, err := s.listImages(ctx, id)
	if err != nil {
		return models.Car{}, fmt.Errorf("%s: %w", op, err)
	}
	c.Images = append(c.Images, images...)
	return c, nil
}

// listImages возвращает фотографии автомобиля carID или всех автомобилей при carID == 0.
func (s *Storage) listImages(ctx context.Context, carID int) ([]models.CarImage, error) {
	query := `SELECT id, car_id, url, path, position, is_cover FROM car_images`
	var args []any
	if carID != 0 {
		query += ` WHERE car_id = $1`
		args = append(args, carID)
	}
	query += ` ORDER BY car_id, position`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.CarImage
	for rows.Next() {
		var img models.CarImage
		if err := rows.Scan(&img.ID, &img.CarID, &img.URL, &img.Path, &img.Position, &img.IsCover); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// UpdateCar перезаписывает характеристики автомобиля.
func (s *Storage) UpdateCar(ctx context.Context, id int, in models.CarInput) error {
	const op = "storage.UpdateCar"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	features, err := featuresJSON(in.Features)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := s.DB.ExecContext(ctx, `
		UPDATE cars SET brand = $2, model = $3, year = $4, category = $5, energy = $6,
			gearbox = $7, hp = $8, accel = $9, seats = $10, price = $11, deposit = $12,
			km = $13, plate = $14, status = $15, features = $16::jsonb
		WHERE id = $1`,
		id, in.Brand, in.Model, in.Year, in.Category, in.Energy, in.Gearbox, in.HP, in.Acceleration,
		in.Seats, in.PricePerDay, in.Deposit, in.KmIncluded, in.Plate, in.Status, features)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(res, op, ErrCarNotFound)
}

// SetCarStatus меняет статус автомобиля.
func (s *Storage) SetCarStatus(ctx context.Context, id int, status string) error {
	const op = "storage.SetCarStatus"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, `UPDATE cars SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(res, op, ErrCarNotFound)
}

// DeleteCar удаляет автомобиль вместе с галереей и возвращает пути фотографий
// в хранилище, чтобы удалить и сами объекты.
func (s *Storage) DeleteCar(ctx context.Context, id int) ([]string, error) {
	const op = "storage.DeleteCar"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT path FROM car_images WHERE car_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		paths = append(paths, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOneRow(res, op, ErrCarNotFound); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return paths, nil
}

// AddCarImage добавляет фотографию в конец галереи. Первая фотография
// автомобиля становится обложкой.
func (s *Storage) AddCarImage(ctx context.Context, img models.CarImage) (models.CarImage, error) {
	const op = "storage.AddCarImage"
	if err := checkCtx(ctx, op); err != nil {
		return img, err
	}
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO car_images (id, car_id, url, path, position, is_cover)
		SELECT $1::uuid, $2::int, $3::text, $4::text, COALESCE(MAX(position) + 1, 0), COUNT(*) = 0
		FROM car_images WHERE car_id = $2::int
		RETURNING position, is_cover`,
		img.ID, img.CarID, img.URL, img.Path).Scan(&img.Position, &img.IsCover)
	if err != nil {
		return img, fmt.Errorf("%s: %w", op, err)
	}
	return img, nil
}

// SetCarCover делает imageID единственной обложкой автомобиля.
func (s *Storage) SetCarCover(ctx context.Context, carID int, imageID string) error {
	const op = "storage.SetCarCover"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM car_images WHERE car_id = $1 AND id = $2)`, carID, imageID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, ErrImageNotFound)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE car_images SET is_cover = (id = $2) WHERE car_id = $1`, carID, imageID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteCarImage удаляет фотографию из галереи. Если удалена обложка,
// обложкой становится первая оставшаяся фотография.
func (s *Storage) DeleteCarImage(ctx context.Context, carID int, imageID string) (models.CarImage, error) {
	const op = "storage.DeleteCarImage"
	img := models.CarImage{ID: imageID, CarID: carID}
	if err := checkCtx(ctx, op); err != nil {
		return img, err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return img, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		DELETE FROM car_images WHERE car_id = $1 AND id = $2
		RETURNING url, path, position, is_cover`, carID, imageID).
		Scan(&img.URL, &img.Path, &img.Position, &img.IsCover)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return img, fmt.Errorf("%s: %w", op, ErrImageNotFound)
		}
		return img, fmt.Errorf("%s: %w", op, err)
	}
	if img.IsCover {
		_, err = tx.ExecContext(ctx, `
			UPDATE car_images SET is_cover = true
			WHERE id = (SELECT id FROM car_images WHERE car_id = $1 ORDER BY position LIMIT 1)`, carID)
		if err != nil {
			return img, fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return img, fmt.Errorf("%s: %w", op, err)
	}
	return img, nil
}

func expectOneRow(res sql.Result, op string, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	return nil
}
