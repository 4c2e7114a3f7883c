package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/forkfeed/backend/internal/models"
)

// IngredientService serves the ingredient reference data and its bulk
// import.
type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// List returns ingredients ordered by name, optionally filtered by a
// case-insensitive name prefix.
func (s *IngredientService) List(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	db := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if namePrefix != "" {
		db = db.Where("LOWER(name) LIKE ?", strings.ToLower(namePrefix)+"%")
	}
	var ingredients []models.Ingredient
	err := db.Order("name").Find(&ingredients).Error
	return ingredients, err
}

func (s *IngredientService) Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ingredient %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &ingredient, nil
}

type ingredientImport struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ImportFile bulk-loads ingredients from a .json array or a .csv file
// of name,measurement_unit rows. Rows whose (name, unit) pair already
// exists are skipped. Returns the number of rows created.
func (s *IngredientService) ImportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var rows []ingredientImport
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.NewDecoder(f).Decode(&rows); err != nil {
			return 0, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case ".csv":
		rows, err = readIngredientCSV(f)
		if err != nil {
			return 0, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return 0, Validationf("unsupported import format %q", ext)
	}

	created := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if row.Name == "" || row.MeasurementUnit == "" {
				continue
			}
			var count int64
			if err := tx.Model(&models.Ingredient{}).
				Where("name = ? AND measurement_unit = ?", row.Name, row.MeasurementUnit).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			ing := models.Ingredient{Name: row.Name, MeasurementUnit: row.MeasurementUnit}
			if err := tx.Create(&ing).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	return created, err
}

func readIngredientCSV(r io.Reader) ([]ingredientImport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	var rows []ingredientImport
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, ingredientImport{
			Name:            strings.TrimSpace(record[0]),
			MeasurementUnit: strings.TrimSpace(record[1]),
		})
	}
}
