package seed

import (
	"context"
	"errors"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/app/repositories"
	"github.com/campusvirtual/backend/internal/config"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
	"github.com/campusvirtual/backend/internal/pkg/auth"
	"github.com/campusvirtual/backend/internal/pkg/logger"
)

// defaultSubjects is the standard course catalog seeded on first start.
var defaultSubjects = []struct {
	Name  string
	Level models.SubjectLevel
}{
	{"Evangelización y Crecimiento “A”", models.LevelElemental},
	{"Evangelización y Crecimiento “B”", models.LevelElemental},
	{"Panorama Bíblico “A”", models.LevelElemental},
	{"Panorama Bíblico “B”", models.LevelElemental},
	{"Las Bases Bíblicas de la Evangelización Mundial", models.LevelElemental},
	{"Análisis Hechos de los Apóstoles “A”", models.LevelElemental},
	{"Análisis Hechos de los Apóstoles “B”", models.LevelElemental},
	{"Doctrinas Básicas “A”", models.LevelElemental},
	{"Doctrinas Básicas “B”", models.LevelElemental},

	{"Análisis Pentateuco “A”", models.LevelAvanzado1},
	{"Análisis Pentateuco “B”", models.LevelAvanzado1},
	{"Análisis Epístolas a los Hebreos", models.LevelAvanzado1},
	{"Análisis Epístolas Romanos “A”", models.LevelAvanzado1},
	{"Análisis Epístolas Romanos “B”", models.LevelAvanzado1},
	{"Análisis Epístolas Paulinas “A”", models.LevelAvanzado1},
	{"Análisis Epístolas Paulinas “B”", models.LevelAvanzado1},
	{"Análisis Epístolas Generales “A”", models.LevelAvanzado1},
	{"Análisis Epístolas Generales “B”", models.LevelAvanzado1},

	{"Análisis Apocalipsis “A”", models.LevelAvanzado2},
	{"Análisis Apocalipsis “B”", models.LevelAvanzado2},
	{"Bibliología I", models.LevelAvanzado2},
	{"Bibliología II", models.LevelAvanzado2},
	{"Análisis Libros Históricos “A”", models.LevelAvanzado2},
	{"Análisis Libros Históricos “B”", models.LevelAvanzado2},
	{"Análisis del Movimiento Cristiano Global", models.LevelAvanzado2},
	{"Análisis Libros Poéticos “A”", models.LevelAvanzado2},
	{"Análisis Libros Poéticos “B”", models.LevelAvanzado2},

	{"Homilética “A”", models.LevelAvanzado3},
	{"Homilética “B”", models.LevelAvanzado3},
	{"Teología Pastoral y Liderazgo “A”", models.LevelAvanzado3},
	{"Teología Pastoral y Liderazgo “B”", models.LevelAvanzado3},
	{"Análisis Libros Proféticos “A”", models.LevelAvanzado3},
	{"Análisis Libros Proféticos “B”", models.LevelAvanzado3},
	{"Vida de Cristo “A”", models.LevelAvanzado3},
	{"Vida de Cristo “B”", models.LevelAvanzado3},
	{"Ocultismo y Liberación", models.LevelAvanzado3},
}

// Run seeds the default admin account and the standard course catalog.
// Both are idempotent: existing rows are left alone.
func Run(ctx context.Context, repos *repositories.Repositories, cfg *config.Config) error {
	if err := seedDefaultAdmin(ctx, repos.UserRepository, cfg); err != nil {
		return err
	}
	return seedDefaultSubjects(ctx, repos.SubjectRepository)
}

func seedDefaultAdmin(ctx context.Context, userRepo *repositories.UserRepository, cfg *config.Config) error {
	s := cfg.Seed
	if s.AdminName == "" || s.AdminEmail == "" || s.AdminDNI == "" || s.AdminPassword == "" {
		logger.Warn().Msg("Default admin environment variables incomplete - admin not seeded")
		return nil
	}

	if _, err := userRepo.GetUserByDNI(ctx, s.AdminDNI); err == nil {
		logger.Debug().Msg("Default admin already exists")
		return nil
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}

	hashed, err := auth.HashPassword(s.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:           s.AdminName,
		Email:          s.AdminEmail,
		DNI:            s.AdminDNI,
		Password:       hashed,
		Role:           models.RoleAdmin,
		IsDefaultAdmin: true,
		IsVerified:     true,
	}

	id, err := userRepo.CreateUser(ctx, admin)
	if err != nil {
		return err
	}

	logger.Info().Int64("userID", id).Msg("Default admin created")
	return nil
}

func seedDefaultSubjects(ctx context.Context, subjectRepo *repositories.SubjectRepository) error {
	created := 0
	for _, entry := range defaultSubjects {
		subject := &models.Subject{
			Name:  entry.Name,
			Level: entry.Level,
		}
		if _, err := subjectRepo.CreateSubject(ctx, subject); err != nil {
			if errors.Is(err, apperrors.ErrSubjectAlreadyExists) {
				continue
			}
			return err
		}
		created++
	}

	if created > 0 {
		logger.Info().Int("count", created).Msg("Default subjects created")
	}
	return nil
}
