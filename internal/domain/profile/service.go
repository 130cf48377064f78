package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	apperrors "github.com/yanqian/label-insight/pkg/errors"
	"github.com/yanqian/label-insight/pkg/util"
)

// Service manages health profiles.
type Service interface {
	Get(ctx context.Context, userID int64) (HealthProfile, bool, error)
	Save(ctx context.Context, userID int64, req SaveRequest) (HealthProfile, error)
}

type service struct {
	repo   Repository
	now    util.Clock
	logger *slog.Logger
}

// NewService constructs a profile service.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		now:    util.NowUTC,
		logger: logger.With("component", "profile.service"),
	}
}

func (s *service) Get(ctx context.Context, userID int64) (HealthProfile, bool, error) {
	p, found, err := s.repo.Get(ctx, userID)
	if err != nil {
		return HealthProfile{}, false, apperrors.Wrap(CodeProfileError, "failed to load profile", err)
	}
	return p, found, nil
}

func (s *service) Save(ctx context.Context, userID int64, req SaveRequest) (HealthProfile, error) {
	p, err := validate(req)
	if err != nil {
		return HealthProfile{}, apperrors.Wrap(CodeInvalidInput, err.Error(), nil)
	}
	p.UserID = userID
	p.UpdatedAt = s.now()
	saved, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return HealthProfile{}, apperrors.Wrap(CodeProfileError, "failed to save profile", err)
	}
	s.logger.Info("profile saved", "user_id", userID)
	return saved, nil
}

func validate(req SaveRequest) (HealthProfile, error) {
	p := HealthProfile{
		Name:               strings.TrimSpace(req.Name),
		Age:                req.Age,
		Gender:             strings.TrimSpace(req.Gender),
		Height:             req.Height,
		Weight:             req.Weight,
		DietaryPreferences: strings.TrimSpace(req.DietaryPreferences),
		Allergies:          strings.TrimSpace(req.Allergies),
		MedicalConditions:  strings.TrimSpace(req.MedicalConditions),
		LifestyleHabits:    strings.TrimSpace(req.LifestyleHabits),
	}
	switch {
	case p.Name == "":
		return p, fmt.Errorf("name is required")
	case utf8.RuneCountInString(p.Name) > MaxNameLength:
		return p, fmt.Errorf("name cannot exceed %d characters", MaxNameLength)
	case p.Age <= 0:
		return p, fmt.Errorf("age must be a positive whole number")
	case p.Gender != genderMale && p.Gender != genderFemale && p.Gender != genderOther:
		return p, fmt.Errorf("gender must be one of Male, Female, Other")
	case p.Height <= 0:
		return p, fmt.Errorf("height must be positive")
	case p.Weight <= 0:
		return p, fmt.Errorf("weight must be positive")
	case utf8.RuneCountInString(p.DietaryPreferences) > MaxDietaryLength:
		return p, fmt.Errorf("dietary preferences cannot exceed %d characters", MaxDietaryLength)
	}
	for name, v := range map[string]string{
		"allergies":          p.Allergies,
		"medical conditions": p.MedicalConditions,
		"lifestyle habits":   p.LifestyleHabits,
	} {
		if utf8.RuneCountInString(v) > MaxFreeTextLength {
			return p, fmt.Errorf("%s cannot exceed %d characters", name, MaxFreeTextLength)
		}
	}
	return p, nil
}
