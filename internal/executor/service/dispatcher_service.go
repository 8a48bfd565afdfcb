package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"email-datagen/internal/entity"
	"email-datagen/internal/executor/repository"
	"email-datagen/internal/executor/strategy"
	"email-datagen/pkg/logger"

	"golang.org/x/time/rate"
)

// ErrProfileNotFound is returned when a schedule names a sending profile the backend does not know.
var ErrProfileNotFound = errors.New("profile not found")

// DispatcherService sends the emails of one schedule firing.
type DispatcherService interface {
	Dispatch(ctx context.Context, s *entity.Schedule) (*entity.DispatchResult, error)
}

// NewDispatcherService creates a DispatcherService. ratePerMinute <= 0 disables throttling.
func NewDispatcherService(
	profileRepo repository.ProfileRepository,
	log *logger.Logger,
	ratePerMinute int,
	strategies []strategy.EmailDispatchStrategy,
) DispatcherService {
	strategyMap := make(map[entity.EmailType]strategy.EmailDispatchStrategy)
	for _, s := range strategies {
		strategyMap[s.GetType()] = s
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if ratePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), 1)
	}

	return &dispatcherService{
		profileRepo: profileRepo,
		logger:      log,
		limiter:     limiter,
		strategies:  strategyMap,
	}
}

type dispatcherService struct {
	profileRepo repository.ProfileRepository
	logger      *logger.Logger
	limiter     *rate.Limiter
	strategies  map[entity.EmailType]strategy.EmailDispatchStrategy
}

// Dispatch resolves the sending profile, waits for a rate slot and hands the firing to the
// strategy for the schedule's email type.
func (d *dispatcherService) Dispatch(ctx context.Context, s *entity.Schedule) (*entity.DispatchResult, error) {
	st, ok := d.strategies[s.EmailType]
	if !ok {
		return nil, fmt.Errorf("no dispatch strategy found for email type: %s", s.EmailType)
	}

	payload, err := s.DecodedPayload()
	if err != nil {
		return nil, err
	}

	configName, err := d.resolveProfile(ctx, s.ConfigName)
	if err != nil {
		d.logger.Warn("Failed to resolve sending profile",
			logger.StringField("schedule_id", s.ID),
			logger.StringField("config_name", s.ConfigName),
			logger.ErrorField(err))
		return nil, err
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for dispatch slot: %w", err)
	}

	result, err := st.Dispatch(ctx, &strategy.DispatchRequest{
		ScheduleID: s.ID,
		Recipients: []string(s.Recipients),
		Count:      s.EffectiveCount(),
		ConfigName: configName,
		Payload:    payload,
	})
	if err != nil {
		return nil, err
	}
	if result.ConfigName == "" {
		result.ConfigName = configName
	}
	return result, nil
}

// resolveProfile binds the sending profile at fire time. An empty name means whichever
// profile is active on the backend right now.
func (d *dispatcherService) resolveProfile(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		active, err := d.profileRepo.ResolveActiveProfile(ctx)
		if err != nil {
			return "", fmt.Errorf("resolving active profile: %w", err)
		}
		if active == "" {
			return "", ErrProfileNotFound
		}
		return active, nil
	}

	exists, err := d.profileRepo.Exists(ctx, name)
	if err != nil {
		return "", fmt.Errorf("checking profile %q: %w", name, err)
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return name, nil
}
