package usecase

import (
	"time"

	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model/config"
)

type UseCases struct {
	repo     interfaces.Repository
	blob     interfaces.BlobStore
	limiter  interfaces.RateLimiter
	facility *config.FacilityConfig
	clock    func() time.Time

	Complaint    *ComplaintUseCase
	Lifecycle    *LifecycleUseCase
	Attachment   *AttachmentUseCase
	Comment      *CommentUseCase
	Notification *NotificationUseCase
	User         *UserUseCase
	Auth         AuthUseCaseInterface
}

type Option func(*UseCases)

// WithBlobStore sets the store for attachment bytes
func WithBlobStore(store interfaces.BlobStore) Option {
	return func(uc *UseCases) {
		uc.blob = store
	}
}

// WithRateLimiter limits how often a submitter may file complaints
func WithRateLimiter(limiter interfaces.RateLimiter) Option {
	return func(uc *UseCases) {
		uc.limiter = limiter
	}
}

// WithFacilityConfig sets the category catalog and upload policy
func WithFacilityConfig(cfg *config.FacilityConfig) Option {
	return func(uc *UseCases) {
		uc.facility = cfg
	}
}

// WithAuth sets the authentication use case
func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// WithClock replaces the time source used for lifecycle timestamps
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		facility: config.DefaultFacilityConfig(),
		clock:    time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Lifecycle = NewLifecycleUseCase(repo, uc.clock)
	uc.Complaint = NewComplaintUseCase(repo, uc.facility, uc.limiter)
	uc.Attachment = NewAttachmentUseCase(repo, uc.blob, uc.facility.Upload, uc.Lifecycle)
	uc.Comment = NewCommentUseCase(repo)
	uc.Notification = NewNotificationUseCase(repo)
	uc.User = NewUserUseCase(repo)

	return uc
}

// Facility returns the active facility configuration
func (uc *UseCases) Facility() *config.FacilityConfig {
	return uc.facility
}
