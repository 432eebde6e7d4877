package authz

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/authgate/authgate/internal/db/models"
)

// CheckRequest describes one permission check.
type CheckRequest struct {
	// UserID is the actor being checked. Required.
	UserID uint64 `json:"user_id" validate:"required"`
	// PermissionCode is the permission to check, in module.resource.action
	// format. Required.
	PermissionCode string `json:"permission_code" validate:"required"`
	// TenantID is the tenant scope of the check, recorded for audit.
	TenantID *uint `json:"tenant_id,omitempty"`
	// Resource optionally identifies the concrete resource acted on.
	Resource string `json:"resource,omitempty"`
	// IP is the caller's network address, recorded for audit.
	IP string `json:"ip,omitempty"`
	// UserAgent is the caller's user agent, recorded for audit.
	UserAgent string `json:"user_agent,omitempty"`
	// Endpoint is the API endpoint that triggered the check, recorded for audit.
	Endpoint string `json:"endpoint,omitempty"`
	// Context carries request attributes matched against grant conditions
	// (e.g. {"department": "hr", "region": "west"}).
	Context map[string]string `json:"context,omitempty"`
}

// Checker is the exposed interface of the engine: a single call returning a
// strictly binary decision. CachingChecker and Service both implement it.
type Checker interface {
	CheckPermission(ctx context.Context, req CheckRequest) (Decision, error)
}

// Service is the authorization facade. It composes the hierarchy resolver,
// the grant aggregator, the decision evaluator, and the audit recorder for
// one request. It is safe for concurrent use; the audit mode is the only
// runtime-mutable piece of state.
type Service struct {
	permissions PermissionRepository
	resolver    *HierarchyResolver
	aggregator  *Aggregator
	audit       *Recorder
	validate    *validator.Validate

	auditMode atomic.Value // AuditMode
	now       func() time.Time
}

// Option customizes facade construction.
type Option func(*Service)

// WithAuditMode selects which checks are recorded. Default: all.
func WithAuditMode(mode AuditMode) Option {
	return func(s *Service) {
		if mode == AuditModeDenials {
			s.auditMode.Store(mode)
		}
	}
}

// WithClock overrides the evaluation clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the facade with its repository dependencies injected
// explicitly. There is no package-level service state.
func NewService(repos Repositories, audit *Recorder, opts ...Option) *Service {
	s := &Service{
		permissions: repos.Permissions,
		resolver:    NewHierarchyResolver(repos.Groups),
		aggregator:  NewAggregator(repos.GroupGrants, repos.DirectGrants),
		audit:       audit,
		validate:    validator.New(),
		now:         time.Now,
	}
	s.auditMode.Store(AuditModeAll)

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SetMode switches the audit recording mode at runtime. Invalid modes are
// ignored so a corrupt stored setting cannot disable recording.
func (s *Service) SetMode(mode AuditMode) {
	if mode == AuditModeAll || mode == AuditModeDenials {
		s.auditMode.Store(mode)
	}
}

// CheckPermission decides whether the user may exercise the permission.
//
// Repository failures are returned as ErrLookupFailure, never converted into
// a silent deny: silent-deny-on-error masks operational incidents and
// silent-allow-on-error is a security hole. The caller picks the fail-open or
// fail-closed policy; the middleware in this package fails closed.
//
// Every call produces exactly one audit entry (subject to the audit mode),
// including lookup failures, which are recorded as denied with a distinct
// reason.
func (s *Service) CheckPermission(ctx context.Context, req CheckRequest) (Decision, error) {
	if req.UserID == 0 {
		return Decision{}, ErrNotAuthenticated
	}

	if err := s.validate.Struct(req); err != nil {
		return Decision{}, errors.Wrap(ErrInvalidRequest, err.Error())
	}

	now := s.now()
	checkID := uuid.NewString()

	decision, err := s.resolve(ctx, req, now)
	if err != nil {
		metricLookupFailures.Inc()
		s.record(checkID, req, Decision{Allowed: false, Reason: "lookup failure"})

		return Decision{}, errors.Wrap(ErrLookupFailure, err.Error())
	}

	if decision.Allowed {
		metricDecisions.WithLabelValues("allowed").Inc()
	} else {
		metricDecisions.WithLabelValues("denied").Inc()
	}

	s.record(checkID, req, decision)

	return decision, nil
}

// resolve runs catalog lookup, group resolution, aggregation, and evaluation.
func (s *Service) resolve(ctx context.Context, req CheckRequest, now time.Time) (Decision, error) {
	if _, err := s.permissions.FindByCode(ctx, req.PermissionCode); err != nil {
		if errors.Is(err, ErrNotFound) {
			// A code absent from the catalog cannot have grants: deny rather
			// than error, so a misconfigured caller shows up in the audit
			// trail instead of as an operational incident.
			return Decision{Allowed: false, Reason: "unknown permission"}, nil
		}

		return Decision{}, errors.Wrap(err, "permission catalog lookup")
	}

	// Group resolution and the direct-grant lookup have no data dependency on
	// each other; issue them concurrently.
	var (
		groupSide  []Grant
		directSide []Grant
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		groups, err := s.resolver.ResolveGroups(gctx, req.UserID, now)
		if err != nil {
			return err
		}

		groupSide, err = s.aggregator.CollectGroupGrants(gctx, groups, req.PermissionCode)

		return err
	})

	g.Go(func() error {
		var err error

		directSide, err = s.aggregator.CollectDirectGrants(gctx, req.UserID, req.PermissionCode, now)

		return err
	})

	if err := g.Wait(); err != nil {
		return Decision{}, err
	}

	grants := make([]Grant, 0, len(groupSide)+len(directSide))
	grants = append(grants, groupSide...)
	grants = append(grants, directSide...)

	return Decide(grants, req.Context), nil
}

// record enqueues the audit entry for one check.
func (s *Service) record(checkID string, req CheckRequest, decision Decision) {
	if s.audit == nil {
		return
	}

	if s.auditMode.Load() == AuditModeDenials && decision.Allowed {
		return
	}

	outcome := models.AuditDecisionDenied
	if decision.Allowed {
		outcome = models.AuditDecisionAllowed
	}

	s.audit.Record(models.PermissionAuditLog{
		CheckID:        checkID,
		UserID:         req.UserID,
		TenantID:       req.TenantID,
		PermissionCode: req.PermissionCode,
		Resource:       req.Resource,
		IP:             req.IP,
		UserAgent:      req.UserAgent,
		Endpoint:       req.Endpoint,
		Decision:       outcome,
		Reason:         decision.Reason,
	})
}
