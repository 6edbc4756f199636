// Package query implements the read side of the registry: point lookups,
// filtered bulk scans and the trust record enrichment join.
//
// Reads are not atomic across collections. A record written between two scans
// may appear in one and be missing from the other, so joins surface unresolved
// references as nil fields instead of failing.
package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"daviz/internal/registry/codec"
	"daviz/internal/registry/metrics"
	"daviz/internal/registry/models"
	"daviz/internal/registry/store"
	"daviz/pkg/address"
	"daviz/pkg/cidutil"
	dErrors "daviz/pkg/domain-errors"
	"daviz/pkg/platform/sentinel"
	"daviz/pkg/requestcontext"
)

// AccountReader is the read half of the account store.
type AccountReader interface {
	Get(ctx context.Context, addr address.Address) ([]byte, error)
	Scan(ctx context.Context, disc codec.Discriminator, filters ...codec.Memcmp) ([]store.RawAccount, error)
}

type Service struct {
	accounts AccountReader
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(accounts AccountReader, opts ...Option) *Service {
	s := &Service{accounts: accounts, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// -----------------------------------------------------------------------------
// Point lookups
// -----------------------------------------------------------------------------

// GetFramework returns the framework at addr. A deactivated framework is a
// successful fetch with IsActive false; only an empty address is NotFound.
func (s *Service) GetFramework(ctx context.Context, addr address.Address) (*models.FrameworkAccount, error) {
	fw, err := get(ctx, s, addr, codec.DecodeFramework, dErrors.ReasonFrameworkNotFound, "framework not found")
	if err != nil {
		return nil, err
	}
	return &models.FrameworkAccount{Address: addr, Account: *fw}, nil
}

func (s *Service) GetAssetProfile(ctx context.Context, addr address.Address) (*models.AssetProfileAccount, error) {
	a, err := get(ctx, s, addr, codec.DecodeAssetProfile, dErrors.ReasonAssetNotFound, "asset not found")
	if err != nil {
		return nil, err
	}
	return &models.AssetProfileAccount{Address: addr, Account: *a}, nil
}

func (s *Service) GetTrustRecord(ctx context.Context, addr address.Address) (*models.TrustRecordAccount, error) {
	tr, err := get(ctx, s, addr, codec.DecodeTrustRecord, "", "trust record not found")
	if err != nil {
		return nil, err
	}
	return &models.TrustRecordAccount{Address: addr, Account: *tr}, nil
}

func get[T any](ctx context.Context, s *Service, addr address.Address, decode func([]byte) (*T, error), reason dErrors.Reason, msg string) (*T, error) {
	raw, err := s.accounts.Get(ctx, addr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.WithReason(dErrors.CodeNotFound, reason, msg)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	v, err := decode(raw)
	if err != nil {
		if errors.Is(err, codec.ErrDiscriminatorMismatch) {
			return nil, dErrors.WithReason(dErrors.CodeNotFound, reason, msg)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode account")
	}
	return v, nil
}

// -----------------------------------------------------------------------------
// Filtered scans
// -----------------------------------------------------------------------------

// ListFrameworks returns all frameworks, or those of one authority.
func (s *Service) ListFrameworks(ctx context.Context, authority *address.Address) ([]models.FrameworkAccount, error) {
	var filters []codec.Memcmp
	if authority != nil {
		filters = append(filters, codec.AddressFilter(codec.FrameworkAuthorityOffset, *authority))
	}
	return scan(ctx, s, "framework", codec.FrameworkDiscriminator, codec.DecodeFramework, filters...)
}

// ListAssetProfiles returns all asset profiles, or those of one owner.
func (s *Service) ListAssetProfiles(ctx context.Context, owner *address.Address) ([]models.AssetProfileAccount, error) {
	var filters []codec.Memcmp
	if owner != nil {
		filters = append(filters, codec.AddressFilter(codec.AssetProfileOwnerOffset, *owner))
	}
	return scan(ctx, s, "asset_profile", codec.AssetProfileDiscriminator, codec.DecodeAssetProfile, filters...)
}

// ListTrustRecords returns trust records matching every non-nil filter field.
func (s *Service) ListTrustRecords(ctx context.Context, f models.TrustRecordFilter) ([]models.TrustRecordAccount, error) {
	var filters []codec.Memcmp
	if f.Framework != nil {
		filters = append(filters, codec.AddressFilter(codec.TrustRecordFrameworkOffset, *f.Framework))
	}
	if f.Issuer != nil {
		filters = append(filters, codec.AddressFilter(codec.TrustRecordIssuerOffset, *f.Issuer))
	}
	if f.Asset != nil {
		filters = append(filters, codec.AddressFilter(codec.TrustRecordAssetOffset, *f.Asset))
	}
	return scan(ctx, s, "trust_record", codec.TrustRecordDiscriminator, codec.DecodeTrustRecord, filters...)
}

// scan decodes every matching account. Accounts that fail to decode are
// logged and skipped so one bad account does not hide the rest.
func scan[T any](ctx context.Context, s *Service, record string, disc codec.Discriminator, decode func([]byte) (*T, error), filters ...codec.Memcmp) ([]models.Account[T], error) {
	start := time.Now()
	raws, err := s.accounts.Scan(ctx, disc, filters...)
	if s.metrics != nil {
		s.metrics.ObserveScan(record, start)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to scan accounts")
	}
	out := make([]models.Account[T], 0, len(raws))
	for _, raw := range raws {
		v, err := decode(raw.Data)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping undecodable account",
				"record", record,
				"address", raw.Address.String(),
				"error", err,
			)
			continue
		}
		out = append(out, models.Account[T]{Address: raw.Address, Account: *v})
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Enrichment join
// -----------------------------------------------------------------------------

// TrustRecordsWithDetails fetches the three collections in parallel and
// attaches each record's framework and asset. Unresolved references are left
// nil, logged at debug level and counted; they are never errors.
func (s *Service) TrustRecordsWithDetails(ctx context.Context) ([]models.EnrichedTrustRecord, error) {
	var (
		records    []models.TrustRecordAccount
		frameworks []models.FrameworkAccount
		assets     []models.AssetProfileAccount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.ListTrustRecords(gctx, models.TrustRecordFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		frameworks, err = s.ListFrameworks(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		assets, err = s.ListAssetProfiles(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	frameworkMap := make(map[string]*models.FrameworkAccount, len(frameworks))
	for i := range frameworks {
		frameworkMap[frameworks[i].Address.String()] = &frameworks[i]
	}
	assetMap := make(map[string]*models.AssetProfileAccount, len(assets))
	for i := range assets {
		assetMap[assets[i].Address.String()] = &assets[i]
	}

	out := make([]models.EnrichedTrustRecord, 0, len(records))
	for _, r := range records {
		e := models.EnrichedTrustRecord{
			TrustRecordAccount: r,
			Framework:          frameworkMap[r.Account.Framework.String()],
			Asset:              assetMap[r.Account.TargetAsset.String()],
			EvidenceDigest:     cidutil.EvidenceCID(r.Account.Evidence),
		}
		if e.Framework == nil {
			s.joinGap(ctx, "framework", r.Address, r.Account.Framework)
		}
		if e.Asset == nil {
			s.joinGap(ctx, "asset", r.Address, r.Account.TargetAsset)
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Service) joinGap(ctx context.Context, target string, record, ref address.Address) {
	s.logger.DebugContext(ctx, "trust record reference unresolved",
		"target", target,
		"trust_record", record.String(),
		"reference", ref.String(),
	)
	if s.metrics != nil {
		s.metrics.IncrementJoinGap(target)
	}
}

// -----------------------------------------------------------------------------
// Searches
// -----------------------------------------------------------------------------

// SearchByTrustScore returns enriched active records whose score lies in
// [min, max]. Nil bounds are open.
func (s *Service) SearchByTrustScore(ctx context.Context, minScore, maxScore *uint8) ([]models.EnrichedTrustRecord, error) {
	all, err := s.TrustRecordsWithDetails(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.EnrichedTrustRecord, 0, len(all))
	for _, e := range all {
		score := e.Account.TrustScore
		if minScore != nil && score < *minScore {
			continue
		}
		if maxScore != nil && score > *maxScore {
			continue
		}
		if !e.Account.IsActive {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// SearchAssetsByFramework returns the active records issued under framework
// together with their assets, dropping records whose asset is missing or
// inactive.
func (s *Service) SearchAssetsByFramework(ctx context.Context, framework address.Address) ([]models.AssetWithTrust, error) {
	records, err := s.ListTrustRecords(ctx, models.TrustRecordFilter{Framework: &framework})
	if err != nil {
		return nil, err
	}

	assets := make([]*models.AssetProfileAccount, len(records))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range records {
		g.Go(func() error {
			a, err := s.GetAssetProfile(gctx, r.Account.TargetAsset)
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				s.joinGap(gctx, "asset", r.Address, r.Account.TargetAsset)
				return nil
			}
			if err != nil {
				return err
			}
			assets[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.AssetWithTrust, 0, len(records))
	for i, r := range records {
		a := assets[i]
		if a == nil || !r.Account.IsActive || !a.Account.IsActive {
			continue
		}
		out = append(out, models.AssetWithTrust{TrustRecord: r, Asset: *a})
	}
	return out, nil
}

// ValidListings applies the marketplace filter (record, framework and asset
// present and active, record unexpired) and then f.
func (s *Service) ValidListings(ctx context.Context, f models.ListingFilter) ([]models.EnrichedTrustRecord, error) {
	all, err := s.TrustRecordsWithDetails(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	out := make([]models.EnrichedTrustRecord, 0, len(all))
	for i := range all {
		e := &all[i]
		if e.IsValidListing(now) && f.Matches(e) {
			out = append(out, *e)
		}
	}
	return out, nil
}
