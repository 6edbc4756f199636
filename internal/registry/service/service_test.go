package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"daviz/internal/audit"
	"daviz/internal/registry/codec"
	"daviz/internal/registry/metrics"
	"daviz/internal/registry/models"
	"daviz/internal/registry/store"
	"daviz/pkg/address"
	dErrors "daviz/pkg/domain-errors"
	"daviz/pkg/platform/sentinel"
	"daviz/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	accounts *store.InMemory
	sink     *audit.MemorySink
	metrics  *metrics.Metrics
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.accounts = store.NewInMemory()
	s.sink = audit.NewMemorySink()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.accounts, address.NewDeriver(address.DefaultProgramID),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(audit.NewPublisher(s.sink)),
		WithMetrics(s.metrics),
	)
}

func (s *ServiceSuite) signer() address.Address {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)
	a, err := address.FromPublicKey(pub)
	s.Require().NoError(err)
	return a
}

func (s *ServiceSuite) requireCode(err error, code dErrors.Code, reason dErrors.Reason) {
	s.Require().Error(err)
	de, ok := dErrors.As(err)
	s.Require().True(ok, "expected coded error, got %v", err)
	s.Equal(code, de.Code)
	if reason != "" {
		s.Equal(reason, de.Reason)
	}
}

func (s *ServiceSuite) createFramework(authority address.Address, id uint64) address.Address {
	addr, err := s.service.CreateFramework(s.ctx, authority, &models.CreateFrameworkRequest{
		FrameworkID: id,
		Name:        "F",
		Description: "framework",
		Criteria:    []string{"c1", "c2", "c3"},
	})
	s.Require().NoError(err)
	return addr
}

func (s *ServiceSuite) createAsset(owner address.Address, id uint64) address.Address {
	business := models.AssetTypeBusiness
	addr, err := s.service.CreateAssetProfile(s.ctx, owner, &models.CreateAssetProfileRequest{
		AssetID:   id,
		Name:      "A",
		AssetType: &business,
	})
	s.Require().NoError(err)
	return addr
}

func (s *ServiceSuite) getFramework(addr address.Address) *models.Framework {
	raw, err := s.accounts.Get(s.ctx, addr)
	s.Require().NoError(err)
	fw, err := codec.DecodeFramework(raw)
	s.Require().NoError(err)
	return fw
}

func (s *ServiceSuite) getTrustRecord(addr address.Address) *models.TrustRecord {
	raw, err := s.accounts.Get(s.ctx, addr)
	s.Require().NoError(err)
	tr, err := codec.DecodeTrustRecord(raw)
	s.Require().NoError(err)
	return tr
}

func (s *ServiceSuite) TestCreateFramework() {
	s.Run("writes an active framework at the derived address", func() {
		authority := s.signer()
		addr := s.createFramework(authority, 1)

		derived, err := address.NewDeriver(address.DefaultProgramID).Framework(authority, 1)
		s.Require().NoError(err)
		s.Equal(derived.Address, addr)

		fw := s.getFramework(addr)
		s.Equal(authority, fw.Authority)
		s.True(fw.IsActive)
		s.Equal(s.now.Unix(), fw.CreatedAt)
		s.Equal(derived.Bump, fw.Bump)
	})

	s.Run("second create with same id collides and leaves state unchanged", func() {
		authority := s.signer()
		addr := s.createFramework(authority, 7)
		before, err := s.accounts.Get(s.ctx, addr)
		s.Require().NoError(err)

		_, err = s.service.CreateFramework(s.ctx, authority, &models.CreateFrameworkRequest{
			FrameworkID: 7,
			Name:        "other",
		})
		s.requireCode(err, dErrors.CodeAddressInUse, dErrors.ReasonAddressInUse)

		after, err := s.accounts.Get(s.ctx, addr)
		s.Require().NoError(err)
		s.Equal(before, after)
	})

	s.Run("different authorities may reuse an id", func() {
		a := s.createFramework(s.signer(), 42)
		b := s.createFramework(s.signer(), 42)
		s.NotEqual(a, b)
	})

	s.Run("validation failure writes nothing", func() {
		authority := s.signer()
		addr, err := s.service.CreateFramework(s.ctx, authority, &models.CreateFrameworkRequest{
			FrameworkID: 1,
			Criteria:    make([]string, models.MaxCriteriaCount+1),
		})
		s.requireCode(err, dErrors.CodeValidation, dErrors.ReasonTooManyCriteria)
		_, err = s.accounts.Get(s.ctx, addr)
		s.Error(err)
	})

	s.Run("requires a signer", func() {
		_, err := s.service.CreateFramework(s.ctx, address.Zero, &models.CreateFrameworkRequest{Name: "F"})
		s.requireCode(err, dErrors.CodeUnauthenticated, "")
	})
}

func (s *ServiceSuite) TestUpdateFramework() {
	authority := s.signer()
	newFramework := func(id uint64) address.Address {
		addr, err := s.service.CreateFramework(s.ctx, authority, &models.CreateFrameworkRequest{
			FrameworkID: id,
			Name:        "A",
			Description: "B",
			Criteria:    []string{"c1"},
		})
		s.Require().NoError(err)
		return addr
	}

	s.Run("changes only present fields", func() {
		addr := newFramework(1)
		name := "Z"
		s.Require().NoError(s.service.UpdateFramework(s.ctx, authority, addr, models.FrameworkPatch{Name: &name}))

		fw := s.getFramework(addr)
		s.Equal("Z", fw.Name)
		s.Equal("B", fw.Description)
		s.Equal([]string{"c1"}, fw.Criteria)
		s.True(fw.IsActive)
	})

	s.Run("deactivation is reversible by the authority", func() {
		addr := newFramework(2)
		off, on := false, true
		s.Require().NoError(s.service.UpdateFramework(s.ctx, authority, addr, models.FrameworkPatch{IsActive: &off}))
		s.False(s.getFramework(addr).IsActive)
		s.Require().NoError(s.service.UpdateFramework(s.ctx, authority, addr, models.FrameworkPatch{IsActive: &on}))
		s.True(s.getFramework(addr).IsActive)
	})

	s.Run("rejects other signers and leaves fields unchanged", func() {
		addr := newFramework(3)
		before, err := s.accounts.Get(s.ctx, addr)
		s.Require().NoError(err)
		name, inactive := "hijacked", false

		err = s.service.UpdateFramework(s.ctx, s.signer(), addr, models.FrameworkPatch{Name: &name, IsActive: &inactive})
		s.requireCode(err, dErrors.CodeUnauthorized, dErrors.ReasonUnauthorized)

		after, err := s.accounts.Get(s.ctx, addr)
		s.Require().NoError(err)
		s.Equal(before, after)
	})

	s.Run("unknown address is not found", func() {
		name := "x"
		err := s.service.UpdateFramework(s.ctx, authority, s.signer(), models.FrameworkPatch{Name: &name})
		s.requireCode(err, dErrors.CodeNotFound, dErrors.ReasonFrameworkNotFound)
	})

	s.Run("address holding another record type is not found", func() {
		asset := s.createAsset(authority, 99)
		name := "x"
		err := s.service.UpdateFramework(s.ctx, authority, asset, models.FrameworkPatch{Name: &name})
		s.requireCode(err, dErrors.CodeNotFound, dErrors.ReasonFrameworkNotFound)
	})

	s.Run("validates only changed fields", func() {
		addr := newFramework(4)
		long := string(make([]byte, models.MaxFrameworkNameLen+1))
		err := s.service.UpdateFramework(s.ctx, authority, addr, models.FrameworkPatch{Name: &long})
		s.requireCode(err, dErrors.CodeValidation, dErrors.ReasonFieldTooLong)
		s.Equal("A", s.getFramework(addr).Name)
	})
}

func (s *ServiceSuite) TestCreateAssetProfile() {
	owner := s.signer()
	addr := s.createAsset(owner, 1)

	digital, unknown := models.AssetTypeDigital, models.AssetType(9)
	_, err := s.service.CreateAssetProfile(s.ctx, owner, &models.CreateAssetProfileRequest{AssetID: 1, Name: "again", AssetType: &digital})
	s.requireCode(err, dErrors.CodeAddressInUse, dErrors.ReasonAddressInUse)

	_, err = s.service.CreateAssetProfile(s.ctx, owner, &models.CreateAssetProfileRequest{AssetID: 2, AssetType: &unknown})
	s.requireCode(err, dErrors.CodeValidation, dErrors.ReasonInvalidVariant)

	_, err = s.service.CreateAssetProfile(s.ctx, owner, &models.CreateAssetProfileRequest{AssetID: 3, Name: "untyped"})
	s.requireCode(err, dErrors.CodeValidation, dErrors.ReasonRequired)

	raw, err := s.accounts.Get(s.ctx, addr)
	s.Require().NoError(err)
	profile, err := codec.DecodeAssetProfile(raw)
	s.Require().NoError(err)
	s.Equal(owner, profile.Owner)
	s.True(profile.IsActive)
}

func (s *ServiceSuite) TestIssueTrust() {
	framework := s.createFramework(s.signer(), 1)
	asset := s.createAsset(s.signer(), 1)

	s.Run("score boundaries", func() {
		for _, score := range []int{0, 100} {
			_, err := s.service.IssueTrust(s.ctx, s.signer(), &models.IssueTrustRequest{
				Framework: framework, Asset: asset, TrustScore: score,
			})
			s.NoError(err, "score %d", score)
		}
		for _, score := range []int{-1, 101} {
			_, err := s.service.IssueTrust(s.ctx, s.signer(), &models.IssueTrustRequest{
				Framework: framework, Asset: asset, TrustScore: score,
			})
			s.requireCode(err, dErrors.CodeValidation, dErrors.ReasonScoreOutOfRange)
		}
	})

	s.Run("re-issuing under the same triple collides", func() {
		issuer := s.signer()
		req := &models.IssueTrustRequest{Framework: framework, Asset: asset, TrustScore: 50}
		_, err := s.service.IssueTrust(s.ctx, issuer, req)
		s.Require().NoError(err)

		req.TrustScore = 90
		addr, err := s.service.IssueTrust(s.ctx, issuer, req)
		s.requireCode(err, dErrors.CodeAddressInUse, dErrors.ReasonAddressInUse)
		s.Equal(uint8(50), s.getTrustRecord(addr).TrustScore)
	})

	s.Run("distinct issuers coexist", func() {
		a, err := s.service.IssueTrust(s.ctx, s.signer(), &models.IssueTrustRequest{Framework: framework, Asset: asset, TrustScore: 10})
		s.Require().NoError(err)
		b, err := s.service.IssueTrust(s.ctx, s.signer(), &models.IssueTrustRequest{Framework: framework, Asset: asset, TrustScore: 20})
		s.Require().NoError(err)

		s.NotEqual(a, b)
		s.Equal(uint8(10), s.getTrustRecord(a).TrustScore)
		s.Equal(uint8(20), s.getTrustRecord(b).TrustScore)
	})

	s.Run("missing references", func() {
		_, err := s.service.IssueTrust(s.ctx, s.signer(), &models.IssueTrustRequest{Framework: s.signer(), Asset: asset, TrustScore: 1})
		s.requireCode(err, dErrors.CodeNotFound, dErrors.ReasonFrameworkNotFound)

		_, err = s.service.IssueTrust(s.ctx, s.signer(), &models.IssueTrustRequest{Framework: framework, Asset: s.signer(), TrustScore: 1})
		s.requireCode(err, dErrors.CodeNotFound, dErrors.ReasonAssetNotFound)

		// an asset address passed as framework is still "framework not found"
		_, err = s.service.IssueTrust(s.ctx, s.signer(), &models.IssueTrustRequest{Framework: asset, Asset: asset, TrustScore: 1})
		s.requireCode(err, dErrors.CodeNotFound, dErrors.ReasonFrameworkNotFound)
	})

	s.Run("inactive framework is rejected", func() {
		authority := s.signer()
		fw := s.createFramework(authority, 5)
		off := false
		s.Require().NoError(s.service.UpdateFramework(s.ctx, authority, fw, models.FrameworkPatch{IsActive: &off}))

		_, err := s.service.IssueTrust(s.ctx, s.signer(), &models.IssueTrustRequest{Framework: fw, Asset: asset, TrustScore: 1})
		s.requireCode(err, dErrors.CodeInvalidState, dErrors.ReasonFrameworkInactive)
	})

	s.Run("inactive asset is rejected", func() {
		owner := s.signer()
		derived, err := address.NewDeriver(address.DefaultProgramID).AssetProfile(owner, 9)
		s.Require().NoError(err)
		raw, err := codec.EncodeAssetProfile(&models.AssetProfile{
			Owner: owner, AssetID: 9, Name: "Closed Bakery", IsActive: false, Bump: derived.Bump,
		})
		s.Require().NoError(err)
		s.Require().NoError(s.accounts.Create(s.ctx, derived.Address, raw))

		issuer := s.signer()
		addr, err := s.service.IssueTrust(s.ctx, issuer, &models.IssueTrustRequest{Framework: framework, Asset: derived.Address, TrustScore: 1})
		s.requireCode(err, dErrors.CodeInvalidState, dErrors.ReasonAssetInactive)

		trust, err := address.NewDeriver(address.DefaultProgramID).TrustRecord(framework, issuer, derived.Address)
		s.Require().NoError(err)
		s.Equal(trust.Address, addr)
		_, err = s.accounts.Get(s.ctx, trust.Address)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("expiry must lie in the future", func() {
		past := s.now.Add(-time.Hour).Unix()
		_, err := s.service.IssueTrust(s.ctx, s.signer(), &models.IssueTrustRequest{
			Framework: framework, Asset: asset, TrustScore: 1, ExpiresAt: &past,
		})
		s.requireCode(err, dErrors.CodeValidation, dErrors.ReasonExpiryInPast)
	})
}

// TestEndToEnd walks authority X, owner Y and issuer Z through the full flow.
func (s *ServiceSuite) TestEndToEnd() {
	x, y, z := s.signer(), s.signer(), s.signer()

	fAddr := s.createFramework(x, 1)
	aAddr := s.createAsset(y, 1)
	tAddr, err := s.service.IssueTrust(s.ctx, z, &models.IssueTrustRequest{
		Framework:  fAddr,
		Asset:      aAddr,
		TrustScore: 85,
		Evidence:   "Verified business registration",
	})
	s.Require().NoError(err)

	tr := s.getTrustRecord(tAddr)
	s.Equal(fAddr, tr.Framework)
	s.Equal(z, tr.Issuer)
	s.Equal(aAddr, tr.TargetAsset)
	s.Equal(uint8(85), tr.TrustScore)
	s.True(tr.IsActive)
	s.Nil(tr.ExpiresAt)
	s.Equal(s.now.Unix(), tr.IssuedAt)

	actions := s.sink.Actions()
	s.Equal([]audit.Action{
		audit.ActionFrameworkCreated,
		audit.ActionAssetProfileCreated,
		audit.ActionTrustIssued,
	}, actions)
	events := s.sink.Events()
	s.NotEmpty(events[2].EvidenceCID)
	s.True(events[2].Timestamp.Equal(tr.IssuedTime()), "audit time is the ledger issue time")
	s.True(events[0].Timestamp.Equal(s.getFramework(fAddr).CreatedTime()))

	raw, err := s.accounts.Get(s.ctx, aAddr)
	s.Require().NoError(err)
	profile, err := codec.DecodeAssetProfile(raw)
	s.Require().NoError(err)
	s.True(events[1].Timestamp.Equal(profile.CreatedTime()))
}

func (s *ServiceSuite) TestRejectionsAreAuditedAndCounted() {
	authority := s.signer()
	s.createFramework(authority, 1)
	_, err := s.service.CreateFramework(s.ctx, authority, &models.CreateFrameworkRequest{FrameworkID: 1})
	s.Require().Error(err)

	events := s.sink.Events()
	last := events[len(events)-1]
	s.Equal(audit.ActionInstructionRejected, last.Action)
	s.Equal(audit.CategorySecurity, last.Category)
	s.Contains(last.Reason, string(dErrors.ReasonAddressInUse))

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Instructions.WithLabelValues("CreateFramework", "ok")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Instructions.WithLabelValues("CreateFramework", string(dErrors.CodeAddressInUse))))
}

type failingStore struct {
	*store.InMemory
}

func (f failingStore) Create(context.Context, address.Address, []byte) error {
	return errors.New("disk on fire")
}

func (s *ServiceSuite) TestInfrastructureFailuresAreInternal() {
	svc := New(failingStore{store.NewInMemory()}, address.NewDeriver(address.DefaultProgramID),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	_, err := svc.CreateFramework(s.ctx, s.signer(), &models.CreateFrameworkRequest{Name: "F"})
	s.requireCode(err, dErrors.CodeInternal, "")
}
