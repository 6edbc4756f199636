package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "daviz/pkg/domain-errors"
)

type ValidationSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationSuite))
}

func (s *ValidationSuite) requireValidation(err error, field string, reason dErrors.Reason) {
	s.Require().Error(err)
	de, ok := dErrors.As(err)
	s.Require().True(ok, "expected coded error, got %v", err)
	s.Equal(dErrors.CodeValidation, de.Code)
	s.Equal(field, de.Field)
	s.Equal(reason, de.Reason)
}

func (s *ValidationSuite) TestCreateFrameworkLimits() {
	s.Run("accepts values at the ceiling", func() {
		req := CreateFrameworkRequest{
			Name:        strings.Repeat("n", MaxFrameworkNameLen),
			Description: strings.Repeat("d", MaxFrameworkDescriptionLen),
			Criteria:    make([]string, MaxCriteriaCount),
		}
		req.Criteria[0] = strings.Repeat("c", MaxCriterionLen)
		s.NoError(req.Validate())
	})

	s.Run("rejects long name", func() {
		req := CreateFrameworkRequest{Name: strings.Repeat("n", MaxFrameworkNameLen+1)}
		s.requireValidation(req.Validate(), "name", dErrors.ReasonFieldTooLong)
	})

	s.Run("rejects long description", func() {
		req := CreateFrameworkRequest{Description: strings.Repeat("d", MaxFrameworkDescriptionLen+1)}
		s.requireValidation(req.Validate(), "description", dErrors.ReasonFieldTooLong)
	})

	s.Run("rejects too many criteria", func() {
		req := CreateFrameworkRequest{Criteria: make([]string, MaxCriteriaCount+1)}
		s.requireValidation(req.Validate(), "criteria", dErrors.ReasonTooManyCriteria)
	})

	s.Run("rejects long criterion and names its index", func() {
		req := CreateFrameworkRequest{Criteria: []string{"ok", strings.Repeat("c", MaxCriterionLen+1)}}
		s.requireValidation(req.Validate(), "criteria[1]", dErrors.ReasonFieldTooLong)
	})
}

func (s *ValidationSuite) TestAssetProfileLimits() {
	uri := strings.Repeat("u", MaxMetadataURILen+1)

	s.Run("rejects long metadata uri", func() {
		req := CreateAssetProfileRequest{Name: "A", MetadataURI: &uri}
		s.requireValidation(req.Validate(), "metadataUri", dErrors.ReasonFieldTooLong)
	})

	s.Run("rejects unknown asset type", func() {
		unknown := AssetType(9)
		req := CreateAssetProfileRequest{Name: "A", AssetType: &unknown}
		s.requireValidation(req.Validate(), "assetType", dErrors.ReasonInvalidVariant)
	})

	s.Run("rejects omitted asset type", func() {
		var req CreateAssetProfileRequest
		s.Require().NoError(json.Unmarshal([]byte(`{"assetId":1,"name":"A","description":"d"}`), &req))
		s.Nil(req.AssetType)
		s.requireValidation(req.Validate(), "assetType", dErrors.ReasonRequired)
	})

	s.Run("accepts missing metadata uri", func() {
		digital := AssetTypeDigital
		req := CreateAssetProfileRequest{Name: "A", AssetType: &digital}
		s.NoError(req.Validate())
	})
}

func (s *ValidationSuite) TestIssueTrustLimits() {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, score := range []int{0, 100} {
		req := IssueTrustRequest{TrustScore: score}
		s.NoError(req.Validate(now), "score %d", score)
	}
	for _, score := range []int{-1, 101, 256} {
		req := IssueTrustRequest{TrustScore: score}
		s.requireValidation(req.Validate(now), "trustScore", dErrors.ReasonScoreOutOfRange)
	}

	s.Run("rejects long evidence", func() {
		req := IssueTrustRequest{TrustScore: 50, Evidence: strings.Repeat("e", MaxEvidenceLen+1)}
		s.requireValidation(req.Validate(now), "evidence", dErrors.ReasonFieldTooLong)
	})

	s.Run("rejects expiry at or before now", func() {
		past := now.Unix()
		req := IssueTrustRequest{TrustScore: 50, ExpiresAt: &past}
		s.requireValidation(req.Validate(now), "expiresAt", dErrors.ReasonExpiryInPast)
	})

	s.Run("accepts future expiry", func() {
		future := now.Add(time.Hour).Unix()
		req := IssueTrustRequest{TrustScore: 50, ExpiresAt: &future}
		s.NoError(req.Validate(now))
	})
}

func (s *ValidationSuite) TestPatchValidatesOnlyPresentFields() {
	long := strings.Repeat("x", MaxFrameworkDescriptionLen+1)
	name := "ok"

	s.NoError(FrameworkPatch{Name: &name}.Validate())
	s.requireValidation(FrameworkPatch{Description: &long}.Validate(), "description", dErrors.ReasonFieldTooLong)
	s.True(FrameworkPatch{}.IsEmpty())
}

func TestApplyPatchKeepsAbsentFields(t *testing.T) {
	f := &Framework{Name: "A", Description: "B", Criteria: []string{"c1"}, IsActive: true}
	name := "Z"

	f.ApplyPatch(FrameworkPatch{Name: &name})

	assert.Equal(t, "Z", f.Name)
	assert.Equal(t, "B", f.Description)
	assert.Equal(t, []string{"c1"}, f.Criteria)
	assert.True(t, f.IsActive)
}

func TestApplyPatchOverwritesWithEmptyValues(t *testing.T) {
	f := &Framework{Name: "A", Description: "B", Criteria: []string{"c1"}, IsActive: true}
	empty := ""
	none := []string{}
	inactive := false

	f.ApplyPatch(FrameworkPatch{Description: &empty, Criteria: &none, IsActive: &inactive})

	assert.Equal(t, "A", f.Name)
	assert.Empty(t, f.Description)
	assert.Empty(t, f.Criteria)
	assert.False(t, f.IsActive)
}

func TestAssetTypeJSON(t *testing.T) {
	for _, at := range []AssetType{AssetTypeBusiness, AssetTypeRealEstate, AssetTypeIntellectual, AssetTypeDigital, AssetTypeOther} {
		raw, err := json.Marshal(at)
		require.NoError(t, err)

		var back AssetType
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, at, back)
	}

	var at AssetType
	err := json.Unmarshal([]byte(`"spaceship"`), &at)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, dErrors.ReasonInvalidVariant, dErrors.ReasonOf(err))

	parsed, err := ParseAssetType("RealEstate")
	require.NoError(t, err)
	assert.Equal(t, AssetTypeRealEstate, parsed)
}

func TestListingFilter(t *testing.T) {
	now := time.Now()
	lo, hi := uint8(50), uint8(90)
	business := AssetTypeBusiness
	e := &EnrichedTrustRecord{
		TrustRecordAccount: TrustRecordAccount{Account: TrustRecord{TrustScore: 85, IsActive: true}},
		Framework:          &FrameworkAccount{Account: Framework{Name: "KYB", IsActive: true}},
		Asset:              &AssetProfileAccount{Account: AssetProfile{Name: "Tech Startup Inc", AssetType: AssetTypeBusiness, IsActive: true}},
	}

	assert.True(t, e.IsValidListing(now))
	assert.True(t, ListingFilter{MinScore: &lo, MaxScore: &hi, SearchTerm: "startup", AssetType: &business}.Matches(e))
	assert.True(t, ListingFilter{SearchTerm: "kyb"}.Matches(e))
	assert.False(t, ListingFilter{SearchTerm: "bakery"}.Matches(e))

	e.Asset.Account.IsActive = false
	assert.False(t, e.IsValidListing(now))

	e.Asset = nil
	assert.False(t, e.Displayable())
}
