package models

import (
	"encoding/json"
	"fmt"
	"strings"

	dErrors "daviz/pkg/domain-errors"
)

// AssetType is the closed set of things that can be registered.
// The numeric value is the persisted enum index.
type AssetType uint8

const (
	AssetTypeBusiness AssetType = iota
	AssetTypeRealEstate
	AssetTypeIntellectual
	AssetTypeDigital
	AssetTypeOther
)

var assetTypeNames = [...]string{
	AssetTypeBusiness:     "business",
	AssetTypeRealEstate:   "realEstate",
	AssetTypeIntellectual: "intellectual",
	AssetTypeDigital:      "digital",
	AssetTypeOther:        "other",
}

func (t AssetType) IsValid() bool {
	return int(t) < len(assetTypeNames)
}

func (t AssetType) String() string {
	if !t.IsValid() {
		return fmt.Sprintf("AssetType(%d)", uint8(t))
	}
	return assetTypeNames[t]
}

// ParseAssetType accepts the canonical names case-insensitively.
func ParseAssetType(s string) (AssetType, error) {
	for i, name := range assetTypeNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return AssetType(i), nil
		}
	}
	return 0, invalidAssetType(s)
}

func invalidAssetType(v any) error {
	return dErrors.NewValidation("assetType", dErrors.ReasonInvalidVariant,
		fmt.Sprintf("unknown asset type %v", v))
}

func (t AssetType) MarshalJSON() ([]byte, error) {
	if !t.IsValid() {
		return nil, invalidAssetType(uint8(t))
	}
	return json.Marshal(t.String())
}

func (t *AssetType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return invalidAssetType(string(data))
	}
	parsed, err := ParseAssetType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
