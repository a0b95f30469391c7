package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(keys ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func TestClassify_Tiers(t *testing.T) {
	cases := []struct {
		name     string
		location string
		highOcc  map[string]struct{}
		highMag  map[string]struct{}
		want     RiskTier
	}{
		{"occurrence only", "123 Main St, Alaska", set(keyAlaska), set(), RiskMedium},
		{"magnitude only", "123 Main St, Alaska", set(), set(keyAlaska), RiskMedium},
		{"both", "Main St, Alaska", set(keyAlaska), set(keyAlaska), RiskHigh},
		{"neither", "Main St, Alaska", set(keyTexas), set(keyCalifornia), RiskLow},
		{"empty location", "", set(keyAlaska, ""), set(keyAlaska, ""), RiskLow},
		{"blank key", "Main St, ", set(""), set(""), RiskLow},
		{"nil sets", "Main St, Alaska", nil, nil, RiskLow},
		{"case sensitive", "Main St, alaska", set(keyAlaska), set(keyAlaska), RiskLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.highOcc, tc.highMag, []Asset{{Location: tc.location}})
			require.Len(t, got, 1)
			assert.Equal(t, tc.want, got[0].Risk)
		})
	}
}

func TestClassify_PreservesOrderAndPayload(t *testing.T) {
	assets := []Asset{
		{BuildingName: "West Anchorage High School", Location: "Anchorage, Alaska", FullAddress: "1700 Hillcrest Dr, Anchorage, AK 99517"},
		{BuildingName: "Dallas Tower", Location: "Dallas, Texas", FullAddress: "1 Main St, Dallas, TX"},
		{BuildingName: "Unknown", Location: ""},
		{BuildingName: "LA Office", Location: "Los Angeles, California", FullAddress: "2 Sunset Blvd"},
	}

	got := Classify(set(keyAlaska, keyCalifornia), set(keyAlaska), assets)

	require.Len(t, got, len(assets))
	for i := range assets {
		assert.Equal(t, assets[i], got[i].Asset)
	}
	assert.Equal(t, []RiskTier{RiskHigh, RiskLow, RiskLow, RiskMedium},
		[]RiskTier{got[0].Risk, got[1].Risk, got[2].Risk, got[3].Risk})
}

func TestClassify_Empty(t *testing.T) {
	got := Classify(set(keyAlaska), set(keyAlaska), nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClassify_Idempotent(t *testing.T) {
	assets := []Asset{{Location: "A, Alaska"}, {Location: "B, Texas"}}
	occ, mg := set(keyAlaska), set(keyTexas)

	assert.Equal(t, Classify(occ, mg, assets), Classify(occ, mg, assets))
}

func TestRiskTier_Text(t *testing.T) {
	for _, tier := range RiskTiers {
		text, err := tier.MarshalText()
		require.NoError(t, err)

		var decoded RiskTier
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, tier, decoded)
	}

	_, err := RiskTier(7).MarshalText()
	require.Error(t, err)

	var r RiskTier
	assert.Error(t, r.UnmarshalText([]byte("extreme")))
	assert.Equal(t, "RiskTier(7)", RiskTier(7).String())
}

func TestClassifiedAsset_JSON(t *testing.T) {
	data, err := json.Marshal(ClassifiedAsset{Asset: Asset{BuildingName: "HQ"}, Risk: RiskHigh})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"risk":"high"`)
	assert.Contains(t, string(data), `"building_name":"HQ"`)
}
