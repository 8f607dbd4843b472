package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPreferenceTypedKeys(t *testing.T) {
	p := blankProfile(1)

	require.NoError(t, applyPreference(p, "want_gender_woman", "1"))
	require.NoError(t, applyPreference(p, "want_body_slim", "8"))
	require.NoError(t, applyPreference(p, "want_ethnicity_asian", "5"))
	require.NoError(t, applyPreference(p, "want_hair_color_dark", "10"))
	require.NoError(t, applyPreference(p, "want_hair_length_long", "3"))
	require.NoError(t, applyPreference(p, "want_act_roleplay", "true"))
	require.NoError(t, applyPreference(p, "have_herpes", "1"))
	require.NoError(t, applyPreference(p, "reject_hiv", "1"))
	require.NoError(t, applyPreference(p, "smokes", "1"))
	require.NoError(t, applyPreference(p, "no_poly", "true"))

	assert.True(t, p.WantGenders[GenderWoman])
	assert.Equal(t, 8, p.WantBody[BodySlim])
	assert.Equal(t, 5, p.WantEthnicity[EthnicityAsian])
	assert.Equal(t, 10, p.WantHairColor[HairDark])
	assert.Equal(t, 3, p.WantHairLength[HairLong])
	assert.True(t, p.WantActs[ActRoleplay])
	assert.True(t, p.HaveCondition[ConditionHerpes])
	assert.True(t, p.RejectCondition[ConditionHIV])
	assert.True(t, p.Lifestyle.Smokes)
	assert.True(t, p.RejectLifestyle.Poly)
}

func TestApplyPreferenceRejectsUnknownValues(t *testing.T) {
	p := blankProfile(1)

	assert.Error(t, applyPreference(p, "want_gender_robot", "1"))
	assert.Error(t, applyPreference(p, "want_body_gaseous", "5"))
	assert.Error(t, applyPreference(p, "want_act_unknown", "1"))
	assert.Error(t, applyPreference(p, "have_flu", "1"))
	assert.Error(t, applyPreference(p, "totally_made_up", "1"))

	assert.Empty(t, p.WantGenders)
	assert.Empty(t, p.WantBody)
}

func TestParseStrengthClamps(t *testing.T) {
	assert.Equal(t, 0, parseStrength("nope"))
	assert.Equal(t, 0, parseStrength("-3"))
	assert.Equal(t, 10, parseStrength("99"))
	assert.Equal(t, 7, parseStrength("7"))
}

func TestYearsSince(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 30, yearsSince(now.AddDate(-30, 0, -1)))
	assert.Equal(t, 29, yearsSince(now.AddDate(-30, 0, 1)))
	assert.Zero(t, yearsSince(time.Time{}))
}
