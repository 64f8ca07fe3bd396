package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSetupGroup(t *testing.T) {
	t.Parallel()
	rules := DefaultRules()

	testCases := []struct {
		name string
		want bool
	}{
		{"SETUP-1", true},
		{"setup_2", true},
		{"Setting-A", true},
		{"SET_3", true},
		{"УСТАНОВ-1", true},
		{"установ_2", true},
		{"Уст-3", true},
		{"уст_4", true},
		{"SETUPX", false},
		{"PROGRAM", false},
		{"WORKPIECE-SET-1", false},
		{" SETUP-1", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rules.IsSetupGroup(tc.name))
		})
	}
}

func TestShouldExclude(t *testing.T) {
	t.Parallel()
	rules := DefaultRules()

	testCases := []struct {
		name string
		want bool
	}{
		{"WORKPIECE-SET-1", true},
		{"workpiece", true},
		{"Geometry_1", true},
		{"MCS_MILL", true},
		{"заготовка", true},
		{"ГЕОМЕТРИЯ", true},
		{"SETUP-1", false},
		{"OP-DRILL", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rules.ShouldExclude(tc.name))
		})
	}
}

func TestNewRules_OverlappingAndEmptyPrefixes(t *testing.T) {
	t.Parallel()
	rules := NewRules([]string{"SET", "SETUP-", ""}, nil)

	assert.True(t, rules.IsSetupGroup("setup-1"))
	assert.True(t, rules.IsSetupGroup("SET"))
	assert.False(t, rules.IsSetupGroup("SE"))
	assert.False(t, rules.ShouldExclude("anything"))
	assert.Len(t, rules.SetupPrefixes(), 2)
	assert.Empty(t, rules.ExcludePrefixes())
}

func TestRules_NilAndZeroAreTotal(t *testing.T) {
	t.Parallel()
	var nilRules *Rules
	assert.False(t, nilRules.IsSetupGroup("SETUP-1"))
	assert.False(t, nilRules.ShouldExclude("WORKPIECE"))

	zero := &Rules{}
	assert.False(t, zero.IsSetupGroup("SETUP-1"))
	assert.False(t, zero.ShouldExclude("WORKPIECE"))
}

func TestRules_ArbitraryInputNeverPanics(t *testing.T) {
	t.Parallel()
	rules := DefaultRules()
	inputs := []string{"\x00", "\xff\xfe", "ß", "ǅ", "🛠 SETUP", "SETUP-\n"}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			rules.IsSetupGroup(in)
			rules.ShouldExclude(in)
		})
	}
}
