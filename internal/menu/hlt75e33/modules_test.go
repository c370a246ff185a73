package hlt75e33

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akave-ai/hltmenu/internal/pset"
)

const goldenFile = "hltEle26WP70GsfTrackIsoUnseededFilter_cfi.py"

func TestSerializeMatchesGoldenFile(t *testing.T) {
	want, err := os.ReadFile(filepath.Join("testdata", goldenFile))
	require.NoError(t, err)

	got := HltEle26WP70GsfTrackIsoUnseededFilter().Serialize()
	require.Equal(t, string(want), string(got))
}

func TestParseGoldenFileEqualsRecord(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", goldenFile))
	require.NoError(t, err)

	parsed, err := pset.Parse(data)
	require.NoError(t, err)
	require.True(t, parsed.Equal(HltEle26WP70GsfTrackIsoUnseededFilter()))
}

func TestRecordRoundTrip(t *testing.T) {
	m := HltEle26WP70GsfTrackIsoUnseededFilter()
	back, err := pset.Parse(m.Serialize())
	require.NoError(t, err)
	require.True(t, back.Equal(m))
	require.Equal(t, m.ID(), back.ID())
}

func TestRecordIdentity(t *testing.T) {
	m := HltEle26WP70GsfTrackIsoUnseededFilter()
	assert.Equal(t, pset.EDFilter, m.Kind())
	assert.Equal(t, "HLTEgammaGenericQuadraticEtaFilter", m.Type())
	assert.Equal(t, "hltEle26WP70GsfTrackIsoUnseededFilter", m.Label())
	assert.Equal(t, 28, m.Len())
}

func TestRecordVectorLengths(t *testing.T) {
	m := HltEle26WP70GsfTrackIsoUnseededFilter()
	lengths := map[string]int{
		"absEtaLowEdges": 4,
		"effectiveAreas": 4,
		"energyLowEdges": 1,
	}
	for _, region := range []string{"EB1", "EB2", "EE1", "EE2"} {
		lengths["thrOverE2"+region] = 1
		lengths["thrOverE"+region] = 1
		lengths["thrRegular"+region] = 1
	}
	for name, n := range lengths {
		v, err := m.GetVDouble(name)
		require.NoError(t, err, name)
		assert.Len(t, v, n, name)
	}
}

func TestRecordAbsEtaLowEdgesStrictlyIncreasing(t *testing.T) {
	edges, err := HltEle26WP70GsfTrackIsoUnseededFilter().GetVDouble("absEtaLowEdges")
	require.NoError(t, err)
	require.Equal(t, []float64{0.0, 1.0, 1.479, 2.1}, edges)
	for i := 1; i < len(edges); i++ {
		assert.Less(t, edges[i-1], edges[i])
	}
}

func TestRecordScalars(t *testing.T) {
	m := HltEle26WP70GsfTrackIsoUnseededFilter()

	bools := map[string]bool{"doRhoCorrection": false, "lessThan": true, "saveTags": true, "useEt": true}
	for name, want := range bools {
		got, err := m.GetBool(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	ncand, err := m.GetInt32("ncandcut")
	require.NoError(t, err)
	assert.Equal(t, int32(1), ncand)
	assert.Positive(t, ncand)

	rhoMax, err := m.Get("rhoMax")
	require.NoError(t, err)
	assert.Equal(t, pset.Double(99999999.0), rhoMax)

	thr, err := m.GetVDouble("thrRegularEE2")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.76}, thr)
}

func TestRecordReferences(t *testing.T) {
	m := HltEle26WP70GsfTrackIsoUnseededFilter()
	tag, err := m.GetInputTag("varTag")
	require.NoError(t, err)
	assert.Equal(t, pset.InputTag{Label: "hltEgammaEleGsfTrackIsoUnseeded"}, tag)

	var labels []string
	for _, ref := range m.References() {
		labels = append(labels, ref.Label)
	}
	assert.ElementsMatch(t, External, labels)
}

func TestRecordUnknownParameter(t *testing.T) {
	_, err := HltEle26WP70GsfTrackIsoUnseededFilter().Get("nonexistentField")
	require.ErrorIs(t, err, pset.ErrUnknownParameter)
}
