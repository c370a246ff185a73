package pset

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleModule() *Module {
	return NewModule(EDProducer, "SampleProducer", "hltSample",
		BoolParam("flag", true),
		Int32Param("count", -3),
		UInt32Param("mask", 7),
		Int64Param("big", 1<<40),
		UInt64Param("ubig", 1<<63),
		DoubleParam("tiny", 1e-5),
		DoubleParam("huge", 1e17),
		DoubleParam("negative", -2.5),
		StringParam("mode", "a \"quoted\" value"),
		VDoubleParam("edges", 0.0, 0.5, 1.5),
		VDoubleParam("empty"),
		VInt32Param("bins", 1, -2, 3),
		VStringParam("names", "x", "y"),
		TagParam("src", "hltProducer", "instance"),
		TagParam("full", "hltProducer", "instance", "HLT"),
		VTagParam("srcs", Tag("a"), Tag("b", "c")),
		Untracked(BoolParam("verbose", false)),
	)
}

func TestNewModuleKeepsOrderAndReplacesDuplicates(t *testing.T) {
	m := NewModule(EDFilter, "T", "m",
		DoubleParam("b", 1),
		DoubleParam("a", 2),
		DoubleParam("b", 3),
	)
	require.Equal(t, []string{"b", "a"}, m.Names())
	v, err := m.GetDouble("b")
	require.NoError(t, err)
	require.Equal(t, 3.0, v)
}

func TestModuleIsImmutable(t *testing.T) {
	edges := []float64{0, 1}
	m := NewModule(EDFilter, "T", "m", VDoubleParam("edges", edges...))
	edges[0] = 42

	got, err := m.GetVDouble("edges")
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1}, got)

	got[1] = 99
	again, err := m.GetVDouble("edges")
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1}, again)
}

func TestGetErrors(t *testing.T) {
	m := sampleModule()

	_, err := m.Get("missing")
	require.ErrorIs(t, err, ErrUnknownParameter)

	_, err = m.GetDouble("flag")
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = m.GetInputTag("missing")
	require.ErrorIs(t, err, ErrUnknownParameter)

	assert.Equal(t, 4.5, m.DoubleOrDefault("flag", 4.5))
	assert.True(t, m.BoolOrDefault("missing", true))
	assert.True(t, m.IsTracked("flag"))
	assert.False(t, m.IsTracked("verbose"))
	assert.False(t, m.IsTracked("missing"))
}

func TestSerializeParseRoundTrip(t *testing.T) {
	m := sampleModule()
	back, err := Parse(m.Serialize())
	require.NoError(t, err)
	if !back.Equal(m) {
		t.Fatalf("round trip mismatch:\n%s", cmp.Diff(string(m.Serialize()), string(back.Serialize())))
	}
	require.Equal(t, m.Serialize(), back.Serialize())
}

func TestSerializeLayout(t *testing.T) {
	m := NewModule(EDFilter, "HLTBool", "hltBool",
		BoolParam("result", true),
		Untracked(VDoubleParam("edges", 0, 2.1)),
		TagParam("src", "a", "b"),
	)
	want := `import FWCore.ParameterSet.Config as cms

hltBool = cms.EDFilter("HLTBool",
    result = cms.bool(True),
    edges = cms.untracked.vdouble(0.0, 2.1),
    src = cms.InputTag("a","b")
)
`
	require.Equal(t, want, string(m.Serialize()))

	empty := NewModule(EDProducer, "Empty", "hltEmpty")
	require.Equal(t, "import FWCore.ParameterSet.Config as cms\n\nhltEmpty = cms.EDProducer(\"Empty\")\n", string(empty.Serialize()))
}

func TestFormatDouble(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{1.479, "1.479"},
		{0.029, "0.029"},
		{99999999.0, "99999999.0"},
		{-2.5, "-2.5"},
		{1e-5, "1e-05"},
		{1.5e-7, "1.5e-07"},
		{1e16, "1e+16"},
		{1e100, "1e+100"},
		{0.0001, "0.0001"},
		{math.Inf(1), "float('inf')"},
		{math.Inf(-1), "float('-inf')"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDouble(tt.in), "%v", tt.in)
	}
}

func TestParseAcceptsVariants(t *testing.T) {
	src := `
# generated
import FWCore.ParameterSet.Config as cms

hltX = cms.EDFilter('HLTX',
    a = cms.double(3),
    b = cms.InputTag("lbl:inst:PROC"),
    c = cms.VInputTag("x", cms.InputTag("y","z")),
    d = cms.vdouble(),
    e = cms.double(float('inf')),
    f = cms.untracked.string('s'),
)
`
	m, err := Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "HLTX", m.Type())

	a, err := m.GetDouble("a")
	require.NoError(t, err)
	assert.Equal(t, 3.0, a)

	b, err := m.GetInputTag("b")
	require.NoError(t, err)
	assert.Equal(t, InputTag{Label: "lbl", Instance: "inst", Process: "PROC"}, b)
	assert.Equal(t, "lbl:inst:PROC", b.String())

	c, err := m.GetVInputTag("c")
	require.NoError(t, err)
	assert.Equal(t, []InputTag{{Label: "x"}, {Label: "y", Instance: "z"}}, c)

	d, err := m.GetVDouble("d")
	require.NoError(t, err)
	assert.Empty(t, d)

	e, err := m.GetDouble("e")
	require.NoError(t, err)
	assert.True(t, math.IsInf(e, 1))

	assert.False(t, m.IsTracked("f"))
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"empty":           ``,
		"missing paren":   `x = cms.EDFilter("T", a = cms.bool(True)`,
		"bad bool":        `x = cms.EDFilter("T", a = cms.bool(yes))`,
		"bad type":        `x = cms.EDFilter("T", a = cms.complex(1))`,
		"int overflow":    `x = cms.EDFilter("T", a = cms.int32(4294967296))`,
		"negative uint":   `x = cms.EDFilter("T", a = cms.uint32(-1))`,
		"unterminated":    `x = cms.EDFilter("T, a = cms.bool(True))`,
		"trailing tokens": `x = cms.EDFilter("T") y`,
		"bad character":   `x = cms.EDFilter("T", a = cms.bool(True)) ;`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			require.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	m := sampleModule()
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back Module
	require.NoError(t, json.Unmarshal(data, &back))
	require.True(t, back.Equal(m), cmp.Diff(string(m.Serialize()), string(back.Serialize())))
}

func TestYAMLRoundTrip(t *testing.T) {
	m := sampleModule()
	data, err := yaml.Marshal(m)
	require.NoError(t, err)

	var back Module
	require.NoError(t, yaml.Unmarshal(data, &back))
	require.True(t, back.Equal(m), cmp.Diff(string(m.Serialize()), string(back.Serialize())))
}

func TestValueFromAny(t *testing.T) {
	v, err := ValueFromAny(KindVDouble, []any{0, "1.5", 2.25})
	require.NoError(t, err)
	assert.Equal(t, VDouble{0, 1.5, 2.25}, v)

	v, err = ValueFromAny(KindInputTag, map[string]any{"label": "a", "instance": "b"})
	require.NoError(t, err)
	assert.Equal(t, InputTag{Label: "a", Instance: "b"}, v)

	v, err = ValueFromAny(KindBool, "true")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)

	_, err = ValueFromAny(KindInt32, "not a number")
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = ValueFromAny(KindVDouble, 3.0)
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = ValueFromAny(KindInputTag, map[string]any{"instance": "b"})
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestIDDependsOnContent(t *testing.T) {
	a := NewModule(EDFilter, "T", "m", DoubleParam("x", 1))
	b := NewModule(EDFilter, "T", "m", DoubleParam("x", 1))
	c := NewModule(EDFilter, "T", "m", DoubleParam("x", 2))
	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
	assert.Len(t, a.ID(), 32)
}

func TestStringEscapesRoundTrip(t *testing.T) {
	tests := map[string]string{
		"bell":          "a\ab",
		"nul":           "nul\x00x",
		"zero width":    "zw\u200bsp",
		"invalid utf-8": "bad\xffutf",
		"quotes":        `both ' and " quotes`,
		"backslash":     `C:\path\n`,
		"controls":      "\b\f\v\t\r\n",
		"astral":        "\U0001F600",
	}
	for name, s := range tests {
		t.Run(name, func(t *testing.T) {
			m := NewModule(EDProducer, "T", "m",
				StringParam("s", s),
				VStringParam("vs", s, "plain"),
				TagParam("tag", "lbl", s, "PROC"),
			)
			back, err := Parse(m.Serialize())
			require.NoError(t, err)
			got, err := back.GetString("s")
			require.NoError(t, err)
			assert.Equal(t, s, got)
			assert.True(t, back.Equal(m), cmp.Diff(string(m.Serialize()), string(back.Serialize())))
		})
	}
}

func TestParseStringEscapes(t *testing.T) {
	src := `x = cms.EDFilter("T",
    a = cms.string('it\'s'),
    b = cms.string("say \"hi\""),
    c = cms.string('\x41\u00e9\t'),
    d = cms.string('"double" in single'),
)`
	m, err := Parse([]byte(src))
	require.NoError(t, err)
	for name, want := range map[string]string{
		"a": "it's",
		"b": `say "hi"`,
		"c": "A\u00e9\t",
		"d": `"double" in single`,
	} {
		got, err := m.GetString(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	_, err = Parse([]byte(`x = cms.EDFilter("T", a = cms.string("\q"))`))
	require.ErrorIs(t, err, ErrSyntax)
}

func TestParseIntegerLiterals(t *testing.T) {
	tests := []struct {
		literal string
		want    int32
	}{
		{"0", 0},
		{"10", 10},
		{"-10", -10},
		{"+7", 7},
		{"0x10", 16},
		{"-0x10", -16},
		{"0XfF", 255},
	}
	for _, tt := range tests {
		m, err := Parse([]byte(`x = cms.EDFilter("T", a = cms.int32(` + tt.literal + `))`))
		require.NoError(t, err, tt.literal)
		got, err := m.GetInt32("a")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.literal)
	}

	for _, bad := range []string{"010", "-007", "0x", "1.5", "--1"} {
		_, err := Parse([]byte(`x = cms.EDFilter("T", a = cms.int32(` + bad + `))`))
		require.ErrorIs(t, err, ErrSyntax, bad)
	}

	m, err := Parse([]byte(`x = cms.EDFilter("T", a = cms.uint64(18446744073709551615))`))
	require.NoError(t, err)
	u, err := m.GetUInt64("a")
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), u)
}

func TestNonFiniteDoubles(t *testing.T) {
	m := NewModule(EDProducer, "T", "m",
		DoubleParam("nan", math.NaN()),
		DoubleParam("inf", math.Inf(1)),
		VDoubleParam("mixed", 1.5, math.Inf(-1), math.NaN()),
	)
	assert.True(t, m.Equal(m))

	back, err := Parse(m.Serialize())
	require.NoError(t, err)
	assert.True(t, back.Equal(m))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"inf"`)
	var fromJSON Module
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.True(t, fromJSON.Equal(m))

	out, err := yaml.Marshal(m)
	require.NoError(t, err)
	var fromYAML Module
	require.NoError(t, yaml.Unmarshal(out, &fromYAML))
	assert.True(t, fromYAML.Equal(m))

	assert.False(t, NewModule(EDProducer, "T", "m", DoubleParam("x", math.NaN())).
		Equal(NewModule(EDProducer, "T", "m", DoubleParam("x", 0))))
}

func TestValueFromAnyRejectsLossyIntegers(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		in   any
	}{
		{"int32 overflow", KindInt32, 3e9},
		{"int32 fraction", KindInt32, 1.5},
		{"int32 from wide int", KindInt32, int64(4294967297)},
		{"uint32 negative", KindUInt32, -1.0},
		{"uint32 overflow", KindUInt32, json.Number("4294967296")},
		{"int64 overflow", KindInt64, uint64(math.MaxUint64)},
		{"uint64 negative", KindUInt64, json.Number("-1")},
		{"uint64 nan", KindUInt64, math.NaN()},
		{"vint32 element", KindVInt32, []any{1.0, 2.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValueFromAny(tt.kind, tt.in)
			require.ErrorIs(t, err, ErrTypeMismatch)
		})
	}

	v, err := ValueFromAny(KindInt32, 3.0)
	require.NoError(t, err)
	assert.Equal(t, Int32(3), v)
	v, err = ValueFromAny(KindUInt64, json.Number("18446744073709551615"))
	require.NoError(t, err)
	assert.Equal(t, UInt64(math.MaxUint64), v)
	v, err = ValueFromAny(KindInt64, json.Number("-9223372036854775808"))
	require.NoError(t, err)
	assert.Equal(t, Int64(math.MinInt64), v)
	v, err = ValueFromAny(KindVInt32, []any{json.Number("1"), 2, "3"})
	require.NoError(t, err)
	assert.Equal(t, VInt32{1, 2, 3}, v)
}

func TestJSONKeepsWideIntegers(t *testing.T) {
	doc := `{"kind":"EDProducer","type":"T","label":"m","params":[
		{"name":"u","type":"uint64","value":18446744073709551615},
		{"name":"n","type":"int32","value":4294967297}
	]}`
	var m Module
	err := json.Unmarshal([]byte(doc), &m)
	require.ErrorIs(t, err, ErrTypeMismatch)

	doc = `{"kind":"EDProducer","type":"T","label":"m","params":[
		{"name":"u","type":"uint64","value":18446744073709551615}
	]}`
	require.NoError(t, json.Unmarshal([]byte(doc), &m))
	u, err := m.GetUInt64("u")
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), u)
}
