package quadeta

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/akave-ai/hltmenu/internal/infrastructure/modules"
	"github.com/akave-ai/hltmenu/internal/pset"
)

// Regions are the four detector regions the filter bins candidates into:
// barrel (EB1, EB2) and endcap (EE1, EE2), split at etaBoundaryEB12 and etaBoundaryEE12.
var Regions = []string{"EB1", "EB2", "EE1", "EE2"}

// Params is the typed parameter set of HLTEgammaGenericQuadraticEtaFilter.
type Params struct {
	AbsEtaLowEdges  []float64     `mapstructure:"absEtaLowEdges" json:"absEtaLowEdges" validate:"min=1,eta_edges"`
	CandTag         pset.InputTag `mapstructure:"candTag" json:"candTag" validate:"required"`
	DoRhoCorrection bool          `mapstructure:"doRhoCorrection" json:"doRhoCorrection"`
	EffectiveAreas  []float64     `mapstructure:"effectiveAreas" json:"effectiveAreas"`
	EnergyLowEdges  []float64     `mapstructure:"energyLowEdges" json:"energyLowEdges" validate:"min=1,increasing"`
	EtaBoundaryEB12 float64       `mapstructure:"etaBoundaryEB12" json:"etaBoundaryEB12" validate:"gte=0"`
	EtaBoundaryEE12 float64       `mapstructure:"etaBoundaryEE12" json:"etaBoundaryEE12" validate:"gtefield=EtaBoundaryEB12"`
	L1EGCand        pset.InputTag `mapstructure:"l1EGCand" json:"l1EGCand" validate:"required"`
	LessThan        bool          `mapstructure:"lessThan" json:"lessThan"`
	NCandCut        int32         `mapstructure:"ncandcut" json:"ncandcut" validate:"gt=0"`
	RhoMax          float64       `mapstructure:"rhoMax" json:"rhoMax" validate:"gte=0"`
	RhoScale        float64       `mapstructure:"rhoScale" json:"rhoScale"`
	RhoTag          pset.InputTag `mapstructure:"rhoTag" json:"rhoTag"`
	SaveTags        bool          `mapstructure:"saveTags" json:"saveTags"`
	ThrOverE2EB1    []float64     `mapstructure:"thrOverE2EB1" json:"thrOverE2EB1"`
	ThrOverE2EB2    []float64     `mapstructure:"thrOverE2EB2" json:"thrOverE2EB2"`
	ThrOverE2EE1    []float64     `mapstructure:"thrOverE2EE1" json:"thrOverE2EE1"`
	ThrOverE2EE2    []float64     `mapstructure:"thrOverE2EE2" json:"thrOverE2EE2"`
	ThrOverEEB1     []float64     `mapstructure:"thrOverEEB1" json:"thrOverEEB1"`
	ThrOverEEB2     []float64     `mapstructure:"thrOverEEB2" json:"thrOverEEB2"`
	ThrOverEEE1     []float64     `mapstructure:"thrOverEEE1" json:"thrOverEEE1"`
	ThrOverEEE2     []float64     `mapstructure:"thrOverEEE2" json:"thrOverEEE2"`
	ThrRegularEB1   []float64     `mapstructure:"thrRegularEB1" json:"thrRegularEB1"`
	ThrRegularEB2   []float64     `mapstructure:"thrRegularEB2" json:"thrRegularEB2"`
	ThrRegularEE1   []float64     `mapstructure:"thrRegularEE1" json:"thrRegularEE1"`
	ThrRegularEE2   []float64     `mapstructure:"thrRegularEE2" json:"thrRegularEE2"`
	UseEt           bool          `mapstructure:"useEt" json:"useEt"`
	VarTag          pset.InputTag `mapstructure:"varTag" json:"varTag" validate:"required"`
}

// ThresholdFamilies are the coefficient families of the quadratic cut; each has
// one vector per region, named family+region (thrRegularEB1, ...).
var ThresholdFamilies = []string{"thrRegular", "thrOverE", "thrOverE2"}

type namedThreshold struct {
	name   string
	values []float64
}

// thresholds returns every per-region threshold vector in family, region order.
func (p *Params) thresholds() []namedThreshold {
	byName := map[string][]float64{
		"thrOverE2EB1": p.ThrOverE2EB1, "thrOverE2EB2": p.ThrOverE2EB2,
		"thrOverE2EE1": p.ThrOverE2EE1, "thrOverE2EE2": p.ThrOverE2EE2,
		"thrOverEEB1": p.ThrOverEEB1, "thrOverEEB2": p.ThrOverEEB2,
		"thrOverEEE1": p.ThrOverEEE1, "thrOverEEE2": p.ThrOverEEE2,
		"thrRegularEB1": p.ThrRegularEB1, "thrRegularEB2": p.ThrRegularEB2,
		"thrRegularEE1": p.ThrRegularEE1, "thrRegularEE2": p.ThrRegularEE2,
	}
	out := make([]namedThreshold, 0, len(byName))
	for _, family := range ThresholdFamilies {
		for _, region := range Regions {
			name := family + region
			out = append(out, namedThreshold{name: name, values: byName[name]})
		}
	}
	return out
}

// Decode reads the parameters of m into a Params value.
func Decode(m *pset.Module) (*Params, error) {
	var p Params
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &p,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m.AsMap()); err != nil {
		return nil, fmt.Errorf("%w: %v", modules.ErrSchemaMismatch, err)
	}
	return &p, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		return name
	})
	// references are validated by their label
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if tag, ok := field.Interface().(pset.InputTag); ok {
			return tag.Label
		}
		return nil
	}, pset.InputTag{})
	_ = v.RegisterValidation("increasing", func(fl validator.FieldLevel) bool {
		edges, ok := fl.Field().Interface().([]float64)
		return ok && strictlyIncreasing(edges)
	})
	_ = v.RegisterValidation("eta_edges", func(fl validator.FieldLevel) bool {
		edges, ok := fl.Field().Interface().([]float64)
		return ok && len(edges) > 0 && edges[0] == 0 && strictlyIncreasing(edges)
	})
	v.RegisterStructValidation(validateBinning, Params{})
	return v
}

func strictlyIncreasing(s []float64) bool {
	for i := 1; i < len(s); i++ {
		if !(s[i] > s[i-1]) {
			return false
		}
	}
	return true
}

// validateBinning checks the arity rules between the binning vectors:
// one effective area per eta region, one threshold per energy bin.
func validateBinning(sl validator.StructLevel) {
	p := sl.Current().Interface().(Params)
	if len(p.EffectiveAreas) != len(p.AbsEtaLowEdges) {
		sl.ReportError(p.EffectiveAreas, "effectiveAreas", "EffectiveAreas", "len_eta_bins", fmt.Sprint(len(p.AbsEtaLowEdges)))
	}
	bins := len(p.EnergyLowEdges)
	for _, thr := range p.thresholds() {
		if len(thr.values) != bins {
			sl.ReportError(thr.values, thr.name, thr.name, "len_energy_bins", fmt.Sprint(bins))
		}
	}
	if p.DoRhoCorrection && p.RhoTag.IsEmpty() {
		sl.ReportError(p.RhoTag, "rhoTag", "RhoTag", "required_with_rho_correction", "")
	}
}

// Validate checks the semantic constraints of p.
func (p *Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", modules.ErrInvalidParameters, strings.Join(msgs, "; "))
}
