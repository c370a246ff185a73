// Package quadeta describes the HLTEgammaGenericQuadraticEtaFilter module type:
// an e/gamma filter cutting a variable against a threshold that is quadratic in
// energy, with separate coefficients per eta region and energy bin.
package quadeta

import (
	"github.com/invopop/jsonschema"

	"github.com/akave-ai/hltmenu/internal/infrastructure/modules"
	"github.com/akave-ai/hltmenu/internal/pset"
)

// TypeName is the plugin name the framework instantiates.
const TypeName = "HLTEgammaGenericQuadraticEtaFilter"

func init() {
	modules.GlobalRegistry.Register(&Factory{})
}

// Factory describes HLTEgammaGenericQuadraticEtaFilter. Registers as TypeName.
type Factory struct{}

func (f *Factory) Name() string {
	return TypeName
}

func (f *Factory) ConfigSpec() modules.TypeInfo {
	params := []modules.ParamSpec{
		{Name: "absEtaLowEdges", Type: pset.KindVDouble, Required: true, Description: "Lower |eta| edge of each region, strictly increasing from 0"},
		{Name: "candTag", Type: pset.KindInputTag, Required: true, Description: "Candidates accepted by the previous filter"},
		{Name: "doRhoCorrection", Type: pset.KindBool, Required: true, Description: "Subtract rho times the effective area from the variable"},
		{Name: "effectiveAreas", Type: pset.KindVDouble, Required: true, Description: "Effective area per |eta| region"},
		{Name: "energyLowEdges", Type: pset.KindVDouble, Required: true, Description: "Lower edge of each energy bin; thresholds hold one entry per bin"},
		{Name: "etaBoundaryEB12", Type: pset.KindDouble, Required: true, Description: "|eta| boundary between barrel regions EB1 and EB2"},
		{Name: "etaBoundaryEE12", Type: pset.KindDouble, Required: true, Description: "|eta| boundary between endcap regions EE1 and EE2"},
		{Name: "l1EGCand", Type: pset.KindInputTag, Required: true, Description: "Reconstructed e/gamma candidates"},
		{Name: "lessThan", Type: pset.KindBool, Required: true, Description: "Accept candidates whose variable is below the threshold"},
		{Name: "ncandcut", Type: pset.KindInt32, Required: true, Description: "Minimum number of accepted candidates"},
		{Name: "rhoMax", Type: pset.KindDouble, Required: true, Description: "Upper clamp on rho"},
		{Name: "rhoScale", Type: pset.KindDouble, Required: true, Description: "Scale factor applied to rho"},
		{Name: "rhoTag", Type: pset.KindInputTag, Required: true, Description: "Event energy density"},
		{Name: "saveTags", Type: pset.KindBool, Required: true, Description: "Store the accepted candidates in the trigger event"},
	}
	for _, family := range []struct{ prefix, desc string }{
		{"thrOverE2", "Coefficient of the energy-squared term"},
		{"thrOverE", "Coefficient of the linear energy term"},
		{"thrRegular", "Constant threshold"},
	} {
		for _, region := range Regions {
			params = append(params, modules.ParamSpec{
				Name:        family.prefix + region,
				Type:        pset.KindVDouble,
				Required:    true,
				Description: family.desc + " in region " + region + ", one entry per energy bin",
			})
		}
	}
	params = append(params,
		modules.ParamSpec{Name: "useEt", Type: pset.KindBool, Required: true, Description: "Use transverse energy instead of energy"},
		modules.ParamSpec{Name: "varTag", Type: pset.KindInputTag, Required: true, Description: "Value map of the variable being cut on"},
	)
	return modules.TypeInfo{
		Type:        TypeName,
		Kind:        pset.EDFilter,
		Description: "Cuts an e/gamma variable against thrRegular + thrOverE*E + thrOverE2*E^2 per |eta| region and energy bin.",
		Params:      params,
	}
}

func (f *Factory) ValidateParams(m *pset.Module) error {
	p, err := Decode(m)
	if err != nil {
		return err
	}
	return p.Validate()
}

func (f *Factory) JSONSchema() any {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	s := r.Reflect(&Params{})
	s.Title = TypeName
	return s
}
