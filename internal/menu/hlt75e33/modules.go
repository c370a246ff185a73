// Package hlt75e33 holds the built-in module records of the HLT_75e33 menu.
package hlt75e33

import (
	"github.com/akave-ai/hltmenu/internal/pset"
)

// MenuName is the name of the menu these records belong to.
const MenuName = "HLT_75e33"

// HltEle26WP70GsfTrackIsoUnseededFilter cuts on the GSF track isolation of
// unseeded electron candidates with a flat 1.76 threshold in all four eta regions.
func HltEle26WP70GsfTrackIsoUnseededFilter() *pset.Module {
	return pset.NewModule(pset.EDFilter, "HLTEgammaGenericQuadraticEtaFilter", "hltEle26WP70GsfTrackIsoUnseededFilter",
		pset.VDoubleParam("absEtaLowEdges", 0.0, 1.0, 1.479, 2.1),
		pset.TagParam("candTag", "hltEle26WP70GsfTrackIsoFromL1TracksUnseededFilter"),
		pset.BoolParam("doRhoCorrection", false),
		pset.VDoubleParam("effectiveAreas", 0.029, 0.111, 0.114, 0.032),
		pset.VDoubleParam("energyLowEdges", 0.0),
		pset.DoubleParam("etaBoundaryEB12", 1.0),
		pset.DoubleParam("etaBoundaryEE12", 2.1),
		pset.TagParam("l1EGCand", "hltEgammaCandidatesUnseeded"),
		pset.BoolParam("lessThan", true),
		pset.Int32Param("ncandcut", 1),
		pset.DoubleParam("rhoMax", 99999999.0),
		pset.DoubleParam("rhoScale", 1.0),
		pset.TagParam("rhoTag", "hltFixedGridRhoFastjetAllCaloForEGamma"),
		pset.BoolParam("saveTags", true),
		pset.VDoubleParam("thrOverE2EB1", 0.0),
		pset.VDoubleParam("thrOverE2EB2", 0.0),
		pset.VDoubleParam("thrOverE2EE1", 0.0),
		pset.VDoubleParam("thrOverE2EE2", 0.0),
		pset.VDoubleParam("thrOverEEB1", 0.0),
		pset.VDoubleParam("thrOverEEB2", 0.0),
		pset.VDoubleParam("thrOverEEE1", 0.0),
		pset.VDoubleParam("thrOverEEE2", 0.0),
		pset.VDoubleParam("thrRegularEB1", 1.76),
		pset.VDoubleParam("thrRegularEB2", 1.76),
		pset.VDoubleParam("thrRegularEE1", 1.76),
		pset.VDoubleParam("thrRegularEE2", 1.76),
		pset.BoolParam("useEt", true),
		pset.TagParam("varTag", "hltEgammaEleGsfTrackIsoUnseeded"),
	)
}

// All returns every built-in record, keyed by label.
func All() map[string]func() *pset.Module {
	return map[string]func() *pset.Module{
		"hltEle26WP70GsfTrackIsoUnseededFilter": HltEle26WP70GsfTrackIsoUnseededFilter,
	}
}

// External lists the labels produced upstream of the records in this package.
// They are defined by other parts of the menu and are accepted as resolved.
var External = []string{
	"hltEle26WP70GsfTrackIsoFromL1TracksUnseededFilter",
	"hltEgammaCandidatesUnseeded",
	"hltFixedGridRhoFastjetAllCaloForEGamma",
	"hltEgammaEleGsfTrackIsoUnseeded",
}
