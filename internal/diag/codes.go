package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Collision index
	IdxInfo                 Code = 1000
	IdxDuplicateKey         Code = 1001
	IdxCounterSaturation    Code = 1002
	IdxUnknownAncestor      Code = 1003
	IdxAncestorCycle        Code = 1004
	IdxMissingFunctionScope Code = 1005
	IdxNotFound             Code = 1006

	// Configuration
	CfgInfo            Code = 2000
	CfgInvalidReserved Code = 2001

	// Universe loading
	LoadInfo        Code = 3000
	LoadBadUniverse Code = 3001

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		IdxInfo:                 "Collision index information",
		IdxDuplicateKey:         "Duplicate translation key",
		IdxCounterSaturation:    "Collision counter saturated",
		IdxUnknownAncestor:      "Unknown ancestor type",
		IdxAncestorCycle:        "Ancestor chain forms a cycle",
		IdxMissingFunctionScope: "Parameter without function scope",
		IdxNotFound:             "Symbol has no record",
		CfgInfo:                 "Configuration information",
		CfgInvalidReserved:      "Invalid reserved word",
		LoadInfo:                "Loader information",
		LoadBadUniverse:         "Malformed type universe",
		ObsInfo:                 "Observability information",
		ObsTimings:              "Pipeline timings",
	}
)

func (c Code) ID() string {
	ic := int(c)
	switch {
	case ic == 0:
		return "E0000"
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IDX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("LDR%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
