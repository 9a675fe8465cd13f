package calc

// SystemType is the circuit topology.
type SystemType string

const (
	SinglePhase SystemType = "monofasico" // single phase, 2 wires
	SplitPhase  SystemType = "bifasico"   // single phase 3 wires or two phase
	ThreePhase  SystemType = "trifasico"  // three phase, 3 wires
)

// Label returns the name used in reports.
func (s SystemType) Label() string {
	switch s {
	case SinglePhase:
		return "Monofásico a 2 Hilos"
	case SplitPhase:
		return "Monofásico a 3 Hilos/Bifásico"
	case ThreePhase:
		return "Trifásico a 3 Hilos"
	}
	return string(s)
}

func (s SystemType) Valid() bool {
	switch s {
	case SinglePhase, SplitPhase, ThreePhase:
		return true
	}
	return false
}

// Method selects how the conductor gauge is resolved.
type Method string

const (
	ByCurrent     Method = "current"
	ByVoltageDrop Method = "drop"
)

func (m Method) Valid() bool {
	return m == ByCurrent || m == ByVoltageDrop
}

// LoadType refines the three-phase current formula.
type LoadType string

const (
	GeneralLoad   LoadType = "general"
	ResistiveLoad LoadType = "resistiva"
	InductiveLoad LoadType = "inductiva"
)

func (l LoadType) Valid() bool {
	switch l {
	case GeneralLoad, ResistiveLoad, InductiveLoad:
		return true
	}
	return false
}

// Insulation is the conductor insulation type.
type Insulation string

const (
	TW           Insulation = "TW"
	THW          Insulation = "THW"
	VinanelNylon Insulation = "Vinanel-Nylon"
	Vinanel900   Insulation = "Vinanel 900"
)

func (i Insulation) Valid() bool {
	switch i {
	case TW, THW, VinanelNylon, Vinanel900:
		return true
	}
	return false
}

// Environment is where the conductors are installed.
type Environment string

const (
	Indoor  Environment = "interior"
	Outdoor Environment = "intemperie"
)

func (e Environment) Label() string {
	switch e {
	case Indoor:
		return "Interior"
	case Outdoor:
		return "Intemperie"
	}
	return string(e)
}

func (e Environment) Valid() bool {
	return e == Indoor || e == Outdoor
}

// ConductorKind distinguishes solid wires from stranded cables.
type ConductorKind string

const (
	Wires  ConductorKind = "alambres"
	Cables ConductorKind = "cables"
)

func (k ConductorKind) Valid() bool {
	return k == Wires || k == Cables
}

// ConduitType is the wall thickness and fill percentage used to size the conduit.
type ConduitType string

const (
	ThinWall40   ConduitType = "pared_delgada_40"
	ThinWall100  ConduitType = "pared_delgada_100"
	ThickWall40  ConduitType = "pared_gruesa_40"
	ThickWall100 ConduitType = "pared_gruesa_100"
)

func (c ConduitType) Label() string {
	switch c {
	case ThinWall40:
		return "pared delgada 40"
	case ThinWall100:
		return "pared delgada 100"
	case ThickWall40:
		return "pared gruesa 40"
	case ThickWall100:
		return "pared gruesa 100"
	}
	return string(c)
}

func (c ConduitType) Valid() bool {
	switch c {
	case ThinWall40, ThinWall100, ThickWall40, ThickWall100:
		return true
	}
	return false
}

// LightingSystem classifies luminaires by how their flux is distributed.
type LightingSystem string

const (
	Direct       LightingSystem = "Directo"
	SemiDirect   LightingSystem = "Semidirecto"
	Mixed        LightingSystem = "Mixto"
	Indirect     LightingSystem = "Indirecto"
	SemiIndirect LightingSystem = "Semi-indirecto"
)

// IsIndirect reports whether the luminaires hang from the ceiling with
// their flux going upward, which changes the calculation height and the
// room index formula.
func (s LightingSystem) IsIndirect() bool {
	return s == Indirect || s == SemiIndirect
}

func (s LightingSystem) Valid() bool {
	switch s {
	case Direct, SemiDirect, Mixed, Indirect, SemiIndirect:
		return true
	}
	return false
}
