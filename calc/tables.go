package calc

// Reference tables for conductor sizing. They are built once at package
// initialization and never modified; lookups only read them, so they are
// safe to share between goroutines.
//
// Gauge labels are normalized across tables: sizes above 4/0 carry the
// " MCM" suffix everywhere so a gauge resolved from one table can be found
// in the others.

// AmpacityRow is one row of Table No. 2: allowed current in amperes by
// insulation type and installation environment.
type AmpacityRow struct {
	Gauge          string
	TW             float64
	THW            float64
	Vinanel        float64 // Vinanel-Nylon and Vinanel 900, indoors
	THWOutdoor     float64
	VinanelOutdoor float64 // Vinanel-Nylon / Nylon 9000 exposed to weather
}

// ConduitRow is one row of Table No. 4: usable cross-section in mm² by
// wall thickness and fill percentage. A cell with ok == false does not
// exist for that nominal size.
type ConduitRow struct {
	Inches      string
	Millimeters int
	fill        [4]cell
}

type cell struct {
	v  float64
	ok bool
}

func mm2(v float64) cell { return cell{v: v, ok: true} }

var na = cell{}

// Capacity returns the usable area for the conduit type, and false when
// the table has no value for it.
func (r ConduitRow) Capacity(t ConduitType) (float64, bool) {
	i, ok := conduitColumn(t)
	if !ok {
		return 0, false
	}
	c := r.fill[i]
	return c.v, c.ok
}

func conduitColumn(t ConduitType) (int, bool) {
	switch t {
	case ThinWall40:
		return 0, true
	case ThinWall100:
		return 1, true
	case ThickWall40:
		return 2, true
	case ThickWall100:
		return 3, true
	}
	return 0, false
}

// AreaRow is one row of Tables No. 6 and No. 7: copper area, total area of
// one insulated conductor, and total area of groups of 2 to 6 conductors.
type AreaRow struct {
	Gauge      string
	CopperArea float64
	TotalArea  float64
	Grouped    [5]float64 // index 0 holds 2 conductors, index 4 holds 6
}

// GroupArea returns the total area for count conductors of this gauge.
func (r AreaRow) GroupArea(count int) (float64, bool) {
	if count <= 1 {
		return r.TotalArea, true
	}
	if count > len(r.Grouped)+1 {
		return 0, false
	}
	return r.Grouped[count-2], true
}

// AreaTable holds the wire and cable categories of an area table.
type AreaTable struct {
	Name   string
	Wires  []AreaRow
	Cables []AreaRow
}

// Rows returns the category for kind. Unknown kinds fall back to wires.
func (t AreaTable) Rows(kind ConductorKind) []AreaRow {
	if kind == Cables {
		return t.Cables
	}
	return t.Wires
}

// BreakerSet lists the thermomagnetic breaker ratings for one pole count.
type BreakerSet struct {
	Poles   int
	Label   string
	Ratings []int // ascending
}

var ampacityTable = []AmpacityRow{
	{"14", 15, 25, 25, 20, 30},
	{"12", 20, 30, 30, 25, 40},
	{"10", 30, 40, 40, 40, 55},
	{"8", 40, 50, 50, 55, 70},
	{"6", 55, 70, 70, 70, 95},
	{"4", 70, 90, 90, 85, 135},
	{"2", 95, 120, 120, 115, 180},
	{"0", 125, 155, 155, 195, 245},
	{"00", 145, 185, 185, 225, 285},
	{"000", 165, 210, 210, 260, 330},
	{"0000", 195, 235, 235, 300, 385},
	{"250 MCM", 215, 270, 270, 340, 425},
	{"300 MCM", 240, 300, 300, 375, 480},
	{"350 MCM", 260, 325, 325, 420, 530},
	{"400 MCM", 280, 360, 360, 455, 575},
	{"500 MCM", 320, 405, 405, 515, 660},
}

var conduitTable = []ConduitRow{
	{"1/2", 13, [4]cell{mm2(78), mm2(196), mm2(96), mm2(240)}},
	{"3/4", 19, [4]cell{mm2(142), mm2(356), mm2(158), mm2(392)}},
	{"1", 25, [4]cell{mm2(220), mm2(551), mm2(250), mm2(624)}},
	{"1 1/4", 32, [4]cell{mm2(390), mm2(980), mm2(422), mm2(1056)}},
	{"1 1/2", 38, [4]cell{mm2(532), mm2(1330), mm2(570), mm2(1424)}},
	{"2", 51, [4]cell{mm2(874), mm2(2185), mm2(926), mm2(2316)}},
	{"2 1/2", 64, [4]cell{na, na, mm2(1376), mm2(3440)}},
	{"3", 76, [4]cell{na, na, mm2(2116), mm2(5290)}},
	{"4", 102, [4]cell{mm2(3575), mm2(8938), mm2(3575), mm2(8938)}},
	{"2 1/2 x 2 1/2", 65, [4]cell{mm2(1638), mm2(4096), mm2(1638), mm2(4096)}},
	{"4 x 4", 100, [4]cell{mm2(4000), mm2(10000), mm2(4000), mm2(10000)}},
	{"6 x 6", 150, [4]cell{mm2(9000), mm2(22500), mm2(9000), mm2(22500)}},
}

// table7 applies to Vinanel-Nylon insulation.
var table7 = AreaTable{
	Name: "Tabla No. 7",
	Wires: []AreaRow{
		{"14", 2.08, 5.9, [5]float64{11.8, 17.7, 23.6, 29.5, 35.4}},
		{"12", 3.3, 7.89, [5]float64{15.78, 26.67, 31.56, 39.45, 47.34}},
		{"10", 5.27, 12.32, [5]float64{24.64, 36.96, 49.28, 61.6, 73.92}},
		{"8", 8.35, 21.16, [5]float64{42.32, 63.48, 84.64, 105.8, 126.96}},
	},
	Cables: []AreaRow{
		{"14", 2.66, 6.88, [5]float64{13.76, 20.64, 27.52, 34.4, 41.28}},
		{"12", 4.23, 9.29, [5]float64{18.58, 27.87, 37.16, 46.45, 55.74}},
		{"10", 6.69, 13.96, [5]float64{29.32, 43.98, 58.64, 73.3, 87.96}},
		{"8", 10.81, 24.98, [5]float64{49.96, 74.94, 99.92, 124.9, 149.88}},
		{"6", 12, 34.21, [5]float64{68.42, 102.63, 136.84, 171.05, 205.26}},
		{"4", 21.24, 55.15, [5]float64{110.3, 165.45, 220.6, 275.75, 330.9}},
		{"2", 43.24, 77.13, [5]float64{154.26, 231.39, 308.52, 385.65, 462.78}},
		{"0", 70.43, 123.5, [5]float64{247, 370.5, 494, 617.5, 741}},
		{"00", 88.91, 147.62, [5]float64{295.24, 442.86, 590.48, 738.1, 885.72}},
		{"000", 111.97, 176.74, [5]float64{353.48, 530.13, 706.84, 883.55, 1060.26}},
		{"0000", 141.23, 211.24, [5]float64{422.48, 633.72, 844.96, 1056.2, 1267.44}},
		{"250 MCM", 167.65, 261.36, [5]float64{522.72, 783.9, 1045.2, 1306.5, 1567.8}},
		{"300 MCM", 201.06, 302.64, [5]float64{605.28, 907.92, 1210.56, 1513.2, 1815.84}},
		{"400 MCM", 268.51, 384.29, [5]float64{768.58, 1152.87, 1537.16, 1921.45, 2305.74}},
		{"500 MCM", 334.91, 463, [5]float64{926, 1389, 1852, 2315, 2778}},
	},
}

// table6 applies to every insulation other than Vinanel-Nylon.
var table6 = AreaTable{
	Name: "Tabla No. 6",
	Wires: []AreaRow{
		{"14", 2.08, 8.30, [5]float64{16.60, 24.90, 33.20, 41.50, 49.80}},
		{"12", 3.30, 10.64, [5]float64{21.28, 31.92, 42.56, 53.20, 63.84}},
		{"10", 5.27, 13.99, [5]float64{27.98, 41.97, 55.96, 69.95, 83.94}},
		{"8", 8.35, 25.70, [5]float64{51.40, 77.10, 102.80, 128.50, 154.20}},
	},
	Cables: []AreaRow{
		{"14", 2.66, 9.51, [5]float64{19.02, 28.53, 38.04, 47.55, 57.06}},
		{"12", 4.23, 12.32, [5]float64{24.64, 36.96, 49.28, 61.60, 73.92}},
		{"10", 6.83, 16.40, [5]float64{32.80, 49.20, 65.60, 82.00, 98.40}},
		{"8", 10.81, 29.70, [5]float64{59.40, 89.10, 118.80, 148.50, 178.20}},
		{"6", 12.00, 49.66, [5]float64{98.52, 147.78, 197.04, 246.30, 295.56}},
		{"4", 27.24, 65.61, [5]float64{131.22, 196.83, 262.44, 328.05, 393.66}},
		{"2", 43.24, 89.42, [5]float64{178.84, 268.26, 357.68, 447.10, 536.52}},
		{"0", 70.43, 143.99, [5]float64{287.98, 431.97, 575.96, 719.95, 863.94}},
		{"00", 88.91, 169.72, [5]float64{339.44, 509.16, 678.88, 848.60, 1018.32}},
		{"000", 111.97, 201.06, [5]float64{402.12, 603.18, 804.24, 1005.30, 1206.36}},
		{"0000", 141.23, 239.72, [5]float64{479.56, 719.28, 959.00, 1198.72, 1438.88}},
		{"250 MCM", 167.65, 298.65, [5]float64{597.30, 895.95, 1194.60, 1493.25, 1791.90}},
		{"300 MCM", 201.06, 343.07, [5]float64{686.14, 1029.21, 1372.28, 1715.35, 2058.42}},
		{"400 MCM", 268.51, 430.05, [5]float64{860.10, 1290.15, 1720.20, 2150.25, 2580.30}},
		{"500 MCM", 334.91, 514.72, [5]float64{1029.44, 1544.16, 2058.88, 2573.60, 3088.32}},
	},
}

var breakerTable = map[SystemType]BreakerSet{
	SinglePhase: {Poles: 1, Label: "UN POLO", Ratings: []int{15, 20, 30, 40, 50}},
	SplitPhase:  {Poles: 2, Label: "DOS POLOS", Ratings: []int{15, 20, 30, 40, 50, 70}},
	ThreePhase: {Poles: 3, Label: "TRES POLOS", Ratings: []int{
		15, 20, 30, 40, 50, 70, 100, 125, 150, 175, 200, 225, 250, 300, 350, 400, 500, 600,
	}},
}
