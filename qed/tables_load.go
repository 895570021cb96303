package qed

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// tableManifest is the on-disk YAML description of a QED table file: the
// regime thresholds plus the four CSV grids, each a dense (x, y, z) row
// set. Strict unknown-field rejection mirrors cmd/default_config.go's
// KnownFields(true) handling of defaults.yaml.
type tableManifest struct {
	MinChiContinuous    float64 `yaml:"min_chi_continuous"`
	MinChiDiscontinuous float64 `yaml:"min_chi_discontinuous"`
	ChiThresholdPhoton  float64 `yaml:"chi_threshold_photon"`

	RadiationYieldCSV  string `yaml:"radiation_yield_csv"`
	PairYieldCSV       string `yaml:"pair_yield_csv"`
	EmissionInvCDFCSV  string `yaml:"emission_invcdf_csv"`
	PairSplitInvCDFCSV string `yaml:"pair_split_invcdf_csv"`
}

// LoadQEDTables reads a table manifest (YAML) at path, plus the four CSV
// grid files it references (relative to the manifest's directory), and
// builds an immutable *QEDTables. Each CSV file holds one dense grid as
// "x,y,z" rows; x and y must together enumerate a complete rectangular
// grid (every combination of the unique x values and unique y values
// present exactly once) or loading fails with a *ConfigError, since a
// ragged grid cannot be interpolated unambiguously.
func LoadQEDTables(path string) (*QEDTables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("qed: reading table manifest %s: %w", path, err)
	}

	var manifest tableManifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("qed: parsing table manifest %s: %w", path, err)
	}

	if manifest.MinChiDiscontinuous <= manifest.MinChiContinuous {
		return nil, configErrorf("chi_threshold_discontinuous", "must be > chi_threshold_continuous, got %g <= %g", manifest.MinChiDiscontinuous, manifest.MinChiContinuous)
	}

	dir := filepath.Dir(path)

	radiationYield, chiMin, chiMax, err := loadGridCSV(filepath.Join(dir, manifest.RadiationYieldCSV), true)
	if err != nil {
		return nil, err
	}
	pairYield, _, _, err := loadGridCSV(filepath.Join(dir, manifest.PairYieldCSV), true)
	if err != nil {
		return nil, err
	}
	emissionInvCDF, _, _, err := loadGridCSV(filepath.Join(dir, manifest.EmissionInvCDFCSV), true)
	if err != nil {
		return nil, err
	}
	pairSplitInvCDF, _, _, err := loadGridCSV(filepath.Join(dir, manifest.PairSplitInvCDFCSV), true)
	if err != nil {
		return nil, err
	}

	return &QEDTables{
		chiMin:              chiMin,
		chiMax:              chiMax,
		minChiContinuous:    manifest.MinChiContinuous,
		minChiDiscontinuous: manifest.MinChiDiscontinuous,
		chiThresholdPhoton:  manifest.ChiThresholdPhoton,
		radiationYield:      radiationYield,
		pairYield:           pairYield,
		emissionInvCDF:      emissionInvCDF,
		pairSplitInvCDF:     pairSplitInvCDF,
	}, nil
}

// loadGridCSV parses a "x,y,z" CSV (no header) into a dense table2D. xLog
// selects whether the x axis interpolates in log-space (true for the chi
// axis of the yield tables; also true for the chi axis of the inverse-CDF
// tables, which callers pass explicitly). Returns the min/max of the x
// axis for QEDTables.chiMin/chiMax bookkeeping.
func loadGridCSV(path string, xLog bool) (*table2D, float64, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("qed: opening table grid %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file; close error is not actionable

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("qed: reading table grid %s: %w", path, err)
	}

	type point struct{ x, y, z float64 }
	points := make([]point, 0, len(records))
	xSet := map[float64]struct{}{}
	ySet := map[float64]struct{}{}

	for rowIdx, rec := range records {
		if len(rec) != 3 {
			return nil, 0, 0, configErrorf("table_grid", "%s row %d: expected 3 columns, got %d", path, rowIdx, len(rec))
		}
		x, y, z, err := parseRow(rec)
		if err != nil {
			return nil, 0, 0, configErrorf("table_grid", "%s row %d: %v", path, rowIdx, err)
		}
		points = append(points, point{x, y, z})
		xSet[x] = struct{}{}
		ySet[y] = struct{}{}
	}

	xVals := sortedKeys(xSet)
	yVals := sortedKeys(ySet)
	if xLog && len(xVals) > 0 && xVals[0] <= 0 {
		return nil, 0, 0, configErrorf("table_grid", "%s: log-spaced x axis requires positive values, got %g", path, xVals[0])
	}
	if len(points) != len(xVals)*len(yVals) {
		return nil, 0, 0, configErrorf("table_grid", "%s: %d rows is not a complete %dx%d grid", path, len(points), len(xVals), len(yVals))
	}

	xIndex := indexOf(xVals)
	yIndex := indexOf(yVals)
	z := make([][]float64, len(xVals))
	for i := range z {
		z[i] = make([]float64, len(yVals))
	}
	filled := make([][]bool, len(xVals))
	for i := range filled {
		filled[i] = make([]bool, len(yVals))
	}
	for _, p := range points {
		i, j := xIndex[p.x], yIndex[p.y]
		if filled[i][j] {
			return nil, 0, 0, configErrorf("table_grid", "%s: duplicate entry for (%g, %g)", path, p.x, p.y)
		}
		z[i][j] = p.z
		filled[i][j] = true
	}

	return newTable2D(newAxis(xVals, xLog), newAxis(yVals, false), z), xVals[0], xVals[len(xVals)-1], nil
}

func parseRow(rec []string) (x, y, z float64, err error) {
	if x, err = strconv.ParseFloat(rec[0], 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid x value %q: %w", rec[0], err)
	}
	if y, err = strconv.ParseFloat(rec[1], 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid y value %q: %w", rec[1], err)
	}
	if z, err = strconv.ParseFloat(rec[2], 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid z value %q: %w", rec[2], err)
	}
	return x, y, z, nil
}

func sortedKeys(set map[float64]struct{}) []float64 {
	vals := make([]float64, 0, len(set))
	for v := range set {
		vals = append(vals, v)
	}
	sort.Float64s(vals)
	return vals
}

func indexOf(vals []float64) map[float64]int {
	idx := make(map[float64]int, len(vals))
	for i, v := range vals {
		idx[v] = i
	}
	return idx
}
