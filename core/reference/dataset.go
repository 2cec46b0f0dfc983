package reference

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/standwait/core/model"
)

// Dataset is a complete snapshot of reference data, typically loaded from a
// fixture file.
type Dataset struct {
	Transactions  []model.TransactionEvent `json:"transactions" yaml:"transactions"`
	DemandSamples []model.DemandSample     `json:"demand_samples" yaml:"demand_samples"`
	CategoryMix   []model.CategoryMix      `json:"category_mix" yaml:"category_mix"`
	Peaks         map[string]float64       `json:"peak_throughput" yaml:"peak_throughput"`
	ItemSales     []model.ItemSale         `json:"item_sales" yaml:"item_sales"`
	Locations     []model.Location         `json:"locations" yaml:"locations"`
	Zones         []model.SeatZone         `json:"zones" yaml:"zones"`
	ZoneDistances []model.ZoneDistance     `json:"zone_distances" yaml:"zone_distances"`
	Games         []model.Game             `json:"games" yaml:"games"`
}

// LoadDataset reads a YAML or JSON dataset, chosen by file extension.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ds Dataset
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &ds)
	case ".json":
		err = json.Unmarshal(data, &ds)
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return &ds, nil
}
