package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/ml"
)

// SchemaVersion is bumped whenever the persisted bundle layout changes in a
// way old readers cannot handle.
const SchemaVersion = 1

var (
	ErrNoBundle      = errors.New("no trained model bundle")
	ErrSchemaVersion = errors.New("unsupported bundle schema version")
)

// Bundle is everything produced by one training run, persisted as a single
// JSON record so the models, the scaler and the feature layout can never get
// out of sync with each other.
type Bundle struct {
	SchemaVersion  int      `json:"schema_version"`
	TargetColumn   string   `json:"target_column"`
	FeatureColumns []string `json:"feature_columns"`

	Scaler *ml.StandardScaler   `json:"scaler"`
	Linear *ml.LinearRegression `json:"linear"`
	Net    *ml.MLPRegressor     `json:"net"`
	KMeans *ml.KMeans           `json:"kmeans"`

	Epochs    int       `json:"epochs"`
	Clusters  int       `json:"clusters"`
	TrainRows int       `json:"train_rows"`
	TestRows  int       `json:"test_rows"`
	NetR2     float64   `json:"net_r2"`
	LinearR2  float64   `json:"linear_r2"`
	TrainedAt time.Time `json:"trained_at"`
}

// CompatibleWith reports whether the bundle can score the given table: the
// target column must still exist and be numeric. Feature columns the table
// lost are tolerated and zero-filled at scoring time.
func (b *Bundle) CompatibleWith(t *dataset.Table) error {
	idx := t.ColumnIndex(b.TargetColumn)
	if idx < 0 {
		return fmt.Errorf("target column %q not present in current dataset", b.TargetColumn)
	}
	if t.Columns()[idx].Kind != dataset.KindNumeric {
		return fmt.Errorf("target column %q is no longer numeric", b.TargetColumn)
	}
	return nil
}

// SaveBundle writes the bundle atomically: marshal to a temp file in the same
// directory, then rename over the destination.
func SaveBundle(path string, b *Bundle) error {
	b.SchemaVersion = SchemaVersion
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create bundle dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".bundle-*.json")
	if err != nil {
		return fmt.Errorf("create temp bundle: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close bundle: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename bundle: %w", err)
	}
	return nil
}

// LoadBundle reads a persisted bundle. A missing file yields ErrNoBundle; a
// schema mismatch yields ErrSchemaVersion.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBundle
		}
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if b.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaVersion, b.SchemaVersion, SchemaVersion)
	}
	if b.Net != nil {
		b.Net.Restore()
	}
	return &b, nil
}

// BundleExists reports whether a bundle file is present on disk.
func BundleExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
