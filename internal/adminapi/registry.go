package adminapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"tenantportal/pkg/tenants"
)

// loadRegistry reads one tenant document per .yaml/.yml/.json file under dir.
func loadRegistry(dir string) ([]tenants.Spec, error) {
	if dir == "" {
		return nil, nil
	}
	out := []tenants.Spec{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			return nil
		}

		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var spec tenants.Spec
		if ext == ".json" {
			if err := json.Unmarshal(b, &spec); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		} else {
			if err := yaml.Unmarshal(b, &spec); err != nil {
				return fmt.Errorf("%s: yaml parse: %w", path, err)
			}
		}
		if spec.ID != "" {
			out = append(out, spec)
		}
		return nil
	})
	return out, err
}

// importTenantsFromDir upserts every tenant document found in dir.
func importTenantsFromDir(ctx context.Context, prov tenants.Provider, log *zap.SugaredLogger, dir string) error {
	specs, err := loadRegistry(dir)
	if err != nil {
		return err
	}
	for _, s := range specs {
		if err := prov.Save(ctx, s.Tenant()); err != nil {
			return fmt.Errorf("tenant %s: %w", s.ID, err)
		}
	}
	log.Infof("imported %d tenants from %s", len(specs), dir)
	return nil
}
