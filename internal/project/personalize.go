package project

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Personalization holds the identity written into a freshly created project.
type Personalization struct {
	Name       string
	ProjectID  string
	PackageID  string
	AppIcon    []byte
	Splash     []byte
	ThemeColor string
}

const (
	packageJSONFile     = "package.json"
	capacitorConfigFile = "capacitor.config.json"
)

// Personalize writes the app identity into package.json, the project
// configuration, the Capacitor configuration and the resources directory.
func (p *Project) Personalize(fields Personalization) error {
	pkg := OpenConfig(filepath.Join(p.Dir, packageJSONFile), "")
	if _, err := os.Stat(pkg.Path()); err == nil {
		for _, kv := range [][2]string{
			{"name", fields.ProjectID},
			{"version", "0.0.1"},
			{"description", "An Ionic project"},
		} {
			if err := pkg.Set(kv[0], kv[1]); err != nil {
				return err
			}
		}
	}

	if err := p.Config.Set("name", fields.Name); err != nil {
		return err
	}

	if fields.PackageID != "" {
		capConfig := OpenConfig(filepath.Join(p.Dir, capacitorConfigFile), "")
		if _, err := os.Stat(capConfig.Path()); err == nil {
			if err := capConfig.Set("appId", fields.PackageID); err != nil {
				return err
			}
			if err := capConfig.Set("appName", fields.Name); err != nil {
				return err
			}
		}
	}

	resources := filepath.Join(p.Dir, "resources")
	for name, data := range map[string][]byte{"icon.png": fields.AppIcon, "splash.png": fields.Splash} {
		if len(data) == 0 {
			continue
		}
		if err := os.MkdirAll(resources, 0755); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(resources, name), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	if fields.ThemeColor != "" {
		if err := p.applyThemeColor(fields.ThemeColor); err != nil {
			return err
		}
	}

	log.Printf("personalized %s as %q (%s)", p.Dir, fields.Name, fields.ProjectID)
	return nil
}

var primaryColorVar = regexp.MustCompile(`(--ion-color-primary(?:-rgb|-shade|-tint)?)\s*:\s*[^;]+;`)

func (p *Project) applyThemeColor(color string) error {
	palette, err := primaryPalette(color)
	if err != nil {
		return err
	}

	for _, name := range []string{"variables.scss", "variables.css"} {
		path := filepath.Join(p.Dir, "src", "theme", name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		out := primaryColorVar.ReplaceAllStringFunc(string(data), func(m string) string {
			v := primaryColorVar.FindStringSubmatch(m)[1]
			return v + ": " + palette[v] + ";"
		})
		return os.WriteFile(path, []byte(out), 0644)
	}
	log.Printf("no theme variables found in %s", p.Dir)
	return nil
}

// primaryPalette derives the primary color variables from a #rrggbb color.
// Shade mixes 12% black, tint mixes 10% white.
func primaryPalette(color string) (map[string]string, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, fmt.Errorf("invalid theme color: %s", color)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid theme color: %s", color)
	}
	r, g, b := float64(v>>16&0xff), float64(v>>8&0xff), float64(v&0xff)

	mix := func(target, weight float64) string {
		m := func(c float64) int { return int(c + (target-c)*weight + 0.5) }
		return fmt.Sprintf("#%02x%02x%02x", m(r), m(g), m(b))
	}

	return map[string]string{
		"--ion-color-primary":       "#" + strings.ToLower(hex),
		"--ion-color-primary-rgb":   fmt.Sprintf("%d,%d,%d", int(r), int(g), int(b)),
		"--ion-color-primary-shade": mix(0, 0.12),
		"--ion-color-primary-tint":  mix(255, 0.10),
	}, nil
}
