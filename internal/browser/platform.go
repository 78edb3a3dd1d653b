package browser

import (
	"fmt"
	"slices"

	"github.com/jbolsens-legion/docker-selenium/internal/config"
	"github.com/jbolsens-legion/docker-selenium/internal/domain"
)

// PlatformLinuxAMD64 is the only platform every browser is published for
const PlatformLinuxAMD64 = "linux/amd64"

// Kinds returns the browsers to test, in the order their groups are added
func Kinds(cfg *config.Config) []Kind {
	if cfg.Platforms != PlatformLinuxAMD64 {
		return []Kind{Firefox, Chrome}
	}
	if cfg.RelayEnabled() {
		return []Kind{Chrome}
	}
	return []Kind{Firefox, Chrome, Edge}
}

// Suite returns the groups for one run: the platform's browsers repeated
// cfg.Repeat() times and narrowed to cfg.Flags.Browsers when set.
func Suite(cfg *config.Config, fixture *Fixture) ([]domain.TestGroup, error) {
	kinds := Kinds(cfg)
	if len(cfg.Flags.Browsers) > 0 {
		wanted := make([]Kind, 0, len(cfg.Flags.Browsers))
		for _, name := range cfg.Flags.Browsers {
			kind, err := ParseKind(name)
			if err != nil {
				return nil, err
			}
			wanted = append(wanted, kind)
		}
		kinds = slices.DeleteFunc(kinds, func(k Kind) bool {
			return !slices.Contains(wanted, k)
		})
	}

	repeat := cfg.Repeat()
	groups := make([]domain.TestGroup, 0, repeat*len(kinds))
	for i := 1; i <= repeat; i++ {
		suffix := ""
		if repeat > 1 {
			suffix = fmt.Sprintf("#%d", i)
		}
		for _, kind := range kinds {
			groups = append(groups, NewGroup(kind, fixture, suffix))
		}
	}
	return groups, nil
}
