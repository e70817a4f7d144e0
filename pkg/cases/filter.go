package cases

import (
	"fmt"
	"strings"

	"github.com/ajxudir/pipcheck/pkg/verbose"
)

// Select returns the cases whose names are in names, in suite order.
// With no names every case is returned. Unknown names are an error so a
// typo does not silently run nothing.
func (s *Suite) Select(names []string) ([]Case, error) {
	if len(names) == 0 {
		return s.Cases, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var selected []Case
	for _, c := range s.Cases {
		if wanted[c.Name] {
			selected = append(selected, c)
			delete(wanted, c.Name)
			continue
		}
		verbose.CaseFiltered(c.Name)
	}

	if len(wanted) > 0 {
		var unknown []string
		for _, n := range names {
			if wanted[n] {
				unknown = append(unknown, n)
				delete(wanted, n)
			}
		}
		return nil, fmt.Errorf("unknown case(s): %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}
