//go:build !linux || !cgo

package oracle

import (
	"fmt"

	"github.com/korelang/ksym/internal/kore"
)

// Library is the dlopen-backed oracle. This platform has no dynamic
// loading support, so the type only exists to keep the API uniform.
type Library struct{}

var _ Oracle = (*Library)(nil)

// Load always fails on platforms without dynamic loading.
func Load(path string, def *kore.Definition) (*Library, error) {
	return nil, fmt.Errorf("oracle: load %q: %w", path, ErrUnavailable)
}

func (*Library) SimplifyBool(kore.Term) (bool, error) { return false, ErrUnavailable }

func (*Library) Definedness(kore.Term) (Tristate, error) { return Unknown, ErrUnavailable }

func (*Library) Close() error { return nil }
