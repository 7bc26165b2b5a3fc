//go:build linux && cgo

package oracle

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

static void* ksym_dlopen(const char* path) {
	return dlopen(path, RTLD_LAZY | RTLD_LOCAL);
}
static const char* ksym_dlerror(void) {
	return dlerror();
}
static int ksym_dlclose(void* h) {
	return dlclose(h);
}

// Clear dlerror, call dlsym, and return the error (if any) alongside
// the symbol.
static void* ksym_dlsym_clear(void* h, const char* name, char** err) {
	dlerror();
	void* p = dlsym(h, name);
	char* e = dlerror();
	if (e) { if (err) *err = e; return NULL; }
	if (err) *err = NULL;
	return p;
}

// Both exported query functions share this signature.
typedef int (*ksym_query_fn)(const char*);
static int ksym_call(void* fn, const char* term) {
	return ((ksym_query_fn)fn)(term);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/korelang/ksym/internal/kore"
)

// Answer codes of the native query functions. Negative values are
// library-side errors.
const (
	answerFalse   = 0
	answerTrue    = 1
	answerUnknown = 2
)

const (
	symSimplifyBool = "ksym_simplify_bool"
	symDefinedness  = "ksym_definedness"
)

// Library is an Oracle backed by a dlopened shared object exporting
//
//	int ksym_simplify_bool(const char* term_json);
//	int ksym_definedness(const char* term_json);
//
// where term_json is a NUL-terminated KORE-JSON document and the
// return value is an answer code.
type Library struct {
	def  *kore.Definition
	path string

	mu       sync.Mutex
	handle   unsafe.Pointer
	simplify unsafe.Pointer
	defined  unsafe.Pointer
}

var _ Oracle = (*Library)(nil)

// Load dlopens the library at path and resolves its query symbols. A
// missing library or a missing export is a load error naming the path;
// the caller decides whether running without an oracle is acceptable.
func Load(path string, def *kore.Definition) (*Library, error) {
	cs := C.CString(path)
	defer C.free(unsafe.Pointer(cs))
	h := C.ksym_dlopen(cs)
	if h == nil {
		return nil, fmt.Errorf("oracle: dlopen(%q) failed: %s", path, dlerr())
	}
	lib := &Library{def: def, path: path, handle: h}
	var err error
	if lib.simplify, err = dlsymChecked(h, symSimplifyBool); err != nil {
		C.ksym_dlclose(h)
		return nil, fmt.Errorf("oracle: %q: %w", path, err)
	}
	if lib.defined, err = dlsymChecked(h, symDefinedness); err != nil {
		C.ksym_dlclose(h)
		return nil, fmt.Errorf("oracle: %q: %w", path, err)
	}
	return lib, nil
}

// SimplifyBool evaluates a concrete boolean-sorted term in the library.
func (l *Library) SimplifyBool(t kore.Term) (bool, error) {
	rc, err := l.query(l.simplify, t)
	if err != nil {
		return false, err
	}
	switch rc {
	case answerTrue:
		return true, nil
	case answerFalse:
		return false, nil
	default:
		return false, fmt.Errorf("oracle: %q: unexpected boolean answer %d for %s", l.path, rc, t)
	}
}

// Definedness reports whether a concrete term denotes a value.
func (l *Library) Definedness(t kore.Term) (Tristate, error) {
	rc, err := l.query(l.defined, t)
	if err != nil {
		return Unknown, err
	}
	switch rc {
	case answerTrue:
		return True, nil
	case answerFalse:
		return False, nil
	case answerUnknown:
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("oracle: %q: unexpected definedness answer %d for %s", l.path, rc, t)
	}
}

// Close releases the library handle.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == nil {
		return nil
	}
	if int(C.ksym_dlclose(l.handle)) != 0 {
		return fmt.Errorf("oracle: dlclose(%q) failed: %s", l.path, dlerr())
	}
	l.handle = nil
	return nil
}

func (l *Library) query(fn unsafe.Pointer, t kore.Term) (int, error) {
	data, err := encodeQuery(l.def, t)
	if err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == nil {
		return 0, fmt.Errorf("oracle: %q: library already closed", l.path)
	}
	cterm := C.CString(string(data))
	defer C.free(unsafe.Pointer(cterm))
	rc := int(C.ksym_call(fn, cterm))
	if rc < 0 {
		return 0, fmt.Errorf("oracle: %q: native call failed with code %d for %s", l.path, rc, t)
	}
	return rc, nil
}

func dlerr() string {
	if msg := C.ksym_dlerror(); msg != nil {
		return C.GoString(msg)
	}
	return "unknown dlerror"
}

func dlsymChecked(h unsafe.Pointer, name string) (unsafe.Pointer, error) {
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	var cerr *C.char
	p := C.ksym_dlsym_clear(h, cs, &cerr)
	if cerr != nil {
		return nil, fmt.Errorf("dlsym(%q) failed: %s", name, C.GoString(cerr))
	}
	return p, nil
}
