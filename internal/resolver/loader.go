package resolver

import (
	"fmt"
	"os"
	"strings"
	"sync"

	mmap "github.com/edsrzf/mmap-go"
	"golang.org/x/mod/semver"
)

// Loader resolves an assembly identity to its on-disk image, memory-
// mapping the file rather than reading it fully into memory —
// mirroring saferwall/pe's mmap-backed file reader, since .NET
// assemblies are themselves PE files. It implements the "ask the
// metadata reader to load" fallback: the interpreter
// itself never parses the mapped bytes (that remains the external
// metadata reader's job); the loader only locates and maps the file
// and hands the raw bytes to whatever metadata reader the embedder
// supplies as NewLoader's decode callback.

type candidate struct {
	version string
	path    string
}

// Loader maps an assembly simple name to the best available on-disk
// candidate by version, verifies its signature if configured to, and
// memory-maps the bytes.
type Loader struct {
	mu          sync.Mutex
	candidates  map[string][]candidate // simple name -> version candidates
	mapped      map[string]mmap.MMap
	verifySig   bool
	decode      func(name, version string, image []byte) error
}

// NewLoader creates a Loader. decode, when non-nil, is invoked with
// the mapped bytes once a candidate is chosen — the embedder's
// metadata reader plugs in here; a nil decode simply skips decoding
// (useful for tests that construct assemblies in-memory and never
// need the loader at all).
func NewLoader(verifySignatures bool, decode func(name, version string, image []byte) error) *Loader {
	return &Loader{
		candidates: make(map[string][]candidate),
		mapped:     make(map[string]mmap.MMap),
		verifySig:  verifySignatures,
		decode:     decode,
	}
}

// AddCandidate registers a (version, path) pair a later Load can pick
// among for the named assembly, as populated from config.Manifest.
func (l *Loader) AddCandidate(name, version, path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.candidates[name] = append(l.candidates[name], candidate{version: version, path: path})
}

// Load picks the best version of name satisfying minVersion (empty
// string means "any"), memory-maps its file, optionally verifies its
// signature, and runs the decode callback.
func (l *Loader) Load(name, minVersion string) (version, path string, err error) {
	l.mu.Lock()
	cands := append([]candidate(nil), l.candidates[name]...)
	l.mu.Unlock()

	if len(cands) == 0 {
		return "", "", fmt.Errorf("resolver: no on-disk candidate registered for assembly %q", name)
	}

	best := pickBestVersion(cands, minVersion)
	if best == nil {
		return "", "", fmt.Errorf("resolver: no candidate for %q satisfies version >= %q", name, minVersion)
	}

	image, err := l.mapFile(best.path)
	if err != nil {
		return "", "", err
	}

	if l.verifySig {
		if err := verifySignature(image); err != nil {
			// Advisory only: log-equivalent and continue.
			_ = err
		}
	}

	if l.decode != nil {
		if err := l.decode(name, best.version, image); err != nil {
			return "", "", fmt.Errorf("resolver: decoding %q: %w", name, err)
		}
	}

	return best.version, best.path, nil
}

func (l *Loader) mapFile(path string) (mmap.MMap, error) {
	l.mu.Lock()
	if m, ok := l.mapped[path]; ok {
		l.mu.Unlock()
		return m, nil
	}
	l.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("resolver: opening %s: %w", path, err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("resolver: mmap %s: %w", path, err)
	}

	l.mu.Lock()
	l.mapped[path] = m
	l.mu.Unlock()
	return m, nil
}

// Close unmaps every mapped assembly image.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var first error
	for path, m := range l.mapped {
		if err := m.Unmap(); err != nil && first == nil {
			first = fmt.Errorf("resolver: unmapping %s: %w", path, err)
		}
	}
	l.mapped = make(map[string]mmap.MMap)
	return first
}

// pickBestVersion selects the highest assembly version satisfying
// minVersion. Assembly versions are 4-component (Major.Minor.Build.
// Revision); golang.org/x/mod/semver expects 3-component "vX.Y.Z", so
// candidates are truncated to their first three components and
// prefixed with "v" for comparison, then the original 4-component
// string is returned.
func pickBestVersion(cands []candidate, minVersion string) *candidate {
	var best *candidate
	var bestSemver string
	minSemver := toSemver(minVersion)
	for i := range cands {
		c := &cands[i]
		sv := toSemver(c.version)
		if minSemver != "" && semver.Compare(sv, minSemver) < 0 {
			continue
		}
		if best == nil || semver.Compare(sv, bestSemver) > 0 {
			best = c
			bestSemver = sv
		}
	}
	return best
}

func toSemver(version string) string {
	if version == "" {
		return ""
	}
	parts := strings.SplitN(version, ".", 4)
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return "v" + strings.Join(parts[:3], ".")
}
