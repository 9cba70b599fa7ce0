package audio

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// BankRegistration records one bank source declared by a client module
// Registrations are appended and never removed
type BankRegistration struct {
	Source fs.FS
	Path   string

	data       []byte // retained copy reused when the source cannot be re-read
	handle     Handle
	generation uint64 // engine generation the bank was loaded in, 0 if never
}

// BankInfo is a read-only view of a registration
type BankInfo struct {
	Path   string
	Loaded bool
}

// BankRegistry holds deferred bank registrations and (re)loads them whenever the engine is ready
type BankRegistry struct {
	mu      sync.Mutex // Held across batch and immediate loads so a bank is never loaded twice per generation
	engine  *Engine
	regs    []*BankRegistration
	tempDir string
	metrics *metrics
}

func newBankRegistry(e *Engine, m *metrics) *BankRegistry {
	return &BankRegistry{engine: e, metrics: m}
}

// Register records a bank source and loads it immediately when the engine is ready
// Always returns true; a failed immediate load is retried by the next LoadAll.
// Registering the same source twice loads it twice.
func (r *BankRegistry) Register(src fs.FS, bankPath string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg := &BankRegistration{Source: src, Path: bankPath}
	r.regs = append(r.regs, reg)
	r.metrics.banksRegistered.Store(int64(len(r.regs)))

	debugLog("bank registered", zap.String("path", bankPath), zap.Int("index", len(r.regs)-1))

	if native, system, gen, ok := r.engine.bankSession(); ok {
		if err := r.load(native, system, gen, len(r.regs)-1); err != nil {
			Logger().Warn("immediate bank load failed", zap.String("path", bankPath), zap.Error(err))
		}
	}
	return true
}

// LoadAll loads every registration not yet loaded in the current engine generation
// Per-bank failures are logged and the batch always completes
func (r *BankRegistry) LoadAll() LoadResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res LoadResult
	native, system, gen, ok := r.engine.bankSession()
	if !ok {
		return res
	}

	for i, reg := range r.regs {
		if reg.generation == gen {
			res.Skipped++
			continue
		}
		res.Attempted++
		if err := r.load(native, system, gen, i); err != nil {
			Logger().Warn("bank load failed", zap.String("path", reg.Path), zap.Error(err))
			continue
		}
		res.Succeeded++
	}

	if res.Attempted > 0 {
		Logger().Info("banks loaded",
			zap.Int("attempted", res.Attempted),
			zap.Int("succeeded", res.Succeeded),
			zap.Int("skipped", res.Skipped))
	}
	return res
}

// load extracts and loads registration i; caller holds mu
func (r *BankRegistry) load(native Native, system Handle, gen uint64, i int) (err error) {
	const op = "load_bank"
	defer guard(op, &err)

	reg := r.regs[i]
	data, err := readBank(reg.Source, reg.Path)
	if err != nil {
		if reg.data == nil {
			r.metrics.bankFailures.Add(1)
			return newError(KindBankLoad, op, err, reg.Path)
		}
		debugLog("bank source unreadable, using retained copy", zap.String("path", reg.Path))
		data = reg.data
	}
	reg.data = data

	file, err := r.extract(i, reg.Path, data)
	if err != nil {
		r.metrics.bankFailures.Add(1)
		return newError(KindBankLoad, op, err, "extract "+reg.Path)
	}

	handle, err := native.LoadBankFile(system, file)
	if err != nil {
		r.metrics.bankFailures.Add(1)
		return newError(KindBankLoad, op, err, reg.Path)
	}

	reg.handle = handle
	reg.generation = gen
	r.metrics.banksLoaded.Add(1)
	debugLog("bank loaded", zap.String("path", reg.Path), zap.String("file", file))
	return nil
}

// readBank reads path from src, falling back to the path with its leading slash toggled
func readBank(src fs.FS, bankPath string) ([]byte, error) {
	if src == nil {
		return nil, fmt.Errorf("no source for %s", bankPath)
	}
	data, err := fs.ReadFile(src, bankPath)
	if err == nil {
		return data, nil
	}

	alt := "/" + bankPath
	if strings.HasPrefix(bankPath, "/") {
		alt = strings.TrimPrefix(bankPath, "/")
	}
	if data, altErr := fs.ReadFile(src, alt); altErr == nil {
		return data, nil
	}
	return nil, err
}

// extract writes data to the scoped temp dir as <index>_<base>
func (r *BankRegistry) extract(i int, bankPath string, data []byte) (string, error) {
	if r.tempDir == "" {
		dir, err := os.MkdirTemp("", "fmodapi-banks-")
		if err != nil {
			return "", err
		}
		r.tempDir = dir
	}
	file := filepath.Join(r.tempDir, fmt.Sprintf("%d_%s", i, path.Base(bankPath)))
	if err := os.WriteFile(file, data, 0o600); err != nil {
		return "", err
	}
	return file, nil
}

// unloadAll releases bank handles and marks every registration unloaded
// Called during shutdown with the outgoing native binding
func (r *BankRegistry) unloadAll(native Native) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reg := range r.regs {
		if reg.handle != 0 && native != nil {
			if err := native.UnloadBank(reg.handle); err != nil {
				debugLog("bank unload failed", zap.String("path", reg.Path), zap.Error(err))
			}
		}
		reg.handle = 0
		reg.generation = 0
	}
	r.metrics.banksLoaded.Store(0)
}

// MarkUnloaded clears loaded state without native calls
func (r *BankRegistry) MarkUnloaded() {
	r.unloadAll(nil)
}

// Len returns the number of registrations
func (r *BankRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.regs)
}

// Loaded returns the number of registrations loaded in the current engine generation
func (r *BankRegistry) Loaded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	gen := r.engine.generation.Load()
	n := 0
	for _, reg := range r.regs {
		if reg.generation != 0 && reg.generation == gen {
			n++
		}
	}
	return n
}

// Registrations returns a snapshot in registration order
func (r *BankRegistry) Registrations() []BankInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	gen := r.engine.generation.Load()
	out := make([]BankInfo, len(r.regs))
	for i, reg := range r.regs {
		out[i] = BankInfo{Path: reg.Path, Loaded: reg.generation != 0 && reg.generation == gen}
	}
	return out
}

// Close removes the extracted bank files
func (r *BankRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tempDir == "" {
		return nil
	}
	err := os.RemoveAll(r.tempDir)
	r.tempDir = ""
	return err
}
