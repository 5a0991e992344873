// Package engine wires the pieces together: it registers repositories
// from the manifest, scans working copies into registries and call
// graphs, maintains the dependency graph, and turns a commit into an
// impact report.
package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ripple/internal/callgraph"
	"ripple/internal/components"
	"ripple/internal/config"
	"ripple/internal/depgraph"
	"ripple/internal/errors"
	"ripple/internal/logging"
	"ripple/internal/manifest"
	"ripple/internal/propagate"
	"ripple/internal/registry"
	"ripple/internal/report"
	"ripple/internal/scanner"
	"ripple/internal/store"
)

// Engine owns the analysis state for one ecosystem: the dependency
// graph, per-repository registries, and the call-graph forest. Scans
// mutate this state; Analyze reads it through immutable snapshots.
type Engine struct {
	cfg        *config.Config
	logger     *logging.Logger
	man        *manifest.Manifest
	entries    map[string]manifest.RepoEntry
	graph      *depgraph.Graph
	registries map[string]*registry.Registry
	forest     *callgraph.Forest
	shared     *callgraph.SharedIndex
	dispatcher *scanner.Dispatcher

	// calls keeps scanned call sites per repository and file so a single
	// file can be rescanned and the repository graph rebuilt without
	// rereading the whole working copy.
	calls map[string]map[string][]scanner.CallRef

	history *store.DB    // optional analysis history
	source  CommitSource // optional commit metadata provider

	diags []report.Diagnostic
}

// New creates an engine over a validated manifest. Repository nodes and
// declared/layer evidence are registered immediately; working copies are
// not touched until ScanAll.
func New(cfg *config.Config, logger *logging.Logger, man *manifest.Manifest) *Engine {
	e := &Engine{
		cfg:        cfg,
		logger:     logger,
		man:        man,
		entries:    make(map[string]manifest.RepoEntry, len(man.Repos)),
		graph:      depgraph.NewGraph(),
		registries: make(map[string]*registry.Registry),
		forest:     callgraph.NewForest(),
		shared:     callgraph.NewSharedIndex(),
		dispatcher: scanner.NewDispatcher(),
		calls:      make(map[string]map[string][]scanner.CallRef),
	}
	e.register()
	return e
}

// UseStore attaches an analysis history store. Reports are persisted
// after Analyze when a store is attached.
func (e *Engine) UseStore(db *store.DB) { e.history = db }

// UseCommitSource attaches a commit metadata provider, enabling Analyze
// to resolve changed files from a commit id.
func (e *Engine) UseCommitSource(src CommitSource) { e.source = src }

// register builds repository nodes from the manifest, merged with any
// repo-local metadata and component declarations, then seeds declared
// and layer evidence.
func (e *Engine) register() {
	for _, r := range e.man.Repos {
		entry := r
		if entry.Path != "" {
			entry = entry.Merge(manifest.LoadMetadata(entry.Path))
			decl, err := components.Load(entry.Path)
			if err != nil {
				e.diags = append(e.diags, report.Diagnostic{
					Code:    errors.ManifestInvalid,
					File:    filepath.Join(entry.Path, components.DeclarationFile),
					Message: err.Error(),
				})
			} else if names := decl.Names(); len(names) > 0 {
				entry.Components = names
			}
		}
		e.entries[entry.Name] = entry

		e.graph.AddRepository(depgraph.RepositoryNode{
			Name:       entry.Name,
			URL:        entry.URL,
			Language:   entry.Language,
			Components: entry.Components,
			Layer:      entry.Layer,
		})
	}

	for name, entry := range e.entries {
		for _, dep := range entry.DependsOn {
			// Impact flows from the depended-on repository to the dependent.
			if err := e.graph.AddEvidence(dep, name, depgraph.SignalDeclared, depgraph.DeclaredEvidence()); err != nil {
				e.logger.Warn("declared dependency rejected", map[string]interface{}{
					"repo": name, "dependsOn": dep, "error": err.Error(),
				})
			}
		}
	}

	depgraph.InferLayerEdges(e.graph, e.cfg.Evidence.LayerScore)
}

// ScanAll scans every repository that has a working copy, then resolves
// call graphs. Shared-symbol declarations are collected before any graph
// is built so cross-repository calls resolve regardless of scan order.
func (e *Engine) ScanAll(ctx context.Context) error {
	names := make([]string, 0, len(e.entries))
	for name := range e.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry := e.entries[name]
		if entry.Path == "" {
			continue
		}
		if err := e.scanRepository(entry); err != nil {
			return err
		}
	}

	e.rebuildSharedIndex()
	e.rebuildAllGraphs()

	e.logger.Info("ecosystem scan complete", map[string]interface{}{
		"repos": len(e.registries),
		"edges": e.graph.Snapshot().NumEdges(),
	})
	return nil
}

// scanRepository walks one working copy, indexing every supported file
// and accumulating import evidence against the other repositories.
func (e *Engine) scanRepository(entry manifest.RepoEntry) error {
	reg := registry.New(entry.Name)
	repoCalls := make(map[string][]scanner.CallRef)
	importCounts := make(map[string]int)

	ignore := make(map[string]bool, len(e.cfg.Scan.IgnoreDirs))
	for _, dir := range e.cfg.Scan.IgnoreDirs {
		ignore[dir] = true
	}

	err := filepath.WalkDir(entry.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if ignore[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		variant, ok := e.dispatcher.ForFile(path)
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if e.cfg.Scan.MaxFileSizeBytes > 0 && info.Size() > int64(e.cfg.Scan.MaxFileSizeBytes) {
			rel, _ := filepath.Rel(entry.Path, path)
			e.diags = append(e.diags, report.Diagnostic{
				Code:    errors.ScanFailure,
				File:    rel,
				Message: "file exceeds scan size limit, skipped",
			})
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			rel, _ := filepath.Rel(entry.Path, path)
			e.diags = append(e.diags, report.Diagnostic{
				Code:    errors.ScanFailure,
				File:    rel,
				Message: err.Error(),
			})
			return nil
		}

		rel, err := filepath.Rel(entry.Path, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		reg.IndexFile(rel, variant.ScanFunctions(rel, content))
		if calls := variant.ScanCalls(rel, content); len(calls) > 0 {
			repoCalls[rel] = calls
		}
		for _, imp := range variant.ScanImports(rel, content) {
			if target := e.repoForImport(imp.Path, entry.Name); target != "" {
				importCounts[target]++
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ScanFailure, "cannot walk working copy of "+entry.Name, err)
	}

	e.registries[entry.Name] = reg
	e.calls[entry.Name] = repoCalls

	for target, count := range importCounts {
		score := depgraph.ImportEvidence(count, e.cfg.Evidence.ImportNormalization)
		if err := e.graph.AddEvidence(target, entry.Name, depgraph.SignalImport, score); err != nil {
			e.logger.Warn("import evidence rejected", map[string]interface{}{
				"repo": entry.Name, "target": target, "error": err.Error(),
			})
		}
	}

	e.logger.Debug("repository scanned", map[string]interface{}{
		"repo":      entry.Name,
		"functions": reg.Len(),
		"files":     len(repoCalls),
	})
	return nil
}

// repoForImport maps a scanned import path to the repository it likely
// refers to. The first path segment is compared against every other
// repository name, with dashes and underscores treated as equivalent.
func (e *Engine) repoForImport(importPath, self string) string {
	base := importPath
	if i := strings.IndexAny(base, "/."); i >= 0 {
		base = base[:i]
	}
	base = normalizeModuleName(base)
	if base == "" {
		return ""
	}

	for name := range e.entries {
		if name == self {
			continue
		}
		if normalizeModuleName(name) == base {
			return name
		}
	}
	return ""
}

func normalizeModuleName(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "-", "_")
}

// rebuildSharedIndex recreates the shared-symbol index from the current
// registries. Function identities embed definition lines, so any registry
// mutation invalidates previously indexed identities.
func (e *Engine) rebuildSharedIndex() {
	shared := callgraph.NewSharedIndex()
	names := make([]string, 0, len(e.entries))
	for name := range e.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := e.entries[name]
		reg, ok := e.registries[entry.Name]
		if !ok {
			continue
		}
		for _, sym := range entry.SharedSymbols {
			shared.Declare(sym, reg)
		}
	}
	e.shared = shared
}

// rebuildAllGraphs re-resolves every scanned repository's call sites.
// Needed whenever the shared index changes: callers in one repository
// resolve against identities owned by another.
func (e *Engine) rebuildAllGraphs() {
	names := make([]string, 0, len(e.registries))
	for name := range e.registries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e.rebuildGraph(name)
	}
}

// rebuildGraph re-resolves one repository's call sites into its graph.
func (e *Engine) rebuildGraph(repo string) {
	reg := e.registries[repo]
	files := make([]string, 0, len(e.calls[repo]))
	for file := range e.calls[repo] {
		files = append(files, file)
	}
	sort.Strings(files)

	var all []scanner.CallRef
	for _, file := range files {
		all = append(all, e.calls[repo][file]...)
	}

	e.forest.Add(callgraph.NewBuilder(reg, e.shared).Build(all))
}

// AnalysisRequest describes one commit to analyze. Files and Functions
// may be given explicitly; when Files is empty and a CommitSource is
// attached, the changed files are resolved from the commit id.
type AnalysisRequest struct {
	Repository string
	Commit     string
	Files      []string // repo-relative changed paths
	Functions  []string // qualified names, e.g. "Validator.check"
}

// Analyze turns a commit into a full impact report. The dependency graph
// is read through a snapshot taken once at the start, so concurrent
// NotifyDependency calls never produce a half-updated view.
func (e *Engine) Analyze(ctx context.Context, req AnalysisRequest) (*report.ImpactReport, error) {
	snap := e.graph.Snapshot()
	if !snap.HasRepository(req.Repository) {
		return nil, errors.Newf(errors.UnknownRepository, "repository %q not in manifest", req.Repository)
	}

	r := report.New(req.Repository, req.Commit)
	r.Diagnostics = append(r.Diagnostics, e.diags...)

	files := req.Files
	if len(files) == 0 && req.Commit != "" && e.source != nil {
		var err error
		files, err = e.source.ChangedFiles(ctx, req.Repository, req.Commit)
		if err != nil {
			return nil, errors.Wrap(errors.UnknownCommit, "cannot resolve changed files", err)
		}
	}
	sort.Strings(files)
	r.ChangedFiles = files

	reg, ok := e.registries[req.Repository]
	if !ok {
		// No working copy was scanned; register an empty registry so the
		// analysis can still run on dependency evidence alone.
		reg = registry.New(req.Repository)
		e.registries[req.Repository] = reg
	}

	if e.source != nil && req.Commit != "" {
		e.refreshFiles(ctx, req, reg, r)
	}

	changed := e.changedFunctions(reg, files, req.Functions, r)
	r.ChangedFunctions = changed

	opts := propagate.Options{
		MaxDepth:         e.cfg.Propagation.MaxDepth,
		Decay:            e.cfg.Propagation.Decay,
		BaseHoursPerRepo: e.cfg.Effort.BaseHoursPerRepo,
	}
	prop := propagate.New(snap, e.forest, e.registries, opts)
	scores, err := prop.Propagate(req.Repository, changed)
	if err != nil {
		return nil, err
	}
	r.Scores = scores

	affected := make([]string, 0, len(scores)+1)
	affected = append(affected, req.Repository)
	for repo := range scores {
		if repo != req.Repository {
			affected = append(affected, repo)
		}
	}
	r.DeploymentOrder = snap.TopoSort(affected)

	r.HelperImpacts = e.forest.HelperImpacts(reg, files)
	impacts := e.forest.Impacted(changed, opts.MaxDepth, opts.Decay)
	r.Recommendations = propagate.TestRecommendations(impacts)
	r.DanglingCalls = e.forest.Dangling()
	r.Finalize()

	if e.history != nil {
		if err := e.history.SaveReport(r); err != nil {
			e.logger.Warn("analysis not persisted", map[string]interface{}{
				"analysisId": r.AnalysisID, "error": err.Error(),
			})
		}
	}

	e.logger.Info("analysis complete", map[string]interface{}{
		"analysisId": r.AnalysisID,
		"repo":       req.Repository,
		"commit":     req.Commit,
		"affected":   len(scores),
	})
	return r, nil
}

// refreshFiles rescans the changed files at the commit's revision so the
// registry and call graph reflect the analyzed state, not the last full
// scan. A file gone at the revision drops out of the index.
func (e *Engine) refreshFiles(ctx context.Context, req AnalysisRequest, reg *registry.Registry, r *report.ImpactReport) {
	if e.calls[req.Repository] == nil {
		e.calls[req.Repository] = make(map[string][]scanner.CallRef)
	}

	dirty := false
	for _, file := range r.ChangedFiles {
		variant, ok := e.dispatcher.ForFile(file)
		if !ok {
			continue
		}

		content, err := e.source.FileContent(ctx, req.Repository, file, req.Commit)
		if err == ErrFileGone {
			reg.IndexFile(file, nil)
			delete(e.calls[req.Repository], file)
			dirty = true
			continue
		}
		if err != nil {
			r.Diagnostics = append(r.Diagnostics, report.Diagnostic{
				Code:    errors.ScanFailure,
				File:    file,
				Message: err.Error(),
			})
			continue
		}

		reg.IndexFile(file, variant.ScanFunctions(file, content))
		if calls := variant.ScanCalls(file, content); len(calls) > 0 {
			e.calls[req.Repository][file] = calls
		} else {
			delete(e.calls[req.Repository], file)
		}
		dirty = true
	}

	if dirty {
		// A rescan can move definitions to new lines, re-keying their
		// identities. Callers in other repositories hold edges to the old
		// keys, so the shared index and every graph must be re-resolved.
		e.rebuildSharedIndex()
		e.rebuildAllGraphs()
	}
}

// changedFunctions resolves the changed set: every function defined in a
// changed file, plus any explicitly named functions. Names that resolve
// to nothing become diagnostics, not failures.
func (e *Engine) changedFunctions(reg *registry.Registry, files, names []string, r *report.ImpactReport) []registry.FunctionID {
	seen := make(map[registry.FunctionID]bool)
	var out []registry.FunctionID
	add := func(id registry.FunctionID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, file := range files {
		for _, id := range reg.FunctionsInFile(file) {
			add(id)
		}
	}

	for _, name := range names {
		container, fn := splitQualified(name)
		var ids []registry.FunctionID
		if container != "" {
			ids = reg.Exact(container, fn)
		} else {
			ids = reg.ByName(fn)
		}
		if len(ids) == 0 {
			r.Diagnostics = append(r.Diagnostics, report.Diagnostic{
				Code:    errors.ScanFailure,
				Message: "changed function " + name + " not found in registry",
			})
			continue
		}
		for _, id := range ids {
			add(id)
		}
	}

	return out
}

func splitQualified(name string) (container, fn string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// NotifyDependency records a newly observed declared dependency: the
// dependent repository now depends on dependedOn. Monotone evidence makes
// repeated notifications idempotent.
func (e *Engine) NotifyDependency(dependedOn, dependent string) error {
	if err := e.graph.AddEvidence(dependedOn, dependent, depgraph.SignalDeclared, depgraph.DeclaredEvidence()); err != nil {
		return err
	}
	e.logger.Info("dependency recorded", map[string]interface{}{
		"dependedOn": dependedOn,
		"dependent":  dependent,
	})
	return nil
}

// DependencySnapshot exposes the current dependency graph for read-only
// consumers (the graph CLI command, tests).
func (e *Engine) DependencySnapshot() *depgraph.Snapshot {
	return e.graph.Snapshot()
}

// Registry returns the scanned registry for a repository.
func (e *Engine) Registry(repo string) (*registry.Registry, bool) {
	reg, ok := e.registries[repo]
	return reg, ok
}

// Forest returns the call-graph forest.
func (e *Engine) Forest() *callgraph.Forest { return e.forest }

// Diagnostics returns the conditions absorbed while loading and scanning.
func (e *Engine) Diagnostics() []report.Diagnostic {
	return append([]report.Diagnostic(nil), e.diags...)
}
