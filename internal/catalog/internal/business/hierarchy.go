package business

import (
	"fmt"
	"sort"
	"strings"

	"gocatalog_api/internal/catalog/internal/models"
	"gocatalog_api/pkg/logger"
)

// CanonicalSeparator is the single path separator all category paths are
// normalized to at ingestion; backslash-delimited paths from older feed
// variants are rewritten on the way in.
const CanonicalSeparator = "/"

const (
	syntheticIDPrefix   = "GEN_"
	syntheticIDMaxLen   = 250
	syntheticIDProbeLen = 240
	defaultMaxPasses    = 10
)

// HierarchyBuilder turns the full set of category observations collected
// over a feed run into a consistent tree: every strict prefix of an
// observed path exists as a node, missing ancestors are synthesized with
// deterministic generated ids, and parents are resolved by a bounded
// fixed-point iteration over the node table.
type HierarchyBuilder struct {
	separator string
	maxPasses int
	log       logger.Logger
}

func NewHierarchyBuilder(maxPasses int, log logger.Logger) *HierarchyBuilder {
	if maxPasses <= 0 {
		maxPasses = defaultMaxPasses
	}
	return &HierarchyBuilder{
		separator: CanonicalSeparator,
		maxPasses: maxPasses,
		log:       log,
	}
}

type HierarchyResult struct {
	Categories      []models.Category // sorted by path, then id
	Synthesized     int
	UnresolvedRoots int
	Warnings        int
	Passes          int
}

// NormalizePath rewrites any source separator into the canonical one and
// strips surrounding whitespace and a trailing separator.
func (b *HierarchyBuilder) NormalizePath(raw string) string {
	path := strings.ReplaceAll(raw, "\\", b.separator)
	path = strings.TrimSpace(path)
	path = strings.TrimSuffix(path, b.separator)
	return path
}

// SyntheticID derives a generated category id from a normalized path. It
// is a pure function of the path: uppercase, non-alphanumerics replaced
// with underscores, bounded length, synthetic marker prefix.
func SyntheticID(path string) string {
	var mangled strings.Builder
	for _, r := range strings.ToUpper(path) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			mangled.WriteRune(r)
		} else {
			mangled.WriteRune('_')
		}
	}
	id := syntheticIDPrefix + mangled.String()
	if len(id) > syntheticIDMaxLen {
		id = id[:syntheticIDMaxLen]
	}
	return id
}

type observedNode struct {
	name string
	path string
}

// Build produces the final id -> (name, path, parent) mapping. Re-running
// it on the same observation set yields an identical mapping: synthetic id
// generation is a pure function of the path and all iteration happens in
// sorted order.
func (b *HierarchyBuilder) Build(observations []models.CategoryObservation) *HierarchyResult {
	result := &HierarchyResult{}

	byID := make(map[string]*observedNode)
	nameByPath := make(map[string]string)
	allPaths := make(map[string]bool)

	for _, obs := range observations {
		path := b.NormalizePath(obs.Path)
		if path == "" {
			// Pathless observations are discarded by the normalizer;
			// anything that still arrives here is dropped the same way.
			b.warn(result, "category observation %q has no path, dropped", obs.ID)
			continue
		}
		allPaths[path] = true
		name := strings.TrimSpace(obs.Name)
		if name != "" {
			nameByPath[path] = name
		}
		if obs.ID == "" {
			continue
		}
		if prev, ok := byID[obs.ID]; ok && prev.path != path {
			b.warn(result, "category id %s observed under %q and %q, keeping the most recent", obs.ID, prev.path, path)
		}
		node := &observedNode{path: path}
		if prev, ok := byID[obs.ID]; ok && name == "" {
			node.name = prev.name
		} else if name == "" {
			node.name = nameByPath[path]
		} else {
			node.name = name
		}
		byID[obs.ID] = node
	}

	// Prefix closure: every strict non-empty prefix of an observed path
	// must exist as a node.
	required := make(map[string]bool)
	for path := range allPaths {
		segments := strings.Split(path, b.separator)
		prefix := ""
		for _, segment := range segments {
			if prefix == "" {
				prefix = segment
			} else {
				prefix = prefix + b.separator + segment
			}
			required[prefix] = true
		}
	}

	// Index observed ids by path. When two observed ids claim the same
	// path the smallest id wins the parent lookup slot; both stay nodes.
	observedIDs := make([]string, 0, len(byID))
	for id := range byID {
		observedIDs = append(observedIDs, id)
	}
	sort.Strings(observedIDs)

	pathToID := make(map[string]string, len(required))
	assigned := make(map[string]bool, len(byID))
	for _, id := range observedIDs {
		assigned[id] = true
		node := byID[id]
		if _, taken := pathToID[node.path]; !taken {
			pathToID[node.path] = id
		}
	}

	requiredPaths := make([]string, 0, len(required))
	for path := range required {
		requiredPaths = append(requiredPaths, path)
	}
	sort.Strings(requiredPaths)

	nodes := make(map[string]*models.Category, len(required))
	for _, id := range observedIDs {
		obs := byID[id]
		name := obs.name
		if name == "" {
			name = lastSegment(obs.path, b.separator)
		}
		nodes[id] = &models.Category{ID: id, Name: name, Path: obs.path}
	}

	for _, path := range requiredPaths {
		if _, ok := pathToID[path]; ok {
			continue
		}
		id := b.probeSyntheticID(path, assigned)
		assigned[id] = true
		pathToID[path] = id
		name := nameByPath[path]
		if name == "" {
			name = lastSegment(path, b.separator)
		}
		nodes[id] = &models.Category{ID: id, Name: name, Path: path, Synthetic: true}
		result.Synthesized++
	}

	nodeIDs := make([]string, 0, len(nodes))
	for id := range nodes {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)

	// Fixed-point parent resolution: repeat until a pass assigns nothing
	// new or the pass bound is hit. Unresolved nodes stay roots.
	for pass := 0; pass < b.maxPasses; pass++ {
		result.Passes = pass + 1
		progress := false
		for _, id := range nodeIDs {
			node := nodes[id]
			if node.ParentID != "" {
				continue
			}
			cut := strings.LastIndex(node.Path, b.separator)
			if cut <= 0 {
				continue
			}
			parentID, ok := pathToID[node.Path[:cut]]
			if !ok || parentID == node.ID {
				continue
			}
			if b.wouldCycle(nodes, node.ID, parentID) {
				b.warn(result, "category %s: parent %s would close a cycle, left as root", node.ID, parentID)
				continue
			}
			node.ParentID = parentID
			progress = true
		}
		if !progress {
			break
		}
	}

	for _, id := range nodeIDs {
		node := nodes[id]
		if node.ParentID == "" && strings.Contains(node.Path, b.separator) {
			result.UnresolvedRoots++
			b.warn(result, "category %s (%q) has no resolvable parent after %d passes, left as root", node.ID, node.Path, result.Passes)
		}
		result.Categories = append(result.Categories, *node)
	}

	sort.Slice(result.Categories, func(i, j int) bool {
		if result.Categories[i].Path != result.Categories[j].Path {
			return result.Categories[i].Path < result.Categories[j].Path
		}
		return result.Categories[i].ID < result.Categories[j].ID
	})

	return result
}

func (b *HierarchyBuilder) probeSyntheticID(path string, assigned map[string]bool) string {
	candidate := SyntheticID(path)
	if !assigned[candidate] {
		return candidate
	}
	base := candidate
	if len(base) > syntheticIDProbeLen {
		base = base[:syntheticIDProbeLen]
	}
	for suffix := 1; ; suffix++ {
		probe := fmt.Sprintf("%s_%d", base, suffix)
		if !assigned[probe] {
			return probe
		}
	}
}

func (b *HierarchyBuilder) wouldCycle(nodes map[string]*models.Category, childID, parentID string) bool {
	seen := 0
	for current := parentID; current != ""; seen++ {
		if current == childID {
			return true
		}
		node, ok := nodes[current]
		if !ok || seen > len(nodes) {
			return false
		}
		current = node.ParentID
	}
	return false
}

func (b *HierarchyBuilder) warn(result *HierarchyResult, format string, v ...interface{}) {
	result.Warnings++
	if b.log != nil {
		b.log.Log("WARN "+format, v...)
	}
}

func lastSegment(path, separator string) string {
	if idx := strings.LastIndex(path, separator); idx >= 0 {
		return path[idx+len(separator):]
	}
	return path
}
